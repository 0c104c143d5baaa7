package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/inercia/go-toolcall/pkg/llm"
)

// Client implements the llm.Client interface for AWS Bedrock
type Client struct {
	bedrockClient        *bedrock.Client
	bedrockRuntimeClient *bedrockruntime.Client
	model                string
	region               string
	provider             string

	// Health check caching
	lastHealthCheck  *time.Time
	lastHealthStatus *bool
}

// NewClient creates a new AWS Bedrock client
func NewClient(config llm.ClientConfig) (*Client, error) {
	region := "us-east-1"
	if config.Extra != nil {
		if r, exists := config.Extra["region"]; exists {
			region = r
		}
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, &llm.Error{
			Code:    "aws_config_error",
			Message: fmt.Sprintf("Failed to load AWS configuration: %v", err),
			Type:    "authentication_error",
		}
	}

	bedrockClient := bedrock.NewFromConfig(awsConfig, func(o *bedrock.Options) {
		if config.Extra != nil {
			if endpoint, exists := config.Extra["bedrock_endpoint"]; exists && endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}
	})

	bedrockRuntimeClient := bedrockruntime.NewFromConfig(awsConfig, func(o *bedrockruntime.Options) {
		if config.Extra != nil {
			if endpoint, exists := config.Extra["bedrock_runtime_endpoint"]; exists && endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}
		if config.BaseURL != "" {
			o.BaseEndpoint = aws.String(config.BaseURL)
		}
	})

	return &Client{
		bedrockClient:        bedrockClient,
		bedrockRuntimeClient: bedrockRuntimeClient,
		model:                config.Model,
		region:               region,
		provider:             "bedrock",
	}, nil
}

// ChatCompletion performs a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	payload, err := c.convertRequest(req)
	if err != nil {
		return nil, err
	}

	response, err := c.bedrockRuntimeClient.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.model),
		ContentType: aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, c.convertError(err)
	}

	return c.convertResponse(response.Body)
}

// StreamChatCompletion performs a streaming chat completion request
func (c *Client) StreamChatCompletion(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	payload, err := c.convertRequest(req)
	if err != nil {
		return nil, err
	}

	response, err := c.bedrockRuntimeClient.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(c.model),
		ContentType: aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, c.convertError(err)
	}

	ch := make(chan llm.StreamEvent, 10)

	go func() {
		defer close(ch)

		for event := range response.GetStream().Events() {
			switch v := event.(type) {
			case *types.ResponseStreamMemberChunk:
				if err := c.processStreamChunk(v.Value.Bytes, ch); err != nil {
					ch <- llm.NewErrorEvent(c.convertError(err))
					return
				}
			case *types.UnknownUnionMember:
				continue
			default:
				continue
			}
		}

		ch <- llm.NewDoneEvent(0, llm.FinishReasonStop)
	}()

	return ch, nil
}

// GetRemote returns information about the remote client
func (c *Client) GetRemote() llm.ClientRemoteInfo {
	info := llm.ClientRemoteInfo{
		Name: "bedrock",
	}

	now := time.Now()
	needsRefresh := c.lastHealthCheck == nil ||
		now.Sub(*c.lastHealthCheck) >= llm.DefaultHealthCheckInterval

	if needsRefresh {
		healthy := c.performHealthCheck()
		c.lastHealthStatus = &healthy
		c.lastHealthCheck = &now
	}

	info.Status = &llm.ClientRemoteInfoStatus{
		Healthy:     c.lastHealthStatus,
		LastChecked: c.lastHealthCheck,
	}

	return info
}

// performHealthCheck verifies connectivity against the Bedrock control plane
func (c *Client) performHealthCheck() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.bedrockClient.ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{})
	return err == nil
}

// GetModelInfo returns information about the model being used
func (c *Client) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:      c.model,
		Provider:  c.provider,
		MaxTokens: c.getMaxTokensForModel(),
		// InvokeModel carries no native tool channel; tool calls are
		// recovered from the generated text
		SupportsTools:     false,
		SupportsStreaming: true,
	}
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	// AWS SDK clients don't require explicit cleanup
	return nil
}

// convertRequest converts the request into the model family's payload format
func (c *Client) convertRequest(req llm.ChatRequest) ([]byte, error) {
	if c.isTitanModel() {
		return c.convertToTitanRequest(req)
	}
	if c.isLlamaModel() {
		return c.convertToLlamaRequest(req)
	}

	// Default to Claude format for unknown models
	return c.convertToClaudeRequest(req)
}

// convertToClaudeRequest converts to Claude's request format
func (c *Client) convertToClaudeRequest(req llm.ChatRequest) ([]byte, error) {
	// Legacy Claude models use the prompt format
	if strings.Contains(c.model, "claude-v2") || strings.Contains(c.model, "claude-instant") {
		claudeReq := map[string]interface{}{
			"prompt":               c.messagesToClaudePrompt(req),
			"max_tokens_to_sample": 1000,
		}

		if req.MaxTokens != nil {
			claudeReq["max_tokens_to_sample"] = *req.MaxTokens
		}
		if req.Temperature != nil {
			claudeReq["temperature"] = *req.Temperature
		}
		if req.TopP != nil {
			claudeReq["top_p"] = *req.TopP
		}

		return json.Marshal(claudeReq)
	}

	return c.convertToClaudeMessagesRequest(req)
}

// convertToClaudeMessagesRequest converts to the Claude messages API format
func (c *Client) convertToClaudeMessagesRequest(req llm.ChatRequest) ([]byte, error) {
	claudeReq := map[string]interface{}{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        1000,
	}

	if req.MaxTokens != nil {
		claudeReq["max_tokens"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		claudeReq["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		claudeReq["top_p"] = *req.TopP
	}

	var messages []map[string]interface{}
	systemMessage := toolInstruction(req.Tools)

	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			systemMessage += msg.Content + "\n"
			continue
		case llm.RoleTool:
			messages = append(messages, map[string]interface{}{
				"role":    "user",
				"content": fmt.Sprintf("Result of tool call %s:\n%s", msg.ToolCallID, msg.Content),
			})
			continue
		}

		role := "user"
		if msg.Role == llm.RoleAssistant {
			role = "assistant"
		}

		messages = append(messages, map[string]interface{}{
			"role":    role,
			"content": msg.Content,
		})
	}

	claudeReq["messages"] = messages

	if strings.TrimSpace(systemMessage) != "" {
		claudeReq["system"] = strings.TrimSpace(systemMessage)
	}

	return json.Marshal(claudeReq)
}

// messagesToClaudePrompt converts messages to the legacy Claude prompt format
func (c *Client) messagesToClaudePrompt(req llm.ChatRequest) string {
	var prompt strings.Builder

	if instruction := toolInstruction(req.Tools); instruction != "" {
		prompt.WriteString(instruction + "\n\n")
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			prompt.WriteString(msg.Content + "\n\n")
		case llm.RoleUser:
			prompt.WriteString(fmt.Sprintf("\n\nHuman: %s", msg.Content))
		case llm.RoleAssistant:
			prompt.WriteString(fmt.Sprintf("\n\nAssistant: %s", msg.Content))
		case llm.RoleTool:
			prompt.WriteString(fmt.Sprintf("\n\nHuman: Result of tool call %s:\n%s", msg.ToolCallID, msg.Content))
		}
	}

	if !strings.HasSuffix(prompt.String(), "\n\nAssistant:") {
		prompt.WriteString("\n\nAssistant:")
	}

	return prompt.String()
}

// toolInstruction renders tool declarations as a system prompt asking for
// fenced tool_call JSON blocks
func toolInstruction(tools []llm.Tool) string {
	if len(tools) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("You can call the following tools. To call one, reply with a fenced block tagged tool_call containing JSON with the keys \"tool\" and \"parameters\":\n")
	for _, tool := range tools {
		sb.WriteString(fmt.Sprintf("- %s: %s", tool.Function.Name, tool.Function.Description))
		if tool.Function.Parameters != nil {
			if schema, err := json.Marshal(tool.Function.Parameters); err == nil {
				sb.WriteString(fmt.Sprintf(" (parameters schema: %s)", schema))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// convertToTitanRequest converts to Amazon Titan request format
func (c *Client) convertToTitanRequest(req llm.ChatRequest) ([]byte, error) {
	var inputText strings.Builder

	if instruction := toolInstruction(req.Tools); instruction != "" {
		inputText.WriteString(instruction + "\n\n")
	}
	for _, msg := range req.Messages {
		inputText.WriteString(msg.Content + "\n")
	}

	generationConfig := map[string]interface{}{
		"maxTokenCount": 1000,
	}
	if req.MaxTokens != nil {
		generationConfig["maxTokenCount"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		generationConfig["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		generationConfig["topP"] = *req.TopP
	}

	return json.Marshal(map[string]interface{}{
		"inputText":            inputText.String(),
		"textGenerationConfig": generationConfig,
	})
}

// convertToLlamaRequest converts to Meta Llama request format
func (c *Client) convertToLlamaRequest(req llm.ChatRequest) ([]byte, error) {
	var promptText strings.Builder

	if instruction := toolInstruction(req.Tools); instruction != "" {
		promptText.WriteString(instruction + "\n\n")
	}
	for _, msg := range req.Messages {
		promptText.WriteString(msg.Content + "\n")
	}

	llamaReq := map[string]interface{}{
		"prompt":      promptText.String(),
		"max_gen_len": 1000,
	}
	if req.MaxTokens != nil {
		llamaReq["max_gen_len"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		llamaReq["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		llamaReq["top_p"] = *req.TopP
	}

	return json.Marshal(llamaReq)
}

// convertResponse converts the model family's response payload to our format
func (c *Client) convertResponse(body []byte) (*llm.ChatResponse, error) {
	if c.isTitanModel() {
		return c.convertTitanResponse(body)
	}
	if c.isLlamaModel() {
		return c.convertLlamaResponse(body)
	}

	// Default to Claude
	return c.convertClaudeResponse(body)
}

// convertClaudeResponse converts Claude response format
func (c *Client) convertClaudeResponse(body []byte) (*llm.ChatResponse, error) {
	var claudeResp map[string]interface{}
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return nil, c.convertError(err)
	}

	var text string
	if completion, ok := claudeResp["completion"].(string); ok {
		// Legacy format
		text = completion
	} else if content, ok := claudeResp["content"].([]interface{}); ok {
		// Messages API format
		for _, item := range content {
			if contentItem, ok := item.(map[string]interface{}); ok {
				if contentType, ok := contentItem["type"].(string); ok && contentType == "text" {
					if textContent, ok := contentItem["text"].(string); ok {
						text += textContent
					}
				}
			}
		}
	}

	return c.textResponse(text), nil
}

// convertTitanResponse converts Titan response format
func (c *Client) convertTitanResponse(body []byte) (*llm.ChatResponse, error) {
	var titanResp map[string]interface{}
	if err := json.Unmarshal(body, &titanResp); err != nil {
		return nil, c.convertError(err)
	}

	var text string
	if results, ok := titanResp["results"].([]interface{}); ok && len(results) > 0 {
		if result, ok := results[0].(map[string]interface{}); ok {
			if outputText, ok := result["outputText"].(string); ok {
				text = outputText
			}
		}
	}

	return c.textResponse(text), nil
}

// convertLlamaResponse converts Llama response format
func (c *Client) convertLlamaResponse(body []byte) (*llm.ChatResponse, error) {
	var llamaResp map[string]interface{}
	if err := json.Unmarshal(body, &llamaResp); err != nil {
		return nil, c.convertError(err)
	}

	var text string
	if generation, ok := llamaResp["generation"].(string); ok {
		text = generation
	}

	return c.textResponse(text), nil
}

func (c *Client) textResponse(text string) *llm.ChatResponse {
	return &llm.ChatResponse{
		ID:    fmt.Sprintf("bedrock-%s", time.Now().Format(time.RFC3339Nano)),
		Model: c.model,
		Choices: []llm.Choice{{
			Index:        0,
			Message:      llm.NewTextMessage(llm.RoleAssistant, text),
			FinishReason: llm.FinishReasonStop,
		}},
	}
}

// processStreamChunk processes a streaming chunk and sends appropriate events
func (c *Client) processStreamChunk(chunkData []byte, ch chan<- llm.StreamEvent) error {
	var chunk map[string]interface{}
	if err := json.Unmarshal(chunkData, &chunk); err != nil {
		return err
	}

	var text string
	switch {
	case c.isTitanModel():
		text, _ = chunk["outputText"].(string)
	case c.isLlamaModel():
		text, _ = chunk["generation"].(string)
	default:
		if completion, ok := chunk["completion"].(string); ok {
			// Legacy Claude format
			text = completion
		} else if delta, ok := chunk["delta"].(map[string]interface{}); ok {
			// Messages API format
			text, _ = delta["text"].(string)
		}
	}

	if text != "" {
		ch <- llm.NewDeltaEvent(0, &llm.MessageDelta{Content: text})
	}

	return nil
}

// Model family detection helpers
func (c *Client) isTitanModel() bool {
	return strings.Contains(c.model, "titan") || strings.Contains(c.model, "amazon")
}

func (c *Client) isLlamaModel() bool {
	return strings.Contains(c.model, "llama") || strings.Contains(c.model, "meta")
}

// getMaxTokensForModel returns the context size for the model family
func (c *Client) getMaxTokensForModel() int {
	switch {
	case strings.Contains(c.model, "claude-3"):
		return 200000
	case strings.Contains(c.model, "claude"):
		return 100000
	case c.isTitanModel():
		return 8000
	case c.isLlamaModel():
		return 4096
	}
	return 4096
}

// convertError converts AWS errors to our standardized error format
func (c *Client) convertError(err error) *llm.Error {
	if err == nil {
		return nil
	}

	if ourErr, ok := err.(*llm.Error); ok {
		return ourErr
	}

	// Smithy API errors carry the service error code
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDeniedException", "UnauthorizedOperation", "AuthFailure":
			return &llm.Error{
				Code:       "authentication_error",
				Message:    apiErr.ErrorMessage(),
				Type:       "authentication_error",
				StatusCode: 401,
			}
		case "ThrottlingException", "TooManyRequestsException":
			return &llm.Error{
				Code:       "rate_limit_error",
				Message:    apiErr.ErrorMessage(),
				Type:       "rate_limit_error",
				StatusCode: 429,
			}
		case "ResourceNotFoundException":
			return &llm.Error{
				Code:       "model_not_found",
				Message:    apiErr.ErrorMessage(),
				Type:       "validation_error",
				StatusCode: 404,
			}
		case "ValidationException":
			return &llm.Error{
				Code:       "validation_error",
				Message:    apiErr.ErrorMessage(),
				Type:       "validation_error",
				StatusCode: 400,
			}
		case "ModelTimeoutException", "ServiceUnavailableException":
			return &llm.Error{
				Code:       "service_unavailable",
				Message:    apiErr.ErrorMessage(),
				Type:       "api_error",
				StatusCode: 503,
			}
		}
		return &llm.Error{
			Code:    apiErr.ErrorCode(),
			Message: apiErr.ErrorMessage(),
			Type:    "api_error",
		}
	}

	return &llm.Error{
		Code:    "api_error",
		Message: err.Error(),
		Type:    "api_error",
	}
}
