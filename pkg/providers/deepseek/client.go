package deepseek

import (
	"context"
	"io"
	"strings"
	"time"

	deepseek "github.com/cohesion-org/deepseek-go"

	"github.com/inercia/go-toolcall/pkg/llm"
)

// Client implements the llm.Client interface for DeepSeek
type Client struct {
	client   *deepseek.Client
	model    string
	provider string
	config   llm.ClientConfig

	// Health check caching
	lastHealthCheck  *time.Time
	lastHealthStatus *bool
}

// NewClient creates a new DeepSeek client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for DeepSeek",
			Type:    "authentication_error",
		}
	}

	if config.Model == "" {
		return nil, &llm.Error{
			Code:    "missing_model",
			Message: "model is required for DeepSeek client",
			Type:    "validation_error",
		}
	}

	var opts []deepseek.Option
	if config.BaseURL != "" {
		if config.BaseURL == "http://" || config.BaseURL == "https://" {
			return nil, &llm.Error{
				Code:    "invalid_base_url",
				Message: "base URL cannot be just a protocol",
				Type:    "validation_error",
			}
		}
		opts = append(opts, deepseek.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, deepseek.WithTimeout(config.Timeout))
	}

	var client *deepseek.Client
	var err error
	if len(opts) > 0 {
		client, err = deepseek.NewClientWithOptions(config.APIKey, opts...)
		if err != nil {
			return nil, &llm.Error{
				Code:    "client_creation_error",
				Message: "Failed to create DeepSeek client: " + err.Error(),
				Type:    "configuration_error",
			}
		}
	} else {
		client = deepseek.NewClient(config.APIKey)
	}

	return &Client{
		client:   client,
		model:    config.Model,
		provider: "deepseek",
		config:   config,
	}, nil
}

// ChatCompletion performs a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	deepseekReq := c.convertRequest(req)

	resp, err := c.client.CreateChatCompletion(ctx, &deepseekReq)
	if err != nil {
		return nil, c.convertError(err)
	}

	return c.convertResponse(*resp), nil
}

// StreamChatCompletion performs a streaming chat completion request
func (c *Client) StreamChatCompletion(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	deepseekReq := c.convertStreamRequest(req)

	stream, err := c.client.CreateChatCompletionStream(ctx, &deepseekReq)
	if err != nil {
		return nil, c.convertError(err)
	}

	ch := make(chan llm.StreamEvent, 10)

	go func() {
		defer close(ch)
		defer func() { _ = stream.Close() }()

		for {
			response, err := stream.Recv()
			if err == io.EOF {
				ch <- llm.NewDoneEvent(0, llm.FinishReasonStop)
				return
			}
			if err != nil {
				ch <- llm.NewErrorEvent(c.convertError(err))
				return
			}

			if event := c.convertStreamEvent(response); event != nil {
				ch <- *event
			}
		}
	}()

	return ch, nil
}

// GetRemote returns information about the remote client
func (c *Client) GetRemote() llm.ClientRemoteInfo {
	info := llm.ClientRemoteInfo{
		Name: "deepseek",
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

// performHealthCheck issues a minimal completion to verify connectivity
func (c *Client) performHealthCheck() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req := deepseek.ChatCompletionRequest{
		Model: c.model,
		Messages: []deepseek.ChatCompletionMessage{
			{
				Role:    "user",
				Content: "test",
			},
		},
		MaxTokens: 1,
	}

	_, err := c.client.CreateChatCompletion(ctx, &req)
	return err == nil
}

// GetModelInfo returns information about the model
func (c *Client) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:              c.model,
		Provider:          c.provider,
		MaxTokens:         32768, // DeepSeek models typically support 32K context
		SupportsTools:     true,
		SupportsStreaming: true,
	}
}

// Close cleans up resources
func (c *Client) Close() error {
	// The deepseek-go client manages its own HTTP client internally and
	// doesn't expose a Close method
	c.client = nil
	return nil
}

// convertRequest converts our llm.ChatRequest to DeepSeek format
func (c *Client) convertRequest(req llm.ChatRequest) deepseek.ChatCompletionRequest {
	deepseekReq := deepseek.ChatCompletionRequest{
		Model:    c.model,
		Messages: c.convertMessages(req.Messages),
		Tools:    c.convertTools(req.Tools),
	}

	if req.Temperature != nil {
		deepseekReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		deepseekReq.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		deepseekReq.TopP = *req.TopP
	}

	return deepseekReq
}

// convertStreamRequest converts our llm.ChatRequest to DeepSeek streaming format
func (c *Client) convertStreamRequest(req llm.ChatRequest) deepseek.StreamChatCompletionRequest {
	deepseekReq := deepseek.StreamChatCompletionRequest{
		Model:    c.model,
		Messages: c.convertMessages(req.Messages),
		Tools:    c.convertTools(req.Tools),
		Stream:   true,
	}

	if req.Temperature != nil {
		deepseekReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		deepseekReq.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		deepseekReq.TopP = *req.TopP
	}

	return deepseekReq
}

// convertMessages converts our messages to DeepSeek format
func (c *Client) convertMessages(messages []llm.Message) []deepseek.ChatCompletionMessage {
	converted := make([]deepseek.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		converted[i] = deepseek.ChatCompletionMessage{
			Role:       c.convertRoleToDeepSeek(msg.Role),
			Content:    msg.Content,
			ToolCalls:  c.convertToolCallsToDeepSeek(msg.ToolCalls),
			ToolCallID: msg.ToolCallID,
		}
	}
	return converted
}

// convertTools converts our tool declarations to DeepSeek format
func (c *Client) convertTools(tools []llm.Tool) []deepseek.Tool {
	if len(tools) == 0 {
		return nil
	}

	converted := make([]deepseek.Tool, len(tools))
	for i, tool := range tools {
		var params *deepseek.FunctionParameters
		if tool.Function.Parameters != nil {
			params = c.convertToolParameters(tool.Function.Parameters)
		}

		converted[i] = deepseek.Tool{
			Type: tool.Type,
			Function: deepseek.Function{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  params,
			},
		}
	}
	return converted
}

// convertRoleToDeepSeek converts our llm.MessageRole to DeepSeek format
func (c *Client) convertRoleToDeepSeek(role llm.MessageRole) string {
	switch role {
	case llm.RoleSystem:
		return "system"
	case llm.RoleUser:
		return "user"
	case llm.RoleAssistant:
		return "assistant"
	case llm.RoleTool:
		return "tool"
	default:
		return "user" // Default fallback
	}
}

// convertToolCallsToDeepSeek converts our ToolCalls to DeepSeek format
func (c *Client) convertToolCallsToDeepSeek(toolCalls []llm.ToolCall) []deepseek.ToolCall {
	if len(toolCalls) == 0 {
		return nil
	}

	converted := make([]deepseek.ToolCall, len(toolCalls))
	for i, tc := range toolCalls {
		converted[i] = deepseek.ToolCall{
			Index: i, // DeepSeek requires an index
			ID:    tc.ID,
			Type:  tc.Type,
			Function: deepseek.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		}
	}
	return converted
}

// convertResponse converts DeepSeek response to our format
func (c *Client) convertResponse(resp deepseek.ChatCompletionResponse) *llm.ChatResponse {
	choices := make([]llm.Choice, len(resp.Choices))
	for i, choice := range resp.Choices {
		choices[i] = llm.Choice{
			Index: choice.Index,
			Message: llm.Message{
				Role:      c.convertRoleFromDeepSeek(choice.Message.Role),
				Content:   choice.Message.Content,
				ToolCalls: c.convertToolCallsFromDeepSeek(choice.Message.ToolCalls),
			},
			FinishReason: choice.FinishReason,
		}
	}

	return &llm.ChatResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Choices: choices,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
}

// convertRoleFromDeepSeek converts DeepSeek role to our llm.MessageRole
func (c *Client) convertRoleFromDeepSeek(role string) llm.MessageRole {
	switch role {
	case "system":
		return llm.RoleSystem
	case "user":
		return llm.RoleUser
	case "assistant":
		return llm.RoleAssistant
	case "tool":
		return llm.RoleTool
	default:
		return llm.RoleAssistant // Default fallback
	}
}

// convertToolCallsFromDeepSeek converts DeepSeek ToolCalls to our format
func (c *Client) convertToolCallsFromDeepSeek(toolCalls []deepseek.ToolCall) []llm.ToolCall {
	if len(toolCalls) == 0 {
		return nil
	}

	converted := make([]llm.ToolCall, len(toolCalls))
	for i, tc := range toolCalls {
		converted[i] = llm.ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: llm.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		}
	}
	return converted
}

// convertStreamEvent converts DeepSeek streaming response to llm.StreamEvent
func (c *Client) convertStreamEvent(resp *deepseek.StreamChatCompletionResponse) *llm.StreamEvent {
	if resp == nil || len(resp.Choices) == 0 {
		return nil
	}

	choice := resp.Choices[0]

	if choice.FinishReason != "" {
		event := llm.NewDoneEvent(choice.Index, choice.FinishReason)
		return &event
	}

	delta := &llm.MessageDelta{Content: choice.Delta.Content}
	for _, tc := range choice.Delta.ToolCalls {
		delta.ToolCalls = append(delta.ToolCalls, llm.ToolCallDelta{
			Index: tc.Index,
			ID:    tc.ID,
			Type:  tc.Type,
			Function: &llm.ToolCallFunctionDelta{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	if delta.Content == "" && len(delta.ToolCalls) == 0 {
		return nil
	}

	event := llm.NewDeltaEvent(choice.Index, delta)
	return &event
}

// convertError converts DeepSeek error to our standardized error format
func (c *Client) convertError(err error) *llm.Error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()
	lower := strings.ToLower(errorMsg)

	code := "api_error"
	errorType := "api_error"
	statusCode := 0

	switch {
	case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") || strings.Contains(lower, "authentication"):
		code = "authentication_error"
		errorType = "authentication_error"
		statusCode = 401
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests"):
		code = "rate_limit_error"
		errorType = "rate_limit_error"
		statusCode = 429
	case strings.Contains(lower, "model") && strings.Contains(lower, "not found"):
		code = "model_not_found"
		errorType = "model_error"
		statusCode = 404
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		code = "timeout_error"
		errorType = "network_error"
		statusCode = 408
	case strings.Contains(lower, "validation") || strings.Contains(lower, "invalid"):
		code = "validation_error"
		errorType = "validation_error"
		statusCode = 400
	}

	return &llm.Error{
		Code:       code,
		Message:    errorMsg,
		Type:       errorType,
		StatusCode: statusCode,
	}
}

// convertToolParameters converts interface{} parameters to DeepSeek FunctionParameters
func (c *Client) convertToolParameters(params interface{}) *deepseek.FunctionParameters {
	if params == nil {
		return nil
	}

	paramMap, ok := params.(map[string]interface{})
	if !ok {
		return &deepseek.FunctionParameters{
			Type: "object",
		}
	}

	result := &deepseek.FunctionParameters{Type: "object"}

	if typeVal, exists := paramMap["type"]; exists {
		if typeStr, ok := typeVal.(string); ok {
			result.Type = typeStr
		}
	}

	if propsVal, exists := paramMap["properties"]; exists {
		if propsMap, ok := propsVal.(map[string]interface{}); ok {
			result.Properties = propsMap
		}
	}

	if reqVal, exists := paramMap["required"]; exists {
		if reqSlice, ok := reqVal.([]interface{}); ok {
			required := make([]string, 0, len(reqSlice))
			for _, item := range reqSlice {
				if str, ok := item.(string); ok {
					required = append(required, str)
				}
			}
			result.Required = required
		} else if reqStrSlice, ok := reqVal.([]string); ok {
			result.Required = reqStrSlice
		}
	}

	return result
}
