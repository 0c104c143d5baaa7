package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/inercia/go-toolcall/pkg/llm"
)

// safeIntToInt32 safely converts int to int32
func safeIntToInt32(val int) int32 {
	if val > 2147483647 {
		return 2147483647
	}
	if val < -2147483648 {
		return -2147483648
	}
	return int32(val)
}

// modelCapabilities defines the capabilities for a model pattern
type modelCapabilities struct {
	pattern   *regexp.Regexp
	maxTokens int
}

// modelCapabilitiesList defines context sizes for different Gemini models.
// Models are matched in order, first match wins.
var modelCapabilitiesList = []modelCapabilities{
	{pattern: regexp.MustCompile(`gemini-1\.5-pro`), maxTokens: 2000000},
	{pattern: regexp.MustCompile(`gemini-1\.5-flash`), maxTokens: 1000000},
	{pattern: regexp.MustCompile(`gemini-2\.`), maxTokens: 1000000},
}

// Client implements the llm.Client interface for Google Gemini. Tool
// declarations are surfaced to the model through the prompt rather than the
// native function-calling API; Gemini answers with fenced tool_code blocks,
// which llm.WithTextToolCalls recovers into regular tool calls.
type Client struct {
	model    string
	provider string
	genai    *genai.Client

	// Health check caching
	lastHealthCheck  *time.Time
	lastHealthStatus *bool
}

// NewClient creates a new Gemini client using the official Google Generative AI library.
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{Code: "missing_api_key", Message: "API key is required for Gemini", Type: "authentication_error"}
	}
	if config.Model == "" {
		config.Model = llm.DefaultGeminiModel
	}

	genaiConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.Timeout > 0 {
		genaiConfig.HTTPOptions.Timeout = &config.Timeout
	}

	genaiClient, err := genai.NewClient(context.Background(), genaiConfig)
	if err != nil {
		return nil, &llm.Error{
			Code:    "client_creation_error",
			Message: fmt.Sprintf("Failed to create genai client: %v", err),
			Type:    "internal_error",
		}
	}

	return &Client{
		model:    config.Model,
		provider: "gemini",
		genai:    genaiClient,
	}, nil
}

// ChatCompletion performs a non-streaming content generation request.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	contents, err := c.convertMessages(req)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{}
	if req.Temperature != nil {
		config.Temperature = req.Temperature
	}
	if req.MaxTokens != nil {
		config.MaxOutputTokens = safeIntToInt32(*req.MaxTokens)
	}

	// Gemini doesn't support structured outputs natively, so we use prompt
	// engineering
	if req.ResponseFormat != nil {
		contents = c.addResponseFormatInstructions(contents, req.ResponseFormat)
	}

	chat, parts, err := c.createChat(ctx, config, contents)
	if err != nil {
		return nil, err
	}

	response, err := chat.SendMessage(ctx, parts...)
	if err != nil {
		return nil, c.convertError(err)
	}

	return c.convertResponse(response), nil
}

// StreamChatCompletion performs a streaming content generation request.
func (c *Client) StreamChatCompletion(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	contents, err := c.convertMessages(req)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{}
	if req.Temperature != nil {
		config.Temperature = req.Temperature
	}
	if req.MaxTokens != nil {
		config.MaxOutputTokens = safeIntToInt32(*req.MaxTokens)
	}

	chat, parts, err := c.createChat(ctx, config, contents)
	if err != nil {
		return nil, err
	}

	ch := make(chan llm.StreamEvent)

	go func() {
		defer close(ch)

		for response, err := range chat.SendMessageStream(ctx, parts...) {
			if err != nil {
				ch <- llm.NewErrorEvent(c.convertError(err))
				return
			}

			if len(response.Candidates) > 0 && len(response.Candidates[0].Content.Parts) > 0 {
				text := response.Candidates[0].Content.Parts[0].Text
				if text != "" {
					ch <- llm.NewDeltaEvent(0, &llm.MessageDelta{Content: text})
				}
			}
		}

		ch <- llm.NewDoneEvent(0, llm.FinishReasonStop)
	}()

	return ch, nil
}

// createChat builds a chat session where all but the last message form the
// history, returning the last message's parts as the pending input
func (c *Client) createChat(ctx context.Context, config *genai.GenerateContentConfig, contents []*genai.Content) (*genai.Chat, []genai.Part, error) {
	var history []*genai.Content
	if len(contents) > 1 {
		history = contents[:len(contents)-1]
	}

	chat, err := c.genai.Chats.Create(ctx, c.model, config, history)
	if err != nil {
		return nil, nil, c.convertError(err)
	}

	var parts []genai.Part
	if len(contents) > 0 {
		lastContent := contents[len(contents)-1]
		parts = make([]genai.Part, len(lastContent.Parts))
		for i, part := range lastContent.Parts {
			parts[i] = *part
		}
	}

	return chat, parts, nil
}

// convertMessages converts our message list to genai Content format. Tool
// declarations and tool results are folded into the text conversation since
// this client drives tools through text recovery.
func (c *Client) convertMessages(req llm.ChatRequest) ([]*genai.Content, error) {
	var contents []*genai.Content

	if instruction := toolInstruction(req.Tools); instruction != "" {
		contents = append(contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(instruction)},
		})
	}

	for _, msg := range req.Messages {
		role := genai.RoleUser
		text := msg.Content

		switch msg.Role {
		case llm.RoleAssistant:
			role = genai.RoleModel
		case llm.RoleSystem:
			// Gemini uses "user" for system-like instructions
			role = genai.RoleUser
		case llm.RoleTool:
			text = fmt.Sprintf("Result of tool call %s:\n%s", msg.ToolCallID, msg.Content)
		}

		if text == "" {
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(text)},
		})
	}

	if len(contents) == 0 {
		return nil, &llm.Error{Code: "invalid_request", Message: "No valid messages provided", Type: "validation_error", StatusCode: 400}
	}

	return contents, nil
}

// toolInstruction renders tool declarations as a prompt instructing the
// model to answer with fenced tool_call JSON blocks
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

// convertResponse converts genai response to our internal format
func (c *Client) convertResponse(resp *genai.GenerateContentResponse) *llm.ChatResponse {
	if len(resp.Candidates) == 0 {
		return &llm.ChatResponse{
			ID:      fmt.Sprintf("gemini-%s", time.Now().Format(time.RFC3339Nano)),
			Model:   c.model,
			Choices: []llm.Choice{},
		}
	}

	candidate := resp.Candidates[0]
	text := ""
	if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
		text = candidate.Content.Parts[0].Text
	}

	finishReason := llm.FinishReasonStop
	if candidate.FinishReason == genai.FinishReasonMaxTokens {
		finishReason = llm.FinishReasonLength
	} else if strings.Contains(string(candidate.FinishReason), "SAFETY") {
		finishReason = "content_filter"
	}

	return &llm.ChatResponse{
		ID:    fmt.Sprintf("gemini-%s", time.Now().Format(time.RFC3339Nano)),
		Model: c.model,
		Choices: []llm.Choice{{
			Index:        0,
			Message:      llm.NewTextMessage(llm.RoleAssistant, text),
			FinishReason: finishReason,
		}},
	}
}

// convertError converts genai errors to our internal error format
func (c *Client) convertError(err error) *llm.Error {
	if err == nil {
		return nil
	}

	if ourErr, ok := err.(*llm.Error); ok {
		return ourErr
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "API key") ||
		strings.Contains(errMsg, "authentication") ||
		strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "401") {
		return &llm.Error{
			Code:       "authentication_error",
			Message:    errMsg,
			Type:       "authentication_error",
			StatusCode: 401,
		}
	}

	if strings.Contains(errMsg, "rate limit") || strings.Contains(errMsg, "429") {
		return &llm.Error{
			Code:       "rate_limit_error",
			Message:    errMsg,
			Type:       "rate_limit_error",
			StatusCode: 429,
		}
	}

	if strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "403") {
		return &llm.Error{
			Code:       "quota_error",
			Message:    errMsg,
			Type:       "quota_error",
			StatusCode: 403,
		}
	}

	return &llm.Error{
		Code:    "api_error",
		Message: errMsg,
		Type:    "api_error",
	}
}

// addResponseFormatInstructions adds JSON formatting instructions when ResponseFormat is specified
func (c *Client) addResponseFormatInstructions(contents []*genai.Content, responseFormat *llm.ResponseFormat) []*genai.Content {
	if responseFormat == nil {
		return contents
	}

	var instruction string
	switch responseFormat.Type {
	case llm.ResponseFormatJSON:
		instruction = "Please respond only with valid JSON. Do not include any text before or after the JSON object."
	case llm.ResponseFormatJSONSchema:
		instruction = "Please respond only with valid JSON. Do not include any text before or after the JSON object."
		if responseFormat.JSONSchema != nil && responseFormat.JSONSchema.Schema != nil {
			if schemaBytes, err := json.Marshal(responseFormat.JSONSchema.Schema); err == nil {
				instruction = fmt.Sprintf("Please respond only with valid JSON that conforms to this schema: %s. Do not include any text before or after the JSON object.", string(schemaBytes))
			}
		}
	default:
		return contents
	}

	systemContent := &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{genai.NewPartFromText(instruction)},
	}

	return append([]*genai.Content{systemContent}, contents...)
}

// GetRemote returns information about the remote client
func (c *Client) GetRemote() llm.ClientRemoteInfo {
	info := llm.ClientRemoteInfo{
		Name: "gemini",
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

// performHealthCheck performs a simple health check on the Gemini API
func (c *Client) performHealthCheck() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: 1,
	}

	chat, err := c.genai.Chats.Create(ctx, c.model, config, nil)
	if err != nil {
		return false
	}

	_, err = chat.SendMessage(ctx, *genai.NewPartFromText("test"))
	return err == nil
}

// GetModelInfo returns information about the model being used
func (c *Client) GetModelInfo() llm.ModelInfo {
	maxTokens := 30720
	for _, caps := range modelCapabilitiesList {
		if caps.pattern.MatchString(c.model) {
			maxTokens = caps.maxTokens
			break
		}
	}

	return llm.ModelInfo{
		Name:      c.model,
		Provider:  c.provider,
		MaxTokens: maxTokens,
		// Tool calls flow through text recovery, not the native API
		SupportsTools:     false,
		SupportsStreaming: true,
	}
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	// The genai client doesn't provide a Close method
	return nil
}
