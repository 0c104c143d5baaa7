package openrouter

import (
	"context"
	"errors"
	"strings"
	"time"

	openrouter "github.com/revrost/go-openrouter"

	"github.com/inercia/go-toolcall/pkg/llm"
)

// Client implements the llm.Client interface for OpenRouter
type Client struct {
	client   *openrouter.Client
	model    string
	provider string
	config   llm.ClientConfig

	// Health check caching
	lastHealthCheck  *time.Time
	lastHealthStatus *bool
}

// NewClient creates a new OpenRouter client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for OpenRouter",
			Type:    "authentication_error",
		}
	}

	clientConfig := openrouter.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	// OpenRouter-specific attribution headers
	if config.Extra != nil {
		if siteURL, ok := config.Extra["site_url"]; ok {
			clientConfig.HttpReferer = siteURL
		}
		if appName, ok := config.Extra["app_name"]; ok {
			clientConfig.XTitle = appName
		}
	}

	return &Client{
		client:   openrouter.NewClientWithConfig(*clientConfig),
		model:    config.Model,
		provider: "openrouter",
		config:   config,
	}, nil
}

// ChatCompletion performs a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	openrouterReq := c.convertRequest(req)

	resp, err := c.client.CreateChatCompletion(ctx, openrouterReq)
	if err != nil {
		return nil, c.convertError(err)
	}

	return c.convertResponse(resp), nil
}

// StreamChatCompletion performs a streaming chat completion request
func (c *Client) StreamChatCompletion(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	openrouterReq := c.convertRequest(req)
	openrouterReq.Stream = true

	stream, err := c.client.CreateChatCompletionStream(ctx, openrouterReq)
	if err != nil {
		return nil, c.convertError(err)
	}

	ch := make(chan llm.StreamEvent, 10)

	go func() {
		defer close(ch)
		defer stream.Close()

		for {
			response, err := stream.Recv()
			if err != nil {
				if err.Error() == "EOF" {
					ch <- llm.NewDoneEvent(0, llm.FinishReasonStop)
					return
				}
				ch <- llm.NewErrorEvent(c.convertError(err))
				return
			}

			if streamEvent := c.convertStreamResponse(response); streamEvent != nil {
				ch <- *streamEvent
			}
		}
	}()

	return ch, nil
}

// GetRemote returns information about the remote client
func (c *Client) GetRemote() llm.ClientRemoteInfo {
	info := llm.ClientRemoteInfo{
		Name: "openrouter",
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

// performHealthCheck performs a simple health check on the OpenRouter API
func (c *Client) performHealthCheck() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.client.ListModels(ctx)
	return err == nil
}

// GetModelInfo returns information about the model
func (c *Client) GetModelInfo() llm.ModelInfo {
	// Capabilities vary by routed model; assume a capable default
	return llm.ModelInfo{
		Name:              c.model,
		Provider:          c.provider,
		MaxTokens:         128000,
		SupportsTools:     true,
		SupportsStreaming: true,
	}
}

// Close cleans up resources
func (c *Client) Close() error {
	// The go-openrouter client manages its own HTTP client internally and
	// doesn't expose a Close method
	c.client = nil
	return nil
}

// ListModels returns the model identifiers currently available on OpenRouter
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, c.convertError(err)
	}

	ids := make([]string, 0, len(resp))
	for _, model := range resp {
		ids = append(ids, model.ID)
	}
	return ids, nil
}

// convertRequest converts our llm.ChatRequest to OpenRouter format
func (c *Client) convertRequest(req llm.ChatRequest) openrouter.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	openrouterReq := openrouter.ChatCompletionRequest{
		Model:    model,
		Messages: make([]openrouter.ChatCompletionMessage, 0, len(req.Messages)),
		Stream:   req.Stream,
	}

	if req.Temperature != nil {
		openrouterReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		openrouterReq.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		openrouterReq.TopP = *req.TopP
	}

	for _, msg := range req.Messages {
		openrouterReq.Messages = append(openrouterReq.Messages, c.convertMessage(msg))
	}

	for _, tool := range req.Tools {
		openrouterReq.Tools = append(openrouterReq.Tools, openrouter.Tool{
			Type: openrouter.ToolType(tool.Type),
			Function: &openrouter.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}

	return openrouterReq
}

// convertMessage converts our Message to OpenRouter format
func (c *Client) convertMessage(msg llm.Message) openrouter.ChatCompletionMessage {
	openrouterMsg := openrouter.ChatCompletionMessage{
		Role:    string(msg.Role),
		Content: openrouter.Content{Text: msg.Content},
	}

	for _, tc := range msg.ToolCalls {
		openrouterMsg.ToolCalls = append(openrouterMsg.ToolCalls, openrouter.ToolCall{
			ID:   tc.ID,
			Type: openrouter.ToolType(tc.Type),
			Function: openrouter.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	if msg.ToolCallID != "" {
		openrouterMsg.ToolCallID = msg.ToolCallID
	}

	return openrouterMsg
}

// convertResponse converts OpenRouter response to our format
func (c *Client) convertResponse(resp openrouter.ChatCompletionResponse) *llm.ChatResponse {
	response := &llm.ChatResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Choices: make([]llm.Choice, 0, len(resp.Choices)),
	}

	if resp.Usage != nil {
		response.Usage = llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	for _, choice := range resp.Choices {
		ourChoice := llm.Choice{
			Index:        choice.Index,
			FinishReason: string(choice.FinishReason),
			Message: llm.Message{
				Role:    llm.MessageRole(choice.Message.Role),
				Content: choice.Message.Content.Text,
			},
		}

		for _, tc := range choice.Message.ToolCalls {
			ourChoice.Message.ToolCalls = append(ourChoice.Message.ToolCalls, llm.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				Function: llm.ToolCallFunction{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}

		response.Choices = append(response.Choices, ourChoice)
	}

	return response
}

// convertStreamResponse converts OpenRouter stream response to our llm.StreamEvent
func (c *Client) convertStreamResponse(resp openrouter.ChatCompletionStreamResponse) *llm.StreamEvent {
	if len(resp.Choices) == 0 {
		return nil
	}

	choice := resp.Choices[0]

	if choice.FinishReason != "" {
		event := llm.NewDoneEvent(choice.Index, string(choice.FinishReason))
		return &event
	}

	delta := &llm.MessageDelta{Content: choice.Delta.Content}
	for _, tc := range choice.Delta.ToolCalls {
		index := 0
		if tc.Index != nil {
			index = *tc.Index
		}
		delta.ToolCalls = append(delta.ToolCalls, llm.ToolCallDelta{
			Index: index,
			ID:    tc.ID,
			Type:  string(tc.Type),
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

// convertError converts OpenRouter errors to our standardized Error format
func (c *Client) convertError(err error) *llm.Error {
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*openrouter.APIError); ok {
		return convertAPIError(apiErr)
	}
	if reqErr, ok := err.(*openrouter.RequestError); ok {
		return convertRequestError(reqErr)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		if converted := c.convertError(unwrapped); converted != nil {
			return converted
		}
	}

	if converted := convertCommonError(err); converted != nil {
		return converted
	}

	return &llm.Error{
		Code:    "openrouter_error",
		Message: err.Error(),
		Type:    "api_error",
	}
}

// convertAPIError converts OpenRouter APIError to our Error format
func convertAPIError(apiErr *openrouter.APIError) *llm.Error {
	errorType, errorCode := classifyStatus(apiErr.HTTPStatusCode)

	if apiErr.Code != nil {
		if codeStr, ok := apiErr.Code.(string); ok && codeStr != "" {
			errorCode = codeStr
		}
	}

	message := apiErr.Message
	messageLower := strings.ToLower(message)

	if strings.Contains(messageLower, "api key") || strings.Contains(messageLower, "unauthorized") {
		errorType = "authentication_error"
		errorCode = "invalid_api_key"
	}
	if strings.Contains(messageLower, "rate limit") || strings.Contains(messageLower, "too many requests") {
		errorType = "rate_limit_error"
		errorCode = "rate_limit_exceeded"
	}
	if strings.Contains(messageLower, "model") &&
		(strings.Contains(messageLower, "not found") || strings.Contains(messageLower, "does not exist")) {
		errorType = "model_error"
		errorCode = "model_not_found"
	}

	return &llm.Error{
		Code:       errorCode,
		Message:    message,
		Type:       errorType,
		StatusCode: apiErr.HTTPStatusCode,
	}
}

// convertRequestError converts OpenRouter RequestError to our Error format
func convertRequestError(reqErr *openrouter.RequestError) *llm.Error {
	errorType, errorCode := classifyStatus(reqErr.HTTPStatusCode)
	return &llm.Error{
		Code:       errorCode,
		Message:    reqErr.Error(),
		Type:       errorType,
		StatusCode: reqErr.HTTPStatusCode,
	}
}

// classifyStatus maps an HTTP status to error type and code
func classifyStatus(status int) (errorType, errorCode string) {
	switch status {
	case 400:
		return "validation_error", "bad_request"
	case 401:
		return "authentication_error", "invalid_api_key"
	case 403:
		return "authentication_error", "insufficient_permissions"
	case 404:
		return "model_error", "model_not_found"
	case 429:
		return "rate_limit_error", "rate_limit_exceeded"
	case 500, 502, 503, 504:
		return "api_error", "server_error"
	}
	if status >= 400 && status < 500 {
		return "validation_error", "client_error"
	}
	if status >= 500 {
		return "api_error", "server_error"
	}
	return "api_error", "openrouter_api_error"
}

// convertCommonError handles common Go errors that might occur during API calls
func convertCommonError(err error) *llm.Error {
	errMsg := err.Error()
	errMsgLower := strings.ToLower(errMsg)

	switch {
	case strings.Contains(errMsgLower, "connection refused") ||
		strings.Contains(errMsgLower, "no such host") ||
		strings.Contains(errMsgLower, "network is unreachable"):
		return &llm.Error{Code: "connection_error", Message: errMsg, Type: "network_error"}

	case strings.Contains(errMsgLower, "timeout") ||
		strings.Contains(errMsgLower, "deadline exceeded"):
		return &llm.Error{Code: "timeout_error", Message: errMsg, Type: "network_error"}

	case strings.Contains(errMsgLower, "context canceled"):
		return &llm.Error{Code: "request_canceled", Message: errMsg, Type: "network_error"}

	case strings.Contains(errMsgLower, "tls") || strings.Contains(errMsgLower, "certificate"):
		return &llm.Error{Code: "tls_error", Message: errMsg, Type: "network_error"}
	}

	return nil
}
