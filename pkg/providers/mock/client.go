package mock

import (
	"context"
	"sync"
	"time"

	"github.com/inercia/go-toolcall/pkg/llm"
)

// Client implements the llm.Client interface with scripted responses for
// testing. Responses are consumed in order; the last one repeats once the
// script runs out. Streaming splits response text into fixed-size chunks,
// which makes it easy to exercise code that reassembles content across
// deltas.
type Client struct {
	mu sync.Mutex

	model     string
	provider  string
	responses []llm.ChatResponse
	err       *llm.Error
	chunkSize int
	modelInfo *llm.ModelInfo

	requests []llm.ChatRequest
	closed   bool
}

// NewClient creates a mock client for the given model
func NewClient(model string) *Client {
	return &Client{
		model:     model,
		provider:  "mock",
		chunkSize: 16,
	}
}

// WithTextResponse queues a plain assistant text response
func (c *Client) WithTextResponse(text string) *Client {
	return c.WithResponse(llm.ChatResponse{
		Model: c.model,
		Choices: []llm.Choice{{
			Message:      llm.NewTextMessage(llm.RoleAssistant, text),
			FinishReason: llm.FinishReasonStop,
		}},
	})
}

// WithResponse queues a full response
func (c *Client) WithResponse(resp llm.ChatResponse) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, resp)
	return c
}

// WithError makes every call fail with err
func (c *Client) WithError(err *llm.Error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	return c
}

// WithChunkSize sets the content chunk size used when streaming
func (c *Client) WithChunkSize(n int) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > 0 {
		c.chunkSize = n
	}
	return c
}

// WithModelInfo overrides the reported model capabilities
func (c *Client) WithModelInfo(info llm.ModelInfo) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modelInfo = &info
	return c
}

// ChatCompletion returns the next scripted response
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &llm.Error{Code: "context_error", Message: err.Error(), Type: "canceled"}
	}

	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}

	resp := c.nextResponse()
	return &resp, nil
}

// StreamChatCompletion streams the next scripted response as content chunks
// followed by a done event
func (c *Client) StreamChatCompletion(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	resp := c.nextResponse()
	chunkSize := c.chunkSize
	c.mu.Unlock()

	ch := make(chan llm.StreamEvent, 10)

	go func() {
		defer close(ch)

		for _, choice := range resp.Choices {
			content := choice.Message.Content
			for start := 0; start < len(content); start += chunkSize {
				end := start + chunkSize
				if end > len(content) {
					end = len(content)
				}
				select {
				case ch <- llm.NewDeltaEvent(choice.Index, &llm.MessageDelta{Content: content[start:end]}):
				case <-ctx.Done():
					return
				}
			}

			finishReason := choice.FinishReason
			if finishReason == "" {
				finishReason = llm.FinishReasonStop
			}
			select {
			case ch <- llm.NewDoneEvent(choice.Index, finishReason):
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// GetRemote returns information about the remote client
func (c *Client) GetRemote() llm.ClientRemoteInfo {
	healthy := true
	now := time.Now()
	return llm.ClientRemoteInfo{
		Name: c.provider,
		Status: &llm.ClientRemoteInfoStatus{
			Healthy:     &healthy,
			LastChecked: &now,
		},
	}
}

// GetModelInfo returns information about the model being used
func (c *Client) GetModelInfo() llm.ModelInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modelInfo != nil {
		return *c.modelInfo
	}
	return llm.ModelInfo{
		Name:              c.model,
		Provider:          c.provider,
		MaxTokens:         4096,
		SupportsTools:     false,
		SupportsStreaming: true,
	}
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Requests returns a copy of the requests seen so far
func (c *Client) Requests() []llm.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.ChatRequest(nil), c.requests...)
}

// CallCount returns the number of completion calls made
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// Closed reports whether Close was called
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// nextResponse pops the next scripted response, repeating the last one when
// the script is exhausted. Callers must hold c.mu.
func (c *Client) nextResponse() llm.ChatResponse {
	if len(c.responses) == 0 {
		return llm.ChatResponse{
			Model: c.model,
			Choices: []llm.Choice{{
				Message:      llm.NewTextMessage(llm.RoleAssistant, "mock response"),
				FinishReason: llm.FinishReasonStop,
			}},
		}
	}
	resp := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return resp
}
