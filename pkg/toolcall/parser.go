package toolcall

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parser extracts tool calls from a complete response text. A Parser keeps
// running statistics across calls to ParseToolCalls; it is not safe for
// concurrent use, create one per goroutine.
type Parser struct {
	cfg       config
	stats     Statistics
	matcher   FormatMatcher
	coercer   ArgumentCoercer
	validator *CallValidator
}

// NewParser creates a single-shot parser with the given options.
func NewParser(opts ...Option) *Parser {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &Parser{cfg: cfg}
	p.validator = newCallValidator(&p.cfg, &p.stats)
	return p
}

// ParseToolCalls scans text for embedded tool calls and returns every
// accepted one in order: fenced JSON blocks by position, then functional
// calls by position. Rejections and decode failures are counted and
// optionally logged but never abort the scan; malformed input yields
// whatever valid calls surround it. Returns nil when nothing matches.
func (p *Parser) ParseToolCalls(text string) (calls []ToolCall) {
	defer func() {
		if r := recover(); r != nil {
			p.stats.ParseErrors++
			if p.cfg.logErrors {
				p.cfg.logger.Errorf("panic while extracting tool calls: %v", r)
			}
		}
	}()

	if text == "" {
		return nil
	}

	truncated := false
	for _, m := range p.matcher.FindJSONBlocks(text) {
		if len(calls) >= p.cfg.maxToolCalls {
			truncated = true
			break
		}
		if call, ok := p.decodeJSONBlock(m.Payload, len(calls)); ok {
			calls = append(calls, call)
		}
	}
	if !truncated {
		for _, m := range p.matcher.FindFunctionalCalls(text) {
			if len(calls) >= p.cfg.maxToolCalls {
				truncated = true
				break
			}
			if call, ok := p.decodeFunctionalCall(m, len(calls)); ok {
				calls = append(calls, call)
			}
		}
	}
	if truncated && p.cfg.logErrors {
		p.cfg.logger.Warnf("truncated tool call extraction at %d calls", p.cfg.maxToolCalls)
	}
	return calls
}

// Stats returns a snapshot of the parser's counters.
func (p *Parser) Stats() Statistics {
	return p.stats
}

// ResetStats zeroes all counters.
func (p *Parser) ResetStats() {
	p.stats = Statistics{}
}

func (p *Parser) decodeJSONBlock(payload string, index int) (ToolCall, bool) {
	if !p.validator.ValidatePayloadSize(payload) {
		return ToolCall{}, false
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		p.stats.ParseErrors++
		if p.cfg.logErrors {
			p.cfg.logger.Warnf("invalid tool call JSON: %v (payload: %s)", err, preview(payload))
		}
		return ToolCall{}, false
	}

	name, _ := decoded["tool"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		p.stats.ParseErrors++
		if p.cfg.logErrors {
			p.cfg.logger.Warnf("tool call JSON without a tool name (payload: %s)", preview(payload))
		}
		return ToolCall{}, false
	}
	if !p.validator.ValidateName(name) {
		return ToolCall{}, false
	}

	params, _ := decoded["parameters"].(map[string]any)
	if params == nil {
		params = make(map[string]any)
	}

	id, _ := decoded["id"].(string)
	if id == "" {
		id = fmt.Sprintf("call_%d", index)
	}

	p.stats.TotalParsed++
	return ToolCall{ID: id, Name: name, Parameters: params}, true
}

func (p *Parser) decodeFunctionalCall(m FunctionalMatch, index int) (ToolCall, bool) {
	name := strings.TrimSpace(m.Name)
	if !p.validator.ValidateName(name) {
		return ToolCall{}, false
	}

	p.stats.TotalParsed++
	return ToolCall{
		ID:         fmt.Sprintf("call_%d", index),
		Name:       name,
		Parameters: p.coercer.Coerce(m.Args),
	}, true
}

// preview bounds payload excerpts in log output.
func preview(s string) string {
	const max = 120
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
