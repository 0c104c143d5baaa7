package toolcall

import "sort"

// StreamParser extracts tool calls incrementally from streamed chunks. Text
// accumulates in a bounded buffer that is rescanned on every chunk; because
// the matcher only finds complete spans, a call split across chunks is
// emitted exactly once, as soon as its closing delimiter arrives. A ledger
// of emitted calls suppresses duplicates from overlapping scans. IDs restart
// at call_0 for every matched span, so the ledger also suppresses a
// byte-identical repeat of an earlier call later in the same stream; call
// Reset between streams to clear it.
//
// Like Parser, a StreamParser is single-threaded; feed it from the goroutine
// that owns the stream.
type StreamParser struct {
	parser    *Parser
	buffer    string
	completed []ToolCall
}

// NewStreamParser creates a streaming parser with the given options.
func NewStreamParser(opts ...Option) *StreamParser {
	return &StreamParser{parser: NewParser(opts...)}
}

// ProcessChunk appends chunk to the buffer and returns calls newly completed
// by it, in order of appearance. A chunk that completes nothing returns nil.
// If the buffer would exceed its size cap the whole buffer is discarded and
// the stream keeps going with whatever arrives next.
func (s *StreamParser) ProcessChunk(chunk string) []ToolCall {
	s.buffer += chunk
	if len(s.buffer) > s.parser.cfg.maxBufferSize {
		if s.parser.cfg.logErrors {
			s.parser.cfg.logger.Errorf("stream buffer overflow (%d bytes, limit %d), discarding buffered text",
				len(s.buffer), s.parser.cfg.maxBufferSize)
		}
		s.buffer = ""
		return nil
	}

	type span struct{ start, end int }
	var spans []span
	for _, m := range s.parser.matcher.FindJSONBlocks(s.buffer) {
		spans = append(spans, span{m.Start, m.End})
	}
	for _, m := range s.parser.matcher.FindFunctionalCalls(s.buffer) {
		spans = append(spans, span{m.Start, m.End})
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var newCalls []ToolCall
	trim := 0
	for _, sp := range spans {
		newCalls = append(newCalls, s.record(s.parser.ParseToolCalls(s.buffer[sp.start:sp.end]))...)
		if sp.end > trim {
			trim = sp.end
		}
	}
	// Matched spans are consumed even when every call in them was a
	// duplicate or a rejection.
	s.buffer = s.buffer[trim:]
	return newCalls
}

// Flush parses whatever remains in the buffer as if the stream had ended,
// returns any final calls, and empties the buffer. Call it when the stream
// completes to recover a trailing call the chunk cadence never closed.
func (s *StreamParser) Flush() []ToolCall {
	if s.buffer == "" {
		return nil
	}
	calls := s.record(s.parser.ParseToolCalls(s.buffer))
	s.buffer = ""
	return calls
}

// Reset clears the buffer, the duplicate ledger and the statistics, making
// the parser ready for an unrelated stream.
func (s *StreamParser) Reset() {
	s.buffer = ""
	s.completed = nil
	s.parser.ResetStats()
}

// Stats returns a snapshot of the underlying parser's counters.
func (s *StreamParser) Stats() Statistics {
	return s.parser.Stats()
}

// ResetStats zeroes the counters without touching the buffer or ledger.
func (s *StreamParser) ResetStats() {
	s.parser.ResetStats()
}

// BufferLen reports the number of bytes currently held for rescanning.
func (s *StreamParser) BufferLen() int {
	return len(s.buffer)
}

// record filters calls already emitted this stream and adds the rest to the
// ledger.
func (s *StreamParser) record(calls []ToolCall) []ToolCall {
	var fresh []ToolCall
	for _, call := range calls {
		if s.seen(call) {
			continue
		}
		s.completed = append(s.completed, call)
		fresh = append(fresh, call)
	}
	return fresh
}

func (s *StreamParser) seen(call ToolCall) bool {
	for _, prev := range s.completed {
		if prev.Equal(call) {
			return true
		}
	}
	return false
}
