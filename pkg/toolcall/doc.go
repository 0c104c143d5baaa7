// Package toolcall recovers structured tool calls from free-form LLM text.
//
// Many models emit tool invocations inside their text output instead of (or in
// addition to) the provider's native tool-call channel. This package detects
// two textual conventions and turns them into typed calls:
//
//   - Fenced JSON blocks tagged tool_call, tool_code or json whose payload
//     carries a "tool" key
//   - Functional markup of the form <tool>name(key=value, ...)</tool>
//
// The main components include:
//
//   - Parser: single-shot extraction from a complete response
//   - StreamParser: incremental extraction from streamed chunks, with
//     duplicate suppression and bounded buffering
//   - FormatMatcher: span detection for both textual conventions
//   - ArgumentCoercer: key=value argument decoding with JSON literal coercion
//   - Statistics: counters for parsed, rejected and malformed candidates
//
// All input is treated as untrusted model output: payload size limits, a
// per-response call ceiling and an optional tool-name allowlist bound the
// work done on hostile or malformed text.
package toolcall
