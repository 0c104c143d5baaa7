package toolcall

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// Fenced blocks tagged tool_call, tool_code or json. The tag must be
	// followed by a newline and the closing fence must start a line of its
	// own, optionally indented. The payload is everything in between.
	jsonBlockRegex = regexp.MustCompile("(?s)```(?:tool_call|tool_code|json)\n(.*?)\n[ \t]*```")

	// Functional markup: <tool>name(arguments)</tool>. The argument text is
	// captured raw and handed to ArgumentCoercer.
	functionalRegex = regexp.MustCompile(`(?s)<tool>\s*([a-zA-Z_][a-zA-Z0-9_.-]*)\s*\((.*?)\)\s*</tool>`)
)

// JSONBlockMatch is a fenced candidate located in the scanned text.
// Start and End are byte offsets of the whole block including its fences.
type JSONBlockMatch struct {
	Start   int
	End     int
	Payload string
}

// FunctionalMatch is a <tool>...</tool> candidate located in the scanned
// text. Start and End are byte offsets of the whole span including the tags.
type FunctionalMatch struct {
	Start int
	End   int
	Name  string
	Args  string
}

// FormatMatcher locates tool-call candidates in model text. It only finds
// complete spans; a partially streamed block never matches, which is what
// lets the streaming parser rescan a growing buffer safely.
type FormatMatcher struct{}

// FindJSONBlocks returns every fenced JSON candidate in order of appearance.
func (FormatMatcher) FindJSONBlocks(text string) []JSONBlockMatch {
	idx := jsonBlockRegex.FindAllStringSubmatchIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	matches := make([]JSONBlockMatch, 0, len(idx))
	for _, m := range idx {
		matches = append(matches, JSONBlockMatch{
			Start:   m[0],
			End:     m[1],
			Payload: text[m[2]:m[3]],
		})
	}
	return matches
}

// FindFunctionalCalls returns every <tool>...</tool> candidate in order of
// appearance.
func (FormatMatcher) FindFunctionalCalls(text string) []FunctionalMatch {
	idx := functionalRegex.FindAllStringSubmatchIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	matches := make([]FunctionalMatch, 0, len(idx))
	for _, m := range idx {
		matches = append(matches, FunctionalMatch{
			Start: m[0],
			End:   m[1],
			Name:  text[m[2]:m[3]],
			Args:  text[m[4]:m[5]],
		})
	}
	return matches
}

// Strip removes every tool-call span from text, leaving the surrounding
// prose. Useful when a response mixes commentary with embedded calls and the
// calls have already been extracted.
func (m FormatMatcher) Strip(text string) string {
	type span struct{ start, end int }
	var spans []span
	for _, b := range m.FindJSONBlocks(text) {
		spans = append(spans, span{b.Start, b.End})
	}
	for _, f := range m.FindFunctionalCalls(text) {
		spans = append(spans, span{f.Start, f.End})
	}
	if len(spans) == 0 {
		return text
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var sb strings.Builder
	last := 0
	for _, s := range spans {
		if s.start < last {
			continue
		}
		sb.WriteString(text[last:s.start])
		last = s.end
	}
	sb.WriteString(text[last:])
	return strings.TrimSpace(sb.String())
}
