package toolcall

// Statistics tracks extraction outcomes for a parser instance. Counters are
// monotonic until ResetStats is called; duplicate suppression in the
// streaming parser never rewinds them.
type Statistics struct {
	// TotalParsed counts calls successfully extracted and accepted.
	TotalParsed int64 `json:"total_parsed"`

	// RejectedSize counts payloads dropped for exceeding the size limit.
	RejectedSize int64 `json:"rejected_size"`

	// RejectedUnauthorized counts calls naming tools outside the allowlist.
	RejectedUnauthorized int64 `json:"rejected_unauthorized"`

	// ParseErrors counts candidates that matched a textual form but could
	// not be decoded into a call.
	ParseErrors int64 `json:"parse_errors"`
}
