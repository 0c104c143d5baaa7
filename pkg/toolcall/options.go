package toolcall

// Default limits applied when no option overrides them.
const (
	// DefaultMaxJSONSize caps the inner payload of a fenced JSON block, in
	// bytes, before any decoding is attempted.
	DefaultMaxJSONSize = 1 << 20

	// DefaultMaxToolCalls caps the number of calls accepted from a single
	// response.
	DefaultMaxToolCalls = 20

	// DefaultMaxBufferSize caps the streaming accumulation buffer, in bytes.
	DefaultMaxBufferSize = 10 << 20
)

type config struct {
	allowedTools  []string
	maxJSONSize   int
	maxToolCalls  int
	maxBufferSize int
	logger        Logger
	logErrors     bool
}

func defaultConfig() config {
	return config{
		maxJSONSize:   DefaultMaxJSONSize,
		maxToolCalls:  DefaultMaxToolCalls,
		maxBufferSize: DefaultMaxBufferSize,
		logger:        NewSlogLogger(nil),
		logErrors:     true,
	}
}

// Option configures a Parser or StreamParser at construction time.
type Option func(*config)

// WithAllowedTools restricts extraction to the named tools. Calls naming any
// other tool are rejected and counted as unauthorized. Without this option
// every tool name is accepted; passing an empty list rejects every call.
func WithAllowedTools(names ...string) Option {
	return func(c *config) {
		// Keep the slice non-nil so a zero-argument call still counts as a
		// configured (reject-everything) allowlist.
		c.allowedTools = append(make([]string, 0, len(names)), names...)
	}
}

// WithMaxJSONSize overrides the per-payload size limit in bytes.
func WithMaxJSONSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxJSONSize = n
		}
	}
}

// WithMaxToolCalls overrides the per-response call ceiling.
func WithMaxToolCalls(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxToolCalls = n
		}
	}
}

// WithMaxBufferSize overrides the streaming buffer cap in bytes. When a
// stream exceeds it the whole buffer is discarded.
func WithMaxBufferSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxBufferSize = n
		}
	}
}

// WithLogger routes parser diagnostics to l instead of slog.Default().
func WithLogger(l Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLogErrors toggles diagnostic emission. Counters are updated either way.
func WithLogErrors(enabled bool) Option {
	return func(c *config) {
		c.logErrors = enabled
	}
}
