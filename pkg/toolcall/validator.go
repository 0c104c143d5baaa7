package toolcall

import "sort"

// CallValidator enforces the trust boundary on extracted candidates: tool
// names must be on the allowlist when one is configured, and JSON payloads
// must fit the size limit before any decoding happens.
type CallValidator struct {
	allowed map[string]struct{}
	cfg     *config
	stats   *Statistics
}

func newCallValidator(cfg *config, stats *Statistics) *CallValidator {
	v := &CallValidator{cfg: cfg, stats: stats}
	if cfg.allowedTools != nil {
		v.allowed = make(map[string]struct{}, len(cfg.allowedTools))
		for _, name := range cfg.allowedTools {
			v.allowed[name] = struct{}{}
		}
	}
	return v
}

// ValidateName reports whether name may be invoked. A rejection increments
// RejectedUnauthorized and logs the offending name with the allowed set.
func (v *CallValidator) ValidateName(name string) bool {
	if v.allowed == nil {
		return true
	}
	if _, ok := v.allowed[name]; ok {
		return true
	}
	v.stats.RejectedUnauthorized++
	if v.cfg.logErrors {
		v.cfg.logger.Warnf("rejected unauthorized tool call %q (allowed: %v)", name, v.allowedNames())
	}
	return false
}

// ValidatePayloadSize reports whether a candidate payload is within the
// configured byte limit. Oversized payloads increment RejectedSize and are
// never decoded.
func (v *CallValidator) ValidatePayloadSize(payload string) bool {
	if len(payload) <= v.cfg.maxJSONSize {
		return true
	}
	v.stats.RejectedSize++
	if v.cfg.logErrors {
		v.cfg.logger.Warnf("rejected tool call payload of %d bytes (limit %d)", len(payload), v.cfg.maxJSONSize)
	}
	return false
}

func (v *CallValidator) allowedNames() []string {
	names := make([]string, 0, len(v.allowed))
	for name := range v.allowed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
