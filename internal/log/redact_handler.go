package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "[REDACTED]"

// sensitiveKeys contains attribute keys that should always be masked.
// Comparison is case-insensitive.
var sensitiveKeys = map[string]bool{
	"authorization": true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"github_token":  true,
	"access_token":  true,
	"secret":        true,
	"password":      true,
}

// sensitivePatterns contains regex patterns that indicate sensitive values.
// Values matching these patterns are masked regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// GitHub token formats (classic, fine-grained, OAuth, app)
	regexp.MustCompile(`^gh[pousr]_[A-Za-z0-9]{20,}$`),
	regexp.MustCompile(`^github_pat_[A-Za-z0-9_]{20,}$`),

	// Bearer and basic auth header values
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
}

// RedactHandler wraps a slog.Handler and masks sensitive attribute values
// before delegating.
//
// Design decision: Masking happens at the handler layer rather than at
// call sites because the set of call sites grows and credentials only need
// one forgotten log line to leak. The handler is the single choke point.
type RedactHandler struct {
	inner slog.Handler
}

// NewRedactHandler wraps the given handler with credential masking.
func NewRedactHandler(inner slog.Handler) *RedactHandler {
	return &RedactHandler{inner: inner}
}

// Enabled reports whether the inner handler handles records at the given
// level.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle masks sensitive attributes and delegates to the inner handler.
func (h *RedactHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

// WithAttrs returns a new RedactHandler whose inner handler has the given
// (masked) attributes.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = redactAttr(attr)
	}
	return &RedactHandler{inner: h.inner.WithAttrs(masked)}
}

// WithGroup returns a new RedactHandler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{inner: h.inner.WithGroup(name)}
}

// redactAttr masks an attribute value when the key or value looks
// sensitive. Group attributes are masked recursively.
func redactAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		masked := make([]slog.Attr, len(members))
		for i, member := range members {
			masked[i] = redactAttr(member)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(masked...)}
	}

	if sensitiveKeys[strings.ToLower(attr.Key)] {
		return slog.String(attr.Key, MaskValue)
	}

	if attr.Value.Kind() == slog.KindString && sensitiveValue(attr.Value.String()) {
		return slog.String(attr.Key, MaskValue)
	}

	return attr
}

// sensitiveValue reports whether a value matches a known credential shape.
func sensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}
