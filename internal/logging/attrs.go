package logging

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

type Attr = slog.Attr

func Any(key string, value any) Attr                { return slog.Any(key, value) }
func Bool(key string, value bool) Attr              { return slog.Bool(key, value) }
func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }
func Float64(key string, value float64) Attr        { return slog.Float64(key, value) }
func Int(key string, value int) Attr                { return slog.Int(key, value) }
func Int64(key string, value int64) Attr            { return slog.Int64(key, value) }
func String(key string, value string) Attr          { return slog.String(key, value) }

// Error records err under the "error" key. A nil error yields an empty
// attribute, which handlers drop.
func Error(err error) Attr {
	if err == nil {
		return Attr{}
	}
	return slog.Any("error", err)
}

// Regnums records the registration numbers of one record as a single
// space-joined field.
func Regnums(regnums []string) Attr {
	return slog.String(FieldRegnum, strings.Join(regnums, " "))
}

// Args converts attributes into the variadic form slog's methods accept.
func Args(attrs ...Attr) []any {
	out := make([]any, len(attrs))
	for i := range attrs {
		out[i] = attrs[i]
	}
	return out
}

// HasAttrKey reports whether attrs contains key.
func HasAttrKey(attrs []Attr, key string) bool {
	for i := range attrs {
		if attrs[i].Key == key {
			return true
		}
	}
	return false
}

// DecisionAttrs describes one funnel decision: the decision kind, the outcome
// it produced, and the rule or reason behind it.
func DecisionAttrs(decisionType, result, reason string) []Attr {
	return []Attr{
		slog.String(FieldDecisionType, decisionType),
		slog.String("decision_result", result),
		slog.String("decision_reason", reason),
	}
}

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger { return slog.New(NoopHandler{}) }

// NewComponentLogger tags logger with component. A nil logger yields a
// tagged no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h NoopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h NoopHandler) WithGroup(string) slog.Handler           { return h }
