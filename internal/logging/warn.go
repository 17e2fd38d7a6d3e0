package logging

import "log/slog"

// anomalyDefaults holds the operator guidance attached to anomaly warnings
// whose callers do not supply their own.
var anomalyDefaults = map[string]struct{ hint, impact string }{
	"malformed_record": {
		hint:   "fix the source line and rerun",
		impact: "line skipped or written to the error bucket",
	},
	"possible_foreign": {
		hint:   "check whether the work was first published abroad",
		impact: "registration routed to the foreign bucket for manual review",
	},
	"ambiguous_renewal_match": {
		hint:   "compare the attached renewals against the registration",
		impact: "all candidates attached for manual review",
	},
	"metrics_write": {
		hint:   "check paths.metrics_file permissions",
		impact: "run metrics unavailable to node_exporter",
	},
}

const (
	fallbackHint   = "review the record manually"
	fallbackImpact = "record classified with warnings"
)

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact. Missing fields are filled from the defaults registered for
// eventType, or from generic guidance for unknown event types.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	hint, impact := fallbackHint, fallbackImpact
	if d, ok := anomalyDefaults[eventType]; ok {
		hint, impact = d.hint, d.impact
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, hint)
	attrs = withDefault(attrs, FieldImpact, impact)
	logger.Warn(msg, Args(attrs...)...)
}

func withDefault(attrs []Attr, key, value string) []Attr {
	if HasAttrKey(attrs, key) {
		return attrs
	}
	return append(attrs, String(key, value))
}
