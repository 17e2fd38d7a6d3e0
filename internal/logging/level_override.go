package logging

import (
	"context"
	"log/slog"
	"strings"
)

// stageHandler drops records below a stage's own minimum before they reach
// the shared handler, which is built at the most verbose level any stage
// needs (see MinLevel).
type stageHandler struct {
	slog.Handler
	min slog.Level
}

func (h stageHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min && h.Handler.Enabled(ctx, level)
}

func (h stageHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.min {
		return nil
	}
	return h.Handler.Handle(ctx, r)
}

func (h stageHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return stageHandler{Handler: h.Handler.WithAttrs(attrs), min: h.min}
}

func (h stageHandler) WithGroup(name string) slog.Handler {
	return stageHandler{Handler: h.Handler.WithGroup(name), min: h.min}
}

// ForStage tags logger with the stage name and enforces the stage's entry in
// overrides ([logging.stage_overrides]), or base when the stage has none.
// The logger must be built at MinLevel(base, overrides). Applying ForStage
// to a stage logger replaces the earlier minimum rather than stacking it.
func ForStage(logger *slog.Logger, stage, base string, overrides map[string]string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	stage = strings.ToLower(strings.TrimSpace(stage))
	level := base
	if override := strings.TrimSpace(overrides[stage]); override != "" {
		level = override
	}
	inner := logger.Handler()
	if sh, ok := inner.(stageHandler); ok {
		inner = sh.Handler
	}
	h := stageHandler{Handler: inner, min: parseLevel(level)}
	return slog.New(h).With(String(FieldStage, stage))
}

// MinLevel returns the most verbose of base and every override, the level a
// shared handler must accept so that overrides can only narrow output.
func MinLevel(base string, overrides map[string]string) string {
	lowest := parseLevel(base)
	name := base
	for _, level := range overrides {
		if parsed := parseLevel(level); parsed < lowest {
			lowest, name = parsed, level
		}
	}
	return name
}
