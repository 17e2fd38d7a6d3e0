package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestConsole(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(newConsoleHandler(&buf, level, false)), &buf
}

func TestConsoleHandlerLayout(t *testing.T) {
	tests := []struct {
		name string
		log  func(*slog.Logger)
		want []string
	}{
		{
			name: "identity fields lead",
			log: func(l *slog.Logger) {
				l.With(String(FieldPath, "regs.ndjson")).Info("classified",
					String(FieldBucket, "Renewed"), String(FieldRegnum, "A1"))
			},
			want: []string{"classified regnum=A1 bucket=Renewed path=regs.ndjson"},
		},
		{
			name: "stage and component prefix",
			log: func(l *slog.Logger) {
				l.With(String(FieldStage, "classify"), String(FieldComponent, "renewal")).Warn("ambiguous")
			},
			want: []string{"WARN  [classify] renewal: ambiguous"},
		},
		{
			name: "groups become dotted keys",
			log: func(l *slog.Logger) {
				l.WithGroup("match").Info("scored", Int("score", 3), slog.Group("title", Float64("ratio", 0.5)))
			},
			want: []string{"match.score=3", "match.title.ratio=0.5"},
		},
		{
			name: "values with spaces are quoted",
			log: func(l *slog.Logger) {
				l.Info("failed", Error(errors.New("bad line")), String("note", ""))
			},
			want: []string{`error="bad line"`, `note=""`},
		},
		{
			name: "nil error dropped",
			log: func(l *slog.Logger) {
				l.Info("ok", Error(nil))
			},
			want: []string{"INFO  ok\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestConsole(slog.LevelInfo)
			tt.log(logger)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Fatalf("expected %q in %q", want, buf.String())
				}
			}
		})
	}
}

func TestConsoleHandlerFiltersLevel(t *testing.T) {
	logger, buf := newTestConsole(slog.LevelWarn)
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected info suppressed, got %q", buf.String())
	}
}

func TestWarnWithContextEventDefaults(t *testing.T) {
	logger, buf := newTestConsole(slog.LevelInfo)
	WarnWithContext(logger, "bad json", "malformed_record")
	if !strings.Contains(buf.String(), `error_hint="fix the source line and rerun"`) {
		t.Fatalf("expected malformed_record hint, got %q", buf.String())
	}

	buf.Reset()
	WarnWithContext(logger, "odd", "something_else")
	if !strings.Contains(buf.String(), `impact="`+fallbackImpact+`"`) {
		t.Fatalf("expected fallback impact, got %q", buf.String())
	}
}
