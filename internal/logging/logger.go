package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"crclear/internal/config"
)

// LogFileName is the run log written inside paths.log_dir.
const LogFileName = "crclear.log"

// Options describes logger construction parameters.
type Options struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string
	// Format is console or json. Empty means console.
	Format string
	// Outputs lists "stdout", "stderr" or file paths. Duplicates are
	// written once; an empty list means stderr.
	Outputs []string
	// AddSource forces caller locations; debug level always includes them.
	AddSource bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	w, err := openOutputs(opts.Outputs)
	if err != nil {
		return nil, err
	}
	addSource := opts.AddSource || level <= slog.LevelDebug

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		return slog.New(newConsoleHandler(w, level, addSource)), nil
	case "json":
		return slog.New(newJSONHandler(w, level, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates the run logger from the [logging] section. Lines go
// to stderr, since stdout carries command output, and to LogFileName inside
// paths.log_dir when one is configured. The handler accepts the most verbose
// configured level; ForStage narrows it per stage.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info"})
	}
	outputs := []string{"stderr"}
	if dir := cfg.Paths.LogDir; dir != "" {
		outputs = append(outputs, filepath.Join(dir, LogFileName))
	}
	return New(Options{
		Level:   MinLevel(cfg.Logging.Level, cfg.Logging.StageOverrides),
		Format:  cfg.Logging.Format,
		Outputs: outputs,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func openOutputs(targets []string) (io.Writer, error) {
	seen := make(map[string]bool, len(targets))
	var writers []io.Writer
	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		switch target {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, fmt.Errorf("ensure log directory: %w", err)
			}
			file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", target, err)
			}
			writers = append(writers, file)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

// newJSONHandler emits one object per line with ts, level, msg and the
// record's fields. Timestamps are UTC RFC 3339 and durations are strings.
func newJSONHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   addSource,
		ReplaceAttr: replaceJSONAttr,
	})
}

func replaceJSONAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 {
		switch a.Key {
		case slog.TimeKey:
			return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339))
		case slog.LevelKey:
			return slog.String("level", strings.ToLower(a.Value.String()))
		case slog.SourceKey:
			if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
				return slog.String("source", fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
			}
		}
	}
	if a.Value.Kind() == slog.KindDuration {
		a.Value = slog.StringValue(a.Value.Duration().String())
	}
	return a
}
