package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// identityKeys are printed ahead of other fields, in this order, so that
// lines about the same record line up when scanning a run log.
var identityKeys = []string{FieldRegnum, FieldUUID, FieldBucket, FieldDisposition}

// consoleHandler renders one line per record:
//
//	2024-05-01 12:00:00 WARN  [classify] renewal: message regnum=A1 key=value
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     slog.Leveler
	addSource bool
	prefix    string
	fields    []field
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), out: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	if !h.Enabled(context.Background(), r.Level) {
		return nil
	}
	fields := make([]field, 0, len(h.fields)+r.NumAttrs())
	fields = append(fields, h.fields...)
	r.Attrs(func(a slog.Attr) bool {
		fields = collect(fields, h.prefix, a)
		return true
	})
	stage, fields := take(fields, FieldStage)
	component, fields := take(fields, FieldComponent)

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(ts.Local().Format(timestampLayout))
	fmt.Fprintf(&b, " %-5s ", levelLabel(r.Level))
	if stage != "" {
		b.WriteString("[" + stage + "] ")
	}
	if component != "" {
		b.WriteString(component + ": ")
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(msg)
	if h.addSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range orderFields(fields) {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(renderValue(f.value))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = make([]field, len(h.fields), len(h.fields)+len(attrs))
	copy(next.fields, h.fields)
	for _, a := range attrs {
		next.fields = collect(next.fields, h.prefix, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = joinKey(h.prefix, name)
	return &next
}

// collect flattens a into dst, naming nested group members with dotted keys.
func collect(dst []field, prefix string, a slog.Attr) []field {
	if a.Equal(slog.Attr{}) {
		return dst
	}
	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		return append(dst, field{key: joinKey(prefix, a.Key), value: v})
	}
	inner := prefix
	if a.Key != "" {
		inner = joinKey(prefix, a.Key)
	}
	for _, member := range v.Group() {
		dst = collect(dst, inner, member)
	}
	return dst
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// take removes every field named key and returns the first one's text.
func take(fields []field, key string) (string, []field) {
	var found string
	kept := fields[:0]
	for _, f := range fields {
		if f.key != key {
			kept = append(kept, f)
			continue
		}
		if found == "" {
			found = plainValue(f.value)
		}
	}
	return found, kept
}

// orderFields moves identity fields to the front and keeps the rest in
// arrival order.
func orderFields(fields []field) []field {
	out := make([]field, 0, len(fields))
	for _, key := range identityKeys {
		for _, f := range fields {
			if f.key == key {
				out = append(out, f)
			}
		}
	}
	for _, f := range fields {
		if f.key != "" && !isIdentity(f.key) {
			out = append(out, f)
		}
	}
	return out
}

func isIdentity(key string) bool {
	for _, k := range identityKeys {
		if k == key {
			return true
		}
	}
	return false
}

func plainValue(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	if err, ok := v.Any().(error); ok && v.Kind() == slog.KindAny {
		return err.Error()
	}
	return v.String()
}

func renderValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindFloat64:
		s = strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		s = v.Time().Local().Format(timestampLayout)
	default:
		s = plainValue(v)
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
