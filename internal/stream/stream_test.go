package stream_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crclear/internal/faults"
	"crclear/internal/stream"
)

type item struct {
	Name string `json:"name"`
}

func TestDecodeReportsBadLinesAndContinues(t *testing.T) {
	input := strings.Join([]string{
		`{"name":"one"}`,
		``,
		`{not json`,
		`{"name":"three"}`,
	}, "\n")

	var names []string
	var bad []string
	err := stream.Decode(context.Background(), strings.NewReader(input), func(line int, v *item, raw []byte, err error) error {
		if err != nil {
			if !errors.Is(err, faults.ErrMalformedRecord) {
				t.Fatalf("expected malformed record error, got %v", err)
			}
			bad = append(bad, string(raw))
			return nil
		}
		names = append(names, v.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if strings.Join(names, ",") != "one,three" {
		t.Fatalf("expected one,three, got %v", names)
	}
	if len(bad) != 1 || bad[0] != "{not json" {
		t.Fatalf("expected the bad line, got %q", bad)
	}
}

func TestLinesStopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := stream.Lines(context.Background(), strings.NewReader("a\nb\nc\n"), func(int, []byte) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected stop error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDecodeFilesMissingFile(t *testing.T) {
	err := stream.DecodeFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing.ndjson")},
		func(string, int, *item, []byte, error) error { return nil })
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected i/o error, got %v", err)
	}
}

func TestDirSinkWritesStreams(t *testing.T) {
	dir := t.TempDir()
	sink, err := stream.NewDirSink(dir, nil)
	if err != nil {
		t.Fatalf("NewDirSink: %v", err)
	}
	for _, name := range []string{"alpha", "beta", "alpha"} {
		if err := sink.Write("not-renewed", item{Name: name}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := sink.Write("foreign", item{Name: "gamma"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := sink.Counts()["not-renewed"]; got != 3 {
		t.Fatalf("expected 3 records, got %d", got)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "not-renewed.ndjson"))
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 || lines[1] != `{"name":"beta"}` {
		t.Fatalf("unexpected stream contents %q", lines)
	}
	if _, err := os.Stat(filepath.Join(dir, "foreign.ndjson")); err != nil {
		t.Fatalf("foreign stream missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "renewed.ndjson")); !os.IsNotExist(err) {
		t.Fatalf("unwritten stream should not exist, got %v", err)
	}
	if err := sink.Write("foreign", item{}); err == nil {
		t.Fatal("expected write after close to fail")
	}
}

func TestDirSinkLocksDirectory(t *testing.T) {
	dir := t.TempDir()
	first, err := stream.NewDirSink(dir, nil)
	if err != nil {
		t.Fatalf("NewDirSink: %v", err)
	}
	if _, err := stream.NewDirSink(dir, nil); !errors.Is(err, stream.ErrDirectoryLocked) {
		t.Fatalf("expected ErrDirectoryLocked, got %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	second, err := stream.NewDirSink(dir, nil)
	if err != nil {
		t.Fatalf("NewDirSink after release: %v", err)
	}
	_ = second.Close()
}

func TestDirSinkSanitizesNames(t *testing.T) {
	sink, err := stream.NewDirSink(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewDirSink: %v", err)
	}
	defer sink.Close()
	if got := filepath.Base(sink.Path("../Renewals Matched")); got != "renewals_matched.ndjson" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestMemorySink(t *testing.T) {
	m := stream.NewMemory()
	_ = m.Write("a", 1)
	_ = m.Write("a", 2)
	if got := m.Records("a"); len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got := m.Records("b"); len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}
