package stream

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"

	"crclear/internal/faults"
	"crclear/internal/logging"
	"crclear/internal/textutil"
)

// LockFileName is created inside an output directory while a run owns it.
const LockFileName = ".crclear.lock"

// ErrDirectoryLocked reports that another run holds the output directory.
var ErrDirectoryLocked = errors.New("output directory is in use by another run")

// Sink receives records for named streams.
type Sink interface {
	Write(stream string, v any) error
}

// DirSink writes each stream to <dir>/<name>.ndjson. Files are created, and
// truncated, on the first write to their stream.
type DirSink struct {
	dir    string
	lock   *flock.Flock
	logger *slog.Logger

	mu      sync.Mutex
	streams map[string]*fileStream
	closed  bool
}

type fileStream struct {
	path  string
	file  *os.File
	buf   *bufio.Writer
	enc   *json.Encoder
	count int
}

// NewDirSink creates dir if needed and takes its lock. It fails with
// ErrDirectoryLocked when another process is writing there.
func NewDirSink(dir string, logger *slog.Logger) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "stream", "create output directory", dir, err)
	}
	lockPath := filepath.Join(dir, LockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "stream", "lock output directory", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryLocked, dir)
	}
	return &DirSink{
		dir:     dir,
		lock:    lock,
		logger:  logging.NewComponentLogger(logger, "stream"),
		streams: make(map[string]*fileStream),
	}, nil
}

// Dir returns the output directory.
func (s *DirSink) Dir() string {
	return s.dir
}

// Path returns the file backing stream, whether or not it was written.
func (s *DirSink) Path(stream string) string {
	return filepath.Join(s.dir, textutil.SanitizeToken(stream)+".ndjson")
}

// Write appends v as one JSON line to stream.
func (s *DirSink) Write(stream string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return faults.Wrap(faults.ErrIO, "stream", "write", stream, os.ErrClosed)
	}
	fs, err := s.open(stream)
	if err != nil {
		return err
	}
	if err := fs.enc.Encode(v); err != nil {
		return faults.Wrap(faults.ErrIO, "stream", "encode", fs.path, err)
	}
	fs.count++
	return nil
}

func (s *DirSink) open(stream string) (*fileStream, error) {
	if fs, ok := s.streams[stream]; ok {
		return fs, nil
	}
	path := s.Path(stream)
	file, err := os.Create(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "stream", "create", path, err)
	}
	buf := bufio.NewWriterSize(file, 256*1024)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	fs := &fileStream{path: path, file: file, buf: buf, enc: enc}
	s.streams[stream] = fs
	s.logger.Debug("output stream opened", logging.String(logging.FieldPath, path))
	return fs, nil
}

// Counts returns the number of records written per stream.
func (s *DirSink) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.streams))
	for name, fs := range s.streams {
		out[name] = fs.count
	}
	return out
}

// Streams lists the streams written so far, sorted by name.
func (s *DirSink) Streams() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.streams))
	for name := range s.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close flushes every stream and releases the directory lock.
func (s *DirSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, fs := range s.streams {
		if err := fs.buf.Flush(); err != nil {
			errs = append(errs, faults.Wrap(faults.ErrIO, "stream", "flush", fs.path, err))
		}
		if err := fs.file.Close(); err != nil {
			errs = append(errs, faults.Wrap(faults.ErrIO, "stream", "close", fs.path, err))
		}
		s.logger.Debug("output stream closed",
			logging.String(logging.FieldPath, fs.path),
			logging.Int(logging.FieldRecords, fs.count),
		)
	}
	if err := s.lock.Unlock(); err != nil {
		errs = append(errs, faults.Wrap(faults.ErrIO, "stream", "unlock output directory", s.dir, err))
	}
	return errors.Join(errs...)
}

// Memory is a Sink that keeps records in memory, keyed by stream.
type Memory struct {
	mu      sync.Mutex
	records map[string][]any
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]any)}
}

// Write implements Sink.
func (m *Memory) Write(stream string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[stream] = append(m.records[stream], v)
	return nil
}

// Records returns what was written to stream.
func (m *Memory) Records(stream string) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.records[stream]...)
}
