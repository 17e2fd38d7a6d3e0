package logging

import (
	"log/slog"
	"time"
)

// ProgressCounter logs a progress line every interval records while a stage
// streams its input. A zero interval disables the periodic lines; Done still
// reports the final count.
type ProgressCounter struct {
	logger   *slog.Logger
	message  string
	interval int
	count    int
	started  time.Time
	now      func() time.Time
}

// NewProgressCounter constructs a counter that logs message at info level.
func NewProgressCounter(logger *slog.Logger, message string, interval int) *ProgressCounter {
	if logger == nil {
		logger = NewNop()
	}
	if interval < 0 {
		interval = 0
	}
	return &ProgressCounter{logger: logger, message: message, interval: interval, started: time.Now(), now: time.Now}
}

// Tick records one processed record and reports whether a line was logged.
func (p *ProgressCounter) Tick() bool {
	if p == nil {
		return false
	}
	p.count++
	if p.interval == 0 || p.count%p.interval != 0 {
		return false
	}
	p.logger.Info(p.message, Args(p.attrs()...)...)
	return true
}

// Count returns the number of records ticked so far.
func (p *ProgressCounter) Count() int {
	if p == nil {
		return 0
	}
	return p.count
}

// Done logs the final count and elapsed time.
func (p *ProgressCounter) Done() {
	if p == nil {
		return
	}
	attrs := append(p.attrs(), String("status", "complete"))
	p.logger.Info(p.message, Args(attrs...)...)
}

func (p *ProgressCounter) attrs() []Attr {
	elapsed := p.now().Sub(p.started)
	rate := 0.0
	if seconds := elapsed.Seconds(); seconds > 0 {
		rate = float64(p.count) / seconds
	}
	return []Attr{
		Int(FieldRecords, p.count),
		Duration("elapsed", elapsed.Round(time.Millisecond)),
		Float64(FieldRate, rate),
	}
}
