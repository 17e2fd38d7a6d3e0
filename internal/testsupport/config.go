package testsupport

import (
	"path/filepath"
	"testing"

	"crclear/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The cutoff year is pinned to 1929 so results do not drift with the clock.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CatalogDB = filepath.Join(base, "catalog.db")
	cfgVal.Classification.CutoffYear = 1929

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCutoffYear overrides the first in-copyright year.
func WithCutoffYear(year int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Classification.CutoffYear = year
	}
}

// WithInterimAsForeign controls whether interim registrations count as foreign.
func WithInterimAsForeign(foreign bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Classification.InterimIsForeign = foreign
	}
}

// WithMetricsFile enables the metrics textfile under the temp directory.
func WithMetricsFile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.MetricsFile = filepath.Join(b.baseDir, "metrics", "crclear.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
