package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"crclear/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CRCLEAR_OUTPUT_DIR", "")
	t.Setenv("CRCLEAR_CUTOFF_YEAR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, ".local", "share", "crclear", "output")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if cfg.Paths.CatalogDB != filepath.Join(tempHome, ".local", "share", "crclear", "catalog.db") {
		t.Fatalf("unexpected catalog db: %q", cfg.Paths.CatalogDB)
	}
	if cfg.Classification.CutoffYear != config.DefaultCutoffYear() {
		t.Fatalf("expected computed cutoff year %d, got %d", config.DefaultCutoffYear(), cfg.Classification.CutoffYear)
	}
	if cfg.Classification.UpperYearBound != 1963 {
		t.Fatalf("unexpected upper year bound %d", cfg.Classification.UpperYearBound)
	}
	if cfg.Classification.WordOverlapQuotient != 0.75 {
		t.Fatalf("unexpected quotient %v", cfg.Classification.WordOverlapQuotient)
	}
	if !cfg.Classification.InterimIsForeign {
		t.Fatal("expected interim registrations to count as foreign by default")
	}
	if cfg.Catalog.MatchCountDilutionThreshold != 50 {
		t.Fatalf("unexpected dilution threshold %d", cfg.Catalog.MatchCountDilutionThreshold)
	}
	if cfg.Logging.ProgressInterval != 10000 {
		t.Fatalf("unexpected progress interval %d", cfg.Logging.ProgressInterval)
	}
	if cfg.Paths.MetricsFile != "" || cfg.Paths.ReferenceFile != "" {
		t.Fatalf("expected optional paths empty, got %+v", cfg.Paths)
	}
}

func TestLoadEnvironmentFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	outDir := t.TempDir()
	t.Setenv("CRCLEAR_OUTPUT_DIR", outDir)
	t.Setenv("CRCLEAR_CUTOFF_YEAR", "1929")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.OutputDir != outDir {
		t.Fatalf("expected output dir from env, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Classification.CutoffYear != 1929 {
		t.Fatalf("expected cutoff year from env, got %d", cfg.Classification.CutoffYear)
	}
}

func TestLoadRejectsBadCutoffEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CRCLEAR_CUTOFF_YEAR", "soon")
	if _, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for unparseable CRCLEAR_CUTOFF_YEAR")
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CRCLEAR_CUTOFF_YEAR", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "` + filepath.ToSlash(filepath.Join(dir, "out")) + `"

[classification]
cutoff_year = 1930
interim_is_foreign = false
book_prefixes = [" a ", "A", "B"]

[catalog]
review_cutoff = 0.5

[logging]
format = "JSON"
level = "DEBUG"

[logging.stage_overrides]
Classify = "WARN"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected file %q to be read, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Classification.CutoffYear != 1930 {
		t.Fatalf("unexpected cutoff year %d", cfg.Classification.CutoffYear)
	}
	if cfg.Classification.InterimIsForeign {
		t.Fatal("expected interim_is_foreign override")
	}
	if strings.Join(cfg.Classification.BookPrefixes, ",") != "A,B" {
		t.Fatalf("expected normalized prefixes, got %v", cfg.Classification.BookPrefixes)
	}
	if cfg.Catalog.ReviewCutoff != 0.5 {
		t.Fatalf("unexpected review cutoff %v", cfg.Catalog.ReviewCutoff)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
	if cfg.Logging.StageOverrides["classify"] != "warn" {
		t.Fatalf("expected normalized stage override, got %v", cfg.Logging.StageOverrides)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"quotient zero", func(c *config.Config) { c.Classification.WordOverlapQuotient = 0 }, "classification.word_overlap_quotient"},
		{"quotient above one", func(c *config.Config) { c.Classification.WordOverlapQuotient = 1.5 }, "classification.word_overlap_quotient"},
		{"upper before cutoff", func(c *config.Config) { c.Classification.UpperYearBound = 1900 }, "classification.upper_year_bound"},
		{"no prefixes", func(c *config.Config) { c.Classification.BookPrefixes = nil }, "classification.book_prefixes"},
		{"dilution", func(c *config.Config) { c.Catalog.MatchCountDilutionThreshold = 0 }, "catalog.match_count_dilution_threshold"},
		{"review below quality", func(c *config.Config) { c.Catalog.QualityCutoff = 0.5; c.Catalog.ReviewCutoff = 0.1 }, "catalog.review_cutoff"},
		{"exponent", func(c *config.Config) { c.Catalog.DateExponent = 0.5 }, "catalog.date_exponent"},
		{"author cap", func(c *config.Config) { c.Catalog.AuthorPenaltyCap = 0 }, "catalog.author_penalty_cap"},
		{"log level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"stage override", func(c *config.Config) { c.Logging.StageOverrides = map[string]string{"classify": "loud"} }, "logging.stage_overrides.classify"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Classification.CutoffYear = 1929
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error to mention %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CRCLEAR_CUTOFF_YEAR", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if decoded.Classification.UpperYearBound != 1963 {
		t.Fatalf("unexpected sample upper year bound %d", decoded.Classification.UpperYearBound)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("Load(sample): %v", err)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/data/catalog.db")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "data", "catalog.db") {
		t.Fatalf("unexpected expansion %q", got)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[classification]\ncutof_year = 1930\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for misspelled key")
	}
	if !strings.Contains(err.Error(), "cutof_year") {
		t.Fatalf("expected key in error, got %v", err)
	}
}

func TestLoadPrefersProjectFileWithoutUserConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CRCLEAR_OUTPUT_DIR", "")
	t.Setenv("CRCLEAR_CUTOFF_YEAR", "")
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile("crclear.toml", []byte("[classification]\ncutoff_year = 1931\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "crclear.toml" {
		t.Fatalf("expected project config, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Classification.CutoffYear != 1931 {
		t.Fatalf("unexpected cutoff year %d", cfg.Classification.CutoffYear)
	}
}
