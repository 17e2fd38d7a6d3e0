package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeClassification(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		if value, ok := os.LookupEnv("CRCLEAR_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.OutputDir = strings.TrimSpace(value)
		} else {
			c.Paths.OutputDir = defaultOutputDir
		}
	}
	fields := []struct {
		key   string
		value *string
	}{
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.catalog_db", &c.Paths.CatalogDB},
		{"paths.metrics_file", &c.Paths.MetricsFile},
		{"paths.reference_file", &c.Paths.ReferenceFile},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeClassification() error {
	if c.Classification.CutoffYear == 0 {
		if value, ok := os.LookupEnv("CRCLEAR_CUTOFF_YEAR"); ok && strings.TrimSpace(value) != "" {
			year, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("CRCLEAR_CUTOFF_YEAR: %w", err)
			}
			c.Classification.CutoffYear = year
		} else {
			c.Classification.CutoffYear = DefaultCutoffYear()
		}
	}
	prefixes := make([]string, 0, len(c.Classification.BookPrefixes))
	seen := make(map[string]struct{}, len(c.Classification.BookPrefixes))
	for _, prefix := range c.Classification.BookPrefixes {
		normalized := strings.ToUpper(strings.TrimSpace(prefix))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		prefixes = append(prefixes, normalized)
	}
	c.Classification.BookPrefixes = prefixes
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.ProgressInterval < 0 {
		c.Logging.ProgressInterval = 0
	}
	if len(c.Logging.StageOverrides) > 0 {
		overrides := make(map[string]string, len(c.Logging.StageOverrides))
		for stage, level := range c.Logging.StageOverrides {
			stage = strings.ToLower(strings.TrimSpace(stage))
			if stage == "" {
				continue
			}
			overrides[stage] = strings.ToLower(strings.TrimSpace(level))
		}
		c.Logging.StageOverrides = overrides
	}
}
