package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateClassification(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateClassification() error {
	cfg := c.Classification
	if cfg.CutoffYear <= 0 {
		return errors.New("classification.cutoff_year must be positive")
	}
	if cfg.UpperYearBound < cfg.CutoffYear {
		return fmt.Errorf("classification.upper_year_bound (%d) must not be before classification.cutoff_year (%d)", cfg.UpperYearBound, cfg.CutoffYear)
	}
	if cfg.WordOverlapQuotient <= 0 || cfg.WordOverlapQuotient > 1 {
		return errors.New("classification.word_overlap_quotient must be in (0,1]")
	}
	if len(cfg.BookPrefixes) == 0 {
		return errors.New("classification.book_prefixes must include at least one prefix")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	cfg := c.Catalog
	if cfg.MatchCountDilutionThreshold <= 0 {
		return errors.New("catalog.match_count_dilution_threshold must be positive")
	}
	if cfg.ReviewCutoff < cfg.QualityCutoff {
		return errors.New("catalog.review_cutoff must be >= catalog.quality_cutoff")
	}
	if cfg.YearSlack < 0 {
		return errors.New("catalog.year_slack must be >= 0")
	}
	if cfg.AuthorPenaltyCap <= 0 || cfg.AuthorPenaltyCap > 1 {
		return errors.New("catalog.author_penalty_cap must be in (0,1]")
	}
	if cfg.DateExponent < 1 {
		return errors.New("catalog.date_exponent must be >= 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	for stage, level := range c.Logging.StageOverrides {
		if !validLevel(level) {
			return fmt.Errorf("logging.stage_overrides.%s: unsupported value %q", stage, level)
		}
	}
	return nil
}

func validLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
