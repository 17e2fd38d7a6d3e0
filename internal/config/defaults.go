package config

import "time"

const (
	defaultConfigPath                  = "~/.config/crclear/config.toml"
	defaultOutputDir                   = "~/.local/share/crclear/output"
	defaultLogDir                      = "~/.local/share/crclear/logs"
	defaultCatalogDB                   = "~/.local/share/crclear/catalog.db"
	defaultUpperYearBound              = 1963
	defaultWordOverlapQuotient         = 0.75
	defaultMatchCountDilutionThreshold = 50
	defaultQualityCutoff               = 0
	defaultReviewCutoff                = 0.2
	defaultYearSlack                   = 5
	defaultAuthorPenaltyCap            = 0.5
	defaultDateExponent                = 1.1
	defaultLogFormat                   = "console"
	defaultLogLevel                    = "info"
	defaultProgressInterval            = 10000

	// copyrightTermYears is the span after which a published work is public
	// domain regardless of renewal.
	copyrightTermYears = 95
)

var defaultBookPrefixes = []string{"A"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			CatalogDB: defaultCatalogDB,
		},
		Classification: Classification{
			UpperYearBound:      defaultUpperYearBound,
			WordOverlapQuotient: defaultWordOverlapQuotient,
			InterimIsForeign:    true,
			BookPrefixes:        append([]string(nil), defaultBookPrefixes...),
		},
		Catalog: Catalog{
			MatchCountDilutionThreshold: defaultMatchCountDilutionThreshold,
			QualityCutoff:               defaultQualityCutoff,
			ReviewCutoff:                defaultReviewCutoff,
			YearSlack:                   defaultYearSlack,
			AuthorPenaltyCap:            defaultAuthorPenaltyCap,
			DateExponent:                defaultDateExponent,
		},
		Logging: Logging{
			Format:           defaultLogFormat,
			Level:            defaultLogLevel,
			ProgressInterval: defaultProgressInterval,
		},
	}
}

// DefaultCutoffYear is the current year minus the copyright term.
func DefaultCutoffYear() int {
	return time.Now().Year() - copyrightTermYears
}
