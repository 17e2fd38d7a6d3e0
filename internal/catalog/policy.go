package catalog

import "crclear/internal/config"

// Policy holds the scoring and filtering knobs.
type Policy struct {
	// DilutionThreshold is the candidate count above which scores are
	// scaled down in proportion.
	DilutionThreshold int
	// QualityCutoff drops candidates whose diluted score is not above it.
	QualityCutoff float64
	// ReviewCutoff drops candidates below it from the review file.
	ReviewCutoff float64
	// AuthorPenaltyCap bounds the penalty of one near-miss author pair.
	AuthorPenaltyCap float64
	// DateExponent makes the year penalty super-linear.
	DateExponent float64
	// CutoffYear and MaxYear bound the catalog years worth loading.
	CutoffYear int
	MaxYear    int
}

// NewPolicy derives a Policy from normalized configuration.
func NewPolicy(cfg *config.Config) Policy {
	return Policy{
		DilutionThreshold: cfg.Catalog.MatchCountDilutionThreshold,
		QualityCutoff:     cfg.Catalog.QualityCutoff,
		ReviewCutoff:      cfg.Catalog.ReviewCutoff,
		AuthorPenaltyCap:  cfg.Catalog.AuthorPenaltyCap,
		DateExponent:      cfg.Catalog.DateExponent,
		CutoffYear:        cfg.Classification.CutoffYear,
		MaxYear:           cfg.Classification.UpperYearBound + cfg.Catalog.YearSlack,
	}
}

// DefaultPolicy is NewPolicy applied to the default configuration with the
// cutoff year resolved.
func DefaultPolicy() Policy {
	cfg := config.Default()
	cfg.Classification.CutoffYear = config.DefaultCutoffYear()
	return NewPolicy(&cfg)
}

// Dilution returns the factor applied to every score of a registration with
// n positive candidates: a boost for a unique match, and a proportional cut
// once n passes the threshold.
func (p Policy) Dilution(n int) float64 {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return 1.1
	case p.DilutionThreshold <= 0 || n <= p.DilutionThreshold:
		return 1
	default:
		return float64(p.DilutionThreshold) / float64(n)
	}
}
