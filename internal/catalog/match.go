package catalog

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"crclear/internal/faults"
	"crclear/internal/logging"
	"crclear/internal/record"
	"crclear/internal/textutil"
)

// Matcher draws candidates for registrations from a Source and scores them.
type Matcher struct {
	source     Source
	scorer     *Scorer
	normalizer *textutil.Normalizer
	policy     Policy
	logger     *slog.Logger
}

// NewMatcher wires a Source to a Scorer.
func NewMatcher(source Source, scorer *Scorer, n *textutil.Normalizer, policy Policy, logger *slog.Logger) *Matcher {
	return &Matcher{
		source:     source,
		scorer:     scorer,
		normalizer: n,
		policy:     policy,
		logger:     logging.NewComponentLogger(logger, "catalog"),
	}
}

// Match returns the candidates for reg whose diluted score is above the
// quality cutoff, best first. A registration without a usable title has no
// candidates.
func (m *Matcher) Match(ctx context.Context, reg *record.Registration) ([]Candidate, error) {
	title := m.normalizer.CatalogTitle(reg.Title)
	if title == "" {
		return nil, nil
	}
	key := textutil.TitleKey(title)
	entries, err := m.source.Candidates(ctx, key)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "catalog", "candidates", "key "+key, err)
	}

	type scored struct {
		entry Entry
		score float64
	}
	var positive []scored
	for _, entry := range entries {
		if score := m.scorer.Score(entry, reg, title); score > 0 {
			positive = append(positive, scored{entry: entry, score: score})
		}
	}
	if len(positive) == 0 {
		return nil, nil
	}

	factor := m.policy.Dilution(len(positive))
	if len(positive) > m.policy.DilutionThreshold && m.policy.DilutionThreshold > 0 {
		m.logger.Debug("diluting crowded title key",
			logging.String("title_key", key),
			logging.Int("candidates", len(positive)),
			logging.Float64("factor", factor),
		)
	}
	out := make([]Candidate, 0, len(positive))
	for _, s := range positive {
		quality := s.score * factor
		if quality <= m.policy.QualityCutoff {
			continue
		}
		out = append(out, Candidate{Quality: quality, Catalog: s.entry.Record, Registration: reg})
	}
	Rank(out)
	return out, nil
}

// Rank sorts candidates by descending quality, then by registration title,
// then by catalog identifier.
func Rank(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Quality != b.Quality {
			return a.Quality > b.Quality
		}
		if ta, tb := registrationTitle(a), registrationTitle(b); ta != tb {
			return ta < tb
		}
		return a.Catalog.Identifier < b.Catalog.Identifier
	})
}

func registrationTitle(c Candidate) string {
	if c.Registration == nil {
		return ""
	}
	return strings.ToLower(c.Registration.Title)
}

// Review keeps the candidates at or above the review cutoff, with quality
// rounded to two places, ranked for manual review.
func Review(candidates []Candidate, cutoff float64) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Quality < cutoff {
			continue
		}
		c.Quality = RoundQuality(c.Quality)
		out = append(out, c)
	}
	Rank(out)
	return out
}

// RoundQuality rounds a score to two decimal places.
func RoundQuality(q float64) float64 {
	return math.Round(q*100) / 100
}
