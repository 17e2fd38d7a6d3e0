package catalog

import (
	"math"
	"regexp"
	"slices"
	"strings"

	"crclear/internal/gazetteer"
	"crclear/internal/record"
	"crclear/internal/textutil"
)

const (
	exactTitleBonus         = 1.2
	shortTitleLength        = 15
	shortTitlePenaltyStep   = 0.05
	titleDistanceWeight     = 1.5
	exactYearBonus          = -0.01
	yearPenaltyScale        = 0.1
	exactAuthorBonus        = -0.25
	reorderedAuthorBonus    = -0.2
	defaultAuthorPenaltyCap = 0.5
)

// Tier scales the date and author penalties for a title. Generic titles
// need stronger author and year evidence before a title match counts.
type Tier struct {
	Name             string
	AuthorMultiplier float64
	AuthorBase       float64
	YearMultiplier   float64
}

var (
	tierPlain          = Tier{Name: "plain", AuthorMultiplier: 1, AuthorBase: 0, YearMultiplier: 1}
	tierGenericPrefix  = Tier{Name: "generic-prefix", AuthorMultiplier: 4, AuthorBase: 0.7, YearMultiplier: 4}
	tierTotallyGeneric = Tier{Name: "generic", AuthorMultiplier: 6, AuthorBase: 0.8, YearMultiplier: 5}
	tierTelephone      = Tier{Name: "telephone-directory", AuthorMultiplier: 7, AuthorBase: 1.0, YearMultiplier: 7}
)

// Scorer computes match quality between registrations and catalog entries.
type Scorer struct {
	policy     Policy
	normalizer *textutil.Normalizer
	telephone  string
	generic    *regexp.Regexp
	exactly    *regexp.Regexp
}

// NewScorer builds a Scorer using the generic-title data from gaz.
func NewScorer(policy Policy, gaz *gazetteer.Gazetteer, n *textutil.Normalizer) *Scorer {
	if policy.AuthorPenaltyCap <= 0 {
		policy.AuthorPenaltyCap = defaultAuthorPenaltyCap
	}
	if policy.DateExponent < 1 {
		policy.DateExponent = 1
	}
	s := &Scorer{policy: policy, normalizer: n}
	if gaz == nil {
		return s
	}
	s.telephone = strings.ToLower(strings.TrimSpace(gaz.TelephoneMarker))
	var phrases []string
	for _, title := range gaz.GenericTitles {
		if cleaned := n.Title(title); cleaned != "" {
			phrases = append(phrases, regexp.QuoteMeta(cleaned))
		}
	}
	if len(phrases) > 0 {
		slices.SortStableFunc(phrases, func(a, b string) int { return len(b) - len(a) })
		alternation := strings.Join(phrases, "|")
		s.generic = regexp.MustCompile(`^(?:` + alternation + `)`)
		s.exactly = regexp.MustCompile(`^(?:` + alternation + `)$`)
	}
	return s
}

// TierFor classifies a normalized title.
func (s *Scorer) TierFor(normalizedTitle string) Tier {
	switch {
	case s.telephone != "" && strings.Contains(normalizedTitle, s.telephone):
		return tierTelephone
	case s.exactly != nil && s.exactly.MatchString(normalizedTitle):
		return tierTotallyGeneric
	case s.generic != nil && s.generic.MatchString(normalizedTitle):
		return tierGenericPrefix
	default:
		return tierPlain
	}
}

// TitleSimilarity compares two normalized titles. Identical titles score
// 1.2, or 1.0 when generic, less 5% per character below fifteen. Otherwise
// the score is 1 - 1.5 * distance / longer length and may go negative.
func (s *Scorer) TitleSimilarity(catalogTitle, registrationTitle string) float64 {
	if registrationTitle == "" {
		return -1
	}
	if catalogTitle == registrationTitle {
		length := len([]rune(registrationTitle))
		multiplier := 1.0
		if length < shortTitleLength {
			multiplier = 1 - float64(shortTitleLength-length)*shortTitlePenaltyStep
		}
		if s.TierFor(registrationTitle) == tierPlain {
			return exactTitleBonus * multiplier
		}
		return multiplier
	}
	longer := max(len([]rune(catalogTitle)), len([]rune(registrationTitle)))
	distance := float64(textutil.EditDistance(catalogTitle, registrationTitle)) * titleDistanceWeight
	return 1 - distance/float64(longer)
}

// DatePenalty is a small bonus for the same year and otherwise grows
// super-linearly with the year difference.
func (s *Scorer) DatePenalty(catalogYear, registrationYear int) float64 {
	if catalogYear == registrationYear {
		return exactYearBonus
	}
	diff := math.Abs(float64(catalogYear - registrationYear))
	return math.Pow(diff, s.policy.DateExponent) * yearPenaltyScale
}

// AuthorPenalty is the best penalty over every author pair. Zero means
// there was nothing to compare.
func (s *Scorer) AuthorPenalty(catalogAuthors, registrationAuthors []string) float64 {
	best, found := 0.0, false
	for _, ca := range catalogAuthors {
		for _, ra := range registrationAuthors {
			penalty, ok := s.authorPair(ca, ra)
			if !ok {
				continue
			}
			if !found || penalty < best {
				best, found = penalty, true
			}
		}
	}
	return best
}

func (s *Scorer) authorPair(catalogAuthor, registrationAuthor string) (float64, bool) {
	a, b := s.normalizer.Name(catalogAuthor), s.normalizer.Name(registrationAuthor)
	if a == "" || b == "" {
		return 0, false
	}
	if a == b {
		return exactAuthorBonus, true
	}
	if slices.Equal(textutil.NameWords(a), textutil.NameWords(b)) {
		return reorderedAuthorBonus, true
	}
	longer := max(len([]rune(a)), len([]rune(b)))
	penalty := 1 - float64(textutil.EditDistance(a, b))/float64(longer)
	if penalty > 0 {
		penalty = min(penalty, s.policy.AuthorPenaltyCap)
	}
	return penalty, true
}

// Score rates entry against reg, whose catalog-normalized title is
// registrationTitle. It never exceeds exactTitleBonus.
func (s *Scorer) Score(entry Entry, reg *record.Registration, registrationTitle string) float64 {
	title := s.TitleSimilarity(entry.NormalizedTitle, registrationTitle)
	tier := s.TierFor(registrationTitle)

	datePenalty := 0.0
	if date, ok := reg.BestGuessDate(); ok && entry.Year != 0 {
		datePenalty = s.DatePenalty(entry.Year, date.Year())
	}

	authorPenalty := 0.0
	if entry.Author != "" && len(reg.Authors) > 0 {
		authorPenalty = s.AuthorPenalty([]string{entry.Author}, reg.Authors)
	}

	switch {
	case authorPenalty == 0:
		authorPenalty = tier.AuthorBase
	case authorPenalty > 0:
		authorPenalty *= tier.AuthorMultiplier
	}
	if datePenalty > 0 {
		datePenalty *= tier.YearMultiplier
	}

	// Year and author bonuses lift the score at most to exactTitleBonus.
	var penalties, bonus float64
	for _, p := range []float64{datePenalty, authorPenalty} {
		if p > 0 {
			penalties += p
		} else {
			bonus -= p
		}
	}
	bonus = min(bonus, max(0, exactTitleBonus-title))
	return title - penalties + bonus
}
