package renewal

import (
	"log/slog"

	"crclear/internal/faults"
	"crclear/internal/logging"
	"crclear/internal/record"
)

// Dispositions assigned by Match.
const (
	NotRenewed            = "Not renewed"
	RenewedDateMatch      = "Renewed (date match)"
	ProbablyRenewedDates  = "Probably renewed, dates don't match"
	ProbablyRenewedAuthor = "Probably renewed (author match)"
	ProbablyRenewedTitle  = "Probably renewed (title match)"
	PossiblyRenewed       = "Possibly renewed - no confident match"
)

// Confidence ranks a match outcome.
type Confidence int

const (
	None Confidence = iota
	Possible
	Probable
	Certain
)

// Outcome is the result of matching one registration.
type Outcome struct {
	Renewals    []*record.Renewal
	Disposition string
	Confidence  Confidence
}

// Policy holds the tie-break thresholds.
type Policy struct {
	// WordOverlapQuotient is the share of words two names or titles must
	// have in common to count as a match.
	WordOverlapQuotient float64
}

// Matcher resolves registrations against an Index and remembers which
// renewals it has handed out.
type Matcher struct {
	index  *Index
	policy Policy
	used   map[*record.Renewal]struct{}
	logger *slog.Logger
}

// NewMatcher returns a matcher over index.
func NewMatcher(index *Index, policy Policy, logger *slog.Logger) *Matcher {
	if index == nil {
		index = NewIndex(nil)
	}
	return &Matcher{
		index:  index,
		policy: policy,
		used:   make(map[*record.Renewal]struct{}),
		logger: logging.NewComponentLogger(logger, "renewal"),
	}
}

// Match finds the renewals for reg without attaching them or marking them
// used, so repeated calls return the same candidates and disposition. Parsing
// reg's dates may record their normalized form and parse warnings on reg.
func (m *Matcher) Match(reg *record.Registration) Outcome {
	candidates := m.index.Candidates(reg.Regnums)
	if len(candidates) == 0 {
		return Outcome{Disposition: NotRenewed, Confidence: None}
	}

	dates := make(map[string]struct{})
	for _, d := range reg.NormalizedRegistrationDates() {
		dates[d] = struct{}{}
	}
	dateMatch := func(r *record.Renewal) bool {
		_, ok := dates[r.NormalizedRegDate()]
		return ok
	}

	if len(candidates) == 1 {
		only := candidates[0]
		if dateMatch(only) {
			return Outcome{Renewals: candidates, Disposition: RenewedDateMatch, Confidence: Certain}
		}
		return Outcome{Renewals: candidates, Disposition: ProbablyRenewedDates, Confidence: Probable}
	}

	for _, c := range candidates {
		if dateMatch(c) {
			return Outcome{Renewals: []*record.Renewal{c}, Disposition: RenewedDateMatch, Confidence: Certain}
		}
	}
	for _, c := range candidates {
		if reg.AuthorMatch(c.Author, m.policy.WordOverlapQuotient) {
			return Outcome{Renewals: []*record.Renewal{c}, Disposition: ProbablyRenewedAuthor, Confidence: Probable}
		}
	}
	for _, c := range candidates {
		if c.Title != "" && reg.TitleMatch(c.Title, m.policy.WordOverlapQuotient) {
			return Outcome{Renewals: []*record.Renewal{c}, Disposition: ProbablyRenewedTitle, Confidence: Probable}
		}
	}
	return Outcome{Renewals: candidates, Disposition: PossiblyRenewed, Confidence: Possible}
}

// Apply matches reg, attaches the accepted renewals, sets its disposition,
// and marks the renewals used.
func (m *Matcher) Apply(reg *record.Registration) Outcome {
	out := m.Match(reg)
	reg.Renewals = reg.Renewals[:0]
	for _, r := range out.Renewals {
		reg.Renewals = append(reg.Renewals, *r)
		m.used[r] = struct{}{}
	}
	if len(reg.Renewals) == 0 {
		reg.Renewals = nil
	}
	reg.SetDisposition(out.Disposition)
	if out.Confidence == Possible {
		logging.WarnWithContext(m.logger, "several renewals cite registration",
			faults.AnomalyAmbiguousRenewalMatch.String(),
			logging.Regnums(reg.Regnums),
			logging.Int("candidates", len(out.Renewals)),
		)
	}
	return out
}

// Used reports whether r has been handed out by Apply.
func (m *Matcher) Used(r *record.Renewal) bool {
	_, ok := m.used[r]
	return ok
}

// UsedCount reports how many distinct renewals have been handed out.
func (m *Matcher) UsedCount() int {
	return len(m.used)
}

// Partition splits the indexed renewals into those handed out by Apply and
// the rest, both in load order.
func (m *Matcher) Partition() (matched, unmatched []*record.Renewal) {
	for _, r := range m.index.All() {
		if m.Used(r) {
			matched = append(matched, r)
		} else {
			unmatched = append(unmatched, r)
		}
	}
	return matched, unmatched
}
