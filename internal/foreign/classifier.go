package foreign

import (
	"log/slog"
	"strings"

	"crclear/internal/faults"
	"crclear/internal/gazetteer"
	"crclear/internal/logging"
	"crclear/internal/record"
)

// Verdict is the classifier's conclusion about a registration.
type Verdict int

const (
	// Domestic means no rule found foreign evidence.
	Domestic Verdict = iota
	// Foreign means one of the direct evidence rules fired.
	Foreign
	// Possible means only the cross-reference index links the registration
	// to a foreign one; it needs manual review.
	Possible
)

func (v Verdict) String() string {
	switch v {
	case Foreign:
		return "foreign"
	case Possible:
		return "possible"
	default:
		return "domestic"
	}
}

// Rule names the evidence that produced a verdict.
type Rule string

const (
	RuleNone            Rule = ""
	RuleForeignRegnum   Rule = "foreign_regnum"
	RuleInterimRegnum   Rule = "interim_regnum"
	RulePublishedAbroad Rule = "published_abroad"
	RuleInterimMention  Rule = "interim_mention"
	RuleForeignPlace    Rule = "foreign_place"
	RuleWeakKeyword     Rule = "weak_keyword"
	RuleCrossReference  Rule = "cross_reference"
)

// ExtraForeignRegistration is the Extra key holding the foreign registration
// that referenced a possibly foreign one.
const ExtraForeignRegistration = "foreign_registration"

// Result is the outcome of Classify.
type Result struct {
	Verdict  Verdict
	Rule     Rule
	Evidence []record.ParentSnapshot
}

// Options tune the classifier.
type Options struct {
	// InterimIsForeign makes interim registration numbers foreign evidence.
	// When false, such registrations are left for the interim bucket.
	InterimIsForeign bool
}

// Classifier evaluates foreign-publication evidence rules against
// registrations and feeds the propagation index. It is not safe for
// concurrent use; the pipeline drives it sequentially.
type Classifier struct {
	gaz       *gazetteer.Gazetteer
	index     *Index
	opts      Options
	logger    *slog.Logger
	cities    map[string]struct{}
	countries map[string]struct{}
	endings   []string
}

// New builds a Classifier. A nil index starts empty; a nil logger discards.
func New(gaz *gazetteer.Gazetteer, index *Index, opts Options, logger *slog.Logger) *Classifier {
	if index == nil {
		index = NewIndex()
	}
	c := &Classifier{
		gaz:       gaz,
		index:     index,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "foreign"),
		cities:    make(map[string]struct{}, len(gaz.ForeignCities)),
		countries: make(map[string]struct{}),
	}
	for _, city := range gaz.ForeignCities {
		c.cities[city] = struct{}{}
	}
	for _, country := range gaz.ForeignCountries() {
		c.countries[country] = struct{}{}
		c.endings = append(c.endings, ", "+country)
	}
	return c
}

// Index exposes the propagation index the classifier maintains.
func (c *Classifier) Index() *Index {
	return c.index
}

// Classify evaluates the evidence rules in order and stops at the first that
// fires, appending its warning to reg. A Foreign verdict also adds reg's
// note cross-references to the index.
func (c *Classifier) Classify(reg *record.Registration) Result {
	if rule := c.directEvidence(reg); rule != RuleNone {
		for _, xref := range reg.ParseXrefs() {
			c.index.Add(xref)
		}
		c.logger.Debug("foreign evidence found",
			logging.Args(append(logging.DecisionAttrs("foreign", Foreign.String(), string(rule)),
				logging.Regnums(reg.Regnums))...)...)
		return Result{Verdict: Foreign, Rule: rule}
	}
	for _, regnum := range reg.Regnums {
		evidence := c.index.Lookup(regnum)
		if len(evidence) == 0 {
			continue
		}
		reg.Warn("Possible foreign publication -- mentioned in a registration for a likely foreign publication.")
		if reg.Extra == nil {
			reg.Extra = make(map[string]any)
		}
		reg.Extra[ExtraForeignRegistration] = evidence[0]
		logging.WarnWithContext(c.logger, "registration referenced by a foreign registration",
			faults.AnomalyPossibleForeign.String(),
			logging.String(logging.FieldRegnum, regnum),
			logging.String("referenced_by", strings.Join(evidence[0].Regnums, " ")),
		)
		return Result{Verdict: Possible, Rule: RuleCrossReference, Evidence: evidence}
	}
	return Result{Verdict: Domestic}
}

// IsInterim reports whether any of reg's registration numbers carries an
// interim prefix.
func (c *Classifier) IsInterim(reg *record.Registration) bool {
	for _, regnum := range reg.Regnums {
		if hasPrefix(regnum, c.gaz.InterimPrefixes) {
			return true
		}
	}
	return false
}

func (c *Classifier) directEvidence(reg *record.Registration) Rule {
	for _, regnums := range [][]string{reg.Regnums, reg.PreviousRegnums} {
		for _, regnum := range regnums {
			if rule := c.regnumRule(reg, regnum); rule != RuleNone {
				return rule
			}
		}
	}

	for _, prev := range reg.PreviousPublications {
		if c.gaz.PublishedAbroad(prev) {
			reg.Warn("Previous publication %q indicates work was previously published abroad.", prev)
			return RulePublishedAbroad
		}
		for _, marker := range c.gaz.InterimMarkers {
			if strings.Contains(prev, marker) {
				reg.Warn("Previous publication '%s' seems to mention an interim registration.", prev)
				return RuleInterimMention
			}
		}
	}

	for _, place := range reg.Places() {
		if c.PlaceIsForeign(place) {
			reg.Warn("Publication place '%s' looks foreign.", place)
			return RuleForeignPlace
		}
	}

	for _, prev := range reg.PreviousPublications {
		lowered := strings.ToLower(prev)
		for _, keyword := range c.gaz.WeakKeywords {
			if strings.Contains(lowered, keyword) {
				reg.Warn("Previous publication %q mentions the keyword '%s', which indicates this _may_ have originally been a foreign publication.", prev, keyword)
				return RuleWeakKeyword
			}
		}
	}
	return RuleNone
}

func (c *Classifier) regnumRule(reg *record.Registration, regnum string) Rule {
	if hasPrefix(regnum, c.gaz.ForeignPrefixes) {
		reg.Warn("Regnum '%s' indicates a foreign registration.", regnum)
		return RuleForeignRegnum
	}
	if c.opts.InterimIsForeign && hasPrefix(regnum, c.gaz.InterimPrefixes) {
		reg.Warn("Regnum '%s' indicates an interim (and foreign) registration.", regnum)
		return RuleInterimRegnum
	}
	return RuleNone
}

// PlaceIsForeign makes a best guess whether a publication place is outside
// the United States. "London, New York" counts as foreign because it is far
// more common than "London, Ontario" in the registrations.
func (c *Classifier) PlaceIsForeign(place string) bool {
	place = strings.TrimSpace(place)
	if place == "" {
		return false
	}
	candidates := []string{place}
	if trimmed := strings.TrimSuffix(place, "."); trimmed != place {
		candidates = append(candidates, trimmed)
	}
	for _, candidate := range candidates {
		if _, ok := c.cities[candidate]; ok {
			return true
		}
		if _, ok := c.countries[candidate]; ok {
			return true
		}
		for _, ending := range c.endings {
			if strings.HasSuffix(candidate, ending) {
				return true
			}
		}
	}
	if strings.Contains(place, ",") {
		for city := range c.cities {
			if strings.Contains(place, city) {
				return true
			}
		}
	}
	return false
}

func hasPrefix(regnum string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(regnum, prefix) {
			return true
		}
	}
	return false
}
