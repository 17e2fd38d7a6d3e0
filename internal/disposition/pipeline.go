package disposition

import (
	"errors"
	"log/slog"
	"strings"

	"crclear/internal/faults"
	"crclear/internal/foreign"
	"crclear/internal/logging"
	"crclear/internal/record"
	"crclear/internal/renewal"
)

// Dispositions assigned outside renewal matching.
const (
	DispositionError           = "Error"
	DispositionForeign         = "Foreign publication."
	DispositionPossibleForeign = "Possible foreign publication - check manually."
	DispositionInterim         = "Interim registration."
	DispositionNotABook        = "Not a book proper."
	DispositionTooOld          = "Published before cutoff year."
	DispositionTooNew          = "Published after cutoff year."
	DispositionWithParent      = "Classified with parent."
)

const (
	reasonNoRegnum = "No registration number."
	reasonNoDate   = "No registration or publication date."

	inheritedWarning = "This registration seems like a good candidate, but it was associated with a registration " +
		"which was deemed not to be a candidate. It was classified with parent; verify manually."

	// ExtraRaw holds the undecodable input line of a rejected record.
	ExtraRaw = "raw"
)

// Policy holds the funnel thresholds.
type Policy struct {
	CutoffYear     int
	UpperYearBound int
	BookPrefixes   []string
}

// Emitter receives each classified registration, detached from its
// children, together with its bucket.
type Emitter func(bucket Bucket, reg *record.Registration) error

// Observer is notified of every bucket assignment and anomaly.
type Observer interface {
	ObserveBucket(bucket string)
	ObserveAnomaly(kind string)
}

// Pipeline classifies registration trees. It holds the foreign propagation
// index and the renewal used set, so one Pipeline serves exactly one run.
type Pipeline struct {
	classifier *foreign.Classifier
	matcher    *renewal.Matcher
	policy     Policy
	tally      *Tally
	observer   Observer
	logger     *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// NewPipeline wires the classifier and matcher into a funnel.
func NewPipeline(classifier *foreign.Classifier, matcher *renewal.Matcher, policy Policy, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: classifier,
		matcher:    matcher,
		policy:     policy,
		tally:      NewTally(),
		logger:     logging.NewComponentLogger(logger, "disposition"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tally returns the running bucket counts.
func (p *Pipeline) Tally() *Tally {
	return p.tally
}

// Process classifies reg and its descendants depth-first, emitting each one
// right after its parent. It returns only emitter errors; record problems
// are recorded on the records themselves.
func (p *Pipeline) Process(reg *record.Registration, emit Emitter) error {
	if reg == nil {
		return nil
	}
	reg.Link()
	return p.process(reg, "", emit)
}

func (p *Pipeline) process(reg *record.Registration, parent Bucket, emit Emitter) error {
	bucket := p.Classify(reg)
	if bucket.InRange() && parent != "" && parent != BucketError && !parent.InRange() {
		reg.Reclassify(DispositionWithParent, inheritedWarning)
		p.logger.Debug("child classified with parent",
			logging.Regnums(reg.Regnums),
			logging.String("computed_bucket", bucket.String()),
			logging.String(logging.FieldBucket, parent.String()),
			logging.String(logging.FieldEventType, faults.AnomalyHierarchyReclassification.String()),
		)
		p.anomaly(faults.AnomalyHierarchyReclassification)
		bucket = parent
	}
	p.tally.Add(bucket)
	if p.observer != nil {
		p.observer.ObserveBucket(bucket.String())
	}
	if err := emit(bucket, reg.Detached()); err != nil {
		return err
	}
	for _, child := range reg.Children {
		if child == nil {
			continue
		}
		if err := p.process(child, bucket, emit); err != nil {
			return err
		}
	}
	return nil
}

// Classify runs the funnel on reg alone, sets its disposition, and returns
// its bucket. Children are not visited.
func (p *Pipeline) Classify(reg *record.Registration) Bucket {
	if err := p.check(reg); err != nil {
		return p.reject(reg, err)
	}

	result := p.classifier.Classify(reg)
	switch result.Verdict {
	case foreign.Foreign:
		reg.SetDisposition(DispositionForeign)
		return p.decided(reg, BucketForeign, string(result.Rule))
	case foreign.Possible:
		reg.SetDisposition(DispositionPossibleForeign)
		p.anomaly(faults.AnomalyPossibleForeign)
		return p.decided(reg, BucketForeign, string(result.Rule))
	}

	if p.classifier.IsInterim(reg) {
		reg.SetDisposition(DispositionInterim)
		return p.decided(reg, BucketInterim, "interim prefix")
	}
	if !p.isBook(reg) {
		reg.SetDisposition(DispositionNotABook)
		return p.decided(reg, BucketNotABook, "registration class")
	}

	date, _ := reg.BestGuessDate()
	switch year := date.Year(); {
	case year < p.policy.CutoffYear:
		reg.SetDisposition(DispositionTooOld)
		return p.decided(reg, BucketTooOld, "before cutoff year")
	case year > p.policy.UpperYearBound:
		reg.SetDisposition(DispositionTooNew)
		return p.decided(reg, BucketTooNew, "after upper year bound")
	}

	outcome := p.matcher.Apply(reg)
	var bucket Bucket
	switch outcome.Confidence {
	case renewal.Certain:
		bucket = BucketRenewed
	case renewal.Probable:
		bucket = BucketProbablyRenewed
	case renewal.Possible:
		bucket = BucketPossiblyRenewed
		p.anomaly(faults.AnomalyAmbiguousRenewalMatch)
	default:
		bucket = BucketNotRenewed
	}
	return p.decided(reg, bucket, outcome.Disposition)
}

// Reject routes a record that could not be decoded to the error bucket.
// The raw input is kept in Extra for inspection.
func (p *Pipeline) Reject(raw string, cause error, emit Emitter) error {
	reg := &record.Registration{Extra: map[string]any{ExtraRaw: raw}}
	err := cause
	if !errors.Is(err, faults.ErrMalformedRecord) {
		err = faults.Wrap(faults.ErrMalformedRecord, "", "decode", "", cause)
	}
	bucket := p.reject(reg, err)
	p.tally.Add(bucket)
	if p.observer != nil {
		p.observer.ObserveBucket(bucket.String())
	}
	return emit(bucket, reg)
}

func (p *Pipeline) check(reg *record.Registration) error {
	if len(reg.Regnums) == 0 {
		return faults.Wrap(faults.ErrMissingRegistrationNumber, "", "", reasonNoRegnum, nil)
	}
	if _, ok := reg.BestGuessDate(); !ok {
		return faults.Wrap(faults.ErrMissingOrUnparseableDate, "", "", reasonNoDate, nil)
	}
	return nil
}

func (p *Pipeline) reject(reg *record.Registration, err error) Bucket {
	reg.Error = faults.Reason(err)
	reg.SetDisposition(DispositionError)
	p.logger.Debug("registration rejected",
		logging.Regnums(reg.Regnums),
		logging.Error(err),
	)
	return BucketError
}

func (p *Pipeline) isBook(reg *record.Registration) bool {
	for _, regnum := range reg.Regnums {
		for _, prefix := range p.policy.BookPrefixes {
			if strings.HasPrefix(strings.ToUpper(regnum), prefix) {
				return true
			}
		}
	}
	return false
}

func (p *Pipeline) decided(reg *record.Registration, bucket Bucket, reason string) Bucket {
	attrs := append(logging.DecisionAttrs("disposition", bucket.String(), reason),
		logging.Regnums(reg.Regnums))
	p.logger.Debug("registration classified", logging.Args(attrs...)...)
	return bucket
}

func (p *Pipeline) anomaly(kind faults.Anomaly) {
	if p.observer != nil {
		p.observer.ObserveAnomaly(kind.String())
	}
}
