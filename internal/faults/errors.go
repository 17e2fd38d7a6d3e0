package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingRegistrationNumber = errors.New("missing registration number")
	ErrMissingOrUnparseableDate  = errors.New("missing or unparseable date")
	ErrMalformedRecord           = errors.New("malformed record")
	ErrConfiguration             = errors.New("configuration error")
	ErrIO                        = errors.New("i/o error")
)

// Anomaly names a non-fatal condition recorded on a record and in logs.
type Anomaly string

const (
	AnomalyAmbiguousRenewalMatch     Anomaly = "ambiguous_renewal_match"
	AnomalyUnparseableAncillaryDate  Anomaly = "unparseable_ancillary_date"
	AnomalyHierarchyReclassification Anomaly = "hierarchy_reclassification"
	AnomalyPossibleForeign           Anomaly = "possible_foreign"
)

// String returns the anomaly identifier.
func (a Anomaly) String() string { return string(a) }

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRecordFatal reports whether err stops classification of the record it
// belongs to. Such records land in the error bucket; processing continues.
func IsRecordFatal(err error) bool {
	return errors.Is(err, ErrMissingRegistrationNumber) ||
		errors.Is(err, ErrMissingOrUnparseableDate) ||
		errors.Is(err, ErrMalformedRecord)
}

// Reason returns the human-readable explanation stored on an error-bucket
// record: the message without the sentinel prefix when one is present.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{ErrMissingRegistrationNumber, ErrMissingOrUnparseableDate, ErrMalformedRecord} {
		if errors.Is(err, marker) {
			if rest, ok := strings.CutPrefix(msg, marker.Error()+": "); ok {
				return rest
			}
			return msg
		}
	}
	return msg
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
