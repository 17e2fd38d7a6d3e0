package faults_test

import (
	"errors"
	"strings"
	"testing"

	"crclear/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrIO, "classify", "write", "append failed", base)
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"classify", "write", "append failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := faults.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "pipeline failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsRecordFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"missing regnum", faults.Wrap(faults.ErrMissingRegistrationNumber, "", "", "no regnum", nil), true},
		{"missing date", faults.Wrap(faults.ErrMissingOrUnparseableDate, "", "", "no date", nil), true},
		{"malformed", faults.ErrMalformedRecord, true},
		{"configuration", faults.ErrConfiguration, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := faults.IsRecordFatal(tt.err); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestReasonStripsMarker(t *testing.T) {
	err := faults.Wrap(faults.ErrMissingRegistrationNumber, "", "", "No registration number.", nil)
	if got := faults.Reason(err); got != "No registration number." {
		t.Fatalf("expected bare reason, got %q", got)
	}
	if got := faults.Reason(nil); got != "" {
		t.Fatalf("expected empty reason for nil, got %q", got)
	}
}
