package testsupport

import (
	"encoding/json"
	"testing"

	"crclear/internal/record"
)

// Registration decodes a registration from its JSON form, the way the
// pipeline reads it.
func Registration(t testing.TB, raw string) *record.Registration {
	t.Helper()

	var reg record.Registration
	if err := json.Unmarshal([]byte(raw), &reg); err != nil {
		t.Fatalf("decode registration: %v", err)
	}
	return &reg
}
