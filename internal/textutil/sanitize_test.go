package textutil

import "testing"

func TestSanitizeToken(t *testing.T) {
	tests := map[string]string{
		"not-renewed":          "not-renewed",
		"Renewals Matched":     "renewals_matched",
		"../etc/passwd":        "etc_passwd",
		"   ":                  "unknown",
		"///":                  "unknown",
		"probably-renewed!":    "probably-renewed",
		"Renewed (date match)": "renewed_date_match",
		"façade":               "fa_ade",
	}
	for in, want := range tests {
		if got := SanitizeToken(in); got != want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}
