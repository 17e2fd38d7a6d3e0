package record

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"1935", "1935-01-01", true},
		{"1935-06", "1935-06-01", true},
		{"1935-06-14", "1935-06-14", true},
		{"1935-06-00", "1935-06-01", true},
		{"19Jun58", "1958-06-19", true},
		{"5Jan25", "1925-01-05", true},
		{"March 3, 1941", "1941-03-03", true},
		{"1899", "", false},
		{"2003-01-01", "", false},
		{"unknown", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v (%v)", tt.ok, ok, got)
			}
			if ok && got.Format(ISODate) != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got.Format(ISODate))
			}
		})
	}
}

func TestRegDateDecodesStringOrObject(t *testing.T) {
	var dates []RegDate
	if err := json.Unmarshal([]byte(`["1940", {"_text": "x", "date": "1941-02-03"}]`), &dates); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(dates))
	}
	if dates[0].Text() != "1940" {
		t.Fatalf("expected bare string as raw text, got %q", dates[0].Text())
	}
	if dates[1].Text() != "1941-02-03" {
		t.Fatalf("expected date attribute to win, got %q", dates[1].Text())
	}
}

func TestBestGuessDatePrefersRegistrationDates(t *testing.T) {
	reg := &Registration{
		RegDates: []RegDate{{Raw: "1941-05-02"}, {Raw: "1940-11-30"}, {Raw: "garbage"}},
		Publishers: []Publisher{
			{Dates: []RegDate{{Raw: "1939"}}},
		},
	}
	got, ok := reg.BestGuessDate()
	if !ok {
		t.Fatal("expected a date")
	}
	if got.Format(ISODate) != "1940-11-30" {
		t.Fatalf("expected earliest registration date, got %s", got.Format(ISODate))
	}
	if reg.RegDates[0].Normalized != "1941-05-02" {
		t.Fatalf("expected normalized value written back, got %q", reg.RegDates[0].Normalized)
	}
	if reg.RegDates[2].Error == "" {
		t.Fatal("expected parse error recorded on unparseable date")
	}
	if len(reg.Warnings) != 1 || reg.Warnings[0] != "Could not parse date garbage" {
		t.Fatalf("unexpected warnings %v", reg.Warnings)
	}

	// Computed once: repeated calls add no warnings.
	reg.BestGuessDate()
	if len(reg.Warnings) != 1 {
		t.Fatalf("expected warnings to stay stable, got %v", reg.Warnings)
	}
}

func TestBestGuessDateFallsBackToPublication(t *testing.T) {
	reg := &Registration{
		Publishers: []Publisher{
			{Dates: []RegDate{{Raw: "1942"}, {Raw: "1938-07"}}},
		},
	}
	got, ok := reg.BestGuessDate()
	if !ok || got.Year() != 1938 {
		t.Fatalf("expected 1938 publication date, got %v (%v)", got, ok)
	}
	if len(reg.Warnings) != 1 || reg.Warnings[0] != "No registration date found; assumed earliest publication date." {
		t.Fatalf("unexpected warnings %v", reg.Warnings)
	}
}

func TestBestGuessDateMissing(t *testing.T) {
	reg := &Registration{}
	if _, ok := reg.BestGuessDate(); ok {
		t.Fatal("expected no date")
	}
}
