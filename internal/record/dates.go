package record

import (
	"encoding/json"
	"time"
)

// ISODate is the layout of every normalized date the pipeline writes.
const ISODate = "2006-01-02"

const (
	minPlausibleYear = 1900
	maxPlausibleYear = 1995
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	"2Jan06",
	"Jan06",
	"January 2, 2006",
	"Jan. 2, 2006",
	"Jan 2, 2006",
	"January 2006",
}

// RegDate is a raw date as it appeared in the source plus its parsed form.
// Sources supply the raw value either as text or as a date attribute.
type RegDate struct {
	Raw        string `json:"_text,omitempty"`
	Date       string `json:"date,omitempty"`
	Normalized string `json:"_normalized,omitempty"`
	Error      string `json:"_error,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare date string.
func (d *RegDate) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*d = RegDate{Raw: text}
		return nil
	}
	type plain RegDate
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = RegDate(p)
	return nil
}

// Text is the raw value to parse; the date attribute wins over the text.
func (d RegDate) Text() string {
	if d.Date != "" {
		return d.Date
	}
	return d.Raw
}

// ParseDate parses the date formats found in registration and renewal
// records. When the full value fails and its eighth character is a hyphen,
// the year and month alone are tried. Two-digit years that land after 2000
// are moved back a century, and years outside 1900-1995 are rejected.
func ParseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	attempts := []string{raw}
	if len(raw) > 7 && raw[7] == '-' {
		attempts = append(attempts, raw[:7])
	}
	for _, attempt := range attempts {
		parsed, ok := parseLayouts(attempt)
		if !ok {
			continue
		}
		if parsed.Year() > 2000 && (len(raw) == 6 || len(raw) == 7) {
			parsed = parsed.AddDate(-100, 0, 0)
		}
		if parsed.Year() < minPlausibleYear || parsed.Year() > maxPlausibleYear {
			continue
		}
		return parsed, true
	}
	return time.Time{}, false
}

// NormalizeDate returns raw in ISODate form, or "" when it does not parse.
func NormalizeDate(raw string) string {
	parsed, ok := ParseDate(raw)
	if !ok {
		return ""
	}
	return parsed.Format(ISODate)
}

func parseLayouts(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// normalize parses d in place, recording the normalized value or an error.
func (d *RegDate) normalize() (time.Time, bool) {
	parsed, ok := ParseDate(d.Text())
	if ok {
		d.Normalized = parsed.Format(ISODate)
		d.Error = ""
		return parsed, true
	}
	d.Normalized = ""
	d.Error = "Could not parse date."
	return time.Time{}, false
}
