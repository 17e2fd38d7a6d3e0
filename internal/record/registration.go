package record

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"crclear/internal/textutil"
)

// Publisher describes who published a work, where, and when.
type Publisher struct {
	Dates        []RegDate      `json:"dates,omitempty"`
	Places       []string       `json:"places,omitempty"`
	Claimants    []string       `json:"claimants,omitempty"`
	Nonclaimants []string       `json:"nonclaimants,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// ParentSnapshot is the immutable summary a child keeps of its parent. It
// never holds the parent itself, so the registration graph stays a tree.
type ParentSnapshot struct {
	UUID    string   `json:"uuid,omitempty"`
	Regnums []string `json:"regnums,omitempty"`
	RegDate string   `json:"reg_date,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Title   string   `json:"title,omitempty"`
}

// Registration is one copyright registration entry and the additional
// entries it owns.
type Registration struct {
	UUID                 string           `json:"uuid,omitempty"`
	Regnums              []string         `json:"regnums"`
	RegDates             []RegDate        `json:"reg_dates"`
	Title                string           `json:"title,omitempty"`
	Authors              []string         `json:"authors,omitempty"`
	Notes                []string         `json:"notes,omitempty"`
	Publishers           []Publisher      `json:"publishers,omitempty"`
	PreviousRegnums      []string         `json:"previous_regnums,omitempty"`
	PreviousPublications []string         `json:"previous_publications,omitempty"`
	Extra                map[string]any   `json:"extra,omitempty"`
	Parent               *ParentSnapshot  `json:"parent,omitempty"`
	Children             []*Registration  `json:"children,omitempty"`
	Xrefs                []CrossReference `json:"xrefs,omitempty"`
	Warnings             []string         `json:"warnings"`
	Error                string           `json:"error,omitempty"`
	Disposition          string           `json:"disposition,omitempty"`
	Renewals             []Renewal        `json:"renewals,omitempty"`

	dated     bool
	bestGuess time.Time
	hasDate   bool
}

// UnmarshalJSON decodes a registration whose title may be a plain string, a
// [title, subtitle] pair, or a list of variant titles. Empty regnums are
// dropped and children are linked to a snapshot of this record.
func (r *Registration) UnmarshalJSON(data []byte) error {
	type plain Registration
	aux := struct {
		*plain
		Title json.RawMessage `json:"title"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	title, err := decodeTitle(aux.Title)
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	r.Title = title
	r.Regnums = compact(r.Regnums)
	r.Link()
	return nil
}

func decodeTitle(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}
	var parts []string
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", err
	}
	return textutil.TitleText(parts...), nil
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// Link gives every descendant a snapshot of its immediate parent.
func (r *Registration) Link() {
	if len(r.Children) == 0 {
		return
	}
	snapshot := r.Snapshot()
	for _, child := range r.Children {
		if child == nil {
			continue
		}
		s := snapshot
		child.Parent = &s
		child.Link()
	}
}

// Snapshot summarizes r for use as a child's parent reference.
func (r *Registration) Snapshot() ParentSnapshot {
	s := ParentSnapshot{
		UUID:    r.UUID,
		Regnums: append([]string(nil), r.Regnums...),
		Authors: append([]string(nil), r.Authors...),
		Title:   r.Title,
	}
	if date, ok := r.BestGuessDate(); ok {
		s.RegDate = date.Format(ISODate)
	}
	return s
}

// Warn appends a human-readable caveat.
func (r *Registration) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// SetDisposition records the terminal classification. It reports false and
// leaves the record unchanged when a disposition is already set.
func (r *Registration) SetDisposition(disposition string) bool {
	if r.Disposition != "" {
		return false
	}
	r.Disposition = disposition
	return true
}

// Reclassify overwrites the disposition. Only parent inheritance uses it.
func (r *Registration) Reclassify(disposition, warning string) {
	r.Disposition = disposition
	if warning != "" {
		r.Warnings = append(r.Warnings, warning)
	}
}

// Places lists every publication place across publishers.
func (r *Registration) Places() []string {
	var places []string
	for _, p := range r.Publishers {
		places = append(places, p.Places...)
	}
	return places
}

// RegistrationDates parses every registration date, in source order.
func (r *Registration) RegistrationDates() []time.Time {
	var out []time.Time
	for i := range r.RegDates {
		if parsed, ok := r.parseDate(&r.RegDates[i]); ok {
			out = append(out, parsed)
		}
	}
	return out
}

// NormalizedRegistrationDates returns the ISO form of every parseable
// registration date.
func (r *Registration) NormalizedRegistrationDates() []string {
	dates := r.RegistrationDates()
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(ISODate))
	}
	return out
}

// PublicationDates parses every publisher date, in source order.
func (r *Registration) PublicationDates() []time.Time {
	var out []time.Time
	for i := range r.Publishers {
		for j := range r.Publishers[i].Dates {
			if parsed, ok := r.parseDate(&r.Publishers[i].Dates[j]); ok {
				out = append(out, parsed)
			}
		}
	}
	return out
}

// BestGuessDate is the earliest registration date, falling back to the
// earliest publication date with a warning. The result is computed once.
func (r *Registration) BestGuessDate() (time.Time, bool) {
	if r.dated {
		return r.bestGuess, r.hasDate
	}
	r.dated = true
	if earliest, ok := earliestOf(r.RegistrationDates()); ok {
		r.bestGuess, r.hasDate = earliest, true
		return earliest, true
	}
	if earliest, ok := earliestOf(r.PublicationDates()); ok {
		r.Warn("No registration date found; assumed earliest publication date.")
		r.bestGuess, r.hasDate = earliest, true
		return earliest, true
	}
	return time.Time{}, false
}

func (r *Registration) parseDate(d *RegDate) (time.Time, bool) {
	alreadyFailed := d.Error != ""
	parsed, ok := d.normalize()
	if !ok && !alreadyFailed && d.Text() != "" {
		r.Warn("Could not parse date %s", d.Text())
	}
	return parsed, ok
}

func earliestOf(dates []time.Time) (time.Time, bool) {
	if len(dates) == 0 {
		return time.Time{}, false
	}
	earliest := dates[0]
	for _, d := range dates[1:] {
		if d.Before(earliest) {
			earliest = d
		}
	}
	return earliest, true
}

// Detached returns a shallow copy of r without its children, the form in
// which every registration is written to an output stream.
func (r *Registration) Detached() *Registration {
	out := *r
	out.Children = nil
	return &out
}

// Walk visits r and then its descendants depth-first.
func (r *Registration) Walk(fn func(*Registration)) {
	fn(r)
	for _, child := range r.Children {
		if child != nil {
			child.Walk(fn)
		}
	}
}

// EnsureUUIDs assigns a random identifier to r and any descendant lacking one
// and refreshes the children's parent snapshots.
func (r *Registration) EnsureUUIDs() {
	r.Walk(func(reg *Registration) {
		if reg.UUID == "" {
			reg.UUID = uuid.NewString()
		}
	})
	r.Link()
}

// AuthorMatch reports whether any of r's authors word-overlaps other.
func (r *Registration) AuthorMatch(other string, quotient float64) bool {
	if other == "" {
		return false
	}
	for _, author := range r.Authors {
		if textutil.WordOverlap(author, other, quotient) {
			return true
		}
	}
	return false
}

// TitleMatch reports whether r's title word-overlaps other.
func (r *Registration) TitleMatch(other string, quotient float64) bool {
	return textutil.WordOverlap(r.Title, other, quotient)
}
