package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"crclear/internal/record"
	"crclear/internal/textutil"
)

// Record is one external catalog entry. Creator is the Internet Archive
// name for the author field.
type Record struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	Creator    string `json:"creator,omitempty"`
	Year       int    `json:"year,omitempty"`
	RightsCode string `json:"rightsCode,omitempty"`
	LicenseURL string `json:"licenseUrl,omitempty"`
	URL        string `json:"url,omitempty"`
	Source     string `json:"source,omitempty"`
}

// UnmarshalJSON accepts year as a number or a numeric string. An empty or
// null year leaves Year zero.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		Year json.RawMessage `json:"year"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	year, err := parseYear(aux.Year)
	if err != nil {
		return err
	}
	r.Year = year
	return nil
}

func parseYear(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, nil
		}
		year, err := strconv.Atoi(text)
		if err != nil {
			return 0, fmt.Errorf("year %q: %w", text, err)
		}
		return year, nil
	}
	var year int
	if err := json.Unmarshal(raw, &year); err != nil {
		return 0, fmt.Errorf("year %s: %w", raw, err)
	}
	return year, nil
}

// Entry is a Record with the normalized fields scoring needs.
type Entry struct {
	Record
	NormalizedTitle  string
	NormalizedAuthor string
	Key              string
}

// NewEntry normalizes rec. ok is false when nothing of the title survives
// normalization, in which case the record cannot be blocked. A record with
// no author takes its creator as the author.
func NewEntry(n *textutil.Normalizer, rec Record) (Entry, bool) {
	title := n.CatalogTitle(rec.Title)
	if title == "" {
		return Entry{}, false
	}
	if strings.TrimSpace(rec.Author) == "" {
		rec.Author = rec.Creator
	}
	return Entry{
		Record:           rec,
		NormalizedTitle:  title,
		NormalizedAuthor: n.Name(rec.Author),
		Key:              textutil.TitleKey(title),
	}, true
}

// Source yields the catalog entries sharing a title key.
type Source interface {
	Candidates(ctx context.Context, key string) ([]Entry, error)
}

// Candidate is a scored pairing queued for manual review.
type Candidate struct {
	Quality      float64              `json:"quality"`
	Catalog      Record               `json:"catalog"`
	Registration *record.Registration `json:"registration"`
}
