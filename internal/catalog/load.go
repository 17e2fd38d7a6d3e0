package catalog

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"crclear/internal/faults"
	"crclear/internal/stream"
)

// Input formats understood by Load.
const (
	FormatHathi  = "hathi"
	FormatNDJSON = "ndjson"
)

const (
	hathiColumns   = 26
	hathiRecordURL = "https://catalog.hathitrust.org/Record/"
)

// Column positions in a HathiTrust hathi_full file.
const (
	colRights       = 2
	colBibKey       = 3
	colTitle        = 11
	colGovDoc       = 15
	colRightsDate   = 16
	colBibFormat    = 19
	colAuthor       = 25
	hathiBookFormat = "BK"
)

var inCopyrightRights = map[string]struct{}{"ic": {}, "und": {}}

// LoadStats counts what a loader saw.
type LoadStats struct {
	Lines    int
	Accepted int
	Skipped  int
	Rejected int
}

// Load reads catalog records in format from r and hands every accepted one
// to fn.
func Load(ctx context.Context, format string, r io.Reader, policy Policy, fn func(Record) error) (LoadStats, error) {
	switch format {
	case FormatHathi:
		return LoadHathi(ctx, r, policy, fn)
	case FormatNDJSON:
		return LoadNDJSON(ctx, r, fn)
	default:
		return LoadStats{}, faults.Wrap(faults.ErrConfiguration, "catalog", "load", fmt.Sprintf("unknown format %q (want %s or %s)", format, FormatHathi, FormatNDJSON), nil)
	}
}

// LoadHathi reads a tab-separated hathi_full file. Only in-copyright,
// non-government books whose rights year falls in the policy's window are
// kept; rows with the wrong number of columns are counted as rejected.
func LoadHathi(ctx context.Context, r io.Reader, policy Policy, fn func(Record) error) (LoadStats, error) {
	var stats LoadStats
	err := stream.Lines(ctx, r, func(_ int, text []byte) error {
		stats.Lines++
		row := strings.Split(string(text), "\t")
		if len(row) != hathiColumns {
			stats.Rejected++
			return nil
		}
		rec, ok := hathiRecord(row, policy)
		if !ok {
			stats.Skipped++
			return nil
		}
		stats.Accepted++
		return fn(rec)
	})
	return stats, err
}

func hathiRecord(row []string, policy Policy) (Record, bool) {
	if row[colBibFormat] != hathiBookFormat || row[colGovDoc] != "0" {
		return Record{}, false
	}
	if _, ok := inCopyrightRights[row[colRights]]; !ok {
		return Record{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(row[colRightsDate]))
	if err != nil {
		return Record{}, false
	}
	if year < policy.CutoffYear || (policy.MaxYear > 0 && year > policy.MaxYear) {
		return Record{}, false
	}
	bibKey := strings.TrimSpace(row[colBibKey])
	return Record{
		Identifier: bibKey,
		Title:      row[colTitle],
		Author:     row[colAuthor],
		Year:       year,
		RightsCode: strings.TrimSpace(row[colRights]),
		URL:        hathiRecordURL + bibKey,
		Source:     FormatHathi,
	}, true
}

// LoadNDJSON reads one JSON Record per line. Lines that do not decode are
// counted as rejected.
func LoadNDJSON(ctx context.Context, r io.Reader, fn func(Record) error) (LoadStats, error) {
	var stats LoadStats
	err := stream.Decode(ctx, r, func(_ int, rec *Record, _ []byte, err error) error {
		stats.Lines++
		if err != nil {
			stats.Rejected++
			return nil
		}
		if rec.Source == "" {
			rec.Source = FormatNDJSON
		}
		stats.Accepted++
		return fn(*rec)
	})
	return stats, err
}
