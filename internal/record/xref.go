package record

import "regexp"

var (
	dateAndNumberXref = regexp.MustCompile(`([0-9]{0,2}[A-Z][a-z]{2}[0-9]{2})[;,] ?(A[A-Z]?[0-9-]+)`)
	numberAndDateXref = regexp.MustCompile(`(A[A-Z]?[0-9-]+)[;,] ?([0-9]{0,2}[A-Z][a-z]{2}[0-9]{2})`)
	bareNumberXref    = regexp.MustCompile(`(A{1,2}[0-9-]{4,})`)
)

// CrossReference is a mention of another registration inside a note. Source
// identifies the registration whose note held it.
type CrossReference struct {
	Regnum  string          `json:"regnum"`
	RegDate string          `json:"reg_date,omitempty"`
	Note    string          `json:"note"`
	Source  *ParentSnapshot `json:"source,omitempty"`
}

// ParseXrefs scans r's notes for references to other registrations, stores
// them on r, and returns them. A note yields at most one reference.
func (r *Registration) ParseXrefs() []CrossReference {
	var xrefs []CrossReference
	var source *ParentSnapshot
	for _, note := range r.Notes {
		xref, ok := r.xref(note)
		if !ok {
			continue
		}
		if source == nil {
			s := r.Snapshot()
			source = &s
		}
		xref.Source = source
		xrefs = append(xrefs, xref)
	}
	r.Xrefs = xrefs
	return xrefs
}

func (r *Registration) xref(note string) (CrossReference, bool) {
	if note == "" {
		return CrossReference{}, false
	}
	var regnum string
	pairs := []struct {
		re                  *regexp.Regexp
		dateGroup, numGroup int
	}{
		{dateAndNumberXref, 1, 2},
		{numberAndDateXref, 2, 1},
	}
	for _, pair := range pairs {
		m := pair.re.FindStringSubmatch(note)
		if m == nil {
			continue
		}
		regnum = m[pair.numGroup]
		if date, ok := ParseDate(m[pair.dateGroup]); ok {
			return CrossReference{Regnum: RegnumKey(regnum), RegDate: date.Format(ISODate), Note: note}, true
		}
		r.Warn("Could not parse date %s", m[pair.dateGroup])
	}
	if m := bareNumberXref.FindStringSubmatch(note); m != nil {
		regnum = m[1]
	}
	if regnum == "" {
		return CrossReference{}, false
	}
	return CrossReference{Regnum: RegnumKey(regnum), Note: note}, true
}
