package renewal_test

import (
	"testing"

	"crclear/internal/record"
	"crclear/internal/renewal"
	"crclear/internal/testsupport"
)

func newMatcher(renewals ...*record.Renewal) (*renewal.Matcher, *renewal.Index) {
	idx := renewal.NewIndex(renewals)
	return renewal.NewMatcher(idx, renewal.Policy{WordOverlapQuotient: 0.75}, nil), idx
}

func TestApplySingleDateMatch(t *testing.T) {
	reg := testsupport.Registration(t, `{"regnums":["A123456"],"reg_dates":[{"_text":"1935"}],"title":"The Long Road","authors":["Jane Doe"]}`)
	ren := &record.Renewal{Regnum: record.Regnums{"A123456"}, RegDate: "1935-01-01", Author: "Jane Doe", Title: "The Long Road"}
	m, _ := newMatcher(ren)

	out := m.Apply(reg)
	if out.Disposition != renewal.RenewedDateMatch {
		t.Fatalf("expected %q, got %q", renewal.RenewedDateMatch, out.Disposition)
	}
	if reg.Disposition != renewal.RenewedDateMatch {
		t.Fatalf("registration disposition = %q", reg.Disposition)
	}
	if len(reg.Renewals) != 1 || reg.Renewals[0].Title != "The Long Road" {
		t.Fatalf("renewals = %+v", reg.Renewals)
	}
	if !m.Used(ren) {
		t.Fatal("renewal not marked used")
	}
}

func TestApplySingleDateMismatch(t *testing.T) {
	reg := testsupport.Registration(t, `{"regnums":["A1-000"],"reg_dates":[{"_text":"1940-05-02"}]}`)
	ren := &record.Renewal{Regnum: record.Regnums{"A1000"}, RegDate: "1941-01-01"}
	m, _ := newMatcher(ren)

	out := m.Apply(reg)
	if out.Disposition != renewal.ProbablyRenewedDates {
		t.Fatalf("expected %q, got %q", renewal.ProbablyRenewedDates, out.Disposition)
	}
	if out.Confidence != renewal.Probable {
		t.Fatalf("expected probable, got %v", out.Confidence)
	}
}

func TestApplyNoCandidates(t *testing.T) {
	reg := testsupport.Registration(t, `{"regnums":["A5"],"reg_dates":[{"_text":"1940"}]}`)
	m, _ := newMatcher(&record.Renewal{Regnum: record.Regnums{"A6"}})

	out := m.Apply(reg)
	if out.Disposition != renewal.NotRenewed {
		t.Fatalf("expected %q, got %q", renewal.NotRenewed, out.Disposition)
	}
	if reg.Renewals != nil {
		t.Fatalf("expected no renewals, got %+v", reg.Renewals)
	}
}

func TestTieBreakOrder(t *testing.T) {
	tests := []struct {
		name     string
		renewals []*record.Renewal
		want     string
		wantIdx  int
	}{
		{
			name: "date wins over author",
			renewals: []*record.Renewal{
				{Regnum: record.Regnums{"A999"}, RegDate: "1950-01-01", Author: "Jane Doe"},
				{Regnum: record.Regnums{"A999"}, RegDate: "1940-03-04", Author: "Someone Else"},
			},
			want:    renewal.RenewedDateMatch,
			wantIdx: 1,
		},
		{
			name: "author",
			renewals: []*record.Renewal{
				{Regnum: record.Regnums{"A999"}, Author: "Bob Smith", Title: "Other"},
				{Regnum: record.Regnums{"A999"}, Author: "Doe, Jane", Title: "Unrelated"},
			},
			want:    renewal.ProbablyRenewedAuthor,
			wantIdx: 1,
		},
		{
			name: "title",
			renewals: []*record.Renewal{
				{Regnum: record.Regnums{"A999"}, Author: "Bob Smith", Title: "Cooking"},
				{Regnum: record.Regnums{"A999"}, Author: "Bob Smith", Title: "Long Road Home"},
			},
			want:    renewal.ProbablyRenewedTitle,
			wantIdx: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := testsupport.Registration(t, `{"regnums":["A999"],"reg_dates":[{"_text":"1940-03-04"}],"title":"Long Road Home","authors":["Jane Doe"]}`)
			m, _ := newMatcher(tt.renewals...)
			out := m.Apply(reg)
			if out.Disposition != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, out.Disposition)
			}
			if len(out.Renewals) != 1 || out.Renewals[0] != tt.renewals[tt.wantIdx] {
				t.Fatalf("expected renewal %d, got %+v", tt.wantIdx, out.Renewals)
			}
		})
	}
}

func TestAuthorMatchLeavesOtherUnmatched(t *testing.T) {
	matching := &record.Renewal{Regnum: record.Regnums{"A999"}, Author: "Jane Doe", Title: "Something"}
	other := &record.Renewal{Regnum: record.Regnums{"A999"}, Author: "Bob Smith", Title: "Different"}
	reg := testsupport.Registration(t, `{"regnums":["A999"],"reg_dates":[{"_text":"1940"}],"title":"The Book","authors":["Jane Doe"]}`)
	m, _ := newMatcher(other, matching)

	out := m.Apply(reg)
	if out.Disposition != renewal.ProbablyRenewedAuthor {
		t.Fatalf("expected %q, got %q", renewal.ProbablyRenewedAuthor, out.Disposition)
	}
	matched, unmatched := m.Partition()
	if len(matched) != 1 || matched[0] != matching {
		t.Fatalf("matched = %+v", matched)
	}
	if len(unmatched) != 1 || unmatched[0] != other {
		t.Fatalf("unmatched = %+v", unmatched)
	}
}

func TestAmbiguousReturnsAllAndMarksUsed(t *testing.T) {
	a := &record.Renewal{Regnum: record.Regnums{"A77"}, Author: "X", Title: "Alpha"}
	b := &record.Renewal{Regnum: record.Regnums{"A77"}, Author: "Y", Title: "Beta"}
	reg := testsupport.Registration(t, `{"regnums":["A77"],"reg_dates":[{"_text":"1940"}],"title":"Gamma","authors":["Z"]}`)
	m, _ := newMatcher(a, b)

	out := m.Apply(reg)
	if out.Disposition != renewal.PossiblyRenewed {
		t.Fatalf("expected %q, got %q", renewal.PossiblyRenewed, out.Disposition)
	}
	if len(reg.Renewals) != 2 {
		t.Fatalf("expected 2 renewals, got %d", len(reg.Renewals))
	}
	if m.UsedCount() != 2 {
		t.Fatalf("expected 2 used, got %d", m.UsedCount())
	}
}

func TestMatchIsIdempotent(t *testing.T) {
	a := &record.Renewal{Regnum: record.Regnums{"A77"}, Author: "X"}
	b := &record.Renewal{Regnum: record.Regnums{"A7-7"}, Author: "Y"}
	reg := testsupport.Registration(t, `{"regnums":["A77"],"reg_dates":[{"_text":"1940"}]}`)
	m, _ := newMatcher(a, b)

	first := m.Match(reg)
	second := m.Match(reg)
	if first.Disposition != second.Disposition || len(first.Renewals) != len(second.Renewals) {
		t.Fatalf("outcomes differ: %+v vs %+v", first, second)
	}
	for i := range first.Renewals {
		if first.Renewals[i] != second.Renewals[i] {
			t.Fatalf("candidate %d differs", i)
		}
	}
	if m.UsedCount() != 0 {
		t.Fatalf("Match marked %d renewals used", m.UsedCount())
	}
}

func TestRepeatedMatchWarnsOnceForBadDate(t *testing.T) {
	r := &record.Renewal{Regnum: record.Regnums{"A77"}, RegDate: "1940-01-01"}
	reg := testsupport.Registration(t, `{"regnums":["A77"],"reg_dates":[{"_text":"1940"},{"_text":"someday"}]}`)
	m, _ := newMatcher(r)

	first := m.Match(reg)
	warnings := len(reg.Warnings)
	second := m.Match(reg)
	if first.Disposition != second.Disposition {
		t.Fatalf("dispositions differ: %q vs %q", first.Disposition, second.Disposition)
	}
	if warnings != 1 || len(reg.Warnings) != warnings {
		t.Fatalf("expected one parse warning kept across calls, got %v", reg.Warnings)
	}
}

func TestIndexCandidatesDeduplicates(t *testing.T) {
	r := &record.Renewal{Regnum: record.Regnums{"A1", "A-2"}}
	idx := renewal.NewIndex([]*record.Renewal{r})
	got := idx.Candidates([]string{"A1", "A2"})
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if idx.Len() != 1 {
		t.Fatalf("expected Len 1, got %d", idx.Len())
	}
}
