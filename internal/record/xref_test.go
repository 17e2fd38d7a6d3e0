package record

import "testing"

func TestParseXrefs(t *testing.T) {
	tests := []struct {
		name    string
		note    string
		regnum  string
		regDate string
	}{
		{"date then number", "Prev. reg. 19Jun58, A-12345", "A12345", "1958-06-19"},
		{"number then date", "See AF-987; 3Mar31", "AF987", "1931-03-03"},
		{"bare number", "Also registered as AA123456", "AA123456", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &Registration{Regnums: []string{"AF1"}, Title: "Source", Notes: []string{tt.note}}
			xrefs := reg.ParseXrefs()
			if len(xrefs) != 1 {
				t.Fatalf("expected one xref, got %v", xrefs)
			}
			got := xrefs[0]
			if got.Regnum != tt.regnum || got.RegDate != tt.regDate {
				t.Fatalf("expected %s/%s, got %s/%s", tt.regnum, tt.regDate, got.Regnum, got.RegDate)
			}
			if got.Source == nil || got.Source.Title != "Source" {
				t.Fatalf("expected source snapshot, got %+v", got.Source)
			}
			if len(reg.Xrefs) != 1 {
				t.Fatal("expected xrefs stored on registration")
			}
		})
	}
}

func TestParseXrefsIgnoresPlainNotes(t *testing.T) {
	reg := &Registration{Notes: []string{"Illustrated edition", ""}}
	if xrefs := reg.ParseXrefs(); len(xrefs) != 0 {
		t.Fatalf("expected no xrefs, got %v", xrefs)
	}
}
