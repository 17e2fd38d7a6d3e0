package record

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
)

const nestedEntry = `{
  "uuid": "parent-1",
  "regnums": ["A123456", ""],
  "reg_dates": [{"_text": "1935"}],
  "title": ["The Long Road", "A Novel"],
  "authors": ["Jane Doe"],
  "children": [
    {"regnums": ["A123457"], "title": "Companion", "children": [{"regnums": ["A1"]}]}
  ]
}`

func TestRegistrationDecodeLinksChildren(t *testing.T) {
	var reg Registration
	if err := json.Unmarshal([]byte(nestedEntry), &reg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if reg.Title != "The Long Road: A Novel" {
		t.Fatalf("expected joined title, got %q", reg.Title)
	}
	if !slices.Equal(reg.Regnums, []string{"A123456"}) {
		t.Fatalf("expected empty regnum dropped, got %v", reg.Regnums)
	}
	child := reg.Children[0]
	if child.Parent == nil {
		t.Fatal("expected parent snapshot on child")
	}
	if child.Parent.UUID != "parent-1" || child.Parent.RegDate != "1935-01-01" {
		t.Fatalf("unexpected snapshot %+v", child.Parent)
	}
	grandchild := child.Children[0]
	if grandchild.Parent == nil || grandchild.Parent.Title != "Companion" {
		t.Fatalf("expected grandchild to reference its immediate parent, got %+v", grandchild.Parent)
	}
}

func TestRegistrationTitleVariants(t *testing.T) {
	var reg Registration
	if err := json.Unmarshal([]byte(`{"title": ["One", "Two", "Three"]}`), &reg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if reg.Title != "One" {
		t.Fatalf("expected first variant, got %q", reg.Title)
	}
	if err := json.Unmarshal([]byte(`{"title": 42}`), &reg); err == nil {
		t.Fatal("expected error for numeric title")
	}
}

func TestDetachedOmitsChildren(t *testing.T) {
	var reg Registration
	if err := json.Unmarshal([]byte(nestedEntry), &reg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(reg.Detached())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(out), "children") {
		t.Fatalf("expected children omitted, got %s", out)
	}
	if len(reg.Children) != 1 {
		t.Fatal("expected original children untouched")
	}
}

func TestSetDispositionOnce(t *testing.T) {
	reg := &Registration{}
	if !reg.SetDisposition("Not renewed") {
		t.Fatal("expected first disposition to be set")
	}
	if reg.SetDisposition("Foreign publication.") {
		t.Fatal("expected second disposition to be refused")
	}
	if reg.Disposition != "Not renewed" {
		t.Fatalf("expected original disposition kept, got %q", reg.Disposition)
	}
	reg.Reclassify("Classified with parent.", "moved")
	if reg.Disposition != "Classified with parent." || len(reg.Warnings) != 1 {
		t.Fatalf("unexpected reclassification state %+v", reg)
	}
}

func TestEnsureUUIDs(t *testing.T) {
	reg := &Registration{
		UUID:     "keep",
		Children: []*Registration{{}, {UUID: "child"}},
	}
	reg.EnsureUUIDs()
	if reg.UUID != "keep" {
		t.Fatalf("expected existing uuid kept, got %q", reg.UUID)
	}
	if reg.Children[0].UUID == "" {
		t.Fatal("expected generated uuid for child")
	}
	if reg.Children[1].UUID != "child" {
		t.Fatalf("expected child uuid kept, got %q", reg.Children[1].UUID)
	}
	if reg.Children[0].Parent == nil || reg.Children[0].Parent.UUID != "keep" {
		t.Fatalf("expected refreshed snapshot, got %+v", reg.Children[0].Parent)
	}
}

func TestWalkDepthFirst(t *testing.T) {
	reg := &Registration{
		Title: "root",
		Children: []*Registration{
			{Title: "a", Children: []*Registration{{Title: "a1"}}},
			{Title: "b"},
		},
	}
	var order []string
	reg.Walk(func(r *Registration) { order = append(order, r.Title) })
	if !slices.Equal(order, []string{"root", "a", "a1", "b"}) {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestRenewalRegnumShapes(t *testing.T) {
	var single, many Renewal
	if err := json.Unmarshal([]byte(`{"regnum": "A-123", "reg_date": "19Jun58"}`), &single); err != nil {
		t.Fatalf("unmarshal single: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"regnum": ["A1", "A-2"]}`), &many); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if !slices.Equal(single.Keys(), []string{"A123"}) {
		t.Fatalf("unexpected single keys %v", single.Keys())
	}
	if !slices.Equal(many.Keys(), []string{"A1", "A2"}) {
		t.Fatalf("unexpected list keys %v", many.Keys())
	}
	if single.NormalizedRegDate() != "1958-06-19" {
		t.Fatalf("unexpected normalized date %q", single.NormalizedRegDate())
	}
	out, err := json.Marshal(single)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"regnum":"A-123"`) {
		t.Fatalf("expected single regnum encoded as string, got %s", out)
	}
}

func TestAuthorAndTitleMatch(t *testing.T) {
	reg := &Registration{Title: "The Long Road", Authors: []string{"Smith, John", "Doe, Jane"}}
	if !reg.AuthorMatch("Jane Doe", 0.75) {
		t.Fatal("expected author match regardless of order")
	}
	if reg.AuthorMatch("", 0.75) {
		t.Fatal("expected empty author not to match")
	}
	if !reg.TitleMatch("the long road", 0.75) {
		t.Fatal("expected title match")
	}
}
