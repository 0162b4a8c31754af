package models

import "testing"

func TestSortDirection_Toggle(t *testing.T) {
	tests := []struct {
		input    SortDirection
		expected SortDirection
	}{
		{SortAsc, SortDesc},
		{SortDesc, SortAsc},
		{"", SortDesc},
	}

	for _, tt := range tests {
		if got := tt.input.Toggle(); got != tt.expected {
			t.Errorf("%q.Toggle() = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestParseSortDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected SortDirection
		ok       bool
	}{
		{"asc", SortAsc, true},
		{"DESC", SortDesc, true},
		{" asc ", SortAsc, true},
		{"up", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseSortDirection(tt.input)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("ParseSortDirection(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.expected, tt.ok)
		}
	}
}

func TestDefaultFilters(t *testing.T) {
	f := DefaultFilters()

	if f.Title != "" || f.Description != "" || f.Severity != "" || f.Owner != "" {
		t.Errorf("expected empty text filters, got %+v", f)
	}
	if f.Page != 0 {
		t.Errorf("Page = %d, want 0", f.Page)
	}
	if f.Size != 10 {
		t.Errorf("Size = %d, want 10", f.Size)
	}
	if f.Sort != SortFieldCreatedAt {
		t.Errorf("Sort = %q, want %q", f.Sort, SortFieldCreatedAt)
	}
	if f.Direction != SortDesc {
		t.Errorf("Direction = %q, want %q", f.Direction, SortDesc)
	}
}

func TestSearchFilters_With(t *testing.T) {
	base := DefaultFilters()

	updated, ok := base.With(FilterOwner, "doe")
	if !ok {
		t.Fatal("expected owner key to be accepted")
	}
	if updated.Owner != "doe" {
		t.Errorf("Owner = %q, want %q", updated.Owner, "doe")
	}
	if base.Owner != "" {
		t.Error("With must not mutate the receiver")
	}

	if _, ok := base.With("page", "3"); ok {
		t.Error("expected unknown key to be rejected")
	}
}

func TestSearchFilters_Normalized(t *testing.T) {
	f := SearchFilters{Page: -2, Size: -1, Direction: "sideways"}.Normalized()

	if f.Page != 0 || f.Size != 0 {
		t.Errorf("expected page and size clamped to zero, got %d/%d", f.Page, f.Size)
	}
	if f.Direction != "" {
		t.Errorf("expected invalid direction dropped, got %q", f.Direction)
	}

	f = SearchFilters{Direction: "ASC"}.Normalized()
	if f.Direction != SortAsc {
		t.Errorf("Direction = %q, want %q", f.Direction, SortAsc)
	}
}
