package model

import "testing"

func TestFontGroupSummary(t *testing.T) {
	g := FontGroup{
		ID:    7,
		Title: "Headlines",
		Rows: []GroupRow{
			{FontID: 3, FontName: "Roboto"},
			{FontID: 9, FontName: "Open Sans"},
		},
	}

	s := g.Summary()
	if s.FontNames != "Roboto,Open Sans" {
		t.Errorf("font_names = %q, want %q", s.FontNames, "Roboto,Open Sans")
	}
	if s.FontIDs != "3,9" {
		t.Errorf("font_ids = %q, want %q", s.FontIDs, "3,9")
	}
	if s.Count != 2 {
		t.Errorf("count = %d, want 2", s.Count)
	}
}

func TestFontGroupSummaryEmpty(t *testing.T) {
	g := FontGroup{ID: 1, Title: "Empty"}

	s := g.Summary()
	if s.FontIDs != "" {
		t.Errorf("font_ids = %q, want empty", s.FontIDs)
	}
	if s.Fonts == nil {
		t.Error("expected non-nil fonts slice")
	}
	if s.Count != 0 {
		t.Errorf("count = %d, want 0", s.Count)
	}
}
