package fontgroup

import (
	"errors"
	"testing"

	"github.com/dukerupert/fontgroup/internal/model"
	"github.com/google/go-cmp/cmp"
)

func TestNewFormDefaults(t *testing.T) {
	f := NewForm()
	if len(f.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(f.Rows))
	}
	r := f.Rows[0]
	if r.SpecificSize != 1.0 {
		t.Errorf("specific_size = %v, want 1.0", r.SpecificSize)
	}
	if r.PriceChange != 0 {
		t.Errorf("price_change = %v, want 0", r.PriceChange)
	}
}

func TestValidateEmptyTitle(t *testing.T) {
	f := Form{
		Title: "   ",
		Rows: []Row{
			{FontID: 1, FontName: "A"},
			{FontID: 2, FontName: "B"},
		},
	}
	if err := f.Validate(); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("err = %v, want ErrTitleRequired", err)
	}
}

func TestValidateTitleCheckedFirst(t *testing.T) {
	f := Form{}
	if err := f.Validate(); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("err = %v, want ErrTitleRequired", err)
	}
}

func TestValidateTooFewFonts(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
	}{
		{"no rows", nil},
		{"one row", []Row{{FontID: 1, FontName: "A"}}},
		{"second row missing font", []Row{{FontID: 1, FontName: "A"}, {FontName: "B"}}},
		{"second row missing name", []Row{{FontID: 1, FontName: "A"}, {FontID: 2, FontName: "  "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Form{Title: "Group", Rows: tt.rows}
			if err := f.Validate(); !errors.Is(err, ErrTooFewFonts) {
				t.Errorf("err = %v, want ErrTooFewFonts", err)
			}
		})
	}
}

func TestValidateOK(t *testing.T) {
	f := Form{
		Title: "Group",
		Rows: []Row{
			{FontID: 1, FontName: "A"},
			NewRow(),
			{FontID: 2, FontName: " B "},
		},
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	want := []model.GroupRow{
		{FontID: 1, FontName: "A", Position: 0},
		{FontID: 2, FontName: "B", Position: 1},
	}
	if diff := cmp.Diff(want, f.ModelRows()); diff != "" {
		t.Errorf("model rows mismatch (-want +got):\n%s", diff)
	}
}

func TestAddRemoveRow(t *testing.T) {
	f := NewForm()
	f.AddRow()
	f.AddRow()
	f.Rows[1].FontName = "middle"

	f.RemoveRow(1)
	if len(f.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(f.Rows))
	}
	for _, r := range f.Rows {
		if r.FontName == "middle" {
			t.Error("removed row still present")
		}
	}

	f.RemoveRow(5)
	f.RemoveRow(-1)
	if len(f.Rows) != 2 {
		t.Errorf("out of range remove changed rows: %d", len(f.Rows))
	}
}

func TestDecodeRowsStringsAndNumbers(t *testing.T) {
	data := []byte(`[
		{"id": 1, "font_name": "Roboto", "font_id": "3", "specific_size": "1.5", "price_change": "2"},
		{"id": 2, "font_name": "Lato", "font_id": 4, "specific_size": 1, "price_change": 0},
		{"id": 3, "font_name": "", "font_id": "", "specific_size": "", "price_change": null}
	]`)

	rows, err := DecodeRows(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := []Row{
		{FontID: 3, FontName: "Roboto", SpecificSize: 1.5, PriceChange: 2},
		{FontID: 4, FontName: "Lato", SpecificSize: 1, PriceChange: 0},
		{FontID: 0, FontName: "", SpecificSize: 1, PriceChange: 0},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRowsErrors(t *testing.T) {
	bad := []string{
		`{"not": "an array"}`,
		`[{"font_id": "abc"}]`,
		`[{"font_id": 1.5}]`,
		`[{"font_id": 1, "specific_size": "big"}]`,
		`[{"font_id": 1, "specific_size": "Inf"}]`,
		`[{"font_id": 1, "specific_size": "-Infinity"}]`,
		`[{"font_id": 1, "price_change": "NaN"}]`,
		`[{"font_id": "+Inf"}]`,
		`[{"font_id": 1, "price_change": 1e400}]`,
	}
	for _, in := range bad {
		if _, err := DecodeRows([]byte(in)); err == nil {
			t.Errorf("DecodeRows(%s) expected error", in)
		}
	}
}

func TestDecodeRowsEmpty(t *testing.T) {
	rows, err := DecodeRows(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestFormFromGroup(t *testing.T) {
	g := &model.FontGroup{
		Title: "Body",
		Rows: []model.GroupRow{
			{FontID: 5, FontName: "Serif", SpecificSize: 1.2, PriceChange: 3},
		},
	}
	f := FormFromGroup(g)
	if f.Title != "Body" {
		t.Errorf("title = %q, want %q", f.Title, "Body")
	}
	want := []Row{{FontID: 5, FontName: "Serif", SpecificSize: 1.2, PriceChange: 3}}
	if diff := cmp.Diff(want, f.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	empty := FormFromGroup(&model.FontGroup{Title: "x"})
	if len(empty.Rows) != 1 {
		t.Errorf("expected one default row, got %d", len(empty.Rows))
	}
}
