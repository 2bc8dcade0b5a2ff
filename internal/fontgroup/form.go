// Package fontgroup holds the font-group authoring form and the rules a
// group must satisfy before it is submitted.
package fontgroup

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dukerupert/fontgroup/internal/model"
)

// MinFonts is the fewest filled rows a group may be saved with.
const MinFonts = 2

const (
	DefaultSpecificSize = 1.0
	DefaultPriceChange  = 0.0
)

var (
	ErrTitleRequired = errors.New("Group title must not be empty")
	ErrTooFewFonts   = errors.New("You must select at least two fonts, and font names")
)

// Row is one line of the form. FontID is zero until a font is selected.
type Row struct {
	FontID       int64   `json:"font_id"`
	FontName     string  `json:"font_name"`
	SpecificSize float64 `json:"specific_size"`
	PriceChange  float64 `json:"price_change"`
}

func NewRow() Row {
	return Row{SpecificSize: DefaultSpecificSize, PriceChange: DefaultPriceChange}
}

// Filled reports whether the row has both a font and a name.
func (r Row) Filled() bool {
	return r.FontID > 0 && strings.TrimSpace(r.FontName) != ""
}

type Form struct {
	Title string `json:"group_title"`
	Rows  []Row  `json:"fonts"`
}

// NewForm returns an empty form with a single default row.
func NewForm() Form {
	return Form{Rows: []Row{NewRow()}}
}

// AddRow appends a default row.
func (f *Form) AddRow() {
	f.Rows = append(f.Rows, NewRow())
}

// RemoveRow drops the row at index i; out-of-range indexes are ignored.
func (f *Form) RemoveRow(i int) {
	if i < 0 || i >= len(f.Rows) {
		return
	}
	f.Rows = append(f.Rows[:i], f.Rows[i+1:]...)
}

// Filled returns the rows that will be saved, names trimmed.
func (f Form) Filled() []Row {
	var out []Row
	for _, r := range f.Rows {
		if r.Filled() {
			r.FontName = strings.TrimSpace(r.FontName)
			out = append(out, r)
		}
	}
	return out
}

// Validate checks the title first, then the row count.
func (f Form) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrTitleRequired
	}
	if len(f.Filled()) < MinFonts {
		return ErrTooFewFonts
	}
	return nil
}

// ModelRows converts the filled rows to stored rows in form order.
func (f Form) ModelRows() []model.GroupRow {
	filled := f.Filled()
	rows := make([]model.GroupRow, len(filled))
	for i, r := range filled {
		rows[i] = model.GroupRow{
			FontID:       r.FontID,
			FontName:     r.FontName,
			SpecificSize: r.SpecificSize,
			PriceChange:  r.PriceChange,
			Position:     i,
		}
	}
	return rows
}

// FormFromGroup loads a stored group back into an editable form.
func FormFromGroup(g *model.FontGroup) Form {
	f := Form{Title: g.Title}
	for _, r := range g.Rows {
		f.Rows = append(f.Rows, Row{
			FontID:       r.FontID,
			FontName:     r.FontName,
			SpecificSize: r.SpecificSize,
			PriceChange:  r.PriceChange,
		})
	}
	if len(f.Rows) == 0 {
		f.Rows = []Row{NewRow()}
	}
	return f
}

// wireRow accepts numbers or strings for the numeric fields, since browser
// forms send input values as strings.
type wireRow struct {
	FontID       json.RawMessage `json:"font_id"`
	FontName     string          `json:"font_name"`
	SpecificSize json.RawMessage `json:"specific_size"`
	PriceChange  json.RawMessage `json:"price_change"`
}

// DecodeRows parses the JSON "fonts" field of a group submission.
func DecodeRows(data []byte) ([]Row, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var wire []wireRow
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode fonts: %w", err)
	}

	rows := make([]Row, 0, len(wire))
	for i, w := range wire {
		r := NewRow()
		r.FontName = w.FontName

		id, err := looseNumber(w.FontID)
		if err != nil {
			return nil, fmt.Errorf("row %d font_id: %w", i+1, err)
		}
		if id != nil {
			r.FontID = int64(*id)
			if float64(r.FontID) != *id {
				return nil, fmt.Errorf("row %d font_id: not an integer", i+1)
			}
		}
		if v, err := looseNumber(w.SpecificSize); err != nil {
			return nil, fmt.Errorf("row %d specific_size: %w", i+1, err)
		} else if v != nil {
			r.SpecificSize = *v
		}
		if v, err := looseNumber(w.PriceChange); err != nil {
			return nil, fmt.Errorf("row %d price_change: %w", i+1, err)
		} else if v != nil {
			r.PriceChange = *v
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// looseNumber returns nil for null, missing or blank values. Only finite
// numbers are accepted.
func looseNumber(raw json.RawMessage) (*float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return nil, nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &v, nil
}
