package model

import (
	"strconv"
	"strings"
	"time"
)

// GroupRow is one font in a font group, in display order.
type GroupRow struct {
	ID           int64   `json:"id"`
	GroupID      int64   `json:"group_id"`
	FontID       int64   `json:"font_id"`
	FontName     string  `json:"font_name"`
	SpecificSize float64 `json:"specific_size"`
	PriceChange  float64 `json:"price_change"`
	Position     int     `json:"position"`
}

type FontGroup struct {
	ID        int64      `json:"id"`
	Title     string     `json:"group_title"`
	Rows      []GroupRow `json:"fonts"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FontNames joins the row display names with commas.
func (g *FontGroup) FontNames() string {
	names := make([]string, len(g.Rows))
	for i, r := range g.Rows {
		names[i] = r.FontName
	}
	return strings.Join(names, ",")
}

// FontIDs joins the row font ids with commas.
func (g *FontGroup) FontIDs() string {
	ids := make([]string, len(g.Rows))
	for i, r := range g.Rows {
		ids[i] = strconv.FormatInt(r.FontID, 10)
	}
	return strings.Join(ids, ",")
}

// GroupSummary is the list/edit wire shape. FontNames and FontIDs keep the
// flattened comma-joined form older clients split on.
type GroupSummary struct {
	ID        int64      `json:"id"`
	Title     string     `json:"group_title"`
	FontNames string     `json:"font_names"`
	FontIDs   string     `json:"font_ids"`
	Count     int        `json:"count"`
	Fonts     []GroupRow `json:"fonts"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (g *FontGroup) Summary() GroupSummary {
	rows := g.Rows
	if rows == nil {
		rows = []GroupRow{}
	}
	return GroupSummary{
		ID:        g.ID,
		Title:     g.Title,
		FontNames: g.FontNames(),
		FontIDs:   g.FontIDs(),
		Count:     len(g.Rows),
		Fonts:     rows,
		UpdatedAt: g.UpdatedAt,
	}
}
