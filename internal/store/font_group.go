package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/fontgroup/internal/model"
)

type GroupStore struct {
	db *sql.DB
}

func NewGroupStore(db *sql.DB) *GroupStore {
	return &GroupStore{db: db}
}

const groupCols = `id, group_title, created_at, updated_at`

const rowCols = `id, group_id, font_id, font_name, specific_size, price_change, position`

func scanGroup(scanner interface{ Scan(...any) error }) (*model.FontGroup, error) {
	var g model.FontGroup
	if err := scanner.Scan(&g.ID, &g.Title, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func scanRow(scanner interface{ Scan(...any) error }) (*model.GroupRow, error) {
	var r model.GroupRow
	err := scanner.Scan(&r.ID, &r.GroupID, &r.FontID, &r.FontName, &r.SpecificSize, &r.PriceChange, &r.Position)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a group and its rows in one transaction.
func (s *GroupStore) Create(title string, rows []model.GroupRow) (*model.FontGroup, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO font_groups (group_title) VALUES (?)`, title)
	if err != nil {
		return nil, fmt.Errorf("insert font group: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := insertRows(tx, id, rows); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// Update replaces the title and the full row list of a group.
func (s *GroupStore) Update(id int64, title string, rows []model.GroupRow) (*model.FontGroup, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE font_groups SET group_title = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, id,
	); err != nil {
		return nil, fmt.Errorf("update font group: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM font_group_rows WHERE group_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clear font group rows: %w", err)
	}
	if err := insertRows(tx, id, rows); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func insertRows(tx *sql.Tx, groupID int64, rows []model.GroupRow) error {
	for i, r := range rows {
		_, err := tx.Exec(
			`INSERT INTO font_group_rows (group_id, font_id, font_name, specific_size, price_change, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			groupID, r.FontID, r.FontName, r.SpecificSize, r.PriceChange, i,
		)
		if err != nil {
			return fmt.Errorf("insert font group row %d: %w", i, err)
		}
	}
	return nil
}

func (s *GroupStore) GetByID(id int64) (*model.FontGroup, error) {
	row := s.db.QueryRow(`SELECT `+groupCols+` FROM font_groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get font group: %w", err)
	}

	rows, err := s.listRows(`WHERE group_id = ?`, id)
	if err != nil {
		return nil, err
	}
	g.Rows = rows[id]
	return g, nil
}

// List returns all groups with their rows, newest first.
func (s *GroupStore) List() ([]model.FontGroup, error) {
	rows, err := s.db.Query(`SELECT ` + groupCols + ` FROM font_groups ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list font groups: %w", err)
	}

	var groups []model.FontGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan font group: %w", err)
		}
		groups = append(groups, *g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate font groups: %w", err)
	}
	rows.Close()

	if len(groups) == 0 {
		return groups, nil
	}

	byGroup, err := s.listRows("")
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].Rows = byGroup[groups[i].ID]
	}
	return groups, nil
}

// listRows loads rows matching where, grouped by group id in position order.
func (s *GroupStore) listRows(where string, args ...any) (map[int64][]model.GroupRow, error) {
	rows, err := s.db.Query(`SELECT `+rowCols+` FROM font_group_rows `+where+` ORDER BY group_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("list font group rows: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]model.GroupRow)
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan font group row: %w", err)
		}
		out[r.GroupID] = append(out[r.GroupID], *r)
	}
	return out, rows.Err()
}

func (s *GroupStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM font_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete font group: %w", err)
	}
	return nil
}
