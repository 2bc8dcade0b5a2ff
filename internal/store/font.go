package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/fontgroup/internal/model"
)

type FontStore struct {
	db *sql.DB
}

func NewFontStore(db *sql.DB) *FontStore {
	return &FontStore{db: db}
}

func scanFont(scanner interface{ Scan(...any) error }) (*model.Font, error) {
	var f model.Font
	err := scanner.Scan(&f.ID, &f.FontName, &f.FileName, &f.StoredName, &f.Size, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

const fontCols = `id, font_name, file_name, stored_name, size, created_at`

func (s *FontStore) Create(fontName, fileName, storedName string, size int64) (*model.Font, error) {
	result, err := s.db.Exec(
		`INSERT INTO fonts (font_name, file_name, stored_name, size) VALUES (?, ?, ?, ?)`,
		fontName, fileName, storedName, size,
	)
	if err != nil {
		return nil, fmt.Errorf("insert font: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *FontStore) GetByID(id int64) (*model.Font, error) {
	row := s.db.QueryRow(`SELECT `+fontCols+` FROM fonts WHERE id = ?`, id)
	f, err := scanFont(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get font: %w", err)
	}
	return f, nil
}

// GetByStoredName looks a font up by its storage key.
func (s *FontStore) GetByStoredName(name string) (*model.Font, error) {
	row := s.db.QueryRow(`SELECT `+fontCols+` FROM fonts WHERE stored_name = ?`, name)
	f, err := scanFont(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get font by stored name: %w", err)
	}
	return f, nil
}

// List returns all fonts, newest first.
func (s *FontStore) List() ([]model.Font, error) {
	rows, err := s.db.Query(`SELECT ` + fontCols + ` FROM fonts ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list fonts: %w", err)
	}
	defer rows.Close()

	var fonts []model.Font
	for rows.Next() {
		f, err := scanFont(rows)
		if err != nil {
			return nil, fmt.Errorf("scan font: %w", err)
		}
		fonts = append(fonts, *f)
	}
	return fonts, rows.Err()
}

// Exists reports which of ids are present, keyed by id.
func (s *FontStore) Exists(ids []int64) (map[int64]bool, error) {
	found := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, seen := found[id]; seen {
			continue
		}
		var one int
		err := s.db.QueryRow(`SELECT 1 FROM fonts WHERE id = ?`, id).Scan(&one)
		if err == sql.ErrNoRows {
			found[id] = false
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("check font %d: %w", id, err)
		}
		found[id] = true
	}
	return found, nil
}

func (s *FontStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM fonts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count fonts: %w", err)
	}
	return n, nil
}

func (s *FontStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM fonts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete font: %w", err)
	}
	return nil
}
