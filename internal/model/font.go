package model

import "time"

type Font struct {
	ID         int64     `json:"id"`
	FontName   string    `json:"font_name"`
	FileName   string    `json:"file_name"`
	StoredName string    `json:"stored_name"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}
