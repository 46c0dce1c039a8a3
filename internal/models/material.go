package models

import (
	"time"
)

type Material struct {
	ID         string    `json:"id" db:"id"`
	Type       string    `json:"type" db:"type"` // note, video
	Title      string    `json:"title" db:"title"`
	Filename   string    `json:"filename" db:"filename"`
	FilePath   string    `json:"file_path" db:"file_path"`
	UploadedBy string    `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

const (
	MaterialTypeNote  = "note"
	MaterialTypeVideo = "video"
)

func IsValidMaterialType(t string) bool {
	return t == MaterialTypeNote || t == MaterialTypeVideo
}
