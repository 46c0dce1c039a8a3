package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
)

type MaterialRepository interface {
	Create(ctx context.Context, material *models.Material) error
	GetByID(ctx context.Context, id string) (*models.Material, error)
	GetAll(ctx context.Context) ([]models.Material, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type materialRepository struct {
	*PostgresRepository
}

func NewMaterialRepository(db *sql.DB, logger zerolog.Logger) MaterialRepository {
	return &materialRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *materialRepository) Create(ctx context.Context, material *models.Material) error {
	query := `
		INSERT INTO materials (id, type, title, filename, file_path, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		material.ID,
		material.Type,
		material.Title,
		material.Filename,
		material.FilePath,
		material.UploadedBy,
		material.CreatedAt,
	)

	return err
}

func (r *materialRepository) GetByID(ctx context.Context, id string) (*models.Material, error) {
	query := `
		SELECT id, type, title, filename, file_path, uploaded_by, created_at
		FROM materials
		WHERE id = $1
	`

	material := &models.Material{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&material.ID,
		&material.Type,
		&material.Title,
		&material.Filename,
		&material.FilePath,
		&material.UploadedBy,
		&material.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return material, err
}

func (r *materialRepository) GetAll(ctx context.Context) ([]models.Material, error) {
	query := `
		SELECT id, type, title, filename, file_path, uploaded_by, created_at
		FROM materials
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []models.Material
	for rows.Next() {
		var material models.Material
		err := rows.Scan(
			&material.ID,
			&material.Type,
			&material.Title,
			&material.Filename,
			&material.FilePath,
			&material.UploadedBy,
			&material.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		materials = append(materials, material)
	}

	return materials, nil
}

func (r *materialRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM materials WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *materialRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM materials`
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
