package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/internal/repository"
	"github.com/studyhub/engagement-service/internal/service/integration"
)

type MaterialService interface {
	CreateMaterial(ctx context.Context, req *models.CreateMaterialRequest) (*models.Material, error)
	GetMaterials(ctx context.Context) ([]models.Material, error)
	DeleteMaterial(ctx context.Context, id string) error
}

type materialService struct {
	materialRepo repository.MaterialRepository
	fileClient   integration.FileClient
	logger       zerolog.Logger
}

func NewMaterialService(
	materialRepo repository.MaterialRepository,
	fileClient integration.FileClient,
	logger zerolog.Logger,
) MaterialService {
	return &materialService{
		materialRepo: materialRepo,
		fileClient:   fileClient,
		logger:       logger,
	}
}

func (s *materialService) CreateMaterial(ctx context.Context, req *models.CreateMaterialRequest) (*models.Material, error) {
	if req.Title == "" {
		return nil, validationError("material title is required")
	}
	if !models.IsValidMaterialType(req.Type) {
		return nil, validationError("invalid material type: %s", req.Type)
	}
	if len(req.FileContent) == 0 {
		return nil, validationError("file content is required")
	}

	uploaded, err := s.fileClient.UploadFile(ctx, req.FileContent, req.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	material := &models.Material{
		ID:         uuid.New().String(),
		Type:       req.Type,
		Title:      req.Title,
		Filename:   uploaded.Filename,
		FilePath:   uploaded.FilePath,
		UploadedBy: req.UploadedBy,
		CreatedAt:  time.Now(),
	}

	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.logger.Info().
		Str("material_id", material.ID).
		Str("type", material.Type).
		Msg("Material created")

	return material, nil
}

func (s *materialService) GetMaterials(ctx context.Context) ([]models.Material, error) {
	materials, err := s.materialRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get materials: %w", err)
	}
	return materials, nil
}

func (s *materialService) DeleteMaterial(ctx context.Context, id string) error {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get material: %w", err)
	}
	if material == nil {
		return notFoundError("material not found")
	}

	if err := s.materialRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}

	// Файл чистим после удаления записи; ошибка не критична
	if material.FilePath != "" {
		if err := s.fileClient.DeleteFile(ctx, material.FilePath); err != nil {
			s.logger.Warn().Err(err).Str("file_path", material.FilePath).Msg("Failed to delete material file")
		}
	}

	return nil
}
