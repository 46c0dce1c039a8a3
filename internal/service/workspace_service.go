package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/config"
	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/internal/repository"
	"github.com/studyhub/engagement-service/pkg/invitecode"
)

type WorkspaceService interface {
	CreateWorkspace(ctx context.Context, req *models.CreateWorkspaceRequest) (*models.Workspace, error)
	GetWorkspaces(ctx context.Context, ownerID string) ([]models.WorkspaceWithStats, error)
	Join(ctx context.Context, req *models.JoinWorkspaceRequest) (*models.Membership, error)
	GetMembers(ctx context.Context, workspaceID string) ([]models.MemberWithDetails, error)
}

type workspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	studentRepo   repository.StudentRepository
	inviteCfg     config.InviteConfig
	logger        zerolog.Logger
}

func NewWorkspaceService(
	workspaceRepo repository.WorkspaceRepository,
	studentRepo repository.StudentRepository,
	inviteCfg config.InviteConfig,
	logger zerolog.Logger,
) WorkspaceService {
	return &workspaceService{
		workspaceRepo: workspaceRepo,
		studentRepo:   studentRepo,
		inviteCfg:     inviteCfg,
		logger:        logger,
	}
}

func (s *workspaceService) CreateWorkspace(ctx context.Context, req *models.CreateWorkspaceRequest) (*models.Workspace, error) {
	if req.Name == "" {
		return nil, validationError("workspace name is required")
	}

	code, err := s.generateUniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	workspace := &models.Workspace{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Subject:     req.Subject,
		InviteCode:  code,
		OwnerID:     req.OwnerID,
		CreatedAt:   time.Now(),
	}

	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	s.logger.Info().
		Str("workspace_id", workspace.ID).
		Str("invite_code", workspace.InviteCode).
		Msg("Workspace created")

	return workspace, nil
}

// generateUniqueCode подбирает код приглашения, перегенерируя при коллизии.
func (s *workspaceService) generateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < s.inviteCfg.MaxAttempts; i++ {
		code, err := invitecode.Generate(s.inviteCfg.CodeLength)
		if err != nil {
			return "", err
		}

		exists, err := s.workspaceRepo.InviteCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}

	return "", conflictError("could not generate a unique invite code")
}

func (s *workspaceService) GetWorkspaces(ctx context.Context, ownerID string) ([]models.WorkspaceWithStats, error) {
	workspaces, err := s.workspaceRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspaces: %w", err)
	}
	return workspaces, nil
}

// Join вступает в воркспейс по коду приглашения. Повторное вступление —
// успех без изменений, не ошибка.
func (s *workspaceService) Join(ctx context.Context, req *models.JoinWorkspaceRequest) (*models.Membership, error) {
	code := invitecode.Normalize(req.InviteCode)
	if code == "" {
		return nil, validationError("invite code is required")
	}

	studentExists, err := s.studentRepo.Exists(ctx, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student existence: %w", err)
	}
	if !studentExists {
		return nil, notFoundError("student not found")
	}

	workspace, err := s.workspaceRepo.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}
	if workspace == nil {
		return nil, notFoundError("invalid invite code")
	}

	created, err := s.workspaceRepo.AddMember(ctx, workspace.ID, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	if created {
		s.logger.Info().
			Str("workspace_id", workspace.ID).
			Str("student_id", req.StudentID).
			Msg("Student joined workspace")
	}

	membership, err := s.workspaceRepo.GetMembership(ctx, workspace.ID, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if membership == nil {
		return nil, fmt.Errorf("membership not found after join")
	}

	return membership, nil
}

func (s *workspaceService) GetMembers(ctx context.Context, workspaceID string) ([]models.MemberWithDetails, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil {
		return nil, notFoundError("workspace not found")
	}

	members, err := s.workspaceRepo.GetMembers(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	return members, nil
}
