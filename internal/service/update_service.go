package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/internal/repository"
)

type UpdateService interface {
	CreateUpdate(ctx context.Context, req *models.CreateUpdateRequest) (*models.DepartmentUpdate, error)
	GetUpdates(ctx context.Context, section, viewerID string) ([]models.DepartmentUpdateWithInterest, error)
	GetCalendar(ctx context.Context, section string) ([]models.DepartmentUpdate, error)
	DeleteUpdate(ctx context.Context, id string) error
	SetInterest(ctx context.Context, updateID, studentID, kind string) error
	ClearInterest(ctx context.Context, updateID, studentID string) error
	MarkAttendance(ctx context.Context, eventID string, req *models.MarkAttendanceRequest) (*models.MarkAttendanceResponse, error)
}

type updateService struct {
	updateRepo  repository.UpdateRepository
	studentRepo repository.StudentRepository
	points      PointsService
	logger      zerolog.Logger
}

func NewUpdateService(
	updateRepo repository.UpdateRepository,
	studentRepo repository.StudentRepository,
	points PointsService,
	logger zerolog.Logger,
) UpdateService {
	return &updateService{
		updateRepo:  updateRepo,
		studentRepo: studentRepo,
		points:      points,
		logger:      logger,
	}
}

func (s *updateService) CreateUpdate(ctx context.Context, req *models.CreateUpdateRequest) (*models.DepartmentUpdate, error) {
	if req.Title == "" {
		return nil, validationError("update title is required")
	}
	if !models.IsValidUpdateCategory(req.Category) {
		return nil, validationError("invalid category: %s", req.Category)
	}

	sections := req.VisibleToSections
	if sections == nil {
		sections = []string{}
	}

	update := &models.DepartmentUpdate{
		ID:                uuid.New().String(),
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		EventDate:         req.EventDate,
		VisibleToSections: sections,
		CreatedBy:         req.CreatedBy,
		CreatedAt:         time.Now(),
	}

	if err := s.updateRepo.Create(ctx, update); err != nil {
		return nil, fmt.Errorf("failed to create update: %w", err)
	}

	s.logger.Info().
		Str("update_id", update.ID).
		Str("category", update.Category).
		Msg("Department update created")

	return update, nil
}

func (s *updateService) GetUpdates(ctx context.Context, section, viewerID string) ([]models.DepartmentUpdateWithInterest, error) {
	updates, err := s.updateRepo.GetVisible(ctx, section, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get updates: %w", err)
	}
	return updates, nil
}

func (s *updateService) GetCalendar(ctx context.Context, section string) ([]models.DepartmentUpdate, error) {
	updates, err := s.updateRepo.GetCalendar(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}
	return updates, nil
}

func (s *updateService) DeleteUpdate(ctx context.Context, id string) error {
	update, err := s.updateRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get update: %w", err)
	}
	if update == nil {
		return notFoundError("update not found")
	}

	return s.updateRepo.Delete(ctx, id)
}

func (s *updateService) SetInterest(ctx context.Context, updateID, studentID, kind string) error {
	if kind != models.InterestKindInterested && kind != models.InterestKindAttending {
		return validationError("invalid interest kind: %s", kind)
	}

	update, err := s.updateRepo.GetByID(ctx, updateID)
	if err != nil {
		return fmt.Errorf("failed to get update: %w", err)
	}
	if update == nil {
		return notFoundError("update not found")
	}

	exists, err := s.studentRepo.Exists(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to check student existence: %w", err)
	}
	if !exists {
		return notFoundError("student not found")
	}

	return s.updateRepo.SetInterest(ctx, updateID, studentID, kind)
}

func (s *updateService) ClearInterest(ctx context.Context, updateID, studentID string) error {
	return s.updateRepo.ClearInterest(ctx, updateID, studentID)
}

// MarkAttendance фиксирует присутствие на событии и начисляет баллы.
// Уже отмеченные студенты пропускаются без повторного начисления за
// присутствие. Надбавка победителю начисляется один раз независимо от
// того, в каком вызове студент попал в winner_ids.
func (s *updateService) MarkAttendance(ctx context.Context, eventID string, req *models.MarkAttendanceRequest) (*models.MarkAttendanceResponse, error) {
	if len(req.StudentIDs) == 0 {
		return nil, validationError("student_ids must not be empty")
	}

	update, err := s.updateRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if update == nil {
		return nil, notFoundError("event not found")
	}
	if update.EventDate == nil {
		return nil, validationError("update is not an event")
	}

	winners := make(map[string]bool, len(req.WinnerIDs))
	for _, id := range req.WinnerIDs {
		winners[id] = true
	}

	resp := &models.MarkAttendanceResponse{EventID: eventID}

	for _, studentID := range req.StudentIDs {
		exists, err := s.studentRepo.Exists(ctx, studentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check student existence: %w", err)
		}
		if !exists {
			return nil, notFoundError("student not found: %s", studentID)
		}

		marked, err := s.updateRepo.MarkAttendance(ctx, eventID, studentID)
		if err != nil {
			return nil, fmt.Errorf("failed to mark attendance: %w", err)
		}
		if marked {
			description := fmt.Sprintf("Attended event: %s", update.Title)
			if _, err := s.points.AwardForReason(ctx, studentID, models.ReasonEventAttended, description, nil, &eventID); err != nil {
				return nil, fmt.Errorf("failed to award attendance points: %w", err)
			}
			resp.MarkedCount++
		} else {
			resp.AlreadyMarked = append(resp.AlreadyMarked, studentID)
		}

		// Победителей могут объявить после переклички, поэтому надбавка не
		// привязана к новизне отметки; дедуп по журналу
		if winners[studentID] {
			won, err := s.points.HasEventAward(ctx, studentID, eventID, models.ReasonEventWon)
			if err != nil {
				return nil, fmt.Errorf("failed to check winner award: %w", err)
			}
			if !won {
				description := fmt.Sprintf("Won event: %s", update.Title)
				if _, err := s.points.AwardForReason(ctx, studentID, models.ReasonEventWon, description, nil, &eventID); err != nil {
					return nil, fmt.Errorf("failed to award winner points: %w", err)
				}
			}
		}
	}

	s.logger.Info().
		Str("event_id", eventID).
		Int("marked", resp.MarkedCount).
		Int("already_marked", len(resp.AlreadyMarked)).
		Msg("Event attendance marked")

	return resp, nil
}
