package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/internal/repository"
	"github.com/studyhub/engagement-service/internal/service/integration"
)

type SubmissionService interface {
	Submit(ctx context.Context, taskID string, req *models.SubmitTaskRequest) (*models.Submission, error)
	Review(ctx context.Context, submissionID string, req *models.ReviewSubmissionRequest) (*models.Submission, error)
	GetSubmissions(ctx context.Context, taskID string) (*models.SubmissionsResponse, error)
	GetReviews(ctx context.Context, submissionID string) ([]models.SubmissionReview, error)
}

type submissionService struct {
	submissionRepo repository.SubmissionRepository
	taskRepo       repository.TaskRepository
	studentRepo    repository.StudentRepository
	workspaceRepo  repository.WorkspaceRepository
	points         PointsService
	fileClient     integration.FileClient
	rabbitmq       integration.RabbitMQClient
	logger         zerolog.Logger
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	taskRepo repository.TaskRepository,
	studentRepo repository.StudentRepository,
	workspaceRepo repository.WorkspaceRepository,
	points PointsService,
	fileClient integration.FileClient,
	rabbitmq integration.RabbitMQClient,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		taskRepo:       taskRepo,
		studentRepo:    studentRepo,
		workspaceRepo:  workspaceRepo,
		points:         points,
		fileClient:     fileClient,
		rabbitmq:       rabbitmq,
		logger:         logger,
	}
}

// Submit принимает сдачу по задаче воркспейса. У пары (задача, студент) не
// больше одной сдачи: первая попытка создает pending, после reject можно
// пересдать, pending и approved повторную сдачу не допускают.
func (s *submissionService) Submit(ctx context.Context, taskID string, req *models.SubmitTaskRequest) (*models.Submission, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, notFoundError("task not found")
	}
	if task.WorkspaceID == nil {
		return nil, validationError("simple tasks are marked complete, not submitted")
	}

	// Проверяем существование студента
	exists, err := s.studentRepo.Exists(ctx, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student existence: %w", err)
	}
	if !exists {
		return nil, notFoundError("student not found")
	}

	isMember, err := s.workspaceRepo.IsMember(ctx, *task.WorkspaceID, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, permissionError("student is not a member of the workspace")
	}

	if !models.IsValidSubmissionType(req.SubmissionType) {
		return nil, validationError("invalid submission type: %s", req.SubmissionType)
	}
	if !models.MatchesTaskType(task.SubmissionType, req.SubmissionType) {
		return nil, validationError("task requires submission type %s", task.SubmissionType)
	}

	var filePath, link *string
	switch req.SubmissionType {
	case models.SubmissionTypeFile:
		if len(req.FileContent) == 0 {
			return nil, validationError("file content is required")
		}
		uploaded, err := s.fileClient.UploadFile(ctx, req.FileContent, req.FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to upload file: %w", err)
		}
		filePath = &uploaded.FilePath
	case models.SubmissionTypeLink:
		if req.Link == "" {
			return nil, validationError("link is required")
		}
		link = &req.Link
	}

	existing, err := s.submissionRepo.GetByTaskAndStudent(ctx, taskID, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	now := time.Now()

	if existing == nil {
		submission := &models.Submission{
			ID:             uuid.New().String(),
			TaskID:         taskID,
			StudentID:      req.StudentID,
			SubmissionType: req.SubmissionType,
			FilePath:       filePath,
			Link:           link,
			Status:         models.SubmissionStatusPending.String(),
			SubmittedAt:    now,
		}

		err := s.submissionRepo.Create(ctx, submission)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("submission already exists for this task")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create submission: %w", err)
		}

		s.logger.Info().
			Str("submission_id", submission.ID).
			Str("task_id", taskID).
			Str("student_id", req.StudentID).
			Msg("Submission created")

		return submission, nil
	}

	switch existing.Status {
	case models.SubmissionStatusPending.String():
		return nil, conflictError("submission is awaiting review")
	case models.SubmissionStatusApproved.String():
		return nil, conflictError("submission is already approved")
	}

	// Пересдача после reject: та же запись, содержимое заменяется
	resubmitted := &models.Submission{
		ID:             existing.ID,
		TaskID:         taskID,
		StudentID:      req.StudentID,
		SubmissionType: req.SubmissionType,
		FilePath:       filePath,
		Link:           link,
		Status:         models.SubmissionStatusPending.String(),
		SubmittedAt:    now,
	}

	ok, err := s.submissionRepo.Resubmit(ctx, resubmitted)
	if err != nil {
		return nil, fmt.Errorf("failed to resubmit: %w", err)
	}
	if !ok {
		return nil, conflictError("submission state changed, try again")
	}

	s.logger.Info().
		Str("submission_id", existing.ID).
		Str("task_id", taskID).
		Msg("Submission resubmitted")

	return resubmitted, nil
}

// Review выносит вердикт по pending-сдаче. Право проверки — только у владельца
// воркспейса. Одобрение начисляет баллы по моменту сдачи относительно дедлайна.
func (s *submissionService) Review(ctx context.Context, submissionID string, req *models.ReviewSubmissionRequest) (*models.Submission, error) {
	if req.Status != models.SubmissionStatusApproved.String() && req.Status != models.SubmissionStatusRejected.String() {
		return nil, validationError("review status must be approved or rejected")
	}

	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return nil, notFoundError("submission not found")
	}

	task, err := s.taskRepo.GetByID(ctx, submission.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil || task.WorkspaceID == nil {
		return nil, notFoundError("task not found")
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, *task.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil {
		return nil, notFoundError("workspace not found")
	}
	if workspace.OwnerID != req.ReviewerID {
		return nil, permissionError("only the workspace owner can review submissions")
	}

	if submission.Status != models.SubmissionStatusPending.String() {
		return nil, conflictError("submission is already reviewed")
	}

	now := time.Now()
	ok, err := s.submissionRepo.SetReview(ctx, submissionID, req.Status, req.Comment, req.ReviewerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to set review: %w", err)
	}
	if !ok {
		// Кто-то проверил раньше
		return nil, conflictError("submission is already reviewed")
	}

	review := &models.SubmissionReview{
		ID:           uuid.New().String(),
		SubmissionID: submissionID,
		ReviewerID:   req.ReviewerID,
		Status:       req.Status,
		Comment:      req.Comment,
		CreatedAt:    now,
	}
	if err := s.submissionRepo.AddReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to record review: %w", err)
	}

	if req.Status == models.SubmissionStatusApproved.String() {
		reason := models.ReasonTaskOnTime
		if models.Classify(task.Deadline, submission.SubmittedAt) == models.TimelinessLate {
			reason = models.ReasonTaskLate
		}

		description := fmt.Sprintf("Submission approved: %s", task.Title)
		if _, err := s.points.AwardForReason(ctx, submission.StudentID, reason, description, &task.ID, nil); err != nil {
			return nil, fmt.Errorf("failed to award points: %w", err)
		}
	}

	s.logger.Info().
		Str("submission_id", submissionID).
		Str("status", req.Status).
		Str("reviewer_id", req.ReviewerID).
		Msg("Submission reviewed")

	if s.rabbitmq != nil {
		event := &models.SubmissionReviewedEvent{
			SubmissionID: submissionID,
			TaskID:       submission.TaskID,
			StudentID:    submission.StudentID,
			Status:       req.Status,
			Comment:      req.Comment,
			Timestamp:    now.Unix(),
		}
		if err := s.rabbitmq.PublishSubmissionReviewed(ctx, event); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish submission reviewed event")
			// Не прерываем выполнение, только логируем ошибку
		}
	}

	return s.submissionRepo.GetByID(ctx, submissionID)
}

func (s *submissionService) GetSubmissions(ctx context.Context, taskID string) (*models.SubmissionsResponse, error) {
	exists, err := s.taskRepo.Exists(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to check task existence: %w", err)
	}
	if !exists {
		return nil, notFoundError("task not found")
	}

	submissions, err := s.submissionRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}

	return &models.SubmissionsResponse{
		Submissions: submissions,
		Total:       len(submissions),
	}, nil
}

func (s *submissionService) GetReviews(ctx context.Context, submissionID string) ([]models.SubmissionReview, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return nil, notFoundError("submission not found")
	}

	return s.submissionRepo.GetReviews(ctx, submissionID)
}
