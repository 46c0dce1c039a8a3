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

type TaskService interface {
	CreateTask(ctx context.Context, workspaceID string, req *models.CreateTaskRequest) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	GetSimpleTasks(ctx context.Context, studentID string) ([]models.TaskWithStatus, error)
	GetWorkspaceTasks(ctx context.Context, workspaceID, studentID string) ([]models.TaskWithStatus, error)
	MarkComplete(ctx context.Context, taskID, studentID string) (*models.TaskCompletion, error)
	MarkIncomplete(ctx context.Context, taskID, studentID string) error
	GetTaskCompletions(ctx context.Context, taskID string) (*models.TaskCompletionStatus, error)
}

type taskService struct {
	taskRepo       repository.TaskRepository
	studentRepo    repository.StudentRepository
	workspaceRepo  repository.WorkspaceRepository
	submissionRepo repository.SubmissionRepository
	ledgerRepo     repository.LedgerRepository
	points         PointsService
	rabbitmq       integration.RabbitMQClient
	logger         zerolog.Logger
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	studentRepo repository.StudentRepository,
	workspaceRepo repository.WorkspaceRepository,
	submissionRepo repository.SubmissionRepository,
	ledgerRepo repository.LedgerRepository,
	points PointsService,
	rabbitmq integration.RabbitMQClient,
	logger zerolog.Logger,
) TaskService {
	return &taskService{
		taskRepo:       taskRepo,
		studentRepo:    studentRepo,
		workspaceRepo:  workspaceRepo,
		submissionRepo: submissionRepo,
		ledgerRepo:     ledgerRepo,
		points:         points,
		rabbitmq:       rabbitmq,
		logger:         logger,
	}
}

// CreateTask создает задачу. Пустой workspaceID — простая задача всего курса,
// иначе задача воркспейса, сдаваемая на проверку.
func (s *taskService) CreateTask(ctx context.Context, workspaceID string, req *models.CreateTaskRequest) (*models.Task, error) {
	if req.Title == "" {
		return nil, validationError("task title is required")
	}
	if req.Deadline.IsZero() {
		return nil, validationError("task deadline is required")
	}

	submissionType := req.SubmissionType
	if submissionType == "" {
		submissionType = models.TaskSubmissionAny
	}
	if !models.IsValidTaskSubmissionType(submissionType) {
		return nil, validationError("invalid submission type: %s", submissionType)
	}

	task := &models.Task{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Description:    req.Description,
		Deadline:       req.Deadline,
		SubmissionType: submissionType,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      time.Now(),
	}

	if workspaceID != "" {
		workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
		if err != nil {
			return nil, fmt.Errorf("failed to get workspace: %w", err)
		}
		if workspace == nil {
			return nil, notFoundError("workspace not found")
		}
		task.WorkspaceID = &workspaceID
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("title", task.Title).
		Msg("Task created")

	if s.rabbitmq != nil {
		event := &models.TaskCreatedEvent{
			TaskID:      task.ID,
			WorkspaceID: task.WorkspaceID,
			Title:       task.Title,
			Deadline:    task.Deadline.Unix(),
			Timestamp:   time.Now().Unix(),
		}
		if err := s.rabbitmq.PublishTaskCreated(ctx, event); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish task created event")
			// Не прерываем выполнение, только логируем ошибку
		}
	}

	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, notFoundError("task not found")
	}
	return task, nil
}

// GetSimpleTasks возвращает простые задачи со статусом выполнения студента.
// Пустой studentID — без персонального статуса.
func (s *taskService) GetSimpleTasks(ctx context.Context, studentID string) ([]models.TaskWithStatus, error) {
	tasks, err := s.taskRepo.GetSimpleTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}

	result := make([]models.TaskWithStatus, 0, len(tasks))
	for _, task := range tasks {
		withStatus := models.TaskWithStatus{Task: task}

		if studentID != "" {
			completion, err := s.taskRepo.GetCompletion(ctx, task.ID, studentID)
			if err != nil {
				return nil, fmt.Errorf("failed to get completion: %w", err)
			}
			if completion != nil {
				withStatus.Completed = true
				completedAt := completion.CompletedAt
				withStatus.CompletedAt = &completedAt
			}
		}

		result = append(result, withStatus)
	}

	return result, nil
}

// GetWorkspaceTasks возвращает задачи воркспейса со статусом сдачи студента.
func (s *taskService) GetWorkspaceTasks(ctx context.Context, workspaceID, studentID string) ([]models.TaskWithStatus, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil {
		return nil, notFoundError("workspace not found")
	}

	tasks, err := s.taskRepo.GetByWorkspaceID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}

	result := make([]models.TaskWithStatus, 0, len(tasks))
	for _, task := range tasks {
		withStatus := models.TaskWithStatus{Task: task}

		if studentID != "" {
			submission, err := s.submissionRepo.GetByTaskAndStudent(ctx, task.ID, studentID)
			if err != nil {
				return nil, fmt.Errorf("failed to get submission: %w", err)
			}
			if submission != nil {
				withStatus.SubmissionStatus = submission.Status
				submittedAt := submission.SubmittedAt
				withStatus.SubmittedAt = &submittedAt
			}
		}

		result = append(result, withStatus)
	}

	return result, nil
}

// MarkComplete отмечает простую задачу выполненной. Повторная отметка —
// успех без изменений и без повторного начисления баллов.
func (s *taskService) MarkComplete(ctx context.Context, taskID, studentID string) (*models.TaskCompletion, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, notFoundError("task not found")
	}
	if task.WorkspaceID != nil {
		return nil, validationError("workspace tasks are completed through submissions")
	}

	// Проверяем существование студента
	exists, err := s.studentRepo.Exists(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student existence: %w", err)
	}
	if !exists {
		return nil, notFoundError("student not found")
	}

	now := time.Now()
	created, err := s.taskRepo.CreateCompletion(ctx, taskID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion: %w", err)
	}

	// Баллы начисляются только за первую отметку
	if created {
		reason := models.ReasonTaskOnTime
		if models.Classify(task.Deadline, now) == models.TimelinessLate {
			reason = models.ReasonTaskLate
		}

		description := fmt.Sprintf("Task completed: %s", task.Title)
		if _, err := s.points.AwardForReason(ctx, studentID, reason, description, &task.ID, nil); err != nil {
			return nil, fmt.Errorf("failed to award points: %w", err)
		}
	}

	completion, err := s.taskRepo.GetCompletion(ctx, taskID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion: %w", err)
	}
	if completion == nil {
		return nil, fmt.Errorf("completion not found after create")
	}

	return completion, nil
}

// MarkIncomplete снимает отметку выполнения. Начисленные баллы не удаляются
// из журнала: вносится компенсирующая запись с обратной дельтой.
func (s *taskService) MarkIncomplete(ctx context.Context, taskID, studentID string) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return notFoundError("task not found")
	}
	if task.WorkspaceID != nil {
		return validationError("workspace tasks are completed through submissions")
	}

	deleted, err := s.taskRepo.DeleteCompletion(ctx, taskID, studentID)
	if err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	if !deleted {
		// Отметки не было, компенсировать нечего
		return nil
	}

	last, err := s.ledgerRepo.GetLastTaskEntry(ctx, studentID, taskID)
	if err != nil {
		return fmt.Errorf("failed to get last ledger entry: %w", err)
	}
	if last == nil || last.Delta == 0 {
		return nil
	}

	description := fmt.Sprintf("Completion reverted: %s", task.Title)
	reason := models.PointReason(last.Reason)
	if _, err := s.points.Award(ctx, studentID, reason, -last.Delta, description, &task.ID, nil); err != nil {
		return fmt.Errorf("failed to append compensating entry: %w", err)
	}

	return nil
}

func (s *taskService) GetTaskCompletions(ctx context.Context, taskID string) (*models.TaskCompletionStatus, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, notFoundError("task not found")
	}

	completions, err := s.taskRepo.GetCompletionsByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completions: %w", err)
	}

	total, err := s.studentRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	return &models.TaskCompletionStatus{
		Task:           *task,
		Completions:    completions,
		TotalStudents:  total,
		CompletedCount: len(completions),
	}, nil
}
