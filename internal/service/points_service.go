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
	"github.com/studyhub/engagement-service/internal/service/integration"
)

// PointsService — единственная точка записи в журнал баллов.
type PointsService interface {
	Award(ctx context.Context, studentID string, reason models.PointReason, delta int, description string, taskID, eventID *string) (*models.PointLedgerEntry, error)
	AwardForReason(ctx context.Context, studentID string, reason models.PointReason, description string, taskID, eventID *string) (*models.PointLedgerEntry, error)
	DeltaFor(reason models.PointReason) int
	HasEventAward(ctx context.Context, studentID, eventID string, reason models.PointReason) (bool, error)
	SweepMissedTasks(ctx context.Context, now time.Time) (int, error)
}

type pointsService struct {
	ledgerRepo  repository.LedgerRepository
	studentRepo repository.StudentRepository
	rabbitmq    integration.RabbitMQClient
	policy      config.PointsConfig
	logger      zerolog.Logger
}

func NewPointsService(
	ledgerRepo repository.LedgerRepository,
	studentRepo repository.StudentRepository,
	rabbitmq integration.RabbitMQClient,
	policy config.PointsConfig,
	logger zerolog.Logger,
) PointsService {
	return &pointsService{
		ledgerRepo:  ledgerRepo,
		studentRepo: studentRepo,
		rabbitmq:    rabbitmq,
		policy:      policy,
		logger:      logger,
	}
}

// DeltaFor возвращает дельту из политики начисления для причины.
func (s *pointsService) DeltaFor(reason models.PointReason) int {
	switch reason {
	case models.ReasonTaskOnTime:
		return s.policy.TaskOnTime
	case models.ReasonTaskLate:
		return s.policy.TaskLate
	case models.ReasonTaskMissed:
		return s.policy.TaskMissed
	case models.ReasonEventAttended:
		return s.policy.EventAttended
	case models.ReasonEventWon:
		return s.policy.EventWon
	default:
		return 0
	}
}

// HasEventAward сообщает, начислялись ли студенту баллы по событию с этой причиной.
func (s *pointsService) HasEventAward(ctx context.Context, studentID, eventID string, reason models.PointReason) (bool, error) {
	return s.ledgerRepo.HasEventEntry(ctx, studentID, eventID, reason.String())
}

func (s *pointsService) AwardForReason(ctx context.Context, studentID string, reason models.PointReason, description string, taskID, eventID *string) (*models.PointLedgerEntry, error) {
	return s.Award(ctx, studentID, reason, s.DeltaFor(reason), description, taskID, eventID)
}

// Award добавляет запись в журнал. Чистое добавление: записи никогда не
// изменяются и не удаляются, исправление — компенсирующая запись.
func (s *pointsService) Award(ctx context.Context, studentID string, reason models.PointReason, delta int, description string, taskID, eventID *string) (*models.PointLedgerEntry, error) {
	if !models.IsValidPointReason(reason.String()) {
		return nil, validationError("invalid point reason: %s", reason)
	}

	exists, err := s.studentRepo.Exists(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, notFoundError("student not found")
	}

	entry := &models.PointLedgerEntry{
		ID:          uuid.New().String(),
		StudentID:   studentID,
		TaskID:      taskID,
		EventID:     eventID,
		Delta:       delta,
		Reason:      reason.String(),
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.ledgerRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("student_id", studentID).
		Str("reason", entry.Reason).
		Int("delta", delta).
		Msg("Points awarded")

	if s.rabbitmq != nil {
		event := &models.PointsAwardedEvent{
			StudentID: studentID,
			Delta:     delta,
			Reason:    entry.Reason,
			Timestamp: time.Now().Unix(),
		}
		if err := s.rabbitmq.PublishPointsAwarded(ctx, event); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish points awarded event")
			// Не прерываем выполнение, только логируем ошибку
		}
	}

	return entry, nil
}

// SweepMissedTasks начисляет штраф за задачи с прошедшим дедлайном без отметки
// и без сдачи. Запрос исключает уже оштрафованные пары, поэтому повторный
// прогон ничего не дублирует.
func (s *pointsService) SweepMissedTasks(ctx context.Context, now time.Time) (int, error) {
	pairs, err := s.ledgerRepo.GetMissedTaskPairs(ctx, now)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, pair := range pairs {
		taskID := pair.TaskID
		description := fmt.Sprintf("Task missed: %s", pair.TaskTitle)
		if _, err := s.Award(ctx, pair.StudentID, models.ReasonTaskMissed, s.policy.TaskMissed, description, &taskID, nil); err != nil {
			return swept, fmt.Errorf("failed to apply missed penalty: %w", err)
		}
		swept++
	}

	if swept > 0 {
		s.logger.Info().Int("penalties", swept).Msg("Missed task sweep finished")
	}

	return swept, nil
}
