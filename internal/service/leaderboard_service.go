package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/config"
	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/internal/repository"
)

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, department, section string, limit int) ([]models.LeaderboardEntry, error)
	GetTopPerformers(ctx context.Context, department string) ([]models.LeaderboardEntry, error)
	GetMyStats(ctx context.Context, studentID string) (*models.MyStats, error)
	TakeSnapshot(ctx context.Context, department string, now time.Time) (int, error)
}

type leaderboardService struct {
	ledgerRepo   repository.LedgerRepository
	snapshotRepo repository.SnapshotRepository
	studentRepo  repository.StudentRepository
	cfg          config.LeaderboardConfig
	logger       zerolog.Logger
}

func NewLeaderboardService(
	ledgerRepo repository.LedgerRepository,
	snapshotRepo repository.SnapshotRepository,
	studentRepo repository.StudentRepository,
	cfg config.LeaderboardConfig,
	logger zerolog.Logger,
) LeaderboardService {
	return &leaderboardService{
		ledgerRepo:   ledgerRepo,
		snapshotRepo: snapshotRepo,
		studentRepo:  studentRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// GetLeaderboard строит рейтинг кафедры (и опционально секции) из журнала
// баллов. Рейтинг нигде не хранится, только снимки рангов для rank_change.
func (s *leaderboardService) GetLeaderboard(ctx context.Context, department, section string, limit int) ([]models.LeaderboardEntry, error) {
	if department == "" {
		return nil, validationError("department is required")
	}
	if limit <= 0 || limit > s.cfg.DefaultLimit {
		limit = s.cfg.DefaultLimit
	}

	entries, err := s.computeRanked(ctx, department, section)
	if err != nil {
		return nil, err
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

func (s *leaderboardService) GetTopPerformers(ctx context.Context, department string) ([]models.LeaderboardEntry, error) {
	return s.GetLeaderboard(ctx, department, "", s.cfg.TopPerformersLimit)
}

// computeRanked агрегирует журнал, сортирует и расставляет ранги.
// Порядок детерминирован: баллы по убыванию, при равенстве раньше тот,
// кто раньше получил первые баллы, затем по id студента.
func (s *leaderboardService) computeRanked(ctx context.Context, department, section string) ([]models.LeaderboardEntry, error) {
	rows, err := s.ledgerRepo.GetStandings(ctx, department, section)
	if err != nil {
		return nil, fmt.Errorf("failed to get standings: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		// Процент 0–100, UI показывает значение как есть
		rate := 0.0
		if row.TasksAssigned > 0 {
			rate = float64(row.TasksCompleted) / float64(row.TasksAssigned) * 100
		}

		entries = append(entries, models.LeaderboardEntry{
			UserID:             row.StudentID,
			UserName:           row.StudentName,
			Section:            row.Section,
			TotalPoints:        row.TotalPoints,
			TasksCompleted:     row.TasksCompleted,
			EventsAttended:     row.EventsAttended,
			TaskCompletionRate: rate,
			FirstPointsAt:      row.FirstPointsAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		switch {
		case a.FirstPointsAt != nil && b.FirstPointsAt != nil:
			if !a.FirstPointsAt.Equal(*b.FirstPointsAt) {
				return a.FirstPointsAt.Before(*b.FirstPointsAt)
			}
		case a.FirstPointsAt != nil:
			return true
		case b.FirstPointsAt != nil:
			return false
		}
		return a.UserID < b.UserID
	})

	prevRanks, err := s.snapshotRepo.GetLatestRanks(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous ranks: %w", err)
	}

	for i := range entries {
		entries[i].Rank = i + 1
		// Положительный rank_change — подъем в рейтинге
		if prev, ok := prevRanks[entries[i].UserID]; ok {
			entries[i].RankChange = prev - entries[i].Rank
		}
	}

	return entries, nil
}

func (s *leaderboardService) GetMyStats(ctx context.Context, studentID string) (*models.MyStats, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, notFoundError("student not found")
	}

	entries, err := s.computeRanked(ctx, student.Department, "")
	if err != nil {
		return nil, err
	}

	stats := &models.MyStats{}
	for _, entry := range entries {
		if entry.UserID == studentID {
			stats.LeaderboardEntry = entry
			break
		}
	}
	if stats.UserID == "" {
		// Студент без единой записи в журнале все равно виден в рейтинге,
		// поэтому сюда попадаем только при рассинхроне данных
		stats.UserID = student.ID
		stats.UserName = student.Name
		stats.Section = student.Section
	}

	activities, err := s.ledgerRepo.GetByStudent(ctx, studentID, s.cfg.RecentActivities)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent activities: %w", err)
	}
	stats.RecentActivities = activities

	return stats, nil
}

// TakeSnapshot сохраняет текущие ранги кафедры за период. Возвращает число
// записанных строк. Повторный запуск за тот же период идемпотентен.
func (s *leaderboardService) TakeSnapshot(ctx context.Context, department string, now time.Time) (int, error) {
	entries, err := s.computeRanked(ctx, department, "")
	if err != nil {
		return 0, err
	}

	period := repository.PeriodDate(now)
	snapshots := make([]models.LeaderboardSnapshot, 0, len(entries))
	for _, entry := range entries {
		snapshots = append(snapshots, models.LeaderboardSnapshot{
			PeriodDate:  period,
			Department:  department,
			StudentID:   entry.UserID,
			Rank:        entry.Rank,
			TotalPoints: entry.TotalPoints,
		})
	}

	if err := s.snapshotRepo.Upsert(ctx, snapshots); err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Info().
		Str("department", department).
		Time("period", period).
		Int("rows", len(snapshots)).
		Msg("Leaderboard snapshot saved")

	return len(snapshots), nil
}
