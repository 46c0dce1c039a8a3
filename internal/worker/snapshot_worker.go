package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/repository"
	"github.com/studyhub/engagement-service/internal/service"
)

// SnapshotWorker по расписанию начисляет штрафы за пропущенные задачи и
// сохраняет срезы рейтинга по каждой кафедре. Обе операции идемпотентны,
// поэтому рестарт сервиса посреди периода безопасен.
type SnapshotWorker struct {
	leaderboard service.LeaderboardService
	points      service.PointsService
	studentRepo repository.StudentRepository
	interval    time.Duration
	logger      zerolog.Logger
	wg          sync.WaitGroup
	cancel      context.CancelFunc
}

func NewSnapshotWorker(
	leaderboard service.LeaderboardService,
	points service.PointsService,
	studentRepo repository.StudentRepository,
	interval time.Duration,
	logger zerolog.Logger,
) *SnapshotWorker {
	return &SnapshotWorker{
		leaderboard: leaderboard,
		points:      points,
		studentRepo: studentRepo,
		interval:    interval,
		logger:      logger,
	}
}

func (w *SnapshotWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.logger.Info().Dur("interval", w.interval).Msg("Starting snapshot worker")

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		// Первый прогон сразу при старте, чтобы не ждать целый период
		w.run(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.run(ctx)
			}
		}
	}()
}

func (w *SnapshotWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info().Msg("Snapshot worker stopped")
}

func (w *SnapshotWorker) run(ctx context.Context) {
	now := time.Now()

	// Сначала штрафы, чтобы срез уже учитывал их
	swept, err := w.points.SweepMissedTasks(ctx, now)
	if err != nil {
		w.logger.Error().Err(err).Msg("Missed task sweep failed")
	} else if swept > 0 {
		w.logger.Info().Int("penalties", swept).Msg("Missed task penalties applied")
	}

	departments, err := w.studentRepo.GetDepartments(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to list departments")
		return
	}

	for _, department := range departments {
		if ctx.Err() != nil {
			return
		}

		rows, err := w.leaderboard.TakeSnapshot(ctx, department, now)
		if err != nil {
			w.logger.Error().Err(err).Str("department", department).Msg("Failed to take leaderboard snapshot")
			continue
		}

		w.logger.Debug().
			Str("department", department).
			Int("rows", rows).
			Msg("Leaderboard snapshot taken")
	}
}
