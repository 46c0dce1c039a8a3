package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
)

type SnapshotRepository interface {
	Upsert(ctx context.Context, snapshots []models.LeaderboardSnapshot) error
	GetLatestRanks(ctx context.Context, department string) (map[string]int, error)
}

type snapshotRepository struct {
	*PostgresRepository
}

func NewSnapshotRepository(db *sql.DB, logger zerolog.Logger) SnapshotRepository {
	return &snapshotRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

// Upsert записывает срез рейтинга за период. Повторный запуск за тот же
// период перезаписывает строки, а не дублирует их.
func (r *snapshotRepository) Upsert(ctx context.Context, snapshots []models.LeaderboardSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO leaderboard_snapshots (period_date, department, student_id, rank, total_points)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (period_date, student_id) DO UPDATE
		SET department = EXCLUDED.department,
			rank = EXCLUDED.rank,
			total_points = EXCLUDED.total_points
	`

	for _, snapshot := range snapshots {
		_, err := tx.ExecContext(ctx, query,
			snapshot.PeriodDate,
			snapshot.Department,
			snapshot.StudentID,
			snapshot.Rank,
			snapshot.TotalPoints,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetLatestRanks возвращает ранги последнего сохраненного среза по кафедре.
func (r *snapshotRepository) GetLatestRanks(ctx context.Context, department string) (map[string]int, error) {
	query := `
		SELECT student_id, rank
		FROM leaderboard_snapshots
		WHERE department = $1
			AND period_date = (
				SELECT MAX(period_date) FROM leaderboard_snapshots WHERE department = $1
			)
	`

	rows, err := r.db.QueryContext(ctx, query, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranks := make(map[string]int)
	for rows.Next() {
		var studentID string
		var rank int
		if err := rows.Scan(&studentID, &rank); err != nil {
			return nil, err
		}
		ranks[studentID] = rank
	}

	return ranks, nil
}

// PeriodDate обрезает момент времени до даты периода снимка (UTC).
func PeriodDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
