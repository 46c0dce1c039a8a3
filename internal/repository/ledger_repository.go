package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
)

// MissedTaskPair — пара (задача, студент) с пропущенным дедлайном без единой отметки
type MissedTaskPair struct {
	TaskID    string
	TaskTitle string
	StudentID string
	Deadline  time.Time
}

// LedgerRepository работает с журналом баллов. Записи только добавляются:
// UPDATE и DELETE по point_ledger здесь отсутствуют намеренно.
type LedgerRepository interface {
	Append(ctx context.Context, entry *models.PointLedgerEntry) error
	GetByStudent(ctx context.Context, studentID string, limit int) ([]models.PointLedgerEntry, error)
	TotalByStudent(ctx context.Context, studentID string) (int, error)
	GetLastTaskEntry(ctx context.Context, studentID, taskID string) (*models.PointLedgerEntry, error)
	HasEventEntry(ctx context.Context, studentID, eventID, reason string) (bool, error)
	GetStandings(ctx context.Context, department, section string) ([]models.StandingsRow, error)
	GetMissedTaskPairs(ctx context.Context, now time.Time) ([]MissedTaskPair, error)
}

type ledgerRepository struct {
	*PostgresRepository
}

func NewLedgerRepository(db *sql.DB, logger zerolog.Logger) LedgerRepository {
	return &ledgerRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *ledgerRepository) Append(ctx context.Context, entry *models.PointLedgerEntry) error {
	query := `
		INSERT INTO point_ledger (id, student_id, task_id, event_id, delta, reason, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.StudentID,
		entry.TaskID,
		entry.EventID,
		entry.Delta,
		entry.Reason,
		entry.Description,
		entry.CreatedAt,
	)

	return err
}

func (r *ledgerRepository) GetByStudent(ctx context.Context, studentID string, limit int) ([]models.PointLedgerEntry, error) {
	query := `
		SELECT id, student_id, task_id, event_id, delta, reason, description, created_at
		FROM point_ledger
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.PointLedgerEntry
	for rows.Next() {
		var entry models.PointLedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.StudentID,
			&entry.TaskID,
			&entry.EventID,
			&entry.Delta,
			&entry.Reason,
			&entry.Description,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// TotalByStudent — свертка журнала; сумма нигде не хранится отдельно.
func (r *ledgerRepository) TotalByStudent(ctx context.Context, studentID string) (int, error) {
	query := `SELECT COALESCE(SUM(delta), 0) FROM point_ledger WHERE student_id = $1`
	var total int
	err := r.db.QueryRowContext(ctx, query, studentID).Scan(&total)
	return total, err
}

func (r *ledgerRepository) GetLastTaskEntry(ctx context.Context, studentID, taskID string) (*models.PointLedgerEntry, error) {
	query := `
		SELECT id, student_id, task_id, event_id, delta, reason, description, created_at
		FROM point_ledger
		WHERE student_id = $1 AND task_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	entry := &models.PointLedgerEntry{}
	err := r.db.QueryRowContext(ctx, query, studentID, taskID).Scan(
		&entry.ID,
		&entry.StudentID,
		&entry.TaskID,
		&entry.EventID,
		&entry.Delta,
		&entry.Reason,
		&entry.Description,
		&entry.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return entry, err
}

// HasEventEntry проверяет, есть ли у студента запись по событию с данной причиной.
func (r *ledgerRepository) HasEventEntry(ctx context.Context, studentID, eventID, reason string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM point_ledger
			WHERE student_id = $1 AND event_id = $2 AND reason = $3
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, studentID, eventID, reason).Scan(&exists)
	return exists, err
}

// GetStandings агрегирует журнал по студентам области (кафедра, опционально секция).
// tasks_completed = одобренные сдачи + отметки по простым задачам;
// tasks_assigned = простые задачи + задачи воркспейсов, где студент состоит.
func (r *ledgerRepository) GetStandings(ctx context.Context, department, section string) ([]models.StandingsRow, error) {
	query := `
		SELECT
			s.id as student_id,
			s.name as student_name,
			s.section,
			COALESCE(l.total_points, 0) as total_points,
			COALESCE(sub.approved, 0) + COALESCE(c.completed, 0) as tasks_completed,
			COALESCE(l.events_attended, 0) as events_attended,
			(SELECT COUNT(*) FROM tasks t WHERE t.workspace_id IS NULL) +
			(SELECT COUNT(*) FROM tasks t
				JOIN workspace_members m ON t.workspace_id = m.workspace_id
				WHERE m.student_id = s.id) as tasks_assigned,
			l.first_points_at
		FROM students s
		LEFT JOIN (
			SELECT student_id,
				SUM(delta) as total_points,
				COUNT(*) FILTER (WHERE reason = 'event_attended') as events_attended,
				MIN(created_at) FILTER (WHERE delta > 0) as first_points_at
			FROM point_ledger
			GROUP BY student_id
		) l ON l.student_id = s.id
		LEFT JOIN (
			SELECT student_id, COUNT(*) as approved
			FROM submissions
			WHERE status = 'approved'
			GROUP BY student_id
		) sub ON sub.student_id = s.id
		LEFT JOIN (
			SELECT c.student_id, COUNT(*) as completed
			FROM task_completions c
			JOIN tasks t ON c.task_id = t.id
			WHERE t.workspace_id IS NULL
			GROUP BY c.student_id
		) c ON c.student_id = s.id
		WHERE s.department = $1 AND ($2 = '' OR s.section = $2)
	`

	rows, err := r.db.QueryContext(ctx, query, department, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []models.StandingsRow
	for rows.Next() {
		var row models.StandingsRow
		err := rows.Scan(
			&row.StudentID,
			&row.StudentName,
			&row.Section,
			&row.TotalPoints,
			&row.TasksCompleted,
			&row.EventsAttended,
			&row.TasksAssigned,
			&row.FirstPointsAt,
		)
		if err != nil {
			return nil, err
		}
		standings = append(standings, row)
	}

	return standings, nil
}

// GetMissedTaskPairs находит пары для штрафа за пропуск: дедлайн прошел,
// нет ни отметки, ни сдачи, и штраф за эту задачу еще не начислялся.
func (r *ledgerRepository) GetMissedTaskPairs(ctx context.Context, now time.Time) ([]MissedTaskPair, error) {
	query := `
		SELECT t.id, t.title, s.id, t.deadline
		FROM tasks t
		JOIN students s ON (
			t.workspace_id IS NULL
			OR EXISTS (
				SELECT 1 FROM workspace_members m
				WHERE m.workspace_id = t.workspace_id AND m.student_id = s.id
			)
		)
		WHERE t.deadline < $1
			AND NOT EXISTS (
				SELECT 1 FROM task_completions c
				WHERE c.task_id = t.id AND c.student_id = s.id
			)
			AND NOT EXISTS (
				SELECT 1 FROM submissions sub
				WHERE sub.task_id = t.id AND sub.student_id = s.id
			)
			AND NOT EXISTS (
				SELECT 1 FROM point_ledger l
				WHERE l.task_id = t.id AND l.student_id = s.id AND l.reason = 'task_missed'
			)
		ORDER BY t.deadline
	`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []MissedTaskPair
	for rows.Next() {
		var pair MissedTaskPair
		err := rows.Scan(&pair.TaskID, &pair.TaskTitle, &pair.StudentID, &pair.Deadline)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}

	return pairs, nil
}
