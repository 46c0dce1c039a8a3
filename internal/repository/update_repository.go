package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
)

type UpdateRepository interface {
	Create(ctx context.Context, update *models.DepartmentUpdate) error
	GetByID(ctx context.Context, id string) (*models.DepartmentUpdate, error)
	GetVisible(ctx context.Context, section, viewerID string) ([]models.DepartmentUpdateWithInterest, error)
	GetCalendar(ctx context.Context, section string) ([]models.DepartmentUpdate, error)
	Delete(ctx context.Context, id string) error
	SetInterest(ctx context.Context, updateID, studentID, kind string) error
	ClearInterest(ctx context.Context, updateID, studentID string) error
	MarkAttendance(ctx context.Context, eventID, studentID string) (bool, error)
}

type updateRepository struct {
	*PostgresRepository
}

func NewUpdateRepository(db *sql.DB, logger zerolog.Logger) UpdateRepository {
	return &updateRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *updateRepository) Create(ctx context.Context, update *models.DepartmentUpdate) error {
	query := `
		INSERT INTO department_updates (id, title, description, category, event_date, visible_to_sections, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		update.ID,
		update.Title,
		update.Description,
		update.Category,
		update.EventDate,
		pq.Array(update.VisibleToSections),
		update.CreatedBy,
		update.CreatedAt,
	)

	return err
}

func (r *updateRepository) GetByID(ctx context.Context, id string) (*models.DepartmentUpdate, error) {
	query := `
		SELECT id, title, description, category, event_date, visible_to_sections, created_by, created_at
		FROM department_updates
		WHERE id = $1
	`

	update := &models.DepartmentUpdate{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&update.ID,
		&update.Title,
		&update.Description,
		&update.Category,
		&update.EventDate,
		pq.Array(&update.VisibleToSections),
		&update.CreatedBy,
		&update.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return update, err
}

// GetVisible возвращает объявления, видимые секции: пустой список секций
// у объявления означает «видно всем».
func (r *updateRepository) GetVisible(ctx context.Context, section, viewerID string) ([]models.DepartmentUpdateWithInterest, error) {
	query := `
		SELECT
			u.id, u.title, u.description, u.category, u.event_date, u.visible_to_sections,
			u.created_by, COALESCE(s.name, '') as created_by_name, u.created_at,
			COUNT(*) FILTER (WHERE i.kind = 'interested') as interested_count,
			COUNT(*) FILTER (WHERE i.kind = 'attending') as attending_count,
			BOOL_OR(i.kind = 'interested' AND i.student_id = $2) as is_interested,
			BOOL_OR(i.kind = 'attending' AND i.student_id = $2) as is_attending
		FROM department_updates u
		LEFT JOIN students s ON u.created_by = s.id
		LEFT JOIN update_interests i ON u.id = i.update_id
		WHERE ($1 = '' OR u.visible_to_sections = '{}' OR $1 = ANY(u.visible_to_sections))
		GROUP BY u.id, s.name
		ORDER BY u.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, section, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []models.DepartmentUpdateWithInterest
	for rows.Next() {
		var u models.DepartmentUpdateWithInterest
		var isInterested, isAttending sql.NullBool
		err := rows.Scan(
			&u.ID,
			&u.Title,
			&u.Description,
			&u.Category,
			&u.EventDate,
			pq.Array(&u.VisibleToSections),
			&u.CreatedBy,
			&u.CreatedByName,
			&u.CreatedAt,
			&u.InterestedCount,
			&u.AttendingCount,
			&isInterested,
			&isAttending,
		)
		if err != nil {
			return nil, err
		}
		u.IsInterested = isInterested.Valid && isInterested.Bool
		u.IsAttending = isAttending.Valid && isAttending.Bool
		updates = append(updates, u)
	}

	return updates, nil
}

func (r *updateRepository) GetCalendar(ctx context.Context, section string) ([]models.DepartmentUpdate, error) {
	query := `
		SELECT id, title, description, category, event_date, visible_to_sections, created_by, created_at
		FROM department_updates
		WHERE event_date IS NOT NULL
			AND ($1 = '' OR visible_to_sections = '{}' OR $1 = ANY(visible_to_sections))
		ORDER BY event_date
	`

	rows, err := r.db.QueryContext(ctx, query, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []models.DepartmentUpdate
	for rows.Next() {
		var u models.DepartmentUpdate
		err := rows.Scan(
			&u.ID,
			&u.Title,
			&u.Description,
			&u.Category,
			&u.EventDate,
			pq.Array(&u.VisibleToSections),
			&u.CreatedBy,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}

	return updates, nil
}

func (r *updateRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM department_updates WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *updateRepository) SetInterest(ctx context.Context, updateID, studentID, kind string) error {
	query := `
		INSERT INTO update_interests (update_id, student_id, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (update_id, student_id, kind) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, updateID, studentID, kind)
	return err
}

func (r *updateRepository) ClearInterest(ctx context.Context, updateID, studentID string) error {
	query := `DELETE FROM update_interests WHERE update_id = $1 AND student_id = $2`
	_, err := r.db.ExecContext(ctx, query, updateID, studentID)
	return err
}

// MarkAttendance отмечает присутствие; возвращает false, если уже отмечено.
func (r *updateRepository) MarkAttendance(ctx context.Context, eventID, studentID string) (bool, error) {
	query := `
		INSERT INTO event_attendance (event_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, student_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, eventID, studentID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
