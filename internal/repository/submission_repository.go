package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
)

// ErrDuplicate сигнализирует о нарушении уникальности (гонка одновременных вставок)
var ErrDuplicate = errors.New("duplicate record")

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	GetByTaskAndStudent(ctx context.Context, taskID, studentID string) (*models.Submission, error)
	GetByTaskID(ctx context.Context, taskID string) ([]models.SubmissionWithDetails, error)
	Resubmit(ctx context.Context, submission *models.Submission) (bool, error)
	SetReview(ctx context.Context, id, status, comment, reviewerID string, reviewedAt time.Time) (bool, error)
	AddReview(ctx context.Context, review *models.SubmissionReview) error
	GetReviews(ctx context.Context, submissionID string) ([]models.SubmissionReview, error)
}

type submissionRepository struct {
	*PostgresRepository
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	query := `
		INSERT INTO submissions (id, task_id, student_id, submission_type, file_path, link, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		submission.ID,
		submission.TaskID,
		submission.StudentID,
		submission.SubmissionType,
		submission.FilePath,
		submission.Link,
		submission.Status,
		submission.SubmittedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}

	return err
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `
		SELECT id, task_id, student_id, submission_type, file_path, link, status,
			review_comment, reviewed_by, submitted_at, reviewed_at
		FROM submissions
		WHERE id = $1
	`

	return r.scanSubmission(r.db.QueryRowContext(ctx, query, id))
}

func (r *submissionRepository) GetByTaskAndStudent(ctx context.Context, taskID, studentID string) (*models.Submission, error) {
	query := `
		SELECT id, task_id, student_id, submission_type, file_path, link, status,
			review_comment, reviewed_by, submitted_at, reviewed_at
		FROM submissions
		WHERE task_id = $1 AND student_id = $2
	`

	return r.scanSubmission(r.db.QueryRowContext(ctx, query, taskID, studentID))
}

func (r *submissionRepository) scanSubmission(row *sql.Row) (*models.Submission, error) {
	submission := &models.Submission{}
	err := row.Scan(
		&submission.ID,
		&submission.TaskID,
		&submission.StudentID,
		&submission.SubmissionType,
		&submission.FilePath,
		&submission.Link,
		&submission.Status,
		&submission.ReviewComment,
		&submission.ReviewedBy,
		&submission.SubmittedAt,
		&submission.ReviewedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return submission, err
}

func (r *submissionRepository) GetByTaskID(ctx context.Context, taskID string) ([]models.SubmissionWithDetails, error) {
	query := `
		SELECT
			sub.id, sub.task_id, sub.student_id, sub.submission_type, sub.file_path, sub.link,
			sub.status, sub.review_comment, sub.reviewed_by, sub.submitted_at, sub.reviewed_at,
			s.name as student_name, t.title as task_title
		FROM submissions sub
		JOIN students s ON sub.student_id = s.id
		JOIN tasks t ON sub.task_id = t.id
		WHERE sub.task_id = $1
		ORDER BY sub.submitted_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []models.SubmissionWithDetails
	for rows.Next() {
		var sub models.SubmissionWithDetails
		err := rows.Scan(
			&sub.ID,
			&sub.TaskID,
			&sub.StudentID,
			&sub.SubmissionType,
			&sub.FilePath,
			&sub.Link,
			&sub.Status,
			&sub.ReviewComment,
			&sub.ReviewedBy,
			&sub.SubmittedAt,
			&sub.ReviewedAt,
			&sub.StudentName,
			&sub.TaskTitle,
		)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, sub)
	}

	return submissions, nil
}

// Resubmit заменяет содержимое отклоненной сдачи и возвращает ее в pending.
// Условие status = 'rejected' в WHERE служит оптимистичной блокировкой:
// при гонке вторая попытка не затронет ни одной строки.
func (r *submissionRepository) Resubmit(ctx context.Context, submission *models.Submission) (bool, error) {
	query := `
		UPDATE submissions
		SET submission_type = $1, file_path = $2, link = $3, status = 'pending',
			review_comment = NULL, reviewed_by = NULL, reviewed_at = NULL, submitted_at = $4
		WHERE id = $5 AND status = 'rejected'
	`

	result, err := r.db.ExecContext(ctx, query,
		submission.SubmissionType,
		submission.FilePath,
		submission.Link,
		submission.SubmittedAt,
		submission.ID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// SetReview выставляет вердикт по pending-сдаче; возвращает false, если сдача
// уже не в pending (кто-то проверил раньше).
func (r *submissionRepository) SetReview(ctx context.Context, id, status, comment, reviewerID string, reviewedAt time.Time) (bool, error) {
	query := `
		UPDATE submissions
		SET status = $1, review_comment = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $5 AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, status, comment, reviewerID, reviewedAt, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *submissionRepository) AddReview(ctx context.Context, review *models.SubmissionReview) error {
	query := `
		INSERT INTO submission_reviews (id, submission_id, reviewer_id, status, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		review.ID,
		review.SubmissionID,
		review.ReviewerID,
		review.Status,
		review.Comment,
		review.CreatedAt,
	)

	return err
}

func (r *submissionRepository) GetReviews(ctx context.Context, submissionID string) ([]models.SubmissionReview, error) {
	query := `
		SELECT id, submission_id, reviewer_id, status, comment, created_at
		FROM submission_reviews
		WHERE submission_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.SubmissionReview
	for rows.Next() {
		var review models.SubmissionReview
		err := rows.Scan(
			&review.ID,
			&review.SubmissionID,
			&review.ReviewerID,
			&review.Status,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	return reviews, nil
}
