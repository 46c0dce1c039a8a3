package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	GetSimpleTasks(ctx context.Context) ([]models.Task, error)
	GetByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Task, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)

	CreateCompletion(ctx context.Context, taskID, studentID string) (bool, error)
	DeleteCompletion(ctx context.Context, taskID, studentID string) (bool, error)
	GetCompletion(ctx context.Context, taskID, studentID string) (*models.TaskCompletion, error)
	GetCompletionsByTask(ctx context.Context, taskID string) ([]models.TaskCompletion, error)
}

type taskRepository struct {
	*PostgresRepository
}

func NewTaskRepository(db *sql.DB, logger zerolog.Logger) TaskRepository {
	return &taskRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, workspace_id, title, description, deadline, submission_type, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.WorkspaceID,
		task.Title,
		task.Description,
		task.Deadline,
		task.SubmissionType,
		task.CreatedBy,
		task.CreatedAt,
	)

	return err
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `
		SELECT id, workspace_id, title, description, deadline, submission_type, created_by, created_at
		FROM tasks
		WHERE id = $1
	`

	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.WorkspaceID,
		&task.Title,
		&task.Description,
		&task.Deadline,
		&task.SubmissionType,
		&task.CreatedBy,
		&task.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return task, err
}

func (r *taskRepository) GetSimpleTasks(ctx context.Context) ([]models.Task, error) {
	query := `
		SELECT id, workspace_id, title, description, deadline, submission_type, created_by, created_at
		FROM tasks
		WHERE workspace_id IS NULL
		ORDER BY deadline
	`

	return r.queryTasks(ctx, query)
}

func (r *taskRepository) GetByWorkspaceID(ctx context.Context, workspaceID string) ([]models.Task, error) {
	query := `
		SELECT id, workspace_id, title, description, deadline, submission_type, created_by, created_at
		FROM tasks
		WHERE workspace_id = $1
		ORDER BY deadline
	`

	return r.queryTasks(ctx, query, workspaceID)
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		err := rows.Scan(
			&task.ID,
			&task.WorkspaceID,
			&task.Title,
			&task.Description,
			&task.Deadline,
			&task.SubmissionType,
			&task.CreatedBy,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

func (r *taskRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *taskRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM tasks`
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

// CreateCompletion создает отметку выполнения; возвращает false, если она уже была.
func (r *taskRepository) CreateCompletion(ctx context.Context, taskID, studentID string) (bool, error) {
	query := `
		INSERT INTO task_completions (task_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (task_id, student_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, taskID, studentID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// DeleteCompletion удаляет отметку; возвращает false, если ее не было.
func (r *taskRepository) DeleteCompletion(ctx context.Context, taskID, studentID string) (bool, error) {
	query := `DELETE FROM task_completions WHERE task_id = $1 AND student_id = $2`

	result, err := r.db.ExecContext(ctx, query, taskID, studentID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *taskRepository) GetCompletion(ctx context.Context, taskID, studentID string) (*models.TaskCompletion, error) {
	query := `
		SELECT c.task_id, c.student_id, s.name as student_name, c.completed_at
		FROM task_completions c
		JOIN students s ON c.student_id = s.id
		WHERE c.task_id = $1 AND c.student_id = $2
	`

	completion := &models.TaskCompletion{}
	err := r.db.QueryRowContext(ctx, query, taskID, studentID).Scan(
		&completion.TaskID,
		&completion.StudentID,
		&completion.StudentName,
		&completion.CompletedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return completion, err
}

func (r *taskRepository) GetCompletionsByTask(ctx context.Context, taskID string) ([]models.TaskCompletion, error) {
	query := `
		SELECT c.task_id, c.student_id, s.name as student_name, c.completed_at
		FROM task_completions c
		JOIN students s ON c.student_id = s.id
		WHERE c.task_id = $1
		ORDER BY c.completed_at
	`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []models.TaskCompletion
	for rows.Next() {
		var completion models.TaskCompletion
		err := rows.Scan(
			&completion.TaskID,
			&completion.StudentID,
			&completion.StudentName,
			&completion.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		completions = append(completions, completion)
	}

	return completions, nil
}
