package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
)

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.Student, int, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	GetDepartments(ctx context.Context) ([]string, error)
}

type studentRepository struct {
	*PostgresRepository
}

func NewStudentRepository(db *sql.DB, logger zerolog.Logger) StudentRepository {
	return &studentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (id, name, email, department, section, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		student.ID,
		student.Name,
		student.Email,
		student.Department,
		student.Section,
		student.CreatedAt,
		student.UpdatedAt,
	)

	return err
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	query := `
		SELECT id, name, email, department, section, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	student := &models.Student{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Department,
		&student.Section,
		&student.CreatedAt,
		&student.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return student, err
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := `
		SELECT id, name, email, department, section, created_at, updated_at
		FROM students
		WHERE email = $1
	`

	student := &models.Student{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Department,
		&student.Section,
		&student.CreatedAt,
		&student.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return student, err
}

func (r *studentRepository) GetAll(ctx context.Context, limit, offset int) ([]models.Student, int, error) {
	countQuery := `SELECT COUNT(*) FROM students`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, name, email, department, section, created_at, updated_at
		FROM students
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var student models.Student
		err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.Department,
			&student.Section,
			&student.CreatedAt,
			&student.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, student)
	}

	return students, total, nil
}

func (r *studentRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *studentRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM students`
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

func (r *studentRepository) GetDepartments(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT department FROM students WHERE department != '' ORDER BY department`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []string
	for rows.Next() {
		var department string
		if err := rows.Scan(&department); err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}

	return departments, nil
}
