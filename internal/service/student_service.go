package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/internal/repository"
)

type StudentService interface {
	CreateStudent(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	GetStudents(ctx context.Context, limit, offset int) ([]models.Student, int, error)
	GetDepartments(ctx context.Context) ([]string, error)
	GetAdminStats(ctx context.Context) (*models.AdminStatsResponse, error)
}

type studentService struct {
	studentRepo  repository.StudentRepository
	taskRepo     repository.TaskRepository
	materialRepo repository.MaterialRepository
	logger       zerolog.Logger
}

func NewStudentService(
	studentRepo repository.StudentRepository,
	taskRepo repository.TaskRepository,
	materialRepo repository.MaterialRepository,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		studentRepo:  studentRepo,
		taskRepo:     taskRepo,
		materialRepo: materialRepo,
		logger:       logger,
	}
}

func (s *studentService) CreateStudent(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error) {
	if req.Name == "" {
		return nil, validationError("student name is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, validationError("student email is required")
	}
	if req.Department == "" {
		return nil, validationError("student department is required")
	}

	existing, err := s.studentRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, conflictError("student with this email already exists")
	}

	now := time.Now()
	student := &models.Student{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Email:      email,
		Department: req.Department,
		Section:    req.Section,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info().
		Str("student_id", student.ID).
		Str("department", student.Department).
		Msg("Student created")

	return student, nil
}

func (s *studentService) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, notFoundError("student not found")
	}
	return student, nil
}

func (s *studentService) GetStudents(ctx context.Context, limit, offset int) ([]models.Student, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return s.studentRepo.GetAll(ctx, limit, offset)
}

func (s *studentService) GetDepartments(ctx context.Context) ([]string, error) {
	return s.studentRepo.GetDepartments(ctx)
}

func (s *studentService) GetAdminStats(ctx context.Context) (*models.AdminStatsResponse, error) {
	students, err := s.studentRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	materials, err := s.materialRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count materials: %w", err)
	}

	tasks, err := s.taskRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return &models.AdminStatsResponse{
		TotalStudents:  students,
		TotalMaterials: materials,
		TotalTasks:     tasks,
	}, nil
}
