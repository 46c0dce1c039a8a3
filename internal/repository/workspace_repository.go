package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
)

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *models.Workspace) error
	GetByID(ctx context.Context, id string) (*models.Workspace, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Workspace, error)
	GetByOwner(ctx context.Context, ownerID string) ([]models.WorkspaceWithStats, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
	AddMember(ctx context.Context, workspaceID, studentID string) (bool, error)
	GetMembership(ctx context.Context, workspaceID, studentID string) (*models.Membership, error)
	GetMembers(ctx context.Context, workspaceID string) ([]models.MemberWithDetails, error)
	IsMember(ctx context.Context, workspaceID, studentID string) (bool, error)
}

type workspaceRepository struct {
	*PostgresRepository
}

func NewWorkspaceRepository(db *sql.DB, logger zerolog.Logger) WorkspaceRepository {
	return &workspaceRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *workspaceRepository) Create(ctx context.Context, workspace *models.Workspace) error {
	query := `
		INSERT INTO workspaces (id, name, description, subject, invite_code, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		workspace.ID,
		workspace.Name,
		workspace.Description,
		workspace.Subject,
		workspace.InviteCode,
		workspace.OwnerID,
		workspace.CreatedAt,
	)

	return err
}

func (r *workspaceRepository) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	query := `
		SELECT id, name, description, subject, invite_code, owner_id, created_at
		FROM workspaces
		WHERE id = $1
	`

	workspace := &models.Workspace{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.Description,
		&workspace.Subject,
		&workspace.InviteCode,
		&workspace.OwnerID,
		&workspace.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return workspace, err
}

func (r *workspaceRepository) GetByInviteCode(ctx context.Context, code string) (*models.Workspace, error) {
	query := `
		SELECT id, name, description, subject, invite_code, owner_id, created_at
		FROM workspaces
		WHERE invite_code = $1
	`

	workspace := &models.Workspace{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.Description,
		&workspace.Subject,
		&workspace.InviteCode,
		&workspace.OwnerID,
		&workspace.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return workspace, err
}

func (r *workspaceRepository) GetByOwner(ctx context.Context, ownerID string) ([]models.WorkspaceWithStats, error) {
	query := `
		SELECT
			w.id, w.name, w.description, w.subject, w.invite_code, w.owner_id, w.created_at,
			COUNT(DISTINCT m.student_id) as member_count,
			COUNT(DISTINCT t.id) as task_count
		FROM workspaces w
		LEFT JOIN workspace_members m ON w.id = m.workspace_id
		LEFT JOIN tasks t ON w.id = t.workspace_id
		WHERE w.owner_id = $1
		GROUP BY w.id
		ORDER BY w.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []models.WorkspaceWithStats
	for rows.Next() {
		var workspace models.WorkspaceWithStats
		err := rows.Scan(
			&workspace.ID,
			&workspace.Name,
			&workspace.Description,
			&workspace.Subject,
			&workspace.InviteCode,
			&workspace.OwnerID,
			&workspace.CreatedAt,
			&workspace.MemberCount,
			&workspace.TaskCount,
		)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, workspace)
	}

	return workspaces, nil
}

func (r *workspaceRepository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM workspaces WHERE invite_code = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, code).Scan(&exists)
	return exists, err
}

// AddMember добавляет участника; возвращает false, если он уже состоит в воркспейсе.
func (r *workspaceRepository) AddMember(ctx context.Context, workspaceID, studentID string) (bool, error) {
	query := `
		INSERT INTO workspace_members (workspace_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (workspace_id, student_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, workspaceID, studentID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *workspaceRepository) GetMembership(ctx context.Context, workspaceID, studentID string) (*models.Membership, error) {
	query := `
		SELECT workspace_id, student_id, joined_at
		FROM workspace_members
		WHERE workspace_id = $1 AND student_id = $2
	`

	membership := &models.Membership{}
	err := r.db.QueryRowContext(ctx, query, workspaceID, studentID).Scan(
		&membership.WorkspaceID,
		&membership.StudentID,
		&membership.JoinedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return membership, err
}

func (r *workspaceRepository) GetMembers(ctx context.Context, workspaceID string) ([]models.MemberWithDetails, error) {
	query := `
		SELECT
			m.workspace_id, m.student_id, m.joined_at,
			s.name as student_name, s.email as student_email, s.section
		FROM workspace_members m
		JOIN students s ON m.student_id = s.id
		WHERE m.workspace_id = $1
		ORDER BY m.joined_at
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.MemberWithDetails
	for rows.Next() {
		var member models.MemberWithDetails
		err := rows.Scan(
			&member.WorkspaceID,
			&member.StudentID,
			&member.JoinedAt,
			&member.StudentName,
			&member.StudentEmail,
			&member.Section,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, nil
}

func (r *workspaceRepository) IsMember(ctx context.Context, workspaceID, studentID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM workspace_members WHERE workspace_id = $1 AND student_id = $2)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, workspaceID, studentID).Scan(&exists)
	return exists, err
}
