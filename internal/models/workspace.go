package models

import (
	"time"
)

type Workspace struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Subject     string    `json:"subject" db:"subject"`
	InviteCode  string    `json:"invite_code" db:"invite_code"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type WorkspaceWithStats struct {
	Workspace
	MemberCount int `json:"member_count" db:"member_count"`
	TaskCount   int `json:"task_count" db:"task_count"`
}

type Membership struct {
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	JoinedAt    time.Time `json:"joined_at" db:"joined_at"`
}

type MemberWithDetails struct {
	Membership
	StudentName  string `json:"student_name" db:"student_name"`
	StudentEmail string `json:"student_email" db:"student_email"`
	Section      string `json:"section" db:"section"`
}
