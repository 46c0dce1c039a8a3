package models

import "time"

// Data Transfer Objects

type CreateStudentRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Department string `json:"department" validate:"required,max=100"`
	Section    string `json:"section" validate:"max=10"`
}

type CreateWorkspaceRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"max=1000"`
	Subject     string `json:"subject" validate:"max=255"`
	OwnerID     string `json:"owner_id" validate:"required,uuid"`
}

type JoinWorkspaceRequest struct {
	InviteCode string `json:"invite_code" validate:"required,len=8"`
	StudentID  string `json:"student_id" validate:"required,uuid"`
}

type CreateTaskRequest struct {
	Title          string    `json:"title" validate:"required,min=3,max=255"`
	Description    string    `json:"description" validate:"max=1000"`
	Deadline       time.Time `json:"deadline" validate:"required"`
	SubmissionType string    `json:"submission_type"`
	CreatedBy      string    `json:"created_by" validate:"required,uuid"`
}

type CompleteTaskRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
}

type SubmitTaskRequest struct {
	StudentID      string `json:"student_id" validate:"required,uuid"`
	SubmissionType string `json:"submission_type" validate:"required,oneof=file link"`
	Link           string `json:"link,omitempty"`
	FileContent    []byte `json:"-"` // Для внутреннего использования
	FileName       string `json:"file_name,omitempty"`
}

type ReviewSubmissionRequest struct {
	ReviewerID string `json:"reviewer_id" validate:"required,uuid"`
	Status     string `json:"status" validate:"required,oneof=approved rejected"`
	Comment    string `json:"comment" validate:"max=1000"`
}

type CreateUpdateRequest struct {
	Title             string     `json:"title" validate:"required,min=3,max=255"`
	Description       string     `json:"description" validate:"max=2000"`
	Category          string     `json:"category" validate:"required"`
	EventDate         *time.Time `json:"event_date,omitempty"`
	VisibleToSections []string   `json:"visible_to_sections"`
	CreatedBy         string     `json:"created_by" validate:"required,uuid"`
}

type MarkAttendanceRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1"`
	WinnerIDs  []string `json:"winner_ids,omitempty"`
}

type MarkAttendanceResponse struct {
	EventID       string   `json:"event_id"`
	MarkedCount   int      `json:"marked_count"`
	AlreadyMarked []string `json:"already_marked,omitempty"`
}

type CreateMaterialRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Type        string `json:"type" validate:"required,oneof=note video"`
	UploadedBy  string `json:"uploaded_by" validate:"required,uuid"`
	FileContent []byte `json:"-"`
	FileName    string `json:"file_name,omitempty"`
}

type SubmissionsResponse struct {
	Submissions []SubmissionWithDetails `json:"submissions"`
	Total       int                     `json:"total"`
}

type AdminStatsResponse struct {
	TotalStudents  int `json:"total_students"`
	TotalMaterials int `json:"total_materials"`
	TotalTasks     int `json:"total_tasks"`
}
