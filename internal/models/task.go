package models

import (
	"time"
)

type Task struct {
	ID             string    `json:"id" db:"id"`
	WorkspaceID    *string   `json:"workspace_id,omitempty" db:"workspace_id"` // nil для простых задач всего курса
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	Deadline       time.Time `json:"deadline" db:"deadline"`
	SubmissionType string    `json:"submission_type" db:"submission_type"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type TaskWithStatus struct {
	Task
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	SubmissionStatus string     `json:"submission_status,omitempty"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
}

type TaskCompletion struct {
	TaskID      string    `json:"task_id" db:"task_id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	StudentName string    `json:"student_name" db:"student_name"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}

type TaskCompletionStatus struct {
	Task           Task             `json:"task"`
	Completions    []TaskCompletion `json:"completions"`
	TotalStudents  int              `json:"total_students"`
	CompletedCount int              `json:"completed_count"`
}

// Допустимые типы сдачи для задачи
const (
	TaskSubmissionAny   = "any"
	TaskSubmissionImage = "image"
	TaskSubmissionFile  = "file"
	TaskSubmissionLink  = "link"
)

func IsValidTaskSubmissionType(t string) bool {
	switch t {
	case TaskSubmissionAny, TaskSubmissionImage, TaskSubmissionFile, TaskSubmissionLink:
		return true
	default:
		return false
	}
}

// TimelinessStatus — статус выполнения относительно дедлайна
type TimelinessStatus string

const (
	TimelinessOnTime TimelinessStatus = "on_time"
	TimelinessLate   TimelinessStatus = "late"
	TimelinessMissed TimelinessStatus = "missed"
)

func (ts TimelinessStatus) String() string {
	return string(ts)
}

// Classify определяет on_time/late по моменту действия относительно дедлайна.
// missed — производный статус на чтение: дедлайн прошел, а записи нет.
func Classify(deadline, actedAt time.Time) TimelinessStatus {
	if actedAt.After(deadline) {
		return TimelinessLate
	}
	return TimelinessOnTime
}
