package models

import (
	"time"
)

type Submission struct {
	ID             string     `json:"id" db:"id"`
	TaskID         string     `json:"task_id" db:"task_id"`
	StudentID      string     `json:"student_id" db:"student_id"`
	SubmissionType string     `json:"submission_type" db:"submission_type"` // file, link
	FilePath       *string    `json:"file_path,omitempty" db:"file_path"`
	Link           *string    `json:"link,omitempty" db:"link"`
	Status         string     `json:"status" db:"status"` // pending, approved, rejected
	ReviewComment  *string    `json:"review_comment,omitempty" db:"review_comment"`
	ReviewedBy     *string    `json:"reviewed_by,omitempty" db:"reviewed_by"`
	SubmittedAt    time.Time  `json:"submitted_at" db:"submitted_at"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
}

type SubmissionWithDetails struct {
	Submission
	StudentName string `json:"student_name" db:"student_name"`
	TaskTitle   string `json:"task_title" db:"task_title"`
}

// SubmissionReview — запись истории проверки, только добавляется
type SubmissionReview struct {
	ID           string    `json:"id" db:"id"`
	SubmissionID string    `json:"submission_id" db:"submission_id"`
	ReviewerID   string    `json:"reviewer_id" db:"reviewer_id"`
	Status       string    `json:"status" db:"status"`
	Comment      string    `json:"comment" db:"comment"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

func (ss SubmissionStatus) String() string {
	return string(ss)
}

func IsValidSubmissionStatus(status string) bool {
	switch status {
	case "pending", "approved", "rejected":
		return true
	default:
		return false
	}
}

// Допустимые типы содержимого сдачи
const (
	SubmissionTypeFile = "file"
	SubmissionTypeLink = "link"
)

func IsValidSubmissionType(t string) bool {
	return t == SubmissionTypeFile || t == SubmissionTypeLink
}

// MatchesTaskType проверяет, что тип сдачи соответствует ограничению задачи.
// Задача с типом image принимает только файл (картинку), link — только ссылку.
func MatchesTaskType(taskType, submissionType string) bool {
	switch taskType {
	case TaskSubmissionAny:
		return true
	case TaskSubmissionImage, TaskSubmissionFile:
		return submissionType == SubmissionTypeFile
	case TaskSubmissionLink:
		return submissionType == SubmissionTypeLink
	default:
		return false
	}
}
