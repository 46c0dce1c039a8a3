package models

import (
	"time"
)

// PointLedgerEntry — запись журнала баллов. Журнал только пополняется:
// ни одна операция не изменяет и не удаляет записи, исправления вносятся
// компенсирующей записью.
type PointLedgerEntry struct {
	ID          string    `json:"id" db:"id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	TaskID      *string   `json:"task_id,omitempty" db:"task_id"`
	EventID     *string   `json:"event_id,omitempty" db:"event_id"`
	Delta       int       `json:"delta" db:"delta"`
	Reason      string    `json:"reason" db:"reason"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type PointReason string

const (
	ReasonTaskOnTime    PointReason = "task_on_time"
	ReasonTaskLate      PointReason = "task_late"
	ReasonTaskMissed    PointReason = "task_missed"
	ReasonEventAttended PointReason = "event_attended"
	ReasonEventWon      PointReason = "event_won"
)

func (pr PointReason) String() string {
	return string(pr)
}

func IsValidPointReason(reason string) bool {
	switch reason {
	case "task_on_time", "task_late", "task_missed", "event_attended", "event_won":
		return true
	default:
		return false
	}
}
