package models

import (
	"time"
)

type Student struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Department string    `json:"department" db:"department"`
	Section    string    `json:"section" db:"section"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type StudentWithStats struct {
	Student
	TotalPoints    int `json:"total_points" db:"total_points"`
	TasksCompleted int `json:"tasks_completed" db:"tasks_completed"`
	EventsAttended int `json:"events_attended" db:"events_attended"`
}
