package models

import (
	"time"
)

// DepartmentUpdate — объявление кафедры; наличие event_date делает его событием
type DepartmentUpdate struct {
	ID                string     `json:"id" db:"id"`
	Title             string     `json:"title" db:"title"`
	Description       string     `json:"description" db:"description"`
	Category          string     `json:"category" db:"category"`
	EventDate         *time.Time `json:"event_date,omitempty" db:"event_date"`
	VisibleToSections []string   `json:"visible_to_sections" db:"visible_to_sections"`
	CreatedBy         string     `json:"created_by" db:"created_by"`
	CreatedByName     string     `json:"created_by_name,omitempty" db:"created_by_name"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

type DepartmentUpdateWithInterest struct {
	DepartmentUpdate
	InterestedCount int  `json:"interested_count"`
	AttendingCount  int  `json:"attending_count"`
	IsInterested    bool `json:"is_interested"`
	IsAttending     bool `json:"is_attending"`
}

const (
	UpdateCategoryAnnouncement = "announcement"
	UpdateCategoryWorkshop     = "workshop"
	UpdateCategorySeminar      = "seminar"
	UpdateCategoryCompetition  = "competition"
	UpdateCategoryDeadline     = "deadline"
)

func IsValidUpdateCategory(category string) bool {
	switch category {
	case UpdateCategoryAnnouncement, UpdateCategoryWorkshop, UpdateCategorySeminar,
		UpdateCategoryCompetition, UpdateCategoryDeadline:
		return true
	default:
		return false
	}
}

// Виды отметок интереса к событию
const (
	InterestKindInterested = "interested"
	InterestKindAttending  = "attending"
)
