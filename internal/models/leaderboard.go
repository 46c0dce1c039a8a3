package models

import (
	"time"
)

// LeaderboardEntry — производная строка рейтинга, вычисляется из журнала баллов
type LeaderboardEntry struct {
	UserID             string     `json:"user_id"`
	UserName           string     `json:"user_name"`
	Section            string     `json:"section,omitempty"`
	TotalPoints        int        `json:"total_points"`
	TasksCompleted     int        `json:"tasks_completed"`
	EventsAttended     int        `json:"events_attended"`
	TaskCompletionRate float64    `json:"task_completion_rate"`
	Rank               int        `json:"rank"`
	RankChange         int        `json:"rank_change"`
	FirstPointsAt      *time.Time `json:"-"`
}

// StandingsRow — сырая строка агрегации по студенту до сортировки и рангов
type StandingsRow struct {
	StudentID      string     `db:"student_id"`
	StudentName    string     `db:"student_name"`
	Section        string     `db:"section"`
	TotalPoints    int        `db:"total_points"`
	TasksCompleted int        `db:"tasks_completed"`
	EventsAttended int        `db:"events_attended"`
	TasksAssigned  int        `db:"tasks_assigned"`
	FirstPointsAt  *time.Time `db:"first_points_at"`
}

// LeaderboardSnapshot — сохраненный ранг за период, для расчета rank_change
type LeaderboardSnapshot struct {
	PeriodDate  time.Time `json:"period_date" db:"period_date"`
	Department  string    `json:"department" db:"department"`
	StudentID   string    `json:"student_id" db:"student_id"`
	Rank        int       `json:"rank" db:"rank"`
	TotalPoints int       `json:"total_points" db:"total_points"`
}

type MyStats struct {
	LeaderboardEntry
	RecentActivities []PointLedgerEntry `json:"recent_activities"`
}
