package models

// События для сервиса уведомлений (отправка писем — его забота, не наша)

type TaskCreatedEvent struct {
	TaskID      string  `json:"task_id"`
	WorkspaceID *string `json:"workspace_id,omitempty"`
	Title       string  `json:"title"`
	Deadline    int64   `json:"deadline"`
	Timestamp   int64   `json:"timestamp"`
}

type SubmissionReviewedEvent struct {
	SubmissionID string `json:"submission_id"`
	TaskID       string `json:"task_id"`
	StudentID    string `json:"student_id"`
	Status       string `json:"status"`
	Comment      string `json:"comment,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

type PointsAwardedEvent struct {
	StudentID string `json:"student_id"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}
