package models

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name    string
		actedAt time.Time
		want    TimelinessStatus
	}{
		{"before deadline", deadline.Add(-time.Hour), TimelinessOnTime},
		{"exactly at deadline", deadline, TimelinessOnTime},
		{"after deadline", deadline.Add(time.Second), TimelinessLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(deadline, tt.actedAt); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMatchesTaskType(t *testing.T) {
	tests := []struct {
		taskType       string
		submissionType string
		want           bool
	}{
		{TaskSubmissionAny, SubmissionTypeFile, true},
		{TaskSubmissionAny, SubmissionTypeLink, true},
		{TaskSubmissionImage, SubmissionTypeFile, true},
		{TaskSubmissionImage, SubmissionTypeLink, false},
		{TaskSubmissionFile, SubmissionTypeFile, true},
		{TaskSubmissionFile, SubmissionTypeLink, false},
		{TaskSubmissionLink, SubmissionTypeLink, true},
		{TaskSubmissionLink, SubmissionTypeFile, false},
		{"unknown", SubmissionTypeFile, false},
	}

	for _, tt := range tests {
		if got := MatchesTaskType(tt.taskType, tt.submissionType); got != tt.want {
			t.Errorf("MatchesTaskType(%s, %s) = %v, want %v", tt.taskType, tt.submissionType, got, tt.want)
		}
	}
}
