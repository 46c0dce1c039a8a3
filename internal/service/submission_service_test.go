package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/models"
)

type submissionEnv struct {
	svc            SubmissionService
	taskRepo       *fakeTaskRepo
	studentRepo    *fakeStudentRepo
	workspaceRepo  *fakeWorkspaceRepo
	submissionRepo *fakeSubmissionRepo
	ledgerRepo     *fakeLedgerRepo
	fileClient     *fakeFileClient
}

func newSubmissionEnv(t *testing.T, taskDeadline time.Time, taskType string) *submissionEnv {
	t.Helper()
	ctx := context.Background()

	studentRepo := newFakeStudentRepo()
	workspaceRepo := newFakeWorkspaceRepo()
	taskRepo := newFakeTaskRepo()
	submissionRepo := newFakeSubmissionRepo()
	ledgerRepo := newFakeLedgerRepo()
	fileClient := &fakeFileClient{}
	points := NewPointsService(ledgerRepo, studentRepo, nil, testPolicy, zerolog.Nop())

	seedStudent(t, studentRepo, "owner", "cs", "a")
	seedStudent(t, studentRepo, "member", "cs", "a")
	seedStudent(t, studentRepo, "stranger", "cs", "b")

	workspaceRepo.Create(ctx, &models.Workspace{
		ID:         "w1",
		Name:       "Algorithms",
		InviteCode: "ABCD2345",
		OwnerID:    "owner",
	})
	workspaceRepo.AddMember(ctx, "w1", "member")

	workspaceID := "w1"
	taskRepo.Create(ctx, &models.Task{
		ID:             "t1",
		WorkspaceID:    &workspaceID,
		Title:          "lab 1",
		Deadline:       taskDeadline,
		SubmissionType: taskType,
	})

	svc := NewSubmissionService(
		submissionRepo,
		taskRepo,
		studentRepo,
		workspaceRepo,
		points,
		fileClient,
		nil,
		zerolog.Nop(),
	)

	return &submissionEnv{
		svc:            svc,
		taskRepo:       taskRepo,
		studentRepo:    studentRepo,
		workspaceRepo:  workspaceRepo,
		submissionRepo: submissionRepo,
		ledgerRepo:     ledgerRepo,
		fileClient:     fileClient,
	}
}

func linkRequest(studentID string) *models.SubmitTaskRequest {
	return &models.SubmitTaskRequest{
		StudentID:      studentID,
		SubmissionType: models.SubmissionTypeLink,
		Link:           "https://github.com/example/repo",
	}
}

func TestSubmitCreatesPending(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionAny)

	submission, err := env.svc.Submit(context.Background(), "t1", linkRequest("member"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if submission.Status != models.SubmissionStatusPending.String() {
		t.Errorf("status = %s, want pending", submission.Status)
	}
	if submission.Link == nil || *submission.Link == "" {
		t.Error("link not stored")
	}

	// До проверки баллов нет
	if entries := env.ledgerRepo.entriesFor("member"); len(entries) != 0 {
		t.Errorf("ledger entries = %d, want 0", len(entries))
	}
}

func TestSubmitNonMemberForbidden(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionAny)

	_, err := env.svc.Submit(context.Background(), "t1", linkRequest("stranger"))
	if !errors.Is(err, ErrPermission) {
		t.Errorf("err = %v, want ErrPermission", err)
	}
}

func TestSubmitTypeMismatch(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionLink)

	req := &models.SubmitTaskRequest{
		StudentID:      "member",
		SubmissionType: models.SubmissionTypeFile,
		FileContent:    []byte("content"),
		FileName:       "lab.pdf",
	}

	_, err := env.svc.Submit(context.Background(), "t1", req)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestSubmitFileUploads(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionFile)

	req := &models.SubmitTaskRequest{
		StudentID:      "member",
		SubmissionType: models.SubmissionTypeFile,
		FileContent:    []byte("content"),
		FileName:       "lab.pdf",
	}

	submission, err := env.svc.Submit(context.Background(), "t1", req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if env.fileClient.uploads != 1 {
		t.Errorf("uploads = %d, want 1", env.fileClient.uploads)
	}
	if submission.FilePath == nil || *submission.FilePath != "/uploads/lab.pdf" {
		t.Errorf("file_path = %v", submission.FilePath)
	}
}

func TestSubmitWhilePendingConflicts(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionAny)
	ctx := context.Background()

	if _, err := env.svc.Submit(ctx, "t1", linkRequest("member")); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	_, err := env.svc.Submit(ctx, "t1", linkRequest("member"))
	if !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func reviewRequest(status string) *models.ReviewSubmissionRequest {
	return &models.ReviewSubmissionRequest{
		ReviewerID: "owner",
		Status:     status,
		Comment:    "checked",
	}
}

func TestReviewApproveAwardsPoints(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionAny)
	ctx := context.Background()

	submission, err := env.svc.Submit(ctx, "t1", linkRequest("member"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	reviewed, err := env.svc.Review(ctx, submission.ID, reviewRequest("approved"))
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if reviewed.Status != models.SubmissionStatusApproved.String() {
		t.Errorf("status = %s, want approved", reviewed.Status)
	}

	entries := env.ledgerRepo.entriesFor("member")
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	if entries[0].Reason != models.ReasonTaskOnTime.String() || entries[0].Delta != 10 {
		t.Errorf("entry = %+v, want task_on_time +10", entries[0])
	}
}

func TestReviewApproveLateSubmission(t *testing.T) {
	// Дедлайн уже прошел на момент сдачи
	env := newSubmissionEnv(t, time.Now().Add(-time.Hour), models.TaskSubmissionAny)
	ctx := context.Background()

	submission, err := env.svc.Submit(ctx, "t1", linkRequest("member"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := env.svc.Review(ctx, submission.ID, reviewRequest("approved")); err != nil {
		t.Fatalf("Review: %v", err)
	}

	entries := env.ledgerRepo.entriesFor("member")
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	if entries[0].Reason != models.ReasonTaskLate.String() || entries[0].Delta != -5 {
		t.Errorf("entry = %+v, want task_late -5", entries[0])
	}
}

func TestReviewByNonOwnerForbidden(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionAny)
	ctx := context.Background()

	submission, err := env.svc.Submit(ctx, "t1", linkRequest("member"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	req := &models.ReviewSubmissionRequest{ReviewerID: "member", Status: "approved"}
	_, err = env.svc.Review(ctx, submission.ID, req)
	if !errors.Is(err, ErrPermission) {
		t.Errorf("err = %v, want ErrPermission", err)
	}
}

func TestReviewTwiceConflicts(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionAny)
	ctx := context.Background()

	submission, err := env.svc.Submit(ctx, "t1", linkRequest("member"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := env.svc.Review(ctx, submission.ID, reviewRequest("approved")); err != nil {
		t.Fatalf("first Review: %v", err)
	}

	_, err = env.svc.Review(ctx, submission.ID, reviewRequest("rejected"))
	if !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestResubmitAfterReject(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionAny)
	ctx := context.Background()

	submission, err := env.svc.Submit(ctx, "t1", linkRequest("member"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := env.svc.Review(ctx, submission.ID, reviewRequest("rejected")); err != nil {
		t.Fatalf("Review: %v", err)
	}

	// За reject баллов нет
	if entries := env.ledgerRepo.entriesFor("member"); len(entries) != 0 {
		t.Fatalf("ledger entries after reject = %d, want 0", len(entries))
	}

	resubmitted, err := env.svc.Submit(ctx, "t1", linkRequest("member"))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	// Пересдача сохраняет идентичность записи
	if resubmitted.ID != submission.ID {
		t.Errorf("resubmit id = %s, want %s", resubmitted.ID, submission.ID)
	}
	if resubmitted.Status != models.SubmissionStatusPending.String() {
		t.Errorf("status = %s, want pending", resubmitted.Status)
	}

	// Вердикт прошлой проверки очищен
	stored, _ := env.submissionRepo.GetByID(ctx, submission.ID)
	if stored.ReviewComment != nil || stored.ReviewedBy != nil {
		t.Error("review fields not cleared on resubmit")
	}
}

func TestSubmitAfterApproveConflicts(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionAny)
	ctx := context.Background()

	submission, err := env.svc.Submit(ctx, "t1", linkRequest("member"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := env.svc.Review(ctx, submission.ID, reviewRequest("approved")); err != nil {
		t.Fatalf("Review: %v", err)
	}

	_, err = env.svc.Submit(ctx, "t1", linkRequest("member"))
	if !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestReviewKeepsHistory(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionAny)
	ctx := context.Background()

	submission, err := env.svc.Submit(ctx, "t1", linkRequest("member"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := env.svc.Review(ctx, submission.ID, reviewRequest("rejected")); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := env.svc.Submit(ctx, "t1", linkRequest("member")); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if _, err := env.svc.Review(ctx, submission.ID, reviewRequest("approved")); err != nil {
		t.Fatalf("approve: %v", err)
	}

	reviews, err := env.svc.GetReviews(ctx, submission.ID)
	if err != nil {
		t.Fatalf("GetReviews: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("reviews = %d, want 2", len(reviews))
	}
	if reviews[0].Status != "rejected" || reviews[1].Status != "approved" {
		t.Errorf("review history = %s, %s", reviews[0].Status, reviews[1].Status)
	}
}

func TestSubmitSimpleTaskRejected(t *testing.T) {
	env := newSubmissionEnv(t, time.Now().Add(time.Hour), models.TaskSubmissionAny)
	ctx := context.Background()

	env.taskRepo.Create(ctx, &models.Task{
		ID:             "simple",
		Title:          "reading",
		Deadline:       time.Now().Add(time.Hour),
		SubmissionType: models.TaskSubmissionAny,
	})

	_, err := env.svc.Submit(ctx, "simple", linkRequest("member"))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}
