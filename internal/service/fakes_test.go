package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/internal/repository"
	"github.com/studyhub/engagement-service/internal/service/integration"
)

// Тестовые in-memory реализации репозиториев. Повторяют контракт
// postgres-реализаций: nil вместо sql.ErrNoRows, bool для идемпотентных вставок.

type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[string]*models.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*models.Student)}
}

func (r *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[student.ID] = student
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.students[id], nil
}

func (r *fakeStudentRepo) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.Email == email {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeStudentRepo) GetAll(_ context.Context, limit, offset int) ([]models.Student, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Student
	for _, s := range r.students {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *fakeStudentRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.students[id]
	return ok, nil
}

func (r *fakeStudentRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.students), nil
}

func (r *fakeStudentRepo) GetDepartments(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var departments []string
	for _, s := range r.students {
		if !seen[s.Department] {
			seen[s.Department] = true
			departments = append(departments, s.Department)
		}
	}
	sort.Strings(departments)
	return departments, nil
}

type membershipKey struct {
	workspaceID string
	studentID   string
}

type fakeWorkspaceRepo struct {
	mu         sync.Mutex
	workspaces map[string]*models.Workspace
	members    map[membershipKey]time.Time
}

func newFakeWorkspaceRepo() *fakeWorkspaceRepo {
	return &fakeWorkspaceRepo{
		workspaces: make(map[string]*models.Workspace),
		members:    make(map[membershipKey]time.Time),
	}
}

func (r *fakeWorkspaceRepo) Create(_ context.Context, workspace *models.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[workspace.ID] = workspace
	return nil
}

func (r *fakeWorkspaceRepo) GetByID(_ context.Context, id string) (*models.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.workspaces[id], nil
}

func (r *fakeWorkspaceRepo) GetByInviteCode(_ context.Context, code string) (*models.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workspaces {
		if w.InviteCode == code {
			return w, nil
		}
	}
	return nil, nil
}

func (r *fakeWorkspaceRepo) GetByOwner(_ context.Context, ownerID string) ([]models.WorkspaceWithStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.WorkspaceWithStats
	for _, w := range r.workspaces {
		if w.OwnerID == ownerID {
			result = append(result, models.WorkspaceWithStats{Workspace: *w})
		}
	}
	return result, nil
}

func (r *fakeWorkspaceRepo) InviteCodeExists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workspaces {
		if w.InviteCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeWorkspaceRepo) AddMember(_ context.Context, workspaceID, studentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey{workspaceID, studentID}
	if _, ok := r.members[key]; ok {
		return false, nil
	}
	r.members[key] = time.Now()
	return true, nil
}

func (r *fakeWorkspaceRepo) GetMembership(_ context.Context, workspaceID, studentID string) (*models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	joinedAt, ok := r.members[membershipKey{workspaceID, studentID}]
	if !ok {
		return nil, nil
	}
	return &models.Membership{
		WorkspaceID: workspaceID,
		StudentID:   studentID,
		JoinedAt:    joinedAt,
	}, nil
}

func (r *fakeWorkspaceRepo) GetMembers(_ context.Context, workspaceID string) ([]models.MemberWithDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.MemberWithDetails
	for key, joinedAt := range r.members {
		if key.workspaceID == workspaceID {
			result = append(result, models.MemberWithDetails{
				Membership: models.Membership{
					WorkspaceID: key.workspaceID,
					StudentID:   key.studentID,
					JoinedAt:    joinedAt,
				},
			})
		}
	}
	return result, nil
}

func (r *fakeWorkspaceRepo) IsMember(_ context.Context, workspaceID, studentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[membershipKey{workspaceID, studentID}]
	return ok, nil
}

type completionKey struct {
	taskID    string
	studentID string
}

type fakeTaskRepo struct {
	mu          sync.Mutex
	tasks       map[string]*models.Task
	completions map[completionKey]time.Time
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:       make(map[string]*models.Task),
		completions: make(map[completionKey]time.Time),
	}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[id], nil
}

func (r *fakeTaskRepo) GetSimpleTasks(_ context.Context) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Task
	for _, t := range r.tasks {
		if t.WorkspaceID == nil {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Deadline.Before(result[j].Deadline) })
	return result, nil
}

func (r *fakeTaskRepo) GetByWorkspaceID(_ context.Context, workspaceID string) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Task
	for _, t := range r.tasks {
		if t.WorkspaceID != nil && *t.WorkspaceID == workspaceID {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Deadline.Before(result[j].Deadline) })
	return result, nil
}

func (r *fakeTaskRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[id]
	return ok, nil
}

func (r *fakeTaskRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks), nil
}

func (r *fakeTaskRepo) CreateCompletion(_ context.Context, taskID, studentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := completionKey{taskID, studentID}
	if _, ok := r.completions[key]; ok {
		return false, nil
	}
	r.completions[key] = time.Now()
	return true, nil
}

func (r *fakeTaskRepo) DeleteCompletion(_ context.Context, taskID, studentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := completionKey{taskID, studentID}
	if _, ok := r.completions[key]; !ok {
		return false, nil
	}
	delete(r.completions, key)
	return true, nil
}

func (r *fakeTaskRepo) GetCompletion(_ context.Context, taskID, studentID string) (*models.TaskCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	completedAt, ok := r.completions[completionKey{taskID, studentID}]
	if !ok {
		return nil, nil
	}
	return &models.TaskCompletion{
		TaskID:      taskID,
		StudentID:   studentID,
		CompletedAt: completedAt,
	}, nil
}

func (r *fakeTaskRepo) GetCompletionsByTask(_ context.Context, taskID string) ([]models.TaskCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.TaskCompletion
	for key, completedAt := range r.completions {
		if key.taskID == taskID {
			result = append(result, models.TaskCompletion{
				TaskID:      key.taskID,
				StudentID:   key.studentID,
				CompletedAt: completedAt,
			})
		}
	}
	return result, nil
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[string]*models.Submission
	reviews     map[string][]models.SubmissionReview
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		submissions: make(map[string]*models.Submission),
		reviews:     make(map[string][]models.SubmissionReview),
	}
}

func (r *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.submissions {
		if existing.TaskID == submission.TaskID && existing.StudentID == submission.StudentID {
			return repository.ErrDuplicate
		}
	}
	copied := *submission
	r.submissions[submission.ID] = &copied
	return nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id string) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[id]
	if !ok {
		return nil, nil
	}
	copied := *sub
	return &copied, nil
}

func (r *fakeSubmissionRepo) GetByTaskAndStudent(_ context.Context, taskID, studentID string) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.submissions {
		if sub.TaskID == taskID && sub.StudentID == studentID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSubmissionRepo) GetByTaskID(_ context.Context, taskID string) ([]models.SubmissionWithDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.SubmissionWithDetails
	for _, sub := range r.submissions {
		if sub.TaskID == taskID {
			result = append(result, models.SubmissionWithDetails{Submission: *sub})
		}
	}
	return result, nil
}

func (r *fakeSubmissionRepo) Resubmit(_ context.Context, submission *models.Submission) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.submissions[submission.ID]
	if !ok || existing.Status != models.SubmissionStatusRejected.String() {
		return false, nil
	}
	existing.SubmissionType = submission.SubmissionType
	existing.FilePath = submission.FilePath
	existing.Link = submission.Link
	existing.Status = models.SubmissionStatusPending.String()
	existing.ReviewComment = nil
	existing.ReviewedBy = nil
	existing.ReviewedAt = nil
	existing.SubmittedAt = submission.SubmittedAt
	return true, nil
}

func (r *fakeSubmissionRepo) SetReview(_ context.Context, id, status, comment, reviewerID string, reviewedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.submissions[id]
	if !ok || existing.Status != models.SubmissionStatusPending.String() {
		return false, nil
	}
	existing.Status = status
	existing.ReviewComment = &comment
	existing.ReviewedBy = &reviewerID
	existing.ReviewedAt = &reviewedAt
	return true, nil
}

func (r *fakeSubmissionRepo) AddReview(_ context.Context, review *models.SubmissionReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews[review.SubmissionID] = append(r.reviews[review.SubmissionID], *review)
	return nil
}

func (r *fakeSubmissionRepo) GetReviews(_ context.Context, submissionID string) ([]models.SubmissionReview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reviews[submissionID], nil
}

type fakeLedgerRepo struct {
	mu        sync.Mutex
	entries   []models.PointLedgerEntry
	standings []models.StandingsRow
	missed    []repository.MissedTaskPair
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{}
}

func (r *fakeLedgerRepo) Append(_ context.Context, entry *models.PointLedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLedgerRepo) GetByStudent(_ context.Context, studentID string, limit int) ([]models.PointLedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.PointLedgerEntry
	for i := len(r.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if r.entries[i].StudentID == studentID {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}

func (r *fakeLedgerRepo) TotalByStudent(_ context.Context, studentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, e := range r.entries {
		if e.StudentID == studentID {
			total += e.Delta
		}
	}
	return total, nil
}

func (r *fakeLedgerRepo) GetLastTaskEntry(_ context.Context, studentID, taskID string) (*models.PointLedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.StudentID == studentID && e.TaskID != nil && *e.TaskID == taskID {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *fakeLedgerRepo) HasEventEntry(_ context.Context, studentID, eventID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.StudentID == studentID && e.EventID != nil && *e.EventID == eventID && e.Reason == reason {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLedgerRepo) GetStandings(_ context.Context, _, _ string) ([]models.StandingsRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.standings, nil
}

func (r *fakeLedgerRepo) GetMissedTaskPairs(_ context.Context, _ time.Time) ([]repository.MissedTaskPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Как и в SQL-версии, уже оштрафованные пары не возвращаются
	var result []repository.MissedTaskPair
	for _, pair := range r.missed {
		penalized := false
		for _, e := range r.entries {
			if e.StudentID == pair.StudentID && e.TaskID != nil && *e.TaskID == pair.TaskID && e.Reason == models.ReasonTaskMissed.String() {
				penalized = true
				break
			}
		}
		if !penalized {
			result = append(result, pair)
		}
	}
	return result, nil
}

func (r *fakeLedgerRepo) entriesFor(studentID string) []models.PointLedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.PointLedgerEntry
	for _, e := range r.entries {
		if e.StudentID == studentID {
			result = append(result, e)
		}
	}
	return result
}

type fakeSnapshotRepo struct {
	mu    sync.Mutex
	ranks map[string]int
	saved []models.LeaderboardSnapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{ranks: make(map[string]int)}
}

func (r *fakeSnapshotRepo) Upsert(_ context.Context, snapshots []models.LeaderboardSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, snapshots...)
	return nil
}

func (r *fakeSnapshotRepo) GetLatestRanks(_ context.Context, _ string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ranks := make(map[string]int, len(r.ranks))
	for k, v := range r.ranks {
		ranks[k] = v
	}
	return ranks, nil
}

type interestEntry struct {
	updateID  string
	studentID string
	kind      string
}

type fakeUpdateRepo struct {
	mu         sync.Mutex
	updates    map[string]*models.DepartmentUpdate
	interests  []interestEntry
	attendance map[membershipKey]bool // eventID+studentID
}

func newFakeUpdateRepo() *fakeUpdateRepo {
	return &fakeUpdateRepo{
		updates:    make(map[string]*models.DepartmentUpdate),
		attendance: make(map[membershipKey]bool),
	}
}

func (r *fakeUpdateRepo) Create(_ context.Context, update *models.DepartmentUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates[update.ID] = update
	return nil
}

func (r *fakeUpdateRepo) GetByID(_ context.Context, id string) (*models.DepartmentUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[id], nil
}

func (r *fakeUpdateRepo) GetVisible(_ context.Context, section, _ string) ([]models.DepartmentUpdateWithInterest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.DepartmentUpdateWithInterest
	for _, u := range r.updates {
		visible := section == "" || len(u.VisibleToSections) == 0
		for _, s := range u.VisibleToSections {
			if s == section {
				visible = true
			}
		}
		if visible {
			result = append(result, models.DepartmentUpdateWithInterest{DepartmentUpdate: *u})
		}
	}
	return result, nil
}

func (r *fakeUpdateRepo) GetCalendar(_ context.Context, _ string) ([]models.DepartmentUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.DepartmentUpdate
	for _, u := range r.updates {
		if u.EventDate != nil {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *fakeUpdateRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.updates, id)
	return nil
}

func (r *fakeUpdateRepo) SetInterest(_ context.Context, updateID, studentID, kind string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.interests {
		if i.updateID == updateID && i.studentID == studentID && i.kind == kind {
			return nil
		}
	}
	r.interests = append(r.interests, interestEntry{updateID, studentID, kind})
	return nil
}

func (r *fakeUpdateRepo) ClearInterest(_ context.Context, updateID, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []interestEntry
	for _, i := range r.interests {
		if i.updateID != updateID || i.studentID != studentID {
			kept = append(kept, i)
		}
	}
	r.interests = kept
	return nil
}

func (r *fakeUpdateRepo) MarkAttendance(_ context.Context, eventID, studentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey{eventID, studentID}
	if r.attendance[key] {
		return false, nil
	}
	r.attendance[key] = true
	return true, nil
}

type fakeFileClient struct {
	uploads int
	fail    bool
}

func (c *fakeFileClient) UploadFile(_ context.Context, _ []byte, fileName string) (*integration.UploadResponse, error) {
	if c.fail {
		return nil, context.DeadlineExceeded
	}
	c.uploads++
	return &integration.UploadResponse{
		FilePath: "/uploads/" + fileName,
		Filename: fileName,
		Size:     1,
	}, nil
}

func (c *fakeFileClient) DeleteFile(_ context.Context, _ string) error {
	return nil
}
