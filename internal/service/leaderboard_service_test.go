package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyhub/engagement-service/internal/config"
	"github.com/studyhub/engagement-service/internal/models"
)

var testLeaderboardCfg = config.LeaderboardConfig{
	TopPerformersLimit: 3,
	DefaultLimit:       100,
	SnapshotInterval:   24 * time.Hour,
	RecentActivities:   10,
}

type leaderboardEnv struct {
	svc          LeaderboardService
	ledgerRepo   *fakeLedgerRepo
	snapshotRepo *fakeSnapshotRepo
	studentRepo  *fakeStudentRepo
}

func newLeaderboardEnv() *leaderboardEnv {
	ledgerRepo := newFakeLedgerRepo()
	snapshotRepo := newFakeSnapshotRepo()
	studentRepo := newFakeStudentRepo()
	svc := NewLeaderboardService(ledgerRepo, snapshotRepo, studentRepo, testLeaderboardCfg, zerolog.Nop())
	return &leaderboardEnv{svc: svc, ledgerRepo: ledgerRepo, snapshotRepo: snapshotRepo, studentRepo: studentRepo}
}

func ts(offset time.Duration) *time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(offset)
	return &t
}

func TestLeaderboardOrdering(t *testing.T) {
	env := newLeaderboardEnv()

	env.ledgerRepo.standings = []models.StandingsRow{
		{StudentID: "c", StudentName: "C", TotalPoints: 30, FirstPointsAt: ts(2 * time.Hour)},
		{StudentID: "a", StudentName: "A", TotalPoints: 50, FirstPointsAt: ts(time.Hour)},
		{StudentID: "b", StudentName: "B", TotalPoints: 50, FirstPointsAt: ts(0)},
	}

	entries, err := env.svc.GetLeaderboard(context.Background(), "cs", "", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}

	// При равных баллах выше тот, кто раньше набрал первые баллы
	wantOrder := []string{"b", "a", "c"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("entries = %d, want %d", len(entries), len(wantOrder))
	}
	for i, want := range wantOrder {
		if entries[i].UserID != want {
			t.Errorf("position %d = %s, want %s", i+1, entries[i].UserID, want)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("rank of %s = %d, want %d", entries[i].UserID, entries[i].Rank, i+1)
		}
	}
}

func TestLeaderboardTieBreakByID(t *testing.T) {
	env := newLeaderboardEnv()

	// Ни у кого нет положительных записей: ничья разрешается по id
	env.ledgerRepo.standings = []models.StandingsRow{
		{StudentID: "z", TotalPoints: 0},
		{StudentID: "a", TotalPoints: 0},
		{StudentID: "m", TotalPoints: 0, FirstPointsAt: ts(0)},
	}

	entries, err := env.svc.GetLeaderboard(context.Background(), "cs", "", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}

	// Имеющий first_points_at идет раньше тех, у кого его нет
	wantOrder := []string{"m", "a", "z"}
	for i, want := range wantOrder {
		if entries[i].UserID != want {
			t.Errorf("position %d = %s, want %s", i+1, entries[i].UserID, want)
		}
	}
}

func TestLeaderboardRankChange(t *testing.T) {
	env := newLeaderboardEnv()

	env.ledgerRepo.standings = []models.StandingsRow{
		{StudentID: "a", TotalPoints: 50, FirstPointsAt: ts(0)},
		{StudentID: "b", TotalPoints: 40, FirstPointsAt: ts(time.Hour)},
		{StudentID: "c", TotalPoints: 30, FirstPointsAt: ts(2 * time.Hour)},
	}
	// В прошлом срезе a был третьим, b первым
	env.snapshotRepo.ranks = map[string]int{"a": 3, "b": 1, "c": 2}

	entries, err := env.svc.GetLeaderboard(context.Background(), "cs", "", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}

	changes := map[string]int{}
	for _, e := range entries {
		changes[e.UserID] = e.RankChange
	}

	if changes["a"] != 2 {
		t.Errorf("rank_change a = %d, want +2", changes["a"])
	}
	if changes["b"] != -1 {
		t.Errorf("rank_change b = %d, want -1", changes["b"])
	}
	if changes["c"] != -1 {
		t.Errorf("rank_change c = %d, want -1", changes["c"])
	}
}

func TestLeaderboardNewStudentNoRankChange(t *testing.T) {
	env := newLeaderboardEnv()

	env.ledgerRepo.standings = []models.StandingsRow{
		{StudentID: "new", TotalPoints: 10, FirstPointsAt: ts(0)},
	}

	entries, err := env.svc.GetLeaderboard(context.Background(), "cs", "", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if entries[0].RankChange != 0 {
		t.Errorf("rank_change = %d, want 0 for student absent from snapshot", entries[0].RankChange)
	}
}

func TestLeaderboardCompletionRate(t *testing.T) {
	env := newLeaderboardEnv()

	env.ledgerRepo.standings = []models.StandingsRow{
		{StudentID: "a", TotalPoints: 20, TasksCompleted: 3, TasksAssigned: 4, FirstPointsAt: ts(0)},
		{StudentID: "b", TotalPoints: 10, TasksCompleted: 0, TasksAssigned: 0, FirstPointsAt: ts(time.Hour)},
	}

	entries, err := env.svc.GetLeaderboard(context.Background(), "cs", "", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}

	// Процент, не доля: 3 из 4 — это 75
	if entries[0].TaskCompletionRate != 75 {
		t.Errorf("rate a = %f, want 75", entries[0].TaskCompletionRate)
	}
	// Без назначенных задач ставка ноль, не деление на ноль
	if entries[1].TaskCompletionRate != 0 {
		t.Errorf("rate b = %f, want 0", entries[1].TaskCompletionRate)
	}
}

func TestTopPerformersLimit(t *testing.T) {
	env := newLeaderboardEnv()

	env.ledgerRepo.standings = []models.StandingsRow{
		{StudentID: "a", TotalPoints: 50, FirstPointsAt: ts(0)},
		{StudentID: "b", TotalPoints: 40, FirstPointsAt: ts(0)},
		{StudentID: "c", TotalPoints: 30, FirstPointsAt: ts(0)},
		{StudentID: "d", TotalPoints: 20, FirstPointsAt: ts(0)},
	}

	entries, err := env.svc.GetTopPerformers(context.Background(), "cs")
	if err != nil {
		t.Fatalf("GetTopPerformers: %v", err)
	}
	if len(entries) != testLeaderboardCfg.TopPerformersLimit {
		t.Errorf("entries = %d, want %d", len(entries), testLeaderboardCfg.TopPerformersLimit)
	}
}

func TestLeaderboardRequiresDepartment(t *testing.T) {
	env := newLeaderboardEnv()

	_, err := env.svc.GetLeaderboard(context.Background(), "", "", 0)
	if err == nil {
		t.Fatal("expected error for empty department")
	}
}

func TestTakeSnapshot(t *testing.T) {
	env := newLeaderboardEnv()
	ctx := context.Background()

	env.ledgerRepo.standings = []models.StandingsRow{
		{StudentID: "a", TotalPoints: 50, FirstPointsAt: ts(0)},
		{StudentID: "b", TotalPoints: 40, FirstPointsAt: ts(time.Hour)},
	}

	rows, err := env.svc.TakeSnapshot(ctx, "cs", time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("TakeSnapshot: %v", err)
	}
	if rows != 2 {
		t.Fatalf("rows = %d, want 2", rows)
	}

	saved := env.snapshotRepo.saved
	if saved[0].Rank != 1 || saved[0].StudentID != "a" {
		t.Errorf("first snapshot row = %+v", saved[0])
	}

	// Дата периода обрезана до суток
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if !saved[0].PeriodDate.Equal(want) {
		t.Errorf("period = %v, want %v", saved[0].PeriodDate, want)
	}
}

func TestGetMyStats(t *testing.T) {
	env := newLeaderboardEnv()
	ctx := context.Background()

	seedStudent(t, env.studentRepo, "s1", "cs", "a")

	env.ledgerRepo.standings = []models.StandingsRow{
		{StudentID: "other", TotalPoints: 50, FirstPointsAt: ts(0)},
		{StudentID: "s1", StudentName: "Student s1", TotalPoints: 30, FirstPointsAt: ts(time.Hour)},
	}

	taskID := "t1"
	env.ledgerRepo.Append(ctx, &models.PointLedgerEntry{
		ID: "e1", StudentID: "s1", TaskID: &taskID, Delta: 10,
		Reason: models.ReasonTaskOnTime.String(), CreatedAt: time.Now(),
	})

	stats, err := env.svc.GetMyStats(ctx, "s1")
	if err != nil {
		t.Fatalf("GetMyStats: %v", err)
	}

	if stats.Rank != 2 {
		t.Errorf("rank = %d, want 2", stats.Rank)
	}
	if stats.TotalPoints != 30 {
		t.Errorf("points = %d, want 30", stats.TotalPoints)
	}
	if len(stats.RecentActivities) != 1 {
		t.Errorf("recent activities = %d, want 1", len(stats.RecentActivities))
	}
}
