package task

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/taskbuddy/backend/domain"
)

var frozen = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestUseCase(t *testing.T) (*UseCase, *memTaskRepo) {
	t.Helper()
	repo := newMemTaskRepo()
	uc := New(repo, &memStatsRepo{repo: repo}, nil).WithClock(func() time.Time { return frozen })
	return uc, repo
}

func strPtr(s string) *string { return &s }

func seedTask(t *testing.T, uc *UseCase, task domain.Task) *domain.Task {
	t.Helper()
	created, err := uc.CreateTask(context.Background(), &task)
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return created
}

func TestCreateTaskSeedsActivityLog(t *testing.T) {
	uc, _ := newTestUseCase(t)

	// History supplied by the caller must be thrown away.
	task := domain.Task{
		Title:  "write report",
		UserID: "u1",
		Activities: []domain.Activity{
			{Action: domain.ActionUpdated, Details: "forged"},
		},
	}
	created, err := uc.CreateTask(context.Background(), &task)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if len(created.Activities) != 1 {
		t.Fatalf("want exactly one activity, got %d", len(created.Activities))
	}
	act := created.Activities[0]
	if act.Action != domain.ActionCreated {
		t.Errorf("action = %q, want %q", act.Action, domain.ActionCreated)
	}
	if act.Details != "Task created" {
		t.Errorf("details = %q, want %q", act.Details, "Task created")
	}
	if !act.Timestamp.Equal(frozen) {
		t.Errorf("timestamp = %v, want clock time %v", act.Timestamp, frozen)
	}
	if !created.CreatedAt.Equal(frozen) || !created.UpdatedAt.Equal(frozen) {
		t.Errorf("createdAt/updatedAt not stamped from clock: %v / %v", created.CreatedAt, created.UpdatedAt)
	}
	if created.Status != domain.StatusTodo {
		t.Errorf("default status = %q, want %q", created.Status, domain.StatusTodo)
	}
}

func TestUpdateTaskRecordsChangedFields(t *testing.T) {
	cases := []struct {
		name    string
		patch   domain.TaskPatch
		details string
	}{
		{
			name:    "single field",
			patch:   domain.TaskPatch{Title: strPtr("new title"), Fields: []string{"title"}},
			details: "Updated title",
		},
		{
			name: "fields in request order",
			patch: domain.TaskPatch{
				DueDate: strPtr("2025-06-10"),
				Title:   strPtr("renamed"),
				Fields:  []string{"dueDate", "title"},
			},
			details: "Updated dueDate, title",
		},
		{
			name:    "bookkeeping keys only",
			patch:   domain.TaskPatch{Fields: []string{"updatedAt", "activities"}},
			details: "Task updated",
		},
		{
			name:    "empty patch",
			patch:   domain.TaskPatch{},
			details: "Task updated",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, _ := newTestUseCase(t)
			created := seedTask(t, uc, domain.Task{Title: "orig", UserID: "u1"})

			if err := uc.UpdateTask(context.Background(), created.ID, tc.patch); err != nil {
				t.Fatalf("UpdateTask: %v", err)
			}

			got, err := uc.GetTask(context.Background(), created.ID)
			if err != nil {
				t.Fatalf("GetTask: %v", err)
			}
			if len(got.Activities) != 2 {
				t.Fatalf("want 2 activities after one update, got %d", len(got.Activities))
			}
			last := got.Activities[1]
			if last.Action != domain.ActionUpdated {
				t.Errorf("action = %q, want %q", last.Action, domain.ActionUpdated)
			}
			if last.Details != tc.details {
				t.Errorf("details = %q, want %q", last.Details, tc.details)
			}
		})
	}
}

func TestUpdateTaskStatusChange(t *testing.T) {
	uc, _ := newTestUseCase(t)
	created := seedTask(t, uc, domain.Task{Title: "t", UserID: "u1", Status: domain.StatusTodo})

	// A status transition wins over the generic update wording even when
	// other fields changed in the same patch.
	patch := domain.TaskPatch{
		Title:  strPtr("t2"),
		Status: strPtr(domain.StatusInProgress),
		Fields: []string{"title", "status"},
	}
	if err := uc.UpdateTask(context.Background(), created.ID, patch); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	got, _ := uc.GetTask(context.Background(), created.ID)
	last := got.Activities[len(got.Activities)-1]
	if last.Action != domain.ActionStatusChanged {
		t.Fatalf("action = %q, want %q", last.Action, domain.ActionStatusChanged)
	}
	want := "Status changed from TO-DO to IN-PROGRESS"
	if last.Details != want {
		t.Errorf("details = %q, want %q", last.Details, want)
	}
	if got.Status != domain.StatusInProgress {
		t.Errorf("status not applied: %q", got.Status)
	}
	if got.Title != "t2" {
		t.Errorf("other patch fields must still apply: title = %q", got.Title)
	}
}

func TestUpdateTaskSameStatusIsPlainUpdate(t *testing.T) {
	uc, _ := newTestUseCase(t)
	created := seedTask(t, uc, domain.Task{Title: "t", UserID: "u1", Status: domain.StatusTodo})

	patch := domain.TaskPatch{
		Status: strPtr(domain.StatusTodo),
		Fields: []string{"status"},
	}
	if err := uc.UpdateTask(context.Background(), created.ID, patch); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	got, _ := uc.GetTask(context.Background(), created.ID)
	last := got.Activities[len(got.Activities)-1]
	if last.Action != domain.ActionUpdated {
		t.Errorf("action = %q, want %q for unchanged status", last.Action, domain.ActionUpdated)
	}
	if last.Details != "Updated status" {
		t.Errorf("details = %q, want %q", last.Details, "Updated status")
	}
}

func TestUpdateTaskMissingWritesNothing(t *testing.T) {
	uc, repo := newTestUseCase(t)

	err := uc.UpdateTask(context.Background(), "absent", domain.TaskPatch{Title: strPtr("x"), Fields: []string{"title"}})
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
	if len(repo.tasks) != 0 {
		t.Fatalf("missing-task update must not create records, store has %d", len(repo.tasks))
	}
}

func TestDeleteTask(t *testing.T) {
	uc, _ := newTestUseCase(t)
	created := seedTask(t, uc, domain.Task{Title: "t", UserID: "u1"})

	if err := uc.DeleteTask(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := uc.GetTask(context.Background(), created.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("deleted task still readable, err = %v", err)
	}
	if err := uc.DeleteTask(context.Background(), created.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("second delete err = %v, want ErrTaskNotFound", err)
	}
}

func TestListTasksScopedToUser(t *testing.T) {
	uc, _ := newTestUseCase(t)
	seedTask(t, uc, domain.Task{Title: "mine", UserID: "u1"})
	seedTask(t, uc, domain.Task{Title: "theirs", UserID: "u2"})

	tasks, err := uc.ListTasks(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "mine" {
		t.Fatalf("unexpected list: %+v", tasks)
	}

	empty, err := uc.ListTasks(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListTasks empty: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("user without tasks must get empty slice, got %#v", empty)
	}
}

func TestBulkUpdateStatusBestEffort(t *testing.T) {
	uc, repo := newTestUseCase(t)
	a := seedTask(t, uc, domain.Task{Title: "a", UserID: "u1"})
	b := seedTask(t, uc, domain.Task{Title: "b", UserID: "u1"})

	ids := []string{a.ID, "missing-1", b.ID, "missing-2"}
	failed, err := uc.BulkUpdateStatus(context.Background(), ids, domain.StatusCompleted)
	if err == nil {
		t.Fatal("want aggregated error for failed ids")
	}
	sort.Strings(failed)
	if len(failed) != 2 || failed[0] != "missing-1" || failed[1] != "missing-2" {
		t.Fatalf("failed = %v, want the two missing ids", failed)
	}

	// The successes stay applied.
	for _, id := range []string{a.ID, b.ID} {
		got := repo.tasks[id]
		if got.Status != domain.StatusCompleted {
			t.Errorf("task %s status = %q, want %q", id, got.Status, domain.StatusCompleted)
		}
	}
}

func TestBulkUpdateStatusAllSucceed(t *testing.T) {
	uc, _ := newTestUseCase(t)
	a := seedTask(t, uc, domain.Task{Title: "a", UserID: "u1"})

	failed, err := uc.BulkUpdateStatus(context.Background(), []string{a.ID}, domain.StatusInProgress)
	if err != nil {
		t.Fatalf("BulkUpdateStatus: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("failed = %v, want none", failed)
	}
}

func TestStats(t *testing.T) {
	uc, _ := newTestUseCase(t)
	seedTask(t, uc, domain.Task{Title: "a", UserID: "u1", Status: domain.StatusTodo})
	seedTask(t, uc, domain.Task{Title: "b", UserID: "u1", Status: domain.StatusCompleted})
	seedTask(t, uc, domain.Task{Title: "c", UserID: "u2", Status: domain.StatusTodo})

	stats, err := uc.Stats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.ByStatus[domain.StatusTodo] != 1 || stats.ByStatus[domain.StatusCompleted] != 1 {
		t.Errorf("byStatus = %v", stats.ByStatus)
	}
}
