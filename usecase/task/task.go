package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/taskbuddy/backend/domain"
	"github.com/taskbuddy/backend/repository"
)

// UseCase is the single point of interaction with the task store. It owns
// the activity-log rules; everything else passes the repository's errors
// through to the caller unchanged.
type UseCase struct {
	tasks  repository.TaskRepository
	stats  repository.StatsRepository
	logger *zap.Logger
	clock  func() time.Time
}

func New(tasks repository.TaskRepository, stats repository.StatsRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		stats:  stats,
		logger: logger,
		clock:  time.Now,
	}
}

// WithClock overrides the time source. Mainly for tests.
func (uc *UseCase) WithClock(clock func() time.Time) *UseCase {
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// CreateTask stores a new task. Whatever activity history the caller
// supplied is discarded; the stored record starts with a single CREATED
// entry stamped at call time.
func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	now := uc.clock()
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	task.Activities = []domain.Activity{{
		Action:    domain.ActionCreated,
		Timestamp: now,
		Details:   "Task created",
	}}

	return uc.tasks.Create(ctx, task)
}

// UpdateTask applies a partial update and appends exactly one activity
// describing it: STATUS_CHANGED when the patch moves the task to a
// different status, UPDATED otherwise. Callers that need the fresh state
// re-fetch.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) error {
	_, err := uc.tasks.Mutate(ctx, id, func(task *domain.Task) error {
		now := uc.clock()
		activity := domain.Activity{
			Action:    domain.ActionUpdated,
			Timestamp: now,
			Details:   updateDetails(patch.Fields),
		}
		if patch.Status != nil && *patch.Status != task.Status {
			activity.Action = domain.ActionStatusChanged
			activity.Details = statusDetails(task.Status, *patch.Status)
		}

		patch.Apply(task)
		task.UpdatedAt = now
		task.Activities = append(task.Activities, activity)
		return nil
	})
	return err
}

// DeleteTask removes the task unconditionally. Store errors pass through.
func (uc *UseCase) DeleteTask(ctx context.Context, id string) error {
	return uc.tasks.Delete(ctx, id)
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

// ListTasks returns every task owned by userID. A user without tasks gets
// an empty slice, not an error.
func (uc *UseCase) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	tasks, err := uc.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// Stats returns per-status counts for the user's dashboard.
func (uc *UseCase) Stats(ctx context.Context, userID string) (*repository.TaskStats, error) {
	return uc.stats.UserTaskStats(ctx, userID)
}

// BulkUpdateStatus moves each listed task to status, one update call per
// task, dispatched concurrently. Best effort: failed ids are reported and
// logged, completed updates stay in place, nothing is rolled back.
func (uc *UseCase) BulkUpdateStatus(ctx context.Context, ids []string, status string) ([]string, error) {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
		errs   *multierror.Error
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			patch := domain.TaskPatch{Status: &status, Fields: []string{"status"}}
			if err := uc.UpdateTask(ctx, id, patch); err != nil {
				uc.logger.Error("bulk status update failed",
					zap.String("task_id", id),
					zap.String("status", status),
					zap.Error(err))
				mu.Lock()
				failed = append(failed, id)
				errs = multierror.Append(errs, fmt.Errorf("task %s: %w", id, err))
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	return failed, errs.ErrorOrNil()
}
