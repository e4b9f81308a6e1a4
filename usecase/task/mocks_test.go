package task

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/taskbuddy/backend/domain"
	"github.com/taskbuddy/backend/repository"
)

// memTaskRepo is an in-memory TaskRepository sufficient for exercising the
// facade. Mutate serializes through the same mutex the real implementation
// serializes through a row lock.
type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]domain.Task

	failCreate error
	failMutate map[string]error
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{
		tasks:      make(map[string]domain.Task),
		failMutate: make(map[string]error),
	}
}

func (r *memTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	copied := cloneTask(task)
	return &copied, nil
}

func (r *memTaskRepo) ListByUser(_ context.Context, userID string) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Task
	for _, task := range r.tasks {
		if task.UserID == userID {
			out = append(out, cloneTask(task))
		}
	}
	return out, nil
}

func (r *memTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	r.tasks[task.ID] = cloneTask(*task)
	return task, nil
}

func (r *memTaskRepo) Mutate(_ context.Context, id string, fn repository.MutateFunc) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failMutate[id]; ok {
		return nil, err
	}
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	copied := cloneTask(task)
	if err := fn(&copied); err != nil {
		return nil, err
	}
	r.tasks[id] = cloneTask(copied)
	return &copied, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) AttachmentRefs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var refs []string
	for _, task := range r.tasks {
		if task.Attachment != "" {
			refs = append(refs, task.Attachment)
		}
	}
	return refs, nil
}

func cloneTask(t domain.Task) domain.Task {
	t.Activities = append([]domain.Activity(nil), t.Activities...)
	return t
}

type memStatsRepo struct {
	repo *memTaskRepo
}

func (r *memStatsRepo) UserTaskStats(ctx context.Context, userID string) (*repository.TaskStats, error) {
	tasks, err := r.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := &repository.TaskStats{ByStatus: make(map[string]int)}
	for _, t := range tasks {
		stats.ByStatus[t.Status]++
		stats.Total++
	}
	return stats, nil
}
