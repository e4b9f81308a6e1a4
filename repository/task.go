package repository

import (
	"context"

	"github.com/taskbuddy/backend/domain"
)

// MutateFunc is applied to the current state of a task inside the
// repository's own read-modify-write transaction.
type MutateFunc func(task *domain.Task) error

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Mutate loads the task, applies fn and persists the result. The whole
	// cycle is atomic with respect to concurrent Mutate calls on the same
	// id, so appended activities are never lost.
	Mutate(ctx context.Context, id string, fn MutateFunc) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	// AttachmentRefs returns every attachment URL currently referenced by
	// any task.
	AttachmentRefs(ctx context.Context) ([]string, error)
}
