package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskbuddy/backend/domain"
	"github.com/taskbuddy/backend/repository"
)

const taskColumns = `id, user_id, title, description, due_date, category, status, attachment, activities, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE user_id = $1
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, title, description, due_date, category, status, attachment, activities, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()), COALESCE($11, NOW()))
	RETURNING created_at, updated_at
	`

	activities, err := marshalActivities(task.Activities)
	if err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Category,
		task.Status,
		task.Attachment,
		activities,
		nullTime(task.CreatedAt),
		nullTime(task.UpdatedAt),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

// Mutate runs a read-modify-write cycle under a row lock so concurrent
// updates to the same task serialize instead of overwriting each other's
// activity entries.
func (r *taskRepository) Mutate(ctx context.Context, id string, fn repository.MutateFunc) (*domain.Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE id = $1
	FOR UPDATE
	`
	task, err := scanTask(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := fn(task); err != nil {
		return nil, err
	}

	activities, err := marshalActivities(task.Activities)
	if err != nil {
		return nil, err
	}

	const update = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		due_date = $4,
		category = $5,
		status = $6,
		attachment = $7,
		activities = $8,
		updated_at = $9
	WHERE id = $1
	`
	if _, err := tx.Exec(ctx, update,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Category,
		task.Status,
		task.Attachment,
		activities,
		task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) AttachmentRefs(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT attachment FROM tasks WHERE attachment <> ''`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var activities []byte

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Category,
		&task.Status,
		&task.Attachment,
		&activities,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if len(activities) > 0 {
		_ = json.Unmarshal(activities, &task.Activities)
	}

	return &task, nil
}
