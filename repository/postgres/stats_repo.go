package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskbuddy/backend/repository"
)

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a Postgres-backed StatsRepository implementation.
func NewStatsRepository(pool *pgxpool.Pool) repository.StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) UserTaskStats(ctx context.Context, userID string) (*repository.TaskStats, error) {
	const query = `
	SELECT status, COUNT(*)
	FROM tasks
	WHERE user_id = $1
	GROUP BY status
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &repository.TaskStats{ByStatus: make(map[string]int)}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	return stats, rows.Err()
}
