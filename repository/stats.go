package repository

import "context"

// TaskStats summarizes one user's tasks for the dashboard header.
type TaskStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

type StatsRepository interface {
	UserTaskStats(ctx context.Context, userID string) (*TaskStats, error)
}
