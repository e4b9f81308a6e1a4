package domain

import (
	"strings"
	"time"
)

// Due-date buckets accepted by the task filter. Matching is
// case-insensitive; unknown values disable the due-date predicate.
const (
	BucketToday     = "TODAY"
	BucketLastDay   = "LAST DAY"
	BucketLastWeek  = "LAST WEEK"
	BucketLastMonth = "LAST MONTH"
)

// FilterSpec narrows a task collection. Zero values mean "not applied".
type FilterSpec struct {
	Search    string
	Category  string
	DueBucket string
}

// MatchTask reports whether the task passes every predicate of the spec.
// today supplies the reference date; only its calendar day is significant.
func MatchTask(t Task, spec FilterSpec, today time.Time) bool {
	return matchSearch(t, spec.Search) &&
		matchCategory(t, spec.Category) &&
		matchDueBucket(t, spec.DueBucket, today)
}

// FilterTasks returns the tasks passing the spec, preserving input order.
func FilterTasks(tasks []Task, spec FilterSpec, today time.Time) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if MatchTask(t, spec, today) {
			out = append(out, t)
		}
	}
	return out
}

func matchSearch(t Task, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

func matchCategory(t Task, category string) bool {
	return category == "" || strings.EqualFold(t.Category, category)
}

func matchDueBucket(t Task, bucket string, today time.Time) bool {
	if bucket == "" {
		return true
	}
	day := truncateDay(today)
	due, ok := parseDueDate(t.DueDate)
	switch strings.ToUpper(bucket) {
	case BucketToday:
		return ok && due.Equal(day)
	case BucketLastDay:
		return ok && due.Equal(day.AddDate(0, 0, -1))
	case BucketLastWeek:
		return ok && !due.Before(day.AddDate(0, 0, -7)) && !due.After(day)
	case BucketLastMonth:
		return ok && !due.Before(day.AddDate(0, -1, 0)) && !due.After(day)
	default:
		return true
	}
}

// parseDueDate accepts a plain ISO date and tolerates a full timestamp by
// using only its date part.
func parseDueDate(raw string) (time.Time, bool) {
	if len(raw) > 10 {
		raw = raw[:10]
	}
	due, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
