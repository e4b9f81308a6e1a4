package domain

import "time"

// Task categories.
const (
	CategoryWork     = "WORK"
	CategoryPersonal = "PERSONAL"
)

// Task statuses. The status value doubles as the board column identifier.
const (
	StatusTodo       = "TO-DO"
	StatusInProgress = "IN-PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Activity actions.
const (
	ActionCreated       = "CREATED"
	ActionUpdated       = "UPDATED"
	ActionStatusChanged = "STATUS_CHANGED"
)

// Activity is an immutable audit entry describing one mutation of a task.
// The activities slice on a task is append-only, oldest first.
type Activity struct {
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// Task represents a unit of work owned by a single user. Wire names are
// camelCase to stay compatible with the documents existing clients store.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     string     `json:"dueDate,omitempty"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Activities  []Activity `json:"activities"`
	Attachment  string     `json:"attachment,omitempty"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ValidCategory reports whether c is one of the known task categories.
func ValidCategory(c string) bool {
	return c == CategoryWork || c == CategoryPersonal
}

// TaskPatch carries a partial update. Nil pointers leave the field
// unchanged. Fields preserves the order in which field names appeared in
// the request body; that order drives the wording of the recorded activity.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *string
	Category    *string
	Status      *string
	Attachment  *string

	Fields []string
}

// Apply copies the present patch fields onto the task. Ownership and
// timestamps are never touched here.
func (p TaskPatch) Apply(t *Task) {
	if t == nil {
		return
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Attachment != nil {
		t.Attachment = *p.Attachment
	}
}
