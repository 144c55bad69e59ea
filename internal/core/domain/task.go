package domain

import (
	"errors"
	"time"
)

const (
	TaskStatusPending   = "Pending"
	TaskStatusCompleted = "Completed"
)

var ErrTaskNotFound = errors.New("task not found")
var ErrNoTasks = errors.New("no tasks found")
var ErrInvalidStatusFilter = errors.New("Invalid status filter.")

// Task is the core aggregate. CreatedBy is set once at creation and never
// rewritten; AssignedTo is empty when the task is unassigned.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	CreatedBy   string     `json:"created_by"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsParticipant reports whether userID created the task or is its current assignee.
func (t *Task) IsParticipant(userID string) bool {
	return t.CreatedBy == userID || (t.AssignedTo != "" && t.AssignedTo == userID)
}

// CanDelete reports whether the given user may delete the task: only its
// creator or an admin.
func (t *Task) CanDelete(user *User) bool {
	return t.CreatedBy == user.ID || user.Role == RoleAdmin
}

// TaskView is a task with its creator and assignee expanded.
type TaskView struct {
	Task
	Creator  *UserRef `json:"creator,omitempty"`
	Assignee *UserRef `json:"assignee,omitempty"`
}

// TaskSummary holds the global task counters.
type TaskSummary struct {
	Total     int64 `json:"total"`
	Assigned  int64 `json:"assigned"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}
