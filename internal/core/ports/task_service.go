package ports

import (
	"context"
	"time"

	"github.com/taskboard/task-manager/internal/core/domain"
)

// CreateTaskInput carries the fields of a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    string
	Status      string
	AssignedTo  string
}

// UpdateTaskInput carries a partial update. Empty fields leave the stored
// value unchanged, so a field can be replaced but never cleared.
type UpdateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    string
	Status      string
	AssignedTo  string
}

// ListTasksInput carries the optional filters of the task list endpoint.
type ListTasksInput struct {
	Status   string
	Priority string
	DueDate  *time.Time
	Search   string
}

// Labels accepted by ListByStatusFilter.
const (
	StatusLabelPending   = "Pending Task"
	StatusLabelCompleted = "Complete Tasks"
	StatusLabelAssigned  = "Assigned Tasks"
)

// TaskService defines the task use cases. Every method receives the
// authenticated actor; authorization is enforced here, not in the handlers.
type TaskService interface {
	Create(ctx context.Context, actor *domain.User, in CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, actor *domain.User, in ListTasksInput) ([]domain.TaskView, error)
	Get(ctx context.Context, actor *domain.User, id string) (*domain.TaskView, error)
	Update(ctx context.Context, actor *domain.User, id string, in UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	Summary(ctx context.Context) (domain.TaskSummary, error)
	ListByStatusFilter(ctx context.Context, actor *domain.User, label string) ([]*domain.Task, error)
}
