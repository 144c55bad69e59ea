package ports

import (
	"context"
	"time"

	"github.com/taskboard/task-manager/internal/core/domain"
)

// TaskFilter carries every predicate the task store understands. Zero values
// mean "no constraint"; all set predicates are ANDed.
type TaskFilter struct {
	ParticipantID string     // createdBy = id OR assignedTo = id
	AssignedTo    string     // assignedTo = id
	Status        string     // exact match
	StatusFold    string     // case-insensitive whole-value match
	Priority      string     // exact match
	DueBefore     *time.Time // dueDate <= DueBefore
	Search        string     // case-insensitive substring on title OR description
	SortByDueDate bool       // ascending
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Find(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	// Update replaces the mutable fields of an existing task. CreatedBy is never written.
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (domain.TaskSummary, error)
}
