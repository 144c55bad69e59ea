package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/taskboard/task-manager/internal/core/domain"
	"github.com/taskboard/task-manager/internal/core/ports"
)

type TaskRepository struct {
	s *Store
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	if t.DueDate != nil {
		due := *t.DueDate
		clone.DueDate = &due
	}
	return &clone
}

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	if err := validID(t.CreatedBy); err != nil {
		return nil, err
	}
	if t.AssignedTo != "" {
		if err := validID(t.AssignedTo); err != nil {
			return nil, err
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := cloneTask(t)
	stored.ID = newID()
	r.s.tasks[stored.ID] = stored
	return cloneTask(stored), nil
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

// Find applies the same predicates the Mongo query builds.
func (r *TaskRepository) Find(_ context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	matched := make([]*domain.Task, 0)
	for _, t := range r.s.tasks {
		if f.ParticipantID != "" && t.CreatedBy != f.ParticipantID && t.AssignedTo != f.ParticipantID {
			continue
		}
		if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.StatusFold != "" && !strings.EqualFold(t.Status, f.StatusFold) {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.DueBefore != nil && (t.DueDate == nil || t.DueDate.After(*f.DueBefore)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		matched = append(matched, cloneTask(t))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if f.SortByDueDate {
			a, b := matched[i].DueDate, matched[j].DueDate
			// Missing due dates sort first, as null does in Mongo.
			switch {
			case a == nil && b != nil:
				return true
			case a != nil && b == nil:
				return false
			case a != nil && b != nil && !a.Equal(*b):
				return a.Before(*b)
			}
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

func (r *TaskRepository) Update(_ context.Context, t *domain.Task) error {
	if t.AssignedTo != "" {
		if err := validID(t.AssignedTo); err != nil {
			return err
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.tasks[t.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	next := cloneTask(t)
	next.CreatedBy = stored.CreatedBy
	next.CreatedAt = stored.CreatedAt
	r.s.tasks[t.ID] = next
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

func (r *TaskRepository) Summary(_ context.Context) (domain.TaskSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sum domain.TaskSummary
	for _, t := range r.s.tasks {
		sum.Total++
		if t.AssignedTo != "" {
			sum.Assigned++
		}
		switch t.Status {
		case domain.TaskStatusCompleted:
			sum.Completed++
		case domain.TaskStatusPending:
			sum.Pending++
		}
	}
	return sum, nil
}
