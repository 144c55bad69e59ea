package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/task-manager/internal/api/metrics"
	"github.com/taskboard/task-manager/internal/core/domain"
	"github.com/taskboard/task-manager/internal/core/ports"
)

// TaskServiceOptions tunes TaskService behaviour.
type TaskServiceOptions struct {
	// UnscopedSearch restores the legacy list behaviour where a search term
	// replaces the creator/assignee predicate, exposing every task that
	// matches. Off by default.
	UnscopedSearch bool
}

type TaskService struct {
	tasks    ports.TaskRepository
	users    ports.UserRepository
	notifier ports.Notifier
	opts     TaskServiceOptions
	logger   zerolog.Logger
}

func NewTaskService(
	tasks ports.TaskRepository,
	users ports.UserRepository,
	notifier ports.Notifier,
	opts TaskServiceOptions,
	logger zerolog.Logger,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		users:    users,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// Create persists a task owned by actor and notifies the assignee when the
// task is assigned to someone else.
func (s *TaskService) Create(ctx context.Context, actor *domain.User, in ports.CreateTaskInput) (*domain.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	task, err := s.tasks.Create(ctx, &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Status:      in.Status,
		CreatedBy:   actor.ID,
		AssignedTo:  in.AssignedTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("actor", actor.ID).Msg("failed to create task")
		return nil, err
	}
	metrics.TasksCreatedTotal.Inc()

	s.logger.Info().Str("task_id", task.ID).Str("actor", actor.ID).Msg("task created")

	if task.AssignedTo != "" && task.AssignedTo != actor.ID {
		metrics.TaskAssignmentsTotal.WithLabelValues("create").Inc()
		msg := fmt.Sprintf("A new task \"%s\" has been assigned to you.", task.Title)
		if err := s.notifier.Notify(ctx, task.AssignedTo, msg); err != nil {
			return nil, fmt.Errorf("create task: %w", err)
		}
	}
	return task, nil
}

// List returns the tasks actor participates in, filtered and sorted by due
// date, with creator and assignee expanded.
func (s *TaskService) List(ctx context.Context, actor *domain.User, in ports.ListTasksInput) ([]domain.TaskView, error) {
	filter := ports.TaskFilter{
		ParticipantID: actor.ID,
		StatusFold:    in.Status,
		Priority:      in.Priority,
		DueBefore:     in.DueDate,
		Search:        in.Search,
		SortByDueDate: true,
	}
	if in.Search != "" && s.opts.UnscopedSearch {
		// Legacy mode: the search term widens the result set past the tasks
		// the actor owns or is assigned to.
		filter.ParticipantID = ""
		s.logger.Warn().Str("actor", actor.ID).Msg("unscoped task search")
	}

	tasks, err := s.tasks.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, domain.ErrNoTasks
	}
	return s.expand(ctx, tasks)
}

// Get returns a single task if actor is its creator or assignee.
func (s *TaskService) Get(ctx context.Context, actor *domain.User, id string) (*domain.TaskView, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsParticipant(actor.ID) {
		return nil, domain.ErrForbidden
	}

	views, err := s.expand(ctx, []*domain.Task{task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update applies the non-empty fields of in. Only the creator or the current
// assignee may update. A change of assignee notifies the new assignee unless
// the actor assigned the task to themselves.
func (s *TaskService) Update(ctx context.Context, actor *domain.User, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsParticipant(actor.ID) {
		return nil, domain.ErrForbidden
	}

	if in.Title != "" {
		task.Title = in.Title
	}
	if in.Description != "" {
		task.Description = in.Description
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	if in.Priority != "" {
		task.Priority = in.Priority
	}
	if in.Status != "" {
		task.Status = in.Status
	}

	notify := false
	if in.AssignedTo != "" && in.AssignedTo != task.AssignedTo {
		task.AssignedTo = in.AssignedTo
		notify = in.AssignedTo != actor.ID
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if notify {
		metrics.TaskAssignmentsTotal.WithLabelValues("update").Inc()
		msg := fmt.Sprintf("A task \"%s\" has been assigned to you.", task.Title)
		if err := s.notifier.Notify(ctx, task.AssignedTo, msg); err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
	}
	return task, nil
}

// Delete removes a task. Only its creator or an admin may delete it.
func (s *TaskService) Delete(ctx context.Context, actor *domain.User, id string) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !task.CanDelete(actor) {
		return domain.ErrForbidden
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		return fmt.Errorf("delete task: %w", err)
	}
	s.logger.Info().Str("task_id", task.ID).Str("actor", actor.ID).Msg("task deleted")
	return nil
}

// Summary counts all tasks regardless of owner.
func (s *TaskService) Summary(ctx context.Context) (domain.TaskSummary, error) {
	sum, err := s.tasks.Summary(ctx)
	if err != nil {
		return domain.TaskSummary{}, fmt.Errorf("task summary: %w", err)
	}
	return sum, nil
}

// ListByStatusFilter maps one of the fixed dashboard labels to a query.
func (s *TaskService) ListByStatusFilter(ctx context.Context, actor *domain.User, label string) ([]*domain.Task, error) {
	var filter ports.TaskFilter
	switch label {
	case ports.StatusLabelPending:
		filter.Status = domain.TaskStatusPending
	case ports.StatusLabelCompleted:
		filter.Status = domain.TaskStatusCompleted
	case ports.StatusLabelAssigned:
		filter.AssignedTo = actor.ID
	default:
		return nil, domain.ErrInvalidStatusFilter
	}

	tasks, err := s.tasks.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks by status: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

// expand resolves creator and assignee ids to user refs in one lookup.
func (s *TaskService) expand(ctx context.Context, tasks []*domain.Task) ([]domain.TaskView, error) {
	seen := make(map[string]struct{}, len(tasks)*2)
	ids := make([]string, 0, len(tasks)*2)
	for _, t := range tasks {
		for _, id := range []string{t.CreatedBy, t.AssignedTo} {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	refs, err := s.users.FindRefs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("expand users: %w", err)
	}

	views := make([]domain.TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := domain.TaskView{Task: *t}
		if ref, ok := refs[t.CreatedBy]; ok {
			v.Creator = &ref
		}
		if ref, ok := refs[t.AssignedTo]; ok {
			v.Assignee = &ref
		}
		views = append(views, v)
	}
	return views, nil
}
