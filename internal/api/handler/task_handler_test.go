package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/taskboard/task-manager/internal/api/middleware"
	"github.com/taskboard/task-manager/internal/core/domain"
	"github.com/taskboard/task-manager/internal/core/ports"
)

// stubTaskService records the inputs it receives; unset funcs panic on use.
type stubTaskService struct {
	createFn func(ctx context.Context, actor *domain.User, in ports.CreateTaskInput) (*domain.Task, error)
	listFn   func(ctx context.Context, actor *domain.User, in ports.ListTasksInput) ([]domain.TaskView, error)
	getFn    func(ctx context.Context, actor *domain.User, id string) (*domain.TaskView, error)
	updateFn func(ctx context.Context, actor *domain.User, id string, in ports.UpdateTaskInput) (*domain.Task, error)
	deleteFn func(ctx context.Context, actor *domain.User, id string) error
	statusFn func(ctx context.Context, actor *domain.User, label string) ([]*domain.Task, error)
}

func (s *stubTaskService) Create(ctx context.Context, actor *domain.User, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, actor, in)
}
func (s *stubTaskService) List(ctx context.Context, actor *domain.User, in ports.ListTasksInput) ([]domain.TaskView, error) {
	return s.listFn(ctx, actor, in)
}
func (s *stubTaskService) Get(ctx context.Context, actor *domain.User, id string) (*domain.TaskView, error) {
	return s.getFn(ctx, actor, id)
}
func (s *stubTaskService) Update(ctx context.Context, actor *domain.User, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
	return s.updateFn(ctx, actor, id, in)
}
func (s *stubTaskService) Delete(ctx context.Context, actor *domain.User, id string) error {
	return s.deleteFn(ctx, actor, id)
}
func (s *stubTaskService) Summary(context.Context) (domain.TaskSummary, error) {
	return domain.TaskSummary{Total: 3, Assigned: 2, Completed: 1, Pending: 2}, nil
}
func (s *stubTaskService) ListByStatusFilter(ctx context.Context, actor *domain.User, label string) ([]*domain.Task, error) {
	return s.statusFn(ctx, actor, label)
}

var alice = &domain.User{ID: "aaaaaaaaaaaaaaaaaaaaaaaa", Username: "alice", Role: domain.RoleUser}

func TestTaskHandler_Create(t *testing.T) {
	stub := &stubTaskService{
		createFn: func(ctx context.Context, actor *domain.User, in ports.CreateTaskInput) (*domain.Task, error) {
			if actor != alice {
				t.Fatalf("actor not forwarded")
			}
			if in.Title != "T1" || in.AssignedTo != "b1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.DueDate == nil || !in.DueDate.Equal(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected due date: %v", in.DueDate)
			}
			return &domain.Task{ID: "t1", Title: in.Title, CreatedBy: actor.ID, AssignedTo: in.AssignedTo, DueDate: in.DueDate}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/api/tasks", `{"title":"T1","assignedTo":"b1","dueDate":"2025-01-10"}`)
	c.Set(middleware.ContextUser, alice)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "t1" || resp["createdBy"] != alice.ID || resp["assignedTo"] != "b1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Create_MissingTitle(t *testing.T) {
	handler := NewTaskHandler(&stubTaskService{})

	c, _ := newJSONContext(http.MethodPost, "/api/tasks", `{"description":"no title"}`)
	c.Set(middleware.ContextUser, alice)

	expectStatus(t, handler.Create(c), http.StatusBadRequest)
}

func TestTaskHandler_Create_BadDueDate(t *testing.T) {
	handler := NewTaskHandler(&stubTaskService{})

	c, _ := newJSONContext(http.MethodPost, "/api/tasks", `{"title":"T1","dueDate":"next week"}`)
	c.Set(middleware.ContextUser, alice)

	expectStatus(t, handler.Create(c), http.StatusBadRequest)
}

func TestTaskHandler_List_ForwardsFilters(t *testing.T) {
	stub := &stubTaskService{
		listFn: func(ctx context.Context, actor *domain.User, in ports.ListTasksInput) ([]domain.TaskView, error) {
			if in.Status != "pending" || in.Priority != "High" || in.Search != "report" {
				t.Fatalf("unexpected filters: %+v", in)
			}
			if in.DueDate == nil {
				t.Fatalf("due date not parsed")
			}
			ref := domain.UserRef{ID: alice.ID, Username: "alice", Email: "a@example.com"}
			return []domain.TaskView{{Task: domain.Task{ID: "t1", CreatedBy: alice.ID}, Creator: &ref}}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := newJSONContext(http.MethodGet, "/api/tasks?status=pending&priority=High&search=report&dueDate=2025-02-01T00:00:00Z", "")
	c.Set(middleware.ContextUser, alice)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	creator, ok := resp[0]["createdBy"].(map[string]any)
	if !ok || creator["username"] != "alice" {
		t.Fatalf("creator not expanded: %+v", resp[0])
	}
	if resp[0]["assignedTo"] != nil {
		t.Fatalf("unassigned task must render null assignee, got %v", resp[0]["assignedTo"])
	}
}

func TestTaskHandler_List_PropagatesNoTasks(t *testing.T) {
	stub := &stubTaskService{
		listFn: func(context.Context, *domain.User, ports.ListTasksInput) ([]domain.TaskView, error) {
			return nil, domain.ErrNoTasks
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := newJSONContext(http.MethodGet, "/api/tasks", "")
	c.Set(middleware.ContextUser, alice)

	if err := handler.List(c); !errors.Is(err, domain.ErrNoTasks) {
		t.Fatalf("expected ErrNoTasks, got %v", err)
	}
}

func TestTaskHandler_Update_PassesOnlyProvidedFields(t *testing.T) {
	stub := &stubTaskService{
		updateFn: func(ctx context.Context, actor *domain.User, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
			if id != "t1" {
				t.Fatalf("unexpected id %q", id)
			}
			if in.Status != "Completed" || in.Title != "" || in.DueDate != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Task{ID: id, Title: "kept", Status: in.Status, CreatedBy: actor.ID}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := newJSONContext(http.MethodPut, "/api/tasks/t1", `{"status":"Completed"}`)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	c.Set(middleware.ContextUser, alice)

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	stub := &stubTaskService{
		deleteFn: func(ctx context.Context, actor *domain.User, id string) error { return nil },
	}
	handler := NewTaskHandler(stub)

	c, rec := newJSONContext(http.MethodDelete, "/api/tasks/t1", "")
	c.SetParamNames("id")
	c.SetParamValues("t1")
	c.Set(middleware.ContextUser, alice)

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "task removed" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Summary(t *testing.T) {
	handler := NewTaskHandler(&stubTaskService{})

	c, rec := newJSONContext(http.MethodGet, "/api/tasks/summary", "")
	c.Set(middleware.ContextUser, alice)

	if err := handler.Summary(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp domain.TaskSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 3 || resp.Assigned != 2 || resp.Completed != 1 || resp.Pending != 2 {
		t.Fatalf("unexpected summary: %+v", resp)
	}
}

func TestTaskHandler_ListByStatus_EmptyIsArray(t *testing.T) {
	stub := &stubTaskService{
		statusFn: func(ctx context.Context, actor *domain.User, label string) ([]*domain.Task, error) {
			if label != "Pending Task" {
				t.Fatalf("unexpected label %q", label)
			}
			return []*domain.Task{}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := newJSONContext(http.MethodGet, "/api/tasks/tasklist?status=Pending+Task", "")
	c.Set(middleware.ContextUser, alice)

	if err := handler.ListByStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty array, got %q", got)
	}
}

func TestParseDate(t *testing.T) {
	if d, err := parseDate("dueDate", ""); err != nil || d != nil {
		t.Fatalf("empty value must yield nil, got %v %v", d, err)
	}
	d, err := parseDate("dueDate", "2025-03-04T10:00:00+02:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Location() != time.UTC || d.Hour() != 8 {
		t.Fatalf("expected UTC 08:00, got %v", d)
	}
	if _, err := parseDate("dueDate", "04/03/2025"); err == nil {
		t.Fatalf("expected error for unsupported layout")
	}
}
