package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskboard/task-manager/internal/core/domain"
	"github.com/taskboard/task-manager/internal/core/ports"
)

func seedTasks(t *testing.T, repo *TaskRepository, tasks ...*domain.Task) []*domain.Task {
	t.Helper()
	out := make([]*domain.Task, 0, len(tasks))
	for _, task := range tasks {
		created, err := repo.Create(context.Background(), task)
		if err != nil {
			t.Fatalf("seed task %q: %v", task.Title, err)
		}
		out = append(out, created)
	}
	return out
}

func TestTaskRepository_FindFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tasks()
	alice, bob, carol := newID(), newID(), newID()
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.AddDate(0, 1, 0)

	seedTasks(t, repo,
		&domain.Task{Title: "Write report", Status: domain.TaskStatusPending, Priority: "high", CreatedBy: alice, AssignedTo: bob, DueDate: &late},
		&domain.Task{Title: "Review", Description: "check the REPORT", Status: domain.TaskStatusCompleted, CreatedBy: bob, DueDate: &early},
		&domain.Task{Title: "Unrelated", Status: domain.TaskStatusPending, CreatedBy: carol},
	)

	tests := []struct {
		name   string
		filter ports.TaskFilter
		want   []string
	}{
		{"participant as creator or assignee", ports.TaskFilter{ParticipantID: bob, SortByDueDate: true}, []string{"Review", "Write report"}},
		{"status fold", ports.TaskFilter{StatusFold: "pending", SortByDueDate: true}, []string{"Unrelated", "Write report"}},
		{"priority", ports.TaskFilter{Priority: "high"}, []string{"Write report"}},
		{"due before", ports.TaskFilter{DueBefore: &early}, []string{"Review"}},
		{"search title or description", ports.TaskFilter{Search: "report", SortByDueDate: true}, []string{"Review", "Write report"}},
		{"assigned to", ports.TaskFilter{AssignedTo: bob}, []string{"Write report"}},
		{"no match", ports.TaskFilter{ParticipantID: carol, Priority: "high"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Find(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d tasks, got %d", len(tt.want), len(got))
			}
			for i, title := range tt.want {
				if got[i].Title != title {
					t.Errorf("position %d: expected %q, got %q", i, title, got[i].Title)
				}
			}
		})
	}
}

func TestTaskRepository_UpdateKeepsCreator(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tasks()
	creator := newID()
	created := seedTasks(t, repo, &domain.Task{Title: "T1", CreatedBy: creator})[0]

	changed := *created
	changed.Title = "T1b"
	changed.CreatedBy = newID()
	if err := repo.Update(ctx, &changed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stored, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Title != "T1b" {
		t.Errorf("expected title T1b, got %q", stored.Title)
	}
	if stored.CreatedBy != creator {
		t.Errorf("creator was rewritten to %q", stored.CreatedBy)
	}
}

func TestTaskRepository_InvalidIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tasks()

	if _, err := repo.FindByID(ctx, "not-an-id"); !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if _, err := repo.Create(ctx, &domain.Task{Title: "T", CreatedBy: newID(), AssignedTo: "bogus"}); !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID for assignee, got %v", err)
	}
	if _, err := repo.FindByID(ctx, newID()); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskRepository_Summary(t *testing.T) {
	repo := NewStore().Tasks()
	owner := newID()
	seedTasks(t, repo,
		&domain.Task{Title: "a", Status: domain.TaskStatusPending, CreatedBy: owner, AssignedTo: newID()},
		&domain.Task{Title: "b", Status: domain.TaskStatusCompleted, CreatedBy: owner},
		&domain.Task{Title: "c", Status: "In Progress", CreatedBy: owner},
	)

	sum, err := repo.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := domain.TaskSummary{Total: 3, Assigned: 1, Completed: 1, Pending: 1}
	if sum != want {
		t.Errorf("expected %+v, got %+v", want, sum)
	}
}

func TestNotificationRepository_UnreadNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Notifications()
	recipient := newID()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older, err := repo.Create(ctx, &domain.Notification{Recipient: recipient, Message: "first", CreatedAt: base})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, &domain.Notification{Recipient: recipient, Message: "second", CreatedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, &domain.Notification{Recipient: newID(), Message: "other", CreatedAt: base}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	unread, err := repo.FindUnread(ctx, recipient)
	if err != nil {
		t.Fatalf("FindUnread: %v", err)
	}
	if len(unread) != 2 || unread[0].Message != "second" {
		t.Fatalf("expected newest first, got %+v", unread)
	}

	if err := repo.MarkRead(ctx, older.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	unread, _ = repo.FindUnread(ctx, recipient)
	if len(unread) != 1 || unread[0].Message != "second" {
		t.Errorf("expected only the unread notification, got %+v", unread)
	}
}

func TestUserRepository_DuplicateEmailAndHashHidden(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Users()

	u, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, &domain.User{Username: "other", Email: "alice@example.com"}); !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}

	byID, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID.PasswordHash != "" {
		t.Error("FindByID must not expose the password hash")
	}

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail.PasswordHash != "hash" {
		t.Error("FindByEmail must return the hash for credential checks")
	}
}
