// Package memory provides in-process implementations of the store ports.
// They back STORE_DRIVER=memory for local runs and the HTTP scenario tests,
// and mirror the semantics of the Mongo repositories.
package memory

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskboard/task-manager/internal/core/domain"
)

// Store holds every collection behind one lock.
type Store struct {
	mu            sync.RWMutex
	users         map[string]*domain.User
	tasks         map[string]*domain.Task
	notifications map[string]*domain.Notification
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]*domain.User),
		tasks:         make(map[string]*domain.Task),
		notifications: make(map[string]*domain.Notification),
	}
}

// Users returns the identity store view.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Tasks returns the task store view.
func (s *Store) Tasks() *TaskRepository { return &TaskRepository{s: s} }

// Notifications returns the notification store view.
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s: s} }

func newID() string {
	return primitive.NewObjectID().Hex()
}

func validID(id string) error {
	if !primitive.IsValidObjectID(id) {
		return domain.ErrInvalidID
	}
	return nil
}
