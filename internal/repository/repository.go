// Package repository declares the storage contracts used by the service
// layer. Implementations live in the jsonfile and sqlite subpackages.
package repository

import (
	"context"

	"github.com/sakif/todo-app/internal/model"
)

// UserRepository stores user accounts.
type UserRepository interface {
	// CreateUser assigns user.ID and stores the record. It returns an
	// apperror.ErrConflict error if the username is already taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// TaskRepository stores tasks scoped by owner.
//
// Lookups by task id always also match the owner id. A task owned by someone
// else is reported exactly like a task that does not exist.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) error
	ListTasks(ctx context.Context, ownerID int64) ([]model.Task, error)
	UpdateTask(ctx context.Context, taskID, ownerID int64, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, taskID, ownerID int64) (bool, error)
}

// Store is a complete storage backend.
type Store interface {
	UserRepository
	TaskRepository
	Close() error
}
