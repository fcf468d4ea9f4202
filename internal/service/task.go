package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/todo-app/internal/apperror"
	"github.com/sakif/todo-app/internal/model"
	"github.com/sakif/todo-app/internal/repository"
)

// Validation limits, applied after trimming.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// TaskService enforces task rules on top of a TaskRepository. Every
// operation is scoped to one owner; a task owned by someone else behaves
// exactly like a task that does not exist.
//
// DEPENDENCIES (injected via NewTaskService):
//   - repo   repository.TaskRepository → read/write tasks
//   - users  repository.UserRepository → confirm the owner still exists
//   - logger *slog.Logger              → structured logging
type TaskService struct {
	repo   repository.TaskRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewTaskService(repo repository.TaskRepository, users repository.UserRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// Create validates and stores a new, incomplete task for ownerID.
//
// The owner must be an existing user. A signed token can outlive its account
// (or name one from a wiped data set), so an unknown owner is reported as
// apperror.ErrUnauthorized and nothing is stored, on every backend alike.
func (s *TaskService) Create(ctx context.Context, ownerID int64, title, description string) (*model.Task, error) {
	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("service/task: looking up owner %d: %w", ownerID, err)
	}

	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	description, err = validateDescription(description)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:       title,
		Description: description,
		IsComplete:  false,
		OwnerID:     ownerID,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("service/task: creating task: %w", err)
	}

	s.logger.Debug("task created",
		slog.Int64("taskID", task.ID),
		slog.Int64("ownerID", ownerID),
	)

	return task, nil
}

// List returns the owner's tasks in insertion order, never nil.
func (s *TaskService) List(ctx context.Context, ownerID int64) ([]model.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service/task: listing tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// Update merges the provided fields into the task. Absent fields keep their
// values; a provided title must still be non-empty after trimming.
func (s *TaskService) Update(ctx context.Context, taskID, ownerID int64, patch model.TaskPatch) (*model.Task, error) {
	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		desc, err := validateDescription(*patch.Description)
		if err != nil {
			return nil, err
		}
		patch.Description = &desc
	}

	task, err := s.repo.UpdateTask(ctx, taskID, ownerID, patch)
	if err != nil {
		return nil, fmt.Errorf("service/task: updating task %d: %w", taskID, err)
	}
	return task, nil
}

// Delete removes the task. It reports apperror.ErrNotFound when there was
// nothing to delete, including on a repeated call.
func (s *TaskService) Delete(ctx context.Context, taskID, ownerID int64) error {
	deleted, err := s.repo.DeleteTask(ctx, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("service/task: deleting task %d: %w", taskID, err)
	}
	if !deleted {
		return apperror.NotFound("task", strconv.FormatInt(taskID, 10))
	}

	s.logger.Debug("task deleted",
		slog.Int64("taskID", taskID),
		slog.Int64("ownerID", ownerID),
	)
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperror.ValidationFailed("title", "title is required")
	}
	if len([]rune(title)) > MaxTitleLength {
		return "", apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	return title, nil
}

func validateDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if len([]rune(desc)) > MaxDescriptionLength {
		return "", apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	return desc, nil
}
