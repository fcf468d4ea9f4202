package jsonfile

import (
	"context"
	"slices"
	"strconv"

	"github.com/sakif/todo-app/internal/apperror"
	"github.com/sakif/todo-app/internal/model"
	"github.com/sakif/todo-app/internal/repository"
)

var _ repository.TaskRepository = (*Store)(nil)

// CreateTask assigns the next task id and appends the record.
func (s *Store) CreateTask(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.Tasks++
	task.ID = s.seq.Tasks
	s.tasks = append(s.tasks, *task)
	s.save()

	return nil
}

// ListTasks returns the owner's tasks in insertion order. The result is a
// fresh slice and never nil.
func (s *Store) ListTasks(_ context.Context, ownerID int64) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *Store) UpdateTask(_ context.Context, taskID, ownerID int64, patch model.TaskPatch) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfTask(taskID, ownerID)
	if i < 0 {
		return nil, apperror.NotFound("task", strconv.FormatInt(taskID, 10))
	}

	patch.Apply(&s.tasks[i])
	s.save()

	updated := s.tasks[i]
	return &updated, nil
}

func (s *Store) DeleteTask(_ context.Context, taskID, ownerID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfTask(taskID, ownerID)
	if i < 0 {
		return false, nil
	}

	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.save()

	return true, nil
}

// indexOfTask matches on both id and owner. Callers must hold s.mu.
func (s *Store) indexOfTask(taskID, ownerID int64) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool {
		return t.ID == taskID && t.OwnerID == ownerID
	})
}
