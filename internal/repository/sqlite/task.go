package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sakif/todo-app/internal/apperror"
	"github.com/sakif/todo-app/internal/model"
)

// CreateTask inserts a task and fills in task.ID.
func (db *DB) CreateTask(ctx context.Context, task *model.Task) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO tasks (title, description, is_complete, owner_id) VALUES (?, ?, ?, ?)`,
		task.Title,
		task.Description,
		task.IsComplete,
		task.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new task id: %w", err)
	}
	task.ID = id

	return nil
}

// ListTasks returns the owner's tasks ordered by id, which is insertion
// order since ids only grow.
func (db *DB) ListTasks(ctx context.Context, ownerID int64) ([]model.Task, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, description, is_complete, owner_id
		 FROM tasks WHERE owner_id = ? ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.IsComplete, &t.OwnerID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating task rows: %w", err)
	}

	return tasks, nil
}

// UpdateTask applies patch to the task matching both ids inside one
// transaction.
func (db *DB) UpdateTask(ctx context.Context, taskID, ownerID int64, patch model.TaskPatch) (*model.Task, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning update: %w", err)
	}
	defer tx.Rollback()

	var t model.Task
	err = tx.QueryRowContext(ctx,
		`SELECT id, title, description, is_complete, owner_id
		 FROM tasks WHERE id = ? AND owner_id = ?`,
		taskID, ownerID,
	).Scan(&t.ID, &t.Title, &t.Description, &t.IsComplete, &t.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("task", strconv.FormatInt(taskID, 10))
		}
		return nil, fmt.Errorf("sqlite: loading task %d: %w", taskID, err)
	}

	patch.Apply(&t)

	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, is_complete = ? WHERE id = ?`,
		t.Title, t.Description, t.IsComplete, t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating task %d: %w", taskID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing task %d: %w", taskID, err)
	}

	return &t, nil
}

// DeleteTask removes the task matching both ids and reports whether a row
// was deleted.
func (db *DB) DeleteTask(ctx context.Context, taskID, ownerID int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`,
		taskID, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting task %d: %w", taskID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	return n > 0, nil
}
