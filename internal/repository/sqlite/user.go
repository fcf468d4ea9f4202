package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sakif/todo-app/internal/apperror"
	"github.com/sakif/todo-app/internal/model"
	"github.com/sakif/todo-app/internal/repository"
)

// compile-time check that *DB implements the full store
var _ repository.Store = (*DB)(nil)

// CreateUser inserts a user and fills in user.ID. The UNIQUE constraint on
// username turns a duplicate into apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		user.Username,
		user.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("username", "username already taken")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetUserByUsername looks up a user by exact (case-sensitive) username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`,
		username,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}
	return u, nil
}

// GetUserByID retrieves a user by id.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}

func (db *DB) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
		return nil, err
	}
	return &u, nil
}

// isUniqueViolation matches SQLite's constraint error text. The driver's
// typed error lives in an internal package, so the message is checked.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
