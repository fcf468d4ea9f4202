package jsonfile

import (
	"context"
	"strconv"

	"github.com/sakif/todo-app/internal/apperror"
	"github.com/sakif/todo-app/internal/model"
	"github.com/sakif/todo-app/internal/repository"
)

var _ repository.UserRepository = (*Store)(nil)

// CreateUser assigns the next user id and appends the record. Usernames are
// compared case-sensitively; the duplicate check and the append happen under
// the same lock.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return apperror.Conflict("username", "username already taken")
		}
	}

	s.seq.Users++
	user.ID = s.seq.Users
	s.users = append(s.users, *user)
	s.save()

	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
}

func (s *Store) CountUsers(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}
