// Package service contains the business rules of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads and writes users and tasks
//
// Services take repository interfaces, not concrete stores, so the same code
// runs against the JSON-file store, SQLite, or an in-memory fake in tests.
// They return apperror values and know nothing about HTTP status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/todo-app/internal/apperror"
	"github.com/sakif/todo-app/internal/auth"
	"github.com/sakif/todo-app/internal/model"
	"github.com/sakif/todo-app/internal/repository"
)

// MaxUsernameLength bounds usernames after trimming.
const MaxUsernameLength = 64

// ErrInvalidCredentials is the single error Validate reports for bad
// credentials. An unknown username and a wrong password are
// indistinguishable to the caller.
var ErrInvalidCredentials = &apperror.AppError{
	Err:     apperror.ErrUnauthorized,
	Message: "invalid username or password",
}

// AuthService registers users, checks credentials and issues tokens.
//
//	AuthHandler (HTTP) → AuthService → UserRepository
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the public user with a freshly issued token.
type AuthResult struct {
	User  *model.PublicUser
	Token string
}

// Register creates a user with a bcrypt-hashed password.
//
// The username is trimmed and compared case-sensitively. A taken username
// yields apperror.ErrConflict and leaves the user count unchanged. The
// duplicate check is repeated by the repository under its own lock, so two
// concurrent registrations of the same name cannot both succeed.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.PublicUser, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or less", auth.MaxPasswordBytes))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{Username: username, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user.Public(), nil
}

// Validate checks a username/password pair.
//
// Every credential failure returns ErrInvalidCredentials. When the username
// is unknown a comparison against a dummy hash still runs, so response time
// does not reveal whether the account exists.
func (s *AuthService) Validate(ctx context.Context, username, password string) (*model.PublicUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.VerifyDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("unusable password hash",
				slog.Int64("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, ErrInvalidCredentials
	}

	return user.Public(), nil
}

// IssueToken signs a token for user.
func (s *AuthService) IssueToken(user *model.PublicUser) (string, error) {
	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}
	return token, nil
}

// RegisterAndIssue registers a user and logs them in immediately.
func (s *AuthService) RegisterAndIssue(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.Register(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// LoginAndIssue validates credentials and issues a token on success.
func (s *AuthService) LoginAndIssue(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.Validate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("user logged in", slog.Int64("userID", user.ID))
	return s.issue(user)
}

// Me returns the public record of the authenticated user. A token whose
// user no longer exists is treated as unauthenticated.
func (s *AuthService) Me(ctx context.Context, userID int64) (*model.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("service/auth: fetching user %d: %w", userID, err)
	}
	return user.Public(), nil
}

func (s *AuthService) issue(user *model.PublicUser) (*AuthResult, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}
