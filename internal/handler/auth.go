package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/todo-app/internal/auth"
	"github.com/sakif/todo-app/internal/service"
)

// AuthHandler serves registration, login and the current-user lookup.
//
//   - HandleRegister → POST /auth/register
//   - HandleLogin    → POST /auth/login
//   - HandleMe       → GET  /auth/me (bearer token required)
//
// Tokens are returned in the response body; the client sends them back in
// the Authorization header. Logging out is a client-side matter of dropping
// the token.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   svc,
		logger: logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the body of a successful register or login.
type TokenResponse struct {
	Token string `json:"token"`
}

// HandleRegister creates an account and logs it in.
//
// HTTP: POST /auth/register
// REQUEST BODY: {"username": "alice", "password": "secret1"}
// RESPONSE: 201 {"token": "<jwt>"}; 400 on bad input; 409 if the name is taken
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.RegisterAndIssue(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, TokenResponse{Token: result.Token})
}

// HandleLogin exchanges valid credentials for a token.
//
// HTTP: POST /auth/login
// RESPONSE: 200 {"token": "<jwt>"}; 401 for any credential failure
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.LoginAndIssue(r.Context(), req.Username, req.Password)
	if err != nil {
		// Debug only: failed logins are client-driven and would otherwise
		// flood the default log level.
		h.logger.Debug("login rejected", slog.String("username", req.Username))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: result.Token})
}

// HandleMe returns the authenticated user's id and username.
//
// HTTP: GET /auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	user, err := h.auth.Me(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
