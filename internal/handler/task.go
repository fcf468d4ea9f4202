package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/todo-app/internal/apperror"
	"github.com/sakif/todo-app/internal/auth"
	"github.com/sakif/todo-app/internal/model"
	"github.com/sakif/todo-app/internal/service"
)

// TaskHandler serves the per-user task API. Every route sits behind
// auth.RequireAuth, so the owner always comes from the verified token and
// never from the request body.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

func NewTaskHandler(svc *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  svc,
		logger: logger,
	}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HandleList returns the caller's tasks.
//
// HTTP: GET /tasks
// RESPONSE: 200 [{"id":1,"title":"buy milk","description":"","isComplete":false,"ownerId":1}, ...]
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleCreate adds a task for the caller.
//
// HTTP: POST /tasks
// REQUEST BODY: {"title": "buy milk", "description": "2 litres"}
// RESPONSE: 201 with the stored task
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.tasks.Create(r.Context(), id.UserID, req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// HandleUpdate merges the provided fields into a task.
//
// HTTP: PUT /tasks/{id}
// REQUEST BODY: any subset of {"title", "description", "isComplete"}. Clients
// may send the whole task back; id and ownerId in the body are ignored.
// RESPONSE: 200 with the updated task; 404 if it is missing or not the caller's
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var patch model.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	task, err := h.tasks.Update(r.Context(), taskID, id.UserID, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleDelete removes a task.
//
// HTTP: DELETE /tasks/{id}
// RESPONSE: 204; 404 if it is missing, not the caller's, or already deleted
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.tasks.Delete(r.Context(), taskID, id.UserID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.logger.Error("task route reached without identity", slog.String("path", r.URL.Path))
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
	}
	return id, ok
}

func parseTaskID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", "task id must be a positive integer")
	}
	return id, nil
}
