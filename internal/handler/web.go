// Package handler contains the HTTP handlers of the application.
//
// Handlers parse requests, call a service, and write responses. They hold
// no business rules and never touch storage directly.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// WebHandler serves the single-page frontend. Templates are parsed once at
// startup.
type WebHandler struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewWebHandler parses base.html and index.html from templateDir. base.html
// holds the page skeleton and pulls in the "content" block from index.html.
func NewWebHandler(templateDir string, logger *slog.Logger) (*WebHandler, error) {
	tmpl, err := template.ParseFiles(
		filepath.Join(templateDir, "base.html"),
		filepath.Join(templateDir, "index.html"),
	)
	if err != nil {
		return nil, err
	}

	return &WebHandler{
		templates: tmpl,
		logger:    logger,
	}, nil
}

// HandleIndex renders the app shell. All data is fetched client-side.
//
// HTTP: GET /
func (h *WebHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title":   "To-Do",
		"APIBase": "/api",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandleHealth reports liveness.
//
// HTTP: GET /health
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
