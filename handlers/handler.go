package handlers

import (
	"html/template"
	"log/slog"

	"todolist/auth"
	"todolist/services"
)

type Handler struct {
	users     *services.UserDirectory
	tasks     *services.TaskService
	sessions  *auth.Sessions
	gate      *auth.Gate
	templates *template.Template
	logger    *slog.Logger
}

func New(users *services.UserDirectory, tasks *services.TaskService, sessions *auth.Sessions, gate *auth.Gate, templates *template.Template, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		users:     users,
		tasks:     tasks,
		sessions:  sessions,
		gate:      gate,
		templates: templates,
		logger:    logger,
	}
}
