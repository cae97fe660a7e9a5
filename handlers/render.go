package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"todolist/auth"
	"todolist/models"
)

// render executes the template into a buffer first so a template error
// never leaves a half-written page behind.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data models.PageData) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("render template failed", slog.String("template", name), slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// pageData fills in the signed-in user and CSRF token, if any.
func pageData(ctx context.Context) models.PageData {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return models.PageData{}
	}
	data := models.PageData{
		Username:   id.User.Username,
		IsLoggedIn: true,
	}
	if id.Session != nil {
		data.CSRFtoken = id.Session.CSRFToken
	}
	return data
}
