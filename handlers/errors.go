package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"todolist/auth"
	"todolist/models"
)

// writeError answers a failed task operation. failure is the message shown
// when the store itself failed.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	var validation *models.ValidationError
	switch {
	case errors.Is(err, models.ErrAuthenticationRequired):
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "Task not found", http.StatusNotFound)
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, "You are not allowed to change this task", http.StatusForbidden)
	case errors.As(err, &validation):
		http.Error(w, validation.Message, http.StatusBadRequest)
	default:
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, failure, http.StatusInternalServerError)
	}
}

func validationMessage(err error) (string, bool) {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		return validation.Message, true
	}
	return "", false
}
