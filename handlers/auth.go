package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"todolist/auth"
	"todolist/models"
	"todolist/utils"
)

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := models.PageData{}
	if r.URL.Query().Get("registered") != "" {
		data.Notice = "Registration successful. Please log in."
	}
	h.render(w, http.StatusOK, "login.html", data)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			h.logger.Info("login rejected", slog.String("client_ip", utils.GetIP(r)))
			h.render(w, http.StatusUnauthorized, "login.html", models.PageData{
				Username: username,
				Error:    "Invalid username or password",
			})
			return
		}
		h.logger.Error("login failed", slog.String("error", err.Error()))
		http.Error(w, "There was an issue logging you in", http.StatusInternalServerError)
		return
	}

	if _, err := h.sessions.Create(ctx, w, r, user); err != nil {
		h.logger.Error("create session failed", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
		http.Error(w, "There was an issue logging you in", http.StatusInternalServerError)
		return
	}

	if n, err := h.sessions.ActiveSessions(ctx, user.ID); err == nil {
		h.logger.Info("user logged in", slog.Int64("user_id", user.ID), slog.Int64("active_sessions", n))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, "register.html", models.PageData{})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	confirmedPassword := r.FormValue("confirm_password")

	if !utils.SamePassword(password, confirmedPassword) {
		h.render(w, http.StatusBadRequest, "register.html", models.PageData{
			Username: username,
			Error:    "Passwords must match",
		})
		return
	}

	_, err := h.users.Register(r.Context(), username, password)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			h.render(w, http.StatusBadRequest, "register.html", models.PageData{
				Username: username,
				Error:    msg,
			})
			return
		}
		http.Error(w, "There was an issue creating your account", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, auth.LoginPath+"?registered=1", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		// The stored session may still be live, so do not report a logout.
		h.logger.Error("destroy session failed", slog.String("error", err.Error()))
		http.Error(w, "There was an issue logging you out", http.StatusInternalServerError)
		return
	}
	if user, ok := auth.CurrentUser(r.Context()); ok {
		h.logger.Info("user logged out", slog.Int64("user_id", user.ID))
	}
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}
