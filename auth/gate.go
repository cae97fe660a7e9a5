package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"todolist/models"
)

const LoginPath = "/login"

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Gate puts the caller's identity on the request context and guards
// protected routes.
type Gate struct {
	sessions *Sessions
	users    UserFinder
	logger   *slog.Logger
}

func NewGate(sessions *Sessions, users UserFinder, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{sessions: sessions, users: users, logger: logger}
}

// Authenticate resolves the session cookie. Requests without a valid
// session continue anonymously; a session store failure is answered with 500.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session, err := g.sessions.Resolve(ctx, r)
		if err != nil {
			if models.IsStorage(err) {
				g.logger.Error("resolve session failed", slog.String("error", err.Error()))
				http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		user, err := g.users.FindByID(ctx, session.UserID)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				g.logger.Error("load session user failed", slog.Int64("user_id", session.UserID), slog.String("error", err.Error()))
				http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx = WithIdentity(ctx, Identity{User: user, Session: session})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLogin redirects anonymous callers to the login page and rejects
// POSTs whose CSRF token does not match the session.
func (g *Gate) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		if r.Method == http.MethodPost && !validCSRF(r, id.Session) {
			g.logger.Warn("csrf token mismatch", slog.Int64("user_id", id.User.ID), slog.String("path", r.URL.Path))
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) RequireLoginFunc(fn http.HandlerFunc) http.Handler {
	return g.RequireLogin(fn)
}

func validCSRF(r *http.Request, session *models.Session) bool {
	if session == nil || session.CSRFToken == "" {
		return false
	}
	token := r.Header.Get("X-CSRF-Token")
	if token == "" {
		token = r.FormValue("csrf_token")
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(session.CSRFToken)) == 1
}
