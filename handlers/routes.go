package handlers

import "net/http"

// Routes returns the application's http.Handler with request logging and
// session resolution applied to every route.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /register", h.RegisterPage)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.Handle("GET /logout", h.gate.RequireLoginFunc(h.Logout))
	mux.Handle("POST /logout", h.gate.RequireLoginFunc(h.Logout))

	mux.Handle("GET /{$}", h.gate.RequireLoginFunc(h.Tasks))
	mux.Handle("POST /{$}", h.gate.RequireLoginFunc(h.AddTask))
	mux.Handle("GET /delete/{id}", h.gate.RequireLoginFunc(h.DeleteTask))
	mux.Handle("POST /delete/{id}", h.gate.RequireLoginFunc(h.DeleteTask))
	mux.Handle("GET /update/{id}", h.gate.RequireLoginFunc(h.EditTaskForm))
	mux.Handle("POST /update/{id}", h.gate.RequireLoginFunc(h.EditTask))

	return RequestLogger(h.logger, h.gate.Authenticate(mux))
}
