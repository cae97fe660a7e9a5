package handlers

import (
	"net/http"
	"strconv"
)

func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		h.writeError(w, r, err, "There was an issue loading your tasks")
		return
	}

	data := pageData(r.Context())
	data.Tasks = tasks
	h.render(w, http.StatusOK, "tasks.html", data)
}

func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	content := r.FormValue("content")

	_, err := h.tasks.AddTask(ctx, content)
	if err != nil {
		msg, ok := validationMessage(err)
		if !ok {
			h.writeError(w, r, err, "There was an issue adding your task")
			return
		}
		tasks, listErr := h.tasks.ListTasks(ctx)
		if listErr != nil {
			h.writeError(w, r, listErr, "There was an issue loading your tasks")
			return
		}
		data := pageData(ctx)
		data.Tasks = tasks
		data.Content = content
		data.Error = msg
		h.render(w, http.StatusBadRequest, "tasks.html", data)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.tasks.RemoveTask(r.Context(), id); err != nil {
		h.writeError(w, r, err, "There was an issue deleting your task")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) EditTaskForm(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	task, err := h.tasks.TaskForEdit(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "There was an issue loading your task")
		return
	}

	data := pageData(r.Context())
	data.Task = task
	h.render(w, http.StatusOK, "update.html", data)
}

func (h *Handler) EditTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := taskID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	content := r.FormValue("content")

	_, err := h.tasks.EditTask(ctx, id, content)
	if err != nil {
		msg, ok := validationMessage(err)
		if !ok {
			h.writeError(w, r, err, "There was an issue updating your task")
			return
		}
		task, getErr := h.tasks.TaskForEdit(ctx, id)
		if getErr != nil {
			h.writeError(w, r, getErr, "There was an issue loading your task")
			return
		}
		data := pageData(ctx)
		data.Task = task
		data.Content = content
		data.Error = msg
		h.render(w, http.StatusBadRequest, "update.html", data)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
