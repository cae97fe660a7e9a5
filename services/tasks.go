package services

import (
	"context"
	"log/slog"

	"todolist/auth"
	"todolist/models"
	"todolist/repository"
)

// TaskService runs the task use cases for the user carried in the context.
// Edit and remove always load the task first, so an unknown id is reported
// as models.ErrNotFound before ownership is checked.
type TaskService struct {
	tasks  repository.TaskRepository
	logger *slog.Logger
}

func NewTaskService(tasks repository.TaskRepository, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{tasks: tasks, logger: logger}
}

func (s *TaskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.tasks.ListForOwner(ctx, user.ID)
}

func (s *TaskService) AddTask(ctx context.Context, content string) (*models.Task, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.Create(ctx, user.ID, content)
	if err != nil {
		s.logRejected(err, "create", user.ID)
		return nil, err
	}
	s.logger.Debug("task created", slog.Int64("task_id", task.ID), slog.Int64("user_id", user.ID))
	return task, nil
}

// TaskForEdit returns a task the current user may edit.
func (s *TaskService) TaskForEdit(ctx context.Context, id int64) (*models.Task, error) {
	_, task, err := s.ownedTask(ctx, id)
	return task, err
}

func (s *TaskService) EditTask(ctx context.Context, id int64, content string) (*models.Task, error) {
	user, _, err := s.ownedTask(ctx, id)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.UpdateContent(ctx, id, content)
	if err != nil {
		s.logRejected(err, "update", user.ID)
		return nil, err
	}
	s.logger.Debug("task updated", slog.Int64("task_id", id), slog.Int64("user_id", user.ID))
	return task, nil
}

func (s *TaskService) RemoveTask(ctx context.Context, id int64) error {
	user, _, err := s.ownedTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("task deleted", slog.Int64("task_id", id), slog.Int64("user_id", user.ID))
	return nil
}

func (s *TaskService) ownedTask(ctx context.Context, id int64) (*models.User, *models.Task, error) {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, nil, err
	}
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.AuthorizeOwner(task, user); err != nil {
		s.logger.Warn("task access denied", slog.Int64("task_id", id), slog.Int64("user_id", user.ID))
		return nil, nil, err
	}
	return user, task, nil
}

// logRejected records input the user has to correct. Other failures are
// logged where they are answered.
func (s *TaskService) logRejected(err error, op string, userID int64) {
	if models.IsValidation(err) {
		s.logger.Debug("task input rejected",
			slog.String("op", op),
			slog.Int64("user_id", userID),
			slog.String("reason", err.Error()),
		)
	}
}
