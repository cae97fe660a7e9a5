// Package repository persists users and tasks. Each entity has an
// interface with a Postgres implementation backed by pgx and an in-memory
// implementation for tests and database-less local runs.
//
// Missing rows are reported as models.ErrNotFound, rejected input as
// *models.ValidationError and every driver failure as *models.StorageError.
package repository

import (
	"context"
	"time"

	"todolist/models"
)

const queryTimeout = 10 * time.Second

type UserRepository interface {
	// Create returns models.ErrDuplicateUsername when the username is taken.
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type TaskRepository interface {
	Create(ctx context.Context, ownerID int64, content string) (*models.Task, error)
	// ListForOwner returns the owner's tasks oldest first.
	ListForOwner(ctx context.Context, ownerID int64) ([]models.Task, error)
	Get(ctx context.Context, id int64) (*models.Task, error)
	UpdateContent(ctx context.Context, id int64, content string) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

func storageError(op string, err error) error {
	return &models.StorageError{Op: op, Err: err}
}
