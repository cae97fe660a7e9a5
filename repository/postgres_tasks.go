package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"todolist/models"
	"todolist/utils"
)

const taskColumns = "id, user_id, content, completed, created_at"

type PostgresTaskRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTaskRepository(db *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, ownerID int64, content string) (*models.Task, error) {
	content, err := utils.ValidateTaskInput(content)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stmt := "INSERT INTO tasks (user_id, content) VALUES ($1, $2) RETURNING " + taskColumns + ";"
	rows, err := r.db.Query(ctx, stmt, ownerID, content)
	if err != nil {
		return nil, storageError("create task", err)
	}
	task, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.Task])
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return nil, models.NewValidationError("user_id", "task owner does not exist")
		}
		return nil, storageError("create task", err)
	}
	return task, nil
}

func (r *PostgresTaskRepository) ListForOwner(ctx context.Context, ownerID int64) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stmt := "SELECT " + taskColumns + " FROM tasks WHERE user_id = $1 ORDER BY created_at, id;"
	rows, err := r.db.Query(ctx, stmt, ownerID)
	if err != nil {
		return nil, storageError("list tasks", err)
	}
	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Task])
	if err != nil {
		return nil, storageError("list tasks", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) Get(ctx context.Context, id int64) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1;", id)
	if err != nil {
		return nil, storageError("get task", err)
	}
	task, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.Task])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, storageError("get task", err)
	}
	return task, nil
}

func (r *PostgresTaskRepository) UpdateContent(ctx context.Context, id int64, content string) (*models.Task, error) {
	content, err := utils.ValidateTaskInput(content)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stmt := "UPDATE tasks SET content = $1 WHERE id = $2 RETURNING " + taskColumns + ";"
	rows, err := r.db.Query(ctx, stmt, content, id)
	if err != nil {
		return nil, storageError("update task", err)
	}
	task, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.Task])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, storageError("update task", err)
	}
	return task, nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, "DELETE FROM tasks WHERE id = $1;", id)
	if err != nil {
		return storageError("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
