package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"todolist/models"
	"todolist/utils"
)

type MemoryUserRepository struct {
	mu         sync.Mutex
	nextID     int64
	byID       map[int64]models.User
	byUsername map[string]int64
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:       make(map[int64]models.User),
		byUsername: make(map[string]int64),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("create user", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[username]; taken {
		return nil, models.ErrDuplicateUsername
	}
	r.nextID++
	user := models.User{ID: r.nextID, Username: username, PasswordHash: passwordHash}
	r.byID[user.ID] = user
	r.byUsername[username] = user.ID
	return &user, nil
}

func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("find user by username", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("find user by id", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &user, nil
}

// MemoryTaskRepository keeps tasks in a map. Owners are not checked against
// a user table.
type MemoryTaskRepository struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]models.Task
	now    func() time.Time
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return NewMemoryTaskRepositoryWithClock(time.Now)
}

func NewMemoryTaskRepositoryWithClock(now func() time.Time) *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks: make(map[int64]models.Task),
		now:   now,
	}
}

func (r *MemoryTaskRepository) Create(ctx context.Context, ownerID int64, content string) (*models.Task, error) {
	content, err := utils.ValidateTaskInput(content)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, storageError("create task", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	task := models.Task{
		ID:        r.nextID,
		UserID:    ownerID,
		Content:   content,
		CreatedAt: r.now().UTC(),
	}
	r.tasks[task.ID] = task
	return &task, nil
}

func (r *MemoryTaskRepository) ListForOwner(ctx context.Context, ownerID int64) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("list tasks", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := []models.Task{}
	for _, t := range r.tasks {
		if t.UserID == ownerID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *MemoryTaskRepository) Get(ctx context.Context, id int64) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError("get task", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &task, nil
}

func (r *MemoryTaskRepository) UpdateContent(ctx context.Context, id int64, content string) (*models.Task, error) {
	content, err := utils.ValidateTaskInput(content)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, storageError("update task", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	task.Content = content
	r.tasks[id] = task
	return &task, nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return storageError("delete task", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}
