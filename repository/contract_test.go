package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"todolist/models"
)

// The same behaviour is required from every TaskRepository and
// UserRepository implementation; the Postgres tests reuse these.

func testTaskRepository(t *testing.T, repo TaskRepository, owner, other int64) {
	ctx := context.Background()

	t.Run("create then list for owner", func(t *testing.T) {
		task, err := repo.Create(ctx, owner, "buy milk")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if task.ID == 0 || task.UserID != owner || task.Content != "buy milk" || task.Completed {
			t.Errorf("Create() = %+v", task)
		}
		if task.CreatedAt.IsZero() {
			t.Error("Create() did not set CreatedAt")
		}

		tasks, err := repo.ListForOwner(ctx, owner)
		if err != nil {
			t.Fatalf("ListForOwner() error = %v", err)
		}
		if !containsTask(tasks, task.ID) {
			t.Errorf("ListForOwner(owner) = %+v, missing task %d", tasks, task.ID)
		}

		others, err := repo.ListForOwner(ctx, other)
		if err != nil {
			t.Fatalf("ListForOwner() error = %v", err)
		}
		if containsTask(others, task.ID) {
			t.Errorf("ListForOwner(other) contains task %d", task.ID)
		}
	})

	t.Run("list is ordered by creation", func(t *testing.T) {
		var ids []int64
		for _, content := range []string{"first", "second", "third"} {
			task, err := repo.Create(ctx, other, content)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			ids = append(ids, task.ID)
			// interleave unrelated tasks
			if _, err := repo.Create(ctx, owner, "noise "+content); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
		}

		tasks, err := repo.ListForOwner(ctx, other)
		if err != nil {
			t.Fatalf("ListForOwner() error = %v", err)
		}
		if len(tasks) != len(ids) {
			t.Fatalf("ListForOwner() returned %d tasks, want %d", len(tasks), len(ids))
		}
		for i := range tasks {
			if tasks[i].ID != ids[i] {
				t.Errorf("tasks[%d].ID = %d, want %d", i, tasks[i].ID, ids[i])
			}
			if i > 0 && tasks[i].CreatedAt.Before(tasks[i-1].CreatedAt) {
				t.Errorf("tasks[%d] created before tasks[%d]", i, i-1)
			}
		}
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		tasks, err := repo.ListForOwner(ctx, -1)
		if err != nil {
			t.Fatalf("ListForOwner() error = %v", err)
		}
		if tasks == nil || len(tasks) != 0 {
			t.Errorf("ListForOwner() = %#v, want empty slice", tasks)
		}
	})

	t.Run("create rejects empty content", func(t *testing.T) {
		for _, content := range []string{"", "   ", strings.Repeat("x", 201)} {
			_, err := repo.Create(ctx, owner, content)
			if !models.IsValidation(err) {
				t.Errorf("Create(%q) error = %v, want ValidationError", content, err)
			}
		}
	})

	t.Run("get", func(t *testing.T) {
		created, err := repo.Create(ctx, owner, "walk the dog")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		got, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Content != "walk the dog" || got.UserID != owner {
			t.Errorf("Get() = %+v", got)
		}

		if _, err := repo.Get(ctx, 1<<40); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("update content", func(t *testing.T) {
		created, err := repo.Create(ctx, owner, "draft")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		updated, err := repo.UpdateContent(ctx, created.ID, "final")
		if err != nil {
			t.Fatalf("UpdateContent() error = %v", err)
		}
		if updated.Content != "final" {
			t.Errorf("UpdateContent() content = %q, want %q", updated.Content, "final")
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("UpdateContent() changed CreatedAt from %v to %v", created.CreatedAt, updated.CreatedAt)
		}

		if _, err := repo.UpdateContent(ctx, created.ID, ""); !models.IsValidation(err) {
			t.Errorf("UpdateContent(empty) error = %v, want ValidationError", err)
		}
		got, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Content != "final" {
			t.Errorf("content after rejected update = %q, want %q", got.Content, "final")
		}

		if _, err := repo.UpdateContent(ctx, 1<<40, "x"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("UpdateContent(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		created, err := repo.Create(ctx, owner, "temporary")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := repo.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := repo.Get(ctx, created.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
		}
		if err := repo.Delete(ctx, created.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("second Delete() error = %v, want ErrNotFound", err)
		}
	})
}

func testUserRepository(t *testing.T, repo UserRepository, prefix string) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		user, err := repo.Create(ctx, prefix+"alice", "hash-a")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if user.ID == 0 || user.Username != prefix+"alice" || user.PasswordHash != "hash-a" {
			t.Errorf("Create() = %+v", user)
		}

		byName, err := repo.FindByUsername(ctx, prefix+"alice")
		if err != nil {
			t.Fatalf("FindByUsername() error = %v", err)
		}
		byID, err := repo.FindByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if byName.ID != user.ID || byID.Username != user.Username {
			t.Errorf("lookups disagree: %+v vs %+v", byName, byID)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		first, err := repo.Create(ctx, prefix+"bob", "hash-1")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := repo.Create(ctx, prefix+"bob", "hash-2"); !errors.Is(err, models.ErrDuplicateUsername) {
			t.Fatalf("second Create() error = %v, want ErrDuplicateUsername", err)
		}
		got, err := repo.FindByUsername(ctx, prefix+"bob")
		if err != nil {
			t.Fatalf("FindByUsername() error = %v", err)
		}
		if got.ID != first.ID || got.PasswordHash != "hash-1" {
			t.Errorf("first user changed: %+v", got)
		}
	})

	t.Run("usernames are case sensitive", func(t *testing.T) {
		if _, err := repo.Create(ctx, prefix+"carol", "h"); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := repo.Create(ctx, prefix+"Carol", "h"); err != nil {
			t.Errorf("Create() with different case error = %v", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		if _, err := repo.FindByUsername(ctx, prefix+"nobody"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("FindByUsername() error = %v, want ErrNotFound", err)
		}
		if _, err := repo.FindByID(ctx, 1<<40); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("FindByID() error = %v, want ErrNotFound", err)
		}
	})
}

func containsTask(tasks []models.Task, id int64) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}
