package models

import "time"

// Task is a single user-owned to-do item. Completed is stored but no
// operation changes it.
type Task struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Content   string    `db:"content"`
	Completed bool      `db:"completed"`
	CreatedAt time.Time `db:"created_at"`
}

// OwnedBy reports whether the task belongs to the given user id.
func (t *Task) OwnedBy(userID int64) bool {
	return t != nil && t.UserID == userID
}
