package domain

import (
	"strings"
	"time"
)

// Task represents a user-owned to-do item.
type Task struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskPatch carries a partial update. Nil fields keep their stored value.
type TaskPatch struct {
	Title     *string
	Completed *bool
}

// Apply merges the patch into t.
func (p TaskPatch) Apply(t *Task) {
	if t == nil {
		return
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// ValidTitle reports whether a title carries at least one non-space character.
func ValidTitle(title string) bool {
	return strings.TrimSpace(title) != ""
}

func (t *Task) Touch() {
	if t == nil {
		return
	}
	t.UpdatedAt = time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}
}
