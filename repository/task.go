package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskRepository persists tasks. Every read or mutation of an existing task is
// scoped to its owner in a single call; a task owned by someone else is
// reported as domain.ErrTaskNotFound.
type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	UpdateOwned(ctx context.Context, id, ownerID string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
}
