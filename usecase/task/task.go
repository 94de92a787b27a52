package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

// UseCase applies task rules. The owner always comes from the authenticated
// identity, never from client input.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, ownerID string) ([]domain.Task, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.tasks.ListByOwner(ctx, ownerID)
}

func (uc *UseCase) CreateTask(ctx context.Context, ownerID, title string) (*domain.Task, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !domain.ValidTitle(title) {
		return nil, domain.ErrTitleRequired
	}

	created, err := uc.tasks.Create(ctx, &domain.Task{
		UserID: ownerID,
		Title:  title,
	})
	if err != nil {
		return nil, err
	}
	logger.For(ctx, uc.logger).Debug("task created", zap.String("task_id", created.ID))
	return created, nil
}

// UpdateTask merges patch into the caller's task. A task owned by someone
// else is reported exactly like a missing one.
func (uc *UseCase) UpdateTask(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if id == "" {
		return nil, domain.ErrTaskNotFound
	}
	if patch.Title != nil && !domain.ValidTitle(*patch.Title) {
		return nil, domain.ErrTitleRequired
	}
	return uc.tasks.UpdateOwned(ctx, id, ownerID, patch)
}

func (uc *UseCase) DeleteTask(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	if id == "" {
		return domain.ErrTaskNotFound
	}
	if err := uc.tasks.DeleteOwned(ctx, id, ownerID); err != nil {
		return err
	}
	logger.For(ctx, uc.logger).Debug("task deleted", zap.String("task_id", id))
	return nil
}
