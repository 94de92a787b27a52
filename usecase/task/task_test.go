package task

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
)

func newUseCase(t *testing.T) *UseCase {
	t.Helper()
	db, err := boltInfra.Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(boltRepo.NewTaskRepository(db), nil)
}

func ptr[T any](v T) *T { return &v }

func TestCreateTask(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, "ann", "Buy milk")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ann", created.UserID)
	assert.False(t, created.Completed)

	_, err = uc.CreateTask(ctx, "ann", "   ")
	require.ErrorIs(t, err, domain.ErrTitleRequired)

	_, err = uc.CreateTask(ctx, "", "Buy milk")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestListTasks_NewestFirstAndOwnerScoped(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	first, err := uc.CreateTask(ctx, "ann", "first")
	require.NoError(t, err)
	second, err := uc.CreateTask(ctx, "ann", "second")
	require.NoError(t, err)
	_, err = uc.CreateTask(ctx, "bob", "bob's")
	require.NoError(t, err)

	tasks, err := uc.ListTasks(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID)
	assert.Equal(t, first.ID, tasks[1].ID)

	empty, err := uc.ListTasks(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateTask_MergesFields(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, "ann", "Buy milk")
	require.NoError(t, err)

	updated, err := uc.UpdateTask(ctx, "ann", created.ID, domain.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.True(t, updated.Completed)

	updated, err = uc.UpdateTask(ctx, "ann", created.ID, domain.TaskPatch{Title: ptr("Buy oat milk")})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.True(t, updated.Completed)

	_, err = uc.UpdateTask(ctx, "ann", created.ID, domain.TaskPatch{Title: ptr("")})
	require.ErrorIs(t, err, domain.ErrTitleRequired)

	unchanged, err := uc.UpdateTask(ctx, "ann", created.ID, domain.TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", unchanged.Title)
}

func TestForeignTaskIsNotFound(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, "ann", "Buy milk")
	require.NoError(t, err)

	_, err = uc.UpdateTask(ctx, "bob", created.ID, domain.TaskPatch{Completed: ptr(true)})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
	require.ErrorIs(t, uc.DeleteTask(ctx, "bob", created.ID), domain.ErrTaskNotFound)

	tasks, err := uc.ListTasks(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Completed)
}

func TestDeleteTask(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, "ann", "Buy milk")
	require.NoError(t, err)

	require.NoError(t, uc.DeleteTask(ctx, "ann", created.ID))
	require.ErrorIs(t, uc.DeleteTask(ctx, "ann", created.ID), domain.ErrTaskNotFound)
	require.ErrorIs(t, uc.DeleteTask(ctx, "ann", "does-not-exist"), domain.ErrTaskNotFound)
}
