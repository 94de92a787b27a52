package bolt

import (
	"context"
	"encoding/json"
	"sort"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/repository"
)

// Tasks live in one nested bucket per owner, so an owner-scoped lookup can
// never see another user's task.
type taskRepository struct {
	db *bbolt.DB
}

// NewTaskRepository returns a BoltDB-backed task repository.
func NewTaskRepository(db *bbolt.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0)
	err := r.db.View(func(tx *bbolt.Tx) error {
		owned := ownerBucket(tx, ownerID)
		if owned == nil {
			return nil
		}
		return owned.ForEach(func(_, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}
			tasks = append(tasks, task)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if task.ID == "" {
		task.ID = newID()
	}
	task.Touch()

	payload, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}

	err = r.db.Update(func(tx *bbolt.Tx) error {
		owned, err := tx.Bucket(boltInfra.BucketTasks).CreateBucketIfNotExists([]byte(task.UserID))
		if err != nil {
			return err
		}
		return owned.Put([]byte(task.ID), payload)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) UpdateOwned(ctx context.Context, id, ownerID string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var updated *domain.Task
	err := r.db.Update(func(tx *bbolt.Tx) error {
		owned := ownerBucket(tx, ownerID)
		if owned == nil {
			return domain.ErrTaskNotFound
		}
		raw := owned.Get([]byte(id))
		if raw == nil {
			return domain.ErrTaskNotFound
		}

		var task domain.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return err
		}
		patch.Apply(&task)
		task.Touch()

		payload, err := json.Marshal(task)
		if err != nil {
			return err
		}
		updated = &task
		return owned.Put([]byte(id), payload)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *taskRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		owned := ownerBucket(tx, ownerID)
		if owned == nil || owned.Get([]byte(id)) == nil {
			return domain.ErrTaskNotFound
		}
		return owned.Delete([]byte(id))
	})
}

func ownerBucket(tx *bbolt.Tx, ownerID string) *bbolt.Bucket {
	if ownerID == "" {
		return nil
	}
	return tx.Bucket(boltInfra.BucketTasks).Bucket([]byte(ownerID))
}
