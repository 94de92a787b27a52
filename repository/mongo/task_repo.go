package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	coll *mongodrv.Collection
}

// NewTaskRepository returns a MongoDB-backed task repository.
func NewTaskRepository(db *mongodrv.Database) repository.TaskRepository {
	return &taskRepository{coll: db.Collection(tasksCollection)}
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0)
	ownerOID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return tasks, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user": ownerOID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		tasks = append(tasks, doc.toDomain())
	}
	return tasks, cursor.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	ownerOID, err := primitive.ObjectIDFromHex(task.UserID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "invalid owner id", err)
	}

	now := time.Now().UTC()
	doc := taskDocument{
		ID:        primitive.NewObjectID(),
		User:      ownerOID,
		Title:     task.Title,
		Completed: task.Completed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, err
	}

	created := doc.toDomain()
	return &created, nil
}

func (r *taskRepository) UpdateOwned(ctx context.Context, id, ownerID string, patch domain.TaskPatch) (*domain.Task, error) {
	filter, ok := ownedFilter(id, ownerID)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, patchUpdate(patch, time.Now().UTC()), opts).Decode(&doc); err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task := doc.toDomain()
	return &task, nil
}

func (r *taskRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	filter, ok := ownedFilter(id, ownerID)
	if !ok {
		return domain.ErrTaskNotFound
	}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
