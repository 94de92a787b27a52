package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique email index and the owner/createdAt index
// used by task listing. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongodrv.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongodrv.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	}); err != nil {
		return err
	}

	_, err := db.Collection(tasksCollection).Indexes().CreateOne(ctx, mongodrv.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("tasks_user_created"),
	})
	return err
}
