package bolt

import (
	"context"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
)

// Top-level buckets used by the embedded store.
var (
	BucketUsers      = []byte("users")
	BucketUserEmails = []byte("user_emails")
	BucketTasks      = []byte("tasks")
)

// Open initializes the BoltDB file and ensures every top-level bucket exists.
func Open(path string) (*bbolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{BucketUsers, BucketUserEmails, BucketTasks} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Ping runs an empty read transaction so health checks notice a closed file.
func Ping(ctx context.Context, db *bbolt.DB) error {
	if db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(BucketUsers) == nil {
			return bbolt.ErrBucketNotFound
		}
		return nil
	})
}
