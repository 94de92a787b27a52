package bolt

import (
	"context"
	"encoding/json"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/repository"
)

// userRecord is the stored form of a user; unlike domain.User it keeps the hash.
type userRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type userRepository struct {
	db *bbolt.DB
}

// NewUserRepository returns a BoltDB-backed user repository.
func NewUserRepository(db *bbolt.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = newID()
	}
	user.Touch()

	payload, err := json.Marshal(userRecord{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket(boltInfra.BucketUserEmails)
		if emails.Get([]byte(user.Email)) != nil {
			return domain.ErrEmailTaken
		}
		if err := emails.Put([]byte(user.Email), []byte(user.ID)); err != nil {
			return err
		}
		return tx.Bucket(boltInfra.BucketUsers).Put([]byte(user.ID), payload)
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user *domain.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = loadUser(tx, id)
		return err
	})
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user *domain.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(boltInfra.BucketUserEmails).Get([]byte(email))
		if id == nil {
			return domain.ErrUserNotFound
		}
		var err error
		user, err = loadUser(tx, string(id))
		return err
	})
	return user, err
}

func (r *userRepository) UpdateName(ctx context.Context, id, name string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user *domain.User
	err := r.db.Update(func(tx *bbolt.Tx) error {
		current, err := loadUser(tx, id)
		if err != nil {
			return err
		}
		current.Name = name
		current.Touch()

		payload, err := json.Marshal(userRecord{
			ID:           current.ID,
			Name:         current.Name,
			Email:        current.Email,
			PasswordHash: current.PasswordHash,
			CreatedAt:    current.CreatedAt,
			UpdatedAt:    current.UpdatedAt,
		})
		if err != nil {
			return err
		}
		user = current
		return tx.Bucket(boltInfra.BucketUsers).Put([]byte(id), payload)
	})
	return user, err
}

func loadUser(tx *bbolt.Tx, id string) (*domain.User, error) {
	raw := tx.Bucket(boltInfra.BucketUsers).Get([]byte(id))
	if raw == nil {
		return nil, domain.ErrUserNotFound
	}
	var record userRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}
