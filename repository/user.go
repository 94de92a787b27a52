package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// UserRepository persists accounts. Implementations must enforce email
// uniqueness and return domain.ErrEmailTaken on a duplicate.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateName(ctx context.Context, id, name string) (*domain.User, error)
}
