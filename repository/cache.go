package repository

import (
	"context"
	"errors"

	"github.com/fastygo/taskboard/domain"
)

// ErrCacheMiss is returned by ProfileCache.Get when nothing is cached.
var ErrCacheMiss = errors.New("cache miss")

// ProfileCache keeps password-free copies of user profiles.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Invalidate(ctx context.Context, userID string) error
}
