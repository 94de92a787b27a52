package profile

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

type UseCase struct {
	users  repository.UserRepository
	cache  repository.ProfileCache
	logger *zap.Logger
}

// New builds the profile use case. cache may be nil.
func New(users repository.UserRepository, cache repository.ProfileCache, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		cache:  cache,
		logger: logger,
	}
}

// GetProfile returns the user without credentials, reading through the cache.
func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, userID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			logger.For(ctx, uc.logger).Warn("profile cache read failed", zap.Error(err))
		}
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user = sanitize(user)
	uc.store(ctx, user)
	return user, nil
}

// UpdateProfile changes the display name, the only mutable profile field.
func (uc *UseCase) UpdateProfile(ctx context.Context, userID, name string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	user, err := uc.users.UpdateName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	user = sanitize(user)
	uc.store(ctx, user)
	return user, nil
}

func (uc *UseCase) store(ctx context.Context, user *domain.User) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, user); err != nil {
		log := logger.For(ctx, uc.logger)
		log.Warn("profile cache write failed", zap.Error(err))
		// a stale entry would outlive the update
		if err := uc.cache.Invalidate(ctx, user.ID); err != nil {
			log.Warn("profile cache invalidation failed", zap.Error(err))
		}
	}
}

func sanitize(user *domain.User) *domain.User {
	out := *user
	out.PasswordHash = ""
	return &out
}
