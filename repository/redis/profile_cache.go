package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type profileCache struct {
	client redislib.Cmdable
	prefix string
	ttl    time.Duration
}

// NewProfileCache creates a Redis-backed profile cache.
func NewProfileCache(client redislib.Cmdable, ttl time.Duration) repository.ProfileCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &profileCache{
		client: client,
		prefix: "profile:",
		ttl:    ttl,
	}
}

func (c *profileCache) Get(ctx context.Context, userID string) (*domain.User, error) {
	result, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, repository.ErrCacheMiss
		}
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal([]byte(result), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Set stores the JSON form of the user, which omits the password hash.
func (c *profileCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(user.ID), payload, c.ttl).Err()
}

func (c *profileCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}

func (c *profileCache) key(id string) string {
	return fmt.Sprintf("%s%s", c.prefix, id)
}
