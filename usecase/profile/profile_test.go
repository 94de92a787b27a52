package profile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/repository"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
)

type memoryCache struct {
	entries map[string]domain.User
	failSet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]domain.User{}}
}

func (c *memoryCache) Get(_ context.Context, id string) (*domain.User, error) {
	u, ok := c.entries[id]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return &u, nil
}

func (c *memoryCache) Set(_ context.Context, u *domain.User) error {
	if c.failSet {
		return errors.New("cache down")
	}
	c.entries[u.ID] = *u
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, id string) error {
	delete(c.entries, id)
	return nil
}

func seedUser(t *testing.T) (repository.UserRepository, *domain.User) {
	t.Helper()
	db, err := boltInfra.Open(filepath.Join(t.TempDir(), "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := boltRepo.NewUserRepository(db)
	user := &domain.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(context.Background(), user))
	return users, user
}

func TestGetProfile_StripsPassword(t *testing.T) {
	users, user := seedUser(t)
	uc := New(users, nil, nil)

	got, err := uc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
	assert.Empty(t, got.PasswordHash)
}

func TestGetProfile_MissingUser(t *testing.T) {
	users, _ := seedUser(t)
	uc := New(users, nil, nil)

	_, err := uc.GetProfile(context.Background(), "gone")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetProfile_ReadsThroughCache(t *testing.T) {
	users, user := seedUser(t)
	cache := newMemoryCache()
	uc := New(users, cache, nil)

	_, err := uc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	require.Contains(t, cache.entries, user.ID)
	assert.Empty(t, cache.entries[user.ID].PasswordHash)

	cache.entries[user.ID] = domain.User{ID: user.ID, Name: "Cached"}
	got, err := uc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cached", got.Name)
}

func TestUpdateProfile(t *testing.T) {
	users, user := seedUser(t)
	cache := newMemoryCache()
	uc := New(users, cache, nil)
	ctx := context.Background()

	_, err := uc.UpdateProfile(ctx, user.ID, "")
	require.ErrorIs(t, err, domain.ErrNameRequired)

	updated, err := uc.UpdateProfile(ctx, user.ID, "Annie")
	require.NoError(t, err)
	assert.Equal(t, "Annie", updated.Name)
	assert.Equal(t, "ann@x.com", updated.Email)
	assert.Empty(t, updated.PasswordHash)
	assert.Equal(t, "Annie", cache.entries[user.ID].Name)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", stored.PasswordHash)
}

func TestUpdateProfile_CacheFailureDropsEntry(t *testing.T) {
	users, user := seedUser(t)
	cache := newMemoryCache()
	uc := New(users, cache, nil)
	ctx := context.Background()

	_, err := uc.GetProfile(ctx, user.ID)
	require.NoError(t, err)

	cache.failSet = true
	_, err = uc.UpdateProfile(ctx, user.ID, "Annie")
	require.NoError(t, err)
	assert.NotContains(t, cache.entries, user.ID)
}
