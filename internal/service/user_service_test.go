package service

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tutor-accounts/internal/apperr"
	"github.com/iliyamo/tutor-accounts/internal/model"
)

func newUserFixture(t *testing.T) (*UserService, *fakeUsers, *fakeCache) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	users, cache := newFakeUsers(), newFakeCache()
	return NewUserService(users, WithCache(cache), WithLogger(logger)), users, cache
}

func TestGetUserFillsCache(t *testing.T) {
	svc, users, cache := newUserFixture(t)
	ctx := context.Background()
	u, err := users.Create(ctx, model.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	cached, ok := cache.Get(ctx, u.ID)
	require.True(t, ok)
	assert.Equal(t, got, cached)

	// served from cache while the store is down
	users.err = errStoreDown
	again, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestGetUserMissingOrDeleted(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.GetUser(ctx, 7)
	ae := assertCode(t, err, apperr.CodeNotFound)
	assert.Equal(t, msgUserNotFound, ae.Message)

	u, err := users.Create(ctx, model.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	_, err = users.SoftDelete(ctx, u.ID, time.Now())
	require.NoError(t, err)

	_, err = svc.GetUser(ctx, u.ID)
	assertCode(t, err, apperr.CodeNotFound)
}

func TestGetUserStoreFailure(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	users.err = errStoreDown

	_, err := svc.GetUser(context.Background(), 1)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestUpdateAccountInfoEvictsCache(t *testing.T) {
	svc, users, cache := newUserFixture(t)
	ctx := context.Background()
	u, err := users.Create(ctx, model.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	_, err = svc.GetUser(ctx, u.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateAccountInfo(ctx, u.ID, "Ada Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)

	_, ok := cache.Get(ctx, u.ID)
	assert.False(t, ok)

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
}

func TestUpdateAccountInfoUnknownUser(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.UpdateAccountInfo(context.Background(), 3, "Nobody")
	assertCode(t, err, apperr.CodeNotFound)
}
