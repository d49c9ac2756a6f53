// Package service implements account business logic on top of the stores.
// Expected failures are returned as *apperr.Error; anything else is a
// wrapped internal error the HTTP layer turns into a generic 500.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/tutor-accounts/internal/model"
	"github.com/iliyamo/tutor-accounts/internal/queue"
)

// UserStore is satisfied by *repository.UserRepo. Lookups that find nothing
// return sql.ErrNoRows.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateName(ctx context.Context, id int64, name string) (model.User, error)
	SoftDelete(ctx context.Context, id int64, now time.Time) (string, error)
}

// TokenStore is satisfied by *repository.TokenRepo.
type TokenStore interface {
	Create(ctx context.Context, token string, userID int64, expiresAt time.Time) (model.RefreshToken, error)
	FindValid(ctx context.Context, token string) (model.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}

// EventPublisher is satisfied by *queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.AccountEvent) error
}

// ProfileCache is satisfied by *repository.ProfileCache.
type ProfileCache interface {
	Get(ctx context.Context, id int64) (model.PublicUser, bool)
	Set(ctx context.Context, u model.PublicUser) error
	Invalidate(ctx context.Context, id int64) error
}

type noCache struct{}

func (noCache) Get(context.Context, int64) (model.PublicUser, bool) { return model.PublicUser{}, false }
func (noCache) Set(context.Context, model.PublicUser) error         { return nil }
func (noCache) Invalidate(context.Context, int64) error             { return nil }

type noEvents struct{}

func (noEvents) Publish(context.Context, queue.AccountEvent) error { return nil }
