package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/tutor-accounts/internal/apperr"
	"github.com/iliyamo/tutor-accounts/internal/model"
)

const msgUserNotFound = "User not found"

// UserService serves the signed-in user's own profile. Reads go through the
// profile cache.
type UserService struct {
	common
	users UserStore
}

func NewUserService(users UserStore, opts ...Option) *UserService {
	return &UserService{common: newCommon(opts), users: users}
}

// GetUser returns the sanitized profile. Soft-deleted accounts are reported
// as missing.
func (s *UserService) GetUser(ctx context.Context, userID int64) (model.PublicUser, error) {
	if u, ok := s.cache.Get(ctx, userID); ok {
		return u, nil
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PublicUser{}, apperr.NotFound(msgUserNotFound)
		}
		return model.PublicUser{}, fmt.Errorf("user.get: %w", err)
	}
	if u.DeletedAt != nil {
		return model.PublicUser{}, apperr.NotFound(msgUserNotFound)
	}

	pub := u.Public()
	if err := s.cache.Set(ctx, pub); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("profile cache set failed")
	}
	return pub, nil
}

// UpdateAccountInfo changes the display name.
func (s *UserService) UpdateAccountInfo(ctx context.Context, userID int64, name string) (model.PublicUser, error) {
	const op = "user.update"

	cur, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PublicUser{}, apperr.NotFound(msgUserNotFound)
		}
		return model.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}
	if cur.DeletedAt != nil {
		return model.PublicUser{}, apperr.NotFound(msgUserNotFound)
	}

	u, err := s.users.UpdateName(ctx, userID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PublicUser{}, apperr.NotFound(msgUserNotFound)
		}
		return model.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}
	s.evict(ctx, userID)
	return u.Public(), nil
}
