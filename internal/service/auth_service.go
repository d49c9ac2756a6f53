package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tutor-accounts/internal/apperr"
	"github.com/iliyamo/tutor-accounts/internal/model"
	"github.com/iliyamo/tutor-accounts/internal/queue"
	"github.com/iliyamo/tutor-accounts/internal/repository"
	"github.com/iliyamo/tutor-accounts/internal/utils"
)

const (
	msgEmailTaken      = "An account with this email already exists. Please log in to continue."
	msgBadCredentials  = "The email address or password is incorrect. Please try again."
	msgUseGoogle       = "This email is already associated with a Google account. Please sign in using Google Authentication."
	msgUsePassword     = "Your email is registered with a manual signup. Please sign in using your email and password to continue."
	msgRefreshExpired  = "Refresh token has expired, please login again"
	msgOAuthNoPassword = "Password change not available for OAuth users"
	msgUserIDNotFound  = "Could not find user with the provided ID"
	msgDeleteNotFound  = "Could not find user"
	msgPasswordUpdated = "Password updated successfully"
	msgAccountDeleted  = "Account has been deleted successfully"
)

// RegisterInput is a validated sign-up request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// OAuthProfile is what the Google callback hands over after the code
// exchange.
type OAuthProfile struct {
	GoogleID string
	Email    string
	Name     string
}

// AuthService owns registration, sign-in, token refresh, password change
// and account deletion.
type AuthService struct {
	common
	users  UserStore
	tokens TokenStore
	issuer *utils.TokenIssuer
	cost   int
}

func NewAuthService(users UserStore, tokens TokenStore, issuer *utils.TokenIssuer, bcryptCost int, opts ...Option) *AuthService {
	return &AuthService{
		common: newCommon(opts),
		users:  users,
		tokens: tokens,
		issuer: issuer,
		cost:   bcryptCost,
	}
}

// Register creates a password account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.AuthResult, error) {
	const op = "auth.register"

	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return model.AuthResult{}, apperr.AlreadyExists(msgEmailTaken)
	case !errors.Is(err, sql.ErrNoRows):
		return model.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}
	u, err := s.users.Create(ctx, model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.AuthResult{}, apperr.AlreadyExists(msgEmailTaken)
		}
		return model.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.signIn(ctx, u)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID}).Info("account registered")
	s.publish(ctx, queue.EventRegistered, u.ID, u.Email)
	return res, nil
}

// Login signs in a password account. An unknown email is NotFound and a
// wrong password is Forbidden; both carry the same message.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.AuthResult, error) {
	const op = "auth.login"

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AuthResult{}, apperr.NotFound(msgBadCredentials)
		}
		return model.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if u.IsOAuthUser {
		return model.AuthResult{}, apperr.Forbidden(msgUseGoogle)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.AuthResult{}, apperr.Forbidden(msgBadCredentials)
	}

	res, err := s.signIn(ctx, u)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// HandleOAuthLogin signs in a Google account, creating it on first use.
func (s *AuthService) HandleOAuthLogin(ctx context.Context, p OAuthProfile) (model.AuthResult, error) {
	const op = "auth.oauth_login"

	u, err := s.users.GetByEmail(ctx, p.Email)
	switch {
	case err == nil:
		if !u.IsOAuthUser {
			return model.AuthResult{}, apperr.Forbidden(msgUsePassword)
		}
	case errors.Is(err, sql.ErrNoRows):
		googleID := p.GoogleID
		u, err = s.users.Create(ctx, model.User{
			Name:        p.Name,
			Email:       p.Email,
			Role:        model.RoleStudent,
			OAuthID:     &googleID,
			IsOAuthUser: true,
		})
		if err != nil {
			if errors.Is(err, repository.ErrEmailExists) {
				return model.AuthResult{}, apperr.AlreadyExists(msgEmailTaken)
			}
			return model.AuthResult{}, fmt.Errorf("%s: %w", op, err)
		}
		s.log.WithFields(logrus.Fields{"user_id": u.ID}).Info("oauth account registered")
		s.publish(ctx, queue.EventOAuthRegistered, u.ID, u.Email)
	default:
		return model.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.signIn(ctx, u)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// Refresh exchanges a stored, correctly signed refresh token for a new
// pair. The presented token stays valid; only a cryptographically expired
// token is removed from the store.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	const op = "auth.refresh"

	row, err := s.tokens.FindValid(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TokenPair{}, apperr.Unauthorized("")
		}
		return model.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if !row.Usable(s.now()) {
		return model.TokenPair{}, apperr.Unauthorized("")
	}

	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			if derr := s.tokens.Delete(ctx, refreshToken); derr != nil {
				return model.TokenPair{}, fmt.Errorf("%s: %w", op, derr)
			}
			return model.TokenPair{}, apperr.Unauthorized(msgRefreshExpired)
		}
		return model.TokenPair{}, apperr.Unauthorized("")
	}

	pair, err := s.issue(ctx, claims.ID, claims.Email)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// ChangePassword sets a new password on a password account. No tokens are
// issued or revoked.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, newPassword string) (model.Message, error) {
	const op = "auth.change_password"

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Message{}, apperr.NotFound(msgUserIDNotFound)
		}
		return model.Message{}, fmt.Errorf("%s: %w", op, err)
	}
	if u.IsOAuthUser {
		return model.Message{}, apperr.Forbidden(msgOAuthNoPassword)
	}

	hash, err := utils.HashPassword(newPassword, s.cost)
	if err != nil {
		return model.Message{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Message{}, apperr.NotFound(msgUserIDNotFound)
		}
		return model.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	s.evict(ctx, userID)
	s.publish(ctx, queue.EventPasswordChanged, u.ID, u.Email)
	return model.Message{Message: msgPasswordUpdated}, nil
}

// DeleteAccount soft-deletes the user under the account lock.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) (model.Message, error) {
	const op = "auth.delete_account"

	email, err := s.users.SoftDelete(ctx, userID, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Message{}, apperr.NotFound(msgDeleteNotFound)
		}
		return model.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	s.evict(ctx, userID)
	s.log.WithFields(logrus.Fields{"user_id": userID}).Info("account deleted")
	s.publish(ctx, queue.EventDeleted, userID, email)
	return model.Message{Message: msgAccountDeleted}, nil
}

func (s *AuthService) signIn(ctx context.Context, u model.User) (model.AuthResult, error) {
	pair, err := s.issue(ctx, u.ID, u.Email)
	if err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{User: u.Public(), TokenPair: pair}, nil
}

// issue signs a pair and persists its refresh token with the same expiry
// the client is told about.
func (s *AuthService) issue(ctx context.Context, userID int64, email string) (model.TokenPair, error) {
	pair, err := s.issuer.IssuePair(userID, email)
	if err != nil {
		return model.TokenPair{}, err
	}
	expiresAt := time.UnixMilli(pair.RefreshTokenExpiresAt).UTC()
	if _, err := s.tokens.Create(ctx, pair.RefreshToken, userID, expiresAt); err != nil {
		return model.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}
