package utils // package utils provides helpers for token issuing and hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/tutor-accounts/internal/model"
)

var (
	// ErrTokenExpired is returned by Verify when the signature is valid but
	// the exp claim has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other verification failure: bad
	// signature, wrong algorithm, malformed token or missing claims.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the payload embedded in both access and refresh tokens.
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	UUID  string `json:"uuid"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 tokens. Access and refresh tokens use
// independent secrets and lifetimes, fixed at construction.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// IssuerOption customises a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithClock replaces the issuer's time source.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) { i.now = now }
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...IssuerOption) *TokenIssuer {
	i := &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// AccessSecret and RefreshSecret expose the keys for Verify.
func (i *TokenIssuer) AccessSecret() []byte  { return i.accessSecret }
func (i *TokenIssuer) RefreshSecret() []byte { return i.refreshSecret }

// IssueAccess signs an access token for the user.
func (i *TokenIssuer) IssueAccess(userID int64, email string) (string, error) {
	return i.sign(i.accessSecret, userID, email, i.now().UTC(), i.accessTTL)
}

// IssueRefresh signs a refresh token for the user.
func (i *TokenIssuer) IssueRefresh(userID int64, email string) (string, error) {
	return i.sign(i.refreshSecret, userID, email, i.now().UTC(), i.refreshTTL)
}

// IssuePair signs both tokens and computes their reported expiry timestamps
// from one instant so the signed exp claims and the returned values agree.
func (i *TokenIssuer) IssuePair(userID int64, email string) (model.TokenPair, error) {
	now := i.now().UTC()

	access, err := i.sign(i.accessSecret, userID, email, now, i.accessTTL)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, err := i.sign(i.refreshSecret, userID, email, now, i.refreshTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	accessExp, refreshExp := i.ExpiryTimestamps(now)
	return model.TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

// ExpiryTimestamps returns now+accessTTL and now+refreshTTL in epoch
// milliseconds.
func (i *TokenIssuer) ExpiryTimestamps(now time.Time) (accessExpiresAt, refreshExpiresAt int64) {
	return now.Add(i.accessTTL).UnixMilli(), now.Add(i.refreshTTL).UnixMilli()
}

func (i *TokenIssuer) sign(secret []byte, userID int64, email string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		ID:    userID,
		Email: email,
		UUID:  uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and exp claim of token against secret. It
// returns ErrTokenExpired or ErrTokenInvalid on failure.
func (i *TokenIssuer) Verify(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid || claims.ID == 0 || claims.Email == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyAccess verifies an access token.
func (i *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return i.Verify(token, i.accessSecret)
}

// VerifyRefresh verifies a refresh token.
func (i *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return i.Verify(token, i.refreshSecret)
}

// HashRefreshRaw returns the SHA-256 hash of the refresh token as a hex
// string. Only this digest is persisted.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
