package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/tutor-accounts/internal/model"
	"github.com/iliyamo/tutor-accounts/internal/utils"
)

// TokenRepo persists refresh tokens. Callers pass the signed token; only its
// SHA-256 digest reaches the database.
type TokenRepo struct {
	DB  *sql.DB
	now func() time.Time
}

func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{DB: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores a new usable refresh token for userID.
func (r *TokenRepo) Create(ctx context.Context, token string, userID int64, expiresAt time.Time) (model.RefreshToken, error) {
	now := r.now().Truncate(time.Millisecond)
	row := model.RefreshToken{
		TokenHash: utils.HashRefreshRaw(token),
		UserID:    userID,
		HasAccess: true,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token_hash,user_id,has_access,expires_at,created_at,updated_at) VALUES (?,?,?,?,?,?)",
		row.TokenHash, row.UserID, row.HasAccess, row.ExpiresAt, now, now)
	if err != nil {
		return model.RefreshToken{}, err
	}
	if row.ID, err = res.LastInsertId(); err != nil {
		return model.RefreshToken{}, err
	}
	return row, nil
}

// FindValid returns the row for token only while it has access, is not
// soft-deleted and has not expired. Anything else is sql.ErrNoRows.
func (r *TokenRepo) FindValid(ctx context.Context, token string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		`SELECT id,token_hash,user_id,has_access,expires_at,created_at,updated_at
		   FROM refresh_tokens
		  WHERE token_hash=? AND has_access=TRUE AND deleted_at IS NULL AND expires_at >= ?
		  LIMIT 1`,
		utils.HashRefreshRaw(token), r.now()).
		Scan(&t.ID, &t.TokenHash, &t.UserID, &t.HasAccess, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.RefreshToken{}, err
	}
	return t, nil
}

// Delete hard-removes the row for token. Deleting a missing token is not an
// error.
func (r *TokenRepo) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE token_hash=?", utils.HashRefreshRaw(token))
	return err
}
