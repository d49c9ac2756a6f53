package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/iliyamo/tutor-accounts/internal/model"
)

const userColumns = "id,name,email,password_hash,role,oauth_id,is_oauth_user,created_at,updated_at,deleted_at"

// UserRepo persists accounts in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u         model.User
		role      string
		oauthID   sql.NullString
		deletedAt sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &oauthID,
		&u.IsOAuthUser, &u.CreatedAt, &u.UpdatedAt, &deletedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if oauthID.Valid {
		u.OAuthID = &oauthID.String
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return u, nil
}

// GetByEmail fetches a user by exact email. Soft-deleted rows are included
// because the unique index on email covers them too.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id, deleted or not.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// Create inserts u and returns it with ID and timestamps filled in. A
// duplicate email yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if u.Role == "" {
		u.Role = model.RoleStudent
	}
	var oauthID sql.NullString
	if u.OAuthID != nil {
		oauthID = sql.NullString{String: *u.OAuthID, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name,email,password_hash,role,oauth_id,is_oauth_user,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?)",
		u.Name, u.Email, u.PasswordHash, string(u.Role), oauthID, u.IsOAuthUser, now, now)
	if err != nil {
		if isDuplicateKey(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	u.ID = id
	u.CreatedAt, u.UpdatedAt = now, now
	u.DeletedAt = nil
	return u, nil
}

// UpdatePassword replaces the stored bcrypt hash. sql.ErrNoRows means the id
// does not exist.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.update(ctx, "UPDATE users SET password_hash=?, updated_at=? WHERE id=?", hash, id)
}

// UpdateName sets the display name and returns the updated row.
func (r *UserRepo) UpdateName(ctx context.Context, id int64, name string) (model.User, error) {
	if err := r.update(ctx, "UPDATE users SET name=?, updated_at=? WHERE id=?", name, id); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) update(ctx context.Context, query string, value any, id int64) error {
	res, err := r.DB.ExecContext(ctx, query, value, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete marks the user deleted and frees its email for re-registration
// by rewriting it to "<epoch millis>_<email>". It returns the original email.
//
// Everything runs in one transaction holding the account's advisory lock, so
// concurrent deletions of the same id are serialised; the loser finds no
// active row and gets sql.ErrNoRows.
func (r *UserRepo) SoftDelete(ctx context.Context, id int64, now time.Time) (email string, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = AcquireAdvisoryLock(ctx, tx, AccountLockKey(id)); err != nil {
		return "", err
	}

	if err = tx.QueryRowContext(ctx,
		"SELECT email FROM users WHERE id=? AND deleted_at IS NULL", id).Scan(&email); err != nil {
		return "", err
	}

	now = now.UTC()
	if _, err = tx.ExecContext(ctx,
		"UPDATE users SET email=?, deleted_at=?, updated_at=? WHERE id=?",
		DeletedEmail(email, now), now, now, id); err != nil {
		return "", err
	}
	if err = tx.Commit(); err != nil {
		return "", err
	}
	return email, nil
}

// DeletedEmail is the address a soft-deleted account is rewritten to.
func DeletedEmail(email string, at time.Time) string {
	return strconv.FormatInt(at.UnixMilli(), 10) + "_" + email
}
