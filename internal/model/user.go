package model

import "time"

// Role is the account role stored in users.role. No logic in this service
// branches on it yet; it is carried for the platform's other services.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleAdmin   Role = "admin"
)

// User represents a row of the `users` table.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Email        – globally unique email; rewritten on soft delete.
//	PasswordHash – bcrypt hash; empty for OAuth-only accounts.
//	Role         – student, tutor or admin.
//	OAuthID      – provider subject for OAuth accounts (nullable).
//	IsOAuthUser  – true when the account signs in through Google.
//	DeletedAt    – soft delete timestamp (nullable).
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	OAuthID      *string
	IsOAuthUser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// PublicUser is the sanitized form of User returned to clients.
type PublicUser struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	OAuthID     *string    `json:"oauthId"`
	IsOAuthUser bool       `json:"isOAuthUser"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
}

// Public strips the password hash.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		OAuthID:     u.OAuthID,
		IsOAuthUser: u.IsOAuthUser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		DeletedAt:   u.DeletedAt,
	}
}

// RefreshToken models an entry in the `refresh_tokens` table. The signed
// token itself is not stored; only its SHA-256 hex digest.
//
// Fields:
//
//	ID        – primary key identifier.
//	TokenHash – SHA-256 hex digest of the token value (unique).
//	UserID    – owner of the token, cascades on user delete.
//	HasAccess – cleared to revoke without deleting the row.
//	ExpiresAt – storage-side expiry of the token.
type RefreshToken struct {
	ID        int64
	TokenHash string
	UserID    int64
	HasAccess bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Usable reports whether the row may still be exchanged at now.
func (t RefreshToken) Usable(now time.Time) bool {
	return t.HasAccess && t.DeletedAt == nil && !t.ExpiresAt.Before(now)
}
