package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicDropsPasswordHash(t *testing.T) {
	u := User{ID: 7, Name: "Ada", Email: "ada@example.com", PasswordHash: "$2a$10$secret", Role: RoleStudent}

	raw, err := json.Marshal(u.Public())
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "secret")
	assert.Contains(t, string(raw), `"email":"ada@example.com"`)
	assert.Contains(t, string(raw), `"isOAuthUser":false`)
}

func TestAuthResultFlattensTokens(t *testing.T) {
	res := AuthResult{
		User:      PublicUser{ID: 1},
		TokenPair: TokenPair{AccessToken: "a", RefreshToken: "r", AccessTokenExpiresAt: 1, RefreshTokenExpiresAt: 2},
	}
	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "a", m["accessToken"])
	assert.Equal(t, "r", m["refreshToken"])
	assert.Contains(t, m, "user")
	assert.Contains(t, m, "refreshTokenExpiresAt")
}

func TestRefreshTokenUsable(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	deleted := now

	tok := RefreshToken{HasAccess: true, ExpiresAt: now.Add(time.Minute)}
	assert.True(t, tok.Usable(now))

	tok.ExpiresAt = now
	assert.True(t, tok.Usable(now), "expiry equal to now is still usable")

	tok.ExpiresAt = now.Add(-time.Second)
	assert.False(t, tok.Usable(now))

	tok = RefreshToken{HasAccess: false, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, tok.Usable(now))

	tok = RefreshToken{HasAccess: true, ExpiresAt: now.Add(time.Hour), DeletedAt: &deleted}
	assert.False(t, tok.Usable(now))
}
