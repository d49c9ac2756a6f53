package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/tutor-accounts/internal/model"
	"github.com/iliyamo/tutor-accounts/internal/queue"
	"github.com/iliyamo/tutor-accounts/internal/repository"
	"github.com/iliyamo/tutor-accounts/internal/utils"
)

const (
	testAccessSecret  = "access-secret-access-secret-0123"
	testRefreshSecret = "refresh-secret-refresh-secret-01"
)

// fakeUsers mirrors UserRepo: a global unique email, lookups that include
// soft-deleted rows, and SoftDelete serialised per store like the account
// lock serialises it per id.
type fakeUsers struct {
	mu     sync.Mutex
	rows   map[int64]model.User
	nextID int64

	err       error // returned by every call when set
	createErr error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{rows: map[int64]model.User{}} }

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.User{}, f.err
	}
	for _, u := range f.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.User{}, f.err
	}
	u, ok := f.rows[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, u model.User) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.User{}, f.err
	}
	if f.createErr != nil {
		return model.User{}, f.createErr
	}
	for _, existing := range f.rows {
		if existing.Email == u.Email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	f.nextID++
	now := time.Now().UTC()
	u.ID = f.nextID
	u.CreatedAt, u.UpdatedAt = now, now
	f.rows[u.ID] = u
	return u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = hash
	f.rows[id] = u
	return nil
}

func (f *fakeUsers) UpdateName(_ context.Context, id int64, name string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	u.Name = name
	f.rows[id] = u
	return u, nil
}

func (f *fakeUsers) SoftDelete(_ context.Context, id int64, now time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	u, ok := f.rows[id]
	if !ok || u.DeletedAt != nil {
		return "", sql.ErrNoRows
	}
	email := u.Email
	u.Email = repository.DeletedEmail(email, now)
	u.DeletedAt = &now
	f.rows[id] = u
	return email, nil
}

func (f *fakeUsers) get(id int64) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

// fakeTokens returns any stored row from FindValid, revoked or expired, so
// the service's own Usable check is what rejects them.
type fakeTokens struct {
	mu   sync.Mutex
	rows map[string]model.RefreshToken
	err  error
}

func newFakeTokens() *fakeTokens { return &fakeTokens{rows: map[string]model.RefreshToken{}} }

func (f *fakeTokens) Create(_ context.Context, token string, userID int64, expiresAt time.Time) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.RefreshToken{}, f.err
	}
	row := model.RefreshToken{
		ID:        int64(len(f.rows) + 1),
		TokenHash: utils.HashRefreshRaw(token),
		UserID:    userID,
		HasAccess: true,
		ExpiresAt: expiresAt,
	}
	f.rows[row.TokenHash] = row
	return row, nil
}

func (f *fakeTokens) FindValid(_ context.Context, token string) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.RefreshToken{}, f.err
	}
	row, ok := f.rows[utils.HashRefreshRaw(token)]
	if !ok {
		return model.RefreshToken{}, sql.ErrNoRows
	}
	return row, nil
}

func (f *fakeTokens) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, utils.HashRefreshRaw(token))
	return nil
}

func (f *fakeTokens) revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.rows[utils.HashRefreshRaw(token)]
	row.HasAccess = false
	f.rows[row.TokenHash] = row
}

func (f *fakeTokens) has(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[utils.HashRefreshRaw(token)]
	return ok
}

func (f *fakeTokens) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeEvents struct {
	mu     sync.Mutex
	events []queue.AccountEvent
	err    error
}

func (f *fakeEvents) Publish(_ context.Context, ev queue.AccountEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeEvents) types() []queue.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]queue.EventType, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeCache struct {
	mu   sync.Mutex
	rows map[int64]model.PublicUser
}

func newFakeCache() *fakeCache { return &fakeCache{rows: map[int64]model.PublicUser{}} }

func (f *fakeCache) Get(_ context.Context, id int64) (model.PublicUser, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	return u, ok
}

func (f *fakeCache) Set(_ context.Context, u model.PublicUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[u.ID] = u
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

var errStoreDown = errors.New("store unavailable")

type authFixture struct {
	svc    *AuthService
	users  *fakeUsers
	tokens *fakeTokens
	events *fakeEvents
	cache  *fakeCache
	issuer *utils.TokenIssuer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	f := &authFixture{
		users:  newFakeUsers(),
		tokens: newFakeTokens(),
		events: &fakeEvents{},
		cache:  newFakeCache(),
		issuer: utils.NewTokenIssuer(testAccessSecret, testRefreshSecret, 5*time.Minute, 7*24*time.Hour),
	}
	f.svc = NewAuthService(f.users, f.tokens, f.issuer, bcrypt.MinCost,
		WithEvents(f.events), WithCache(f.cache), WithLogger(logger))
	return f
}

// seedPasswordUser inserts a password account directly into the store.
func (f *authFixture) seedPasswordUser(t *testing.T, email, password string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u, err := f.users.Create(context.Background(), model.User{Name: "Seeded", Email: email, PasswordHash: hash, Role: model.RoleStudent})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func (f *authFixture) seedOAuthUser(t *testing.T, email string) model.User {
	t.Helper()
	sub := "google-" + email
	u, err := f.users.Create(context.Background(), model.User{Name: "Seeded", Email: email, OAuthID: &sub, IsOAuthUser: true, Role: model.RoleStudent})
	if err != nil {
		t.Fatal(err)
	}
	return u
}
