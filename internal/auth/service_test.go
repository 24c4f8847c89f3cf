package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/widya-sms/widya-sms/internal/shared"
)

type fakeRepo struct {
	users    map[string]*User
	sessions map[string]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[string]*User),
		sessions: make(map[string]int64),
	}
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (f *fakeRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	f.sessions[id] = userID
	return nil
}

func (f *fakeRepo) DeleteSession(ctx context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

var _ Repository = (*fakeRepo)(nil)

func addUser(t *testing.T, repo *fakeRepo, email, password, role string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users[email] = &User{
		ID:           int64(len(repo.users) + 1),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     active,
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeRepo()
	addUser(t, repo, "admin@widya.local", "rahasia", "admin", true)
	addUser(t, repo, "bekas@widya.local", "rahasia", "teacher", false)
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "admin@widya.local", "rahasia")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)

	_, err = svc.Authenticate(ctx, "admin@widya.local", "salah")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "tidak-ada@widya.local", "rahasia")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "bekas@widya.local", "rahasia")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.RegisterSession(ctx, "sess-1", 7, time.Now().Add(time.Hour), "10.0.0.1", "test-agent"))
	assert.Equal(t, int64(7), repo.sessions["sess-1"])

	require.NoError(t, svc.RemoveSession(ctx, "sess-1"))
	assert.NotContains(t, repo.sessions, "sess-1")
}
