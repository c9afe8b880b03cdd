// Copyright (c) 2026 CLinCoDa. All rights reserved.

package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/apperr"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/sec"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/users"
)

// fakeDirectory is a map-backed UserDirectory for service tests.
type fakeDirectory struct {
	accounts map[int]users.User
}

func (f *fakeDirectory) UserByID(id int) (users.User, bool) {
	u, found := f.accounts[id]
	return u, found
}

func (f *fakeDirectory) UserByUsername(username string) (users.User, bool) {
	for _, u := range f.accounts {
		if u.Username == username {
			return u, true
		}
	}
	return users.User{}, false
}

func (f *fakeDirectory) Users() []users.User {
	all := make([]users.User, 0, len(f.accounts))
	for _, u := range f.accounts {
		all = append(all, u)
	}
	return all
}

func (f *fakeDirectory) UpdateUser(id int, patch users.Patch) (users.User, bool, error) {
	u, found := f.accounts[id]
	if !found {
		return users.User{}, false, nil
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	f.accounts[id] = u
	return u, true, nil
}

func (f *fakeDirectory) RecordUserLogin(id int, record users.LoginRecord) (bool, error) {
	u, found := f.accounts[id]
	if !found {
		return false, nil
	}
	u.LoginHistory = append(u.LoginHistory, record)
	if record.Success {
		loginDate := record.LoginDate
		u.LastLogin = &loginDate
	}
	f.accounts[id] = u
	return true, nil
}

// fakeTokens issues a canned token without touching RSA keys.
type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(int, string, string, time.Duration) (string, error) {
	return "signed.jwt.token", nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func newFixture(t *testing.T) (*Service, *fakeDirectory) {
	t.Helper()
	directory := &fakeDirectory{accounts: map[int]users.User{
		1: {
			ID:           1,
			Username:     "jperez",
			Email:        "jperez@sgpi.edu",
			PasswordHash: hashOf(t, "correct-horse-battery"),
			Role:         users.RoleDocente,
			Status:       users.StatusActivo,
		},
		2: {
			ID:           2,
			Username:     "baja2024",
			Email:        "baja@sgpi.edu",
			PasswordHash: hashOf(t, "correct-horse-battery"),
			Role:         users.RoleDocente,
			Status:       users.StatusInactivo,
		},
	}}

	service := NewService(directory, NewMemoryResetTokenRepository(), fakeTokens{}, slog.New(slog.DiscardHandler))
	return service, directory
}

func TestAuthenticate_Success(t *testing.T) {
	service, directory := newFixture(t)

	summary, err := service.Authenticate(context.Background(), "jperez", "correct-horse-battery",
		ClientMeta{IPAddress: "10.0.0.5", UserAgent: "Mozilla/5.0 (X11; Linux x86_64) Firefox/122.0"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ID)
	assert.Equal(t, "jperez", summary.Username)

	stored := directory.accounts[1]
	require.NotNil(t, stored.LastLogin, "success stamps last_login")
	require.Len(t, stored.LoginHistory, 1)
	assert.True(t, stored.LoginHistory[0].Success)
	assert.Equal(t, "Firefox", stored.LoginHistory[0].Browser)
	assert.Equal(t, "10.0.0.5", stored.LoginHistory[0].IPAddress)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	service, _ := newFixture(t)

	_, err := service.Authenticate(context.Background(), "fantasma", "whatever", ClientMeta{})
	require.Error(t, err)
	assert.Equal(t, "USER_NOT_FOUND", apperr.As(err).Code)
}

func TestAuthenticate_InactiveBeatsWrongPassword(t *testing.T) {
	service, directory := newFixture(t)

	// Even with the wrong password, an inactive account reports inactivity.
	_, err := service.Authenticate(context.Background(), "baja2024", "wrong", ClientMeta{})
	require.Error(t, err)
	assert.Equal(t, "USER_INACTIVE", apperr.As(err).Code)

	stored := directory.accounts[2]
	require.Len(t, stored.LoginHistory, 1)
	assert.Equal(t, FailureUserInactive, stored.LoginHistory[0].FailureReason)
	assert.Nil(t, stored.LastLogin)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	service, directory := newFixture(t)

	_, err := service.Authenticate(context.Background(), "jperez", "incorrecta", ClientMeta{})
	require.Error(t, err)
	assert.Equal(t, "INVALID_PASSWORD", apperr.As(err).Code)

	stored := directory.accounts[1]
	assert.Nil(t, stored.LastLogin, "failed attempt never stamps last_login")
	require.Len(t, stored.LoginHistory, 1)
	assert.False(t, stored.LoginHistory[0].Success)
	assert.Equal(t, FailureInvalidPassword, stored.LoginHistory[0].FailureReason)
}

func TestLogin_IssuesToken(t *testing.T) {
	service, _ := newFixture(t)

	session, err := service.Login(context.Background(), "jperez", "correct-horse-battery", ClientMeta{})
	require.NoError(t, err)

	assert.Equal(t, "signed.jwt.token", session.AccessToken)
	assert.Positive(t, session.ExpiresIn)
	assert.Equal(t, "jperez", session.User.Username)
}

func TestChangePassword(t *testing.T) {
	service, directory := newFixture(t)

	err := service.ChangePassword(context.Background(), 1, "incorrecta", "nueva-clave-larga")
	require.Error(t, err)
	assert.Equal(t, "INVALID_PASSWORD", apperr.As(err).Code)

	err = service.ChangePassword(context.Background(), 1, "correct-horse-battery", "corta")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	err = service.ChangePassword(context.Background(), 1, "correct-horse-battery", "nueva-clave-larga")
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("nueva-clave-larga", directory.accounts[1].PasswordHash))
}

func TestPasswordResetFlow(t *testing.T) {
	service, directory := newFixture(t)
	ctx := context.Background()

	// Unknown email: silent no-op.
	token, err := service.RequestPasswordReset(ctx, "nadie@sgpi.edu")
	require.NoError(t, err)
	assert.Empty(t, token)

	token, err = service.RequestPasswordReset(ctx, "jperez@sgpi.edu")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	err = service.ResetPassword(ctx, token, "clave-recuperada-1")
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("clave-recuperada-1", directory.accounts[1].PasswordHash))

	// Single use: the same token no longer resolves.
	err = service.ResetPassword(ctx, token, "otra-clave-larga")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestMemoryResetTokenRepository_Expiry(t *testing.T) {
	repo := NewMemoryResetTokenRepository()
	base := time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)
	current := base
	repo.now = func() time.Time { return current }

	require.NoError(t, repo.Set(context.Background(), "tok", 1, 30*time.Minute))

	userID, err := repo.Get(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, userID)

	current = base.Add(31 * time.Minute)
	_, err = repo.Get(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
