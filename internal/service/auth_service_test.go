package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/plant-attendance-api/internal/models"
	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

func seedUser(t *testing.T, f *fakeRouter, username, password string, role models.Role, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	f.tables[store.TableUsers] = append(f.tables[store.TableUsers], store.Row{
		"id": len(f.tables[store.TableUsers]) + 1, "name": username,
		"username": username, "password_hash": string(hash),
		"role": string(role), "active": active,
	})
}

func testAuthService(f *fakeRouter) *AuthService {
	return NewAuthService(f, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "plant-attendance-api",
	})
}

func TestAuthLoginSuccess(t *testing.T) {
	f := newFakeRouter()
	seedUser(t, f, "admin", "admin123", models.RoleAdmin, true)
	svc := testAuthService(f)

	res, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "admin", res.User.Username)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthLoginUsernameIsCaseInsensitive(t *testing.T) {
	f := newFakeRouter()
	seedUser(t, f, "admin", "admin123", models.RoleAdmin, true)
	svc := testAuthService(f)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "ADMIN", Password: "admin123"})
	require.NoError(t, err)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	f := newFakeRouter()
	seedUser(t, f, "admin", "admin123", models.RoleAdmin, true)
	svc := testAuthService(f)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "nope"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthLoginUnknownUser(t *testing.T) {
	f := newFakeRouter()
	svc := testAuthService(f)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	f := newFakeRouter()
	seedUser(t, f, "parked", "secret123", models.RoleHR, false)
	svc := testAuthService(f)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "parked", Password: "secret123"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInactiveAccount))
}

func TestAuthLoginValidation(t *testing.T) {
	svc := testAuthService(newFakeRouter())

	_, err := svc.Login(context.Background(), LoginRequest{Username: "", Password: ""})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	f := newFakeRouter()
	seedUser(t, f, "admin", "admin123", models.RoleAdmin, true)
	svc := testAuthService(f)

	res, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	other := NewAuthService(f, nil, nil, AuthConfig{Secret: "different-secret", Expiration: time.Hour})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
