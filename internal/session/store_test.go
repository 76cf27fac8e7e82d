package session

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soin-client/internal/api"
	"soin-client/internal/models"
	"soin-client/pkg/utils"
)

// Compile-time check that the mock satisfies the session's contract.
var _ AuthClient = (*MockAuthClient)(nil)

// MockAuthClient is a func-field mock of the API client surface the
// session store touches.
type MockAuthClient struct {
	LoginFunc    func(ctx context.Context, email, password string) (*api.AuthResponse, error)
	RegisterFunc func(ctx context.Context, profile api.RegisterRequest) (*api.AuthResponse, error)
	MeFunc       func(ctx context.Context, token string) (*models.Identity, error)

	MeCallCount int
}

func (m *MockAuthClient) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, errors.New("LoginFunc not implemented in mock")
}

func (m *MockAuthClient) Register(ctx context.Context, profile api.RegisterRequest) (*api.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, profile)
	}
	return nil, errors.New("RegisterFunc not implemented in mock")
}

func (m *MockAuthClient) Me(ctx context.Context, token string) (*models.Identity, error) {
	m.MeCallCount++
	if m.MeFunc != nil {
		return m.MeFunc(ctx, token)
	}
	return nil, errors.New("MeFunc not implemented in mock")
}

func newTestStore(t *testing.T, client AuthClient) (*Store, *FileTokenStore) {
	t.Helper()
	tokens := NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
	return New(client, tokens), tokens
}

func signedToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token, err := utils.GenerateToken("u1", "patient", "test-secret", ttl)
	require.NoError(t, err)
	return token
}

func TestRestoreNoToken(t *testing.T) {
	store, _ := newTestStore(t, &MockAuthClient{})
	assert.NoError(t, store.Restore(context.Background()))
	assert.False(t, store.LoggedIn())
	assert.Nil(t, store.Current())
}

func TestRestoreExpiredTokenClearsStorage(t *testing.T) {
	mock := &MockAuthClient{}
	store, tokens := newTestStore(t, mock)
	require.NoError(t, tokens.Save(signedToken(t, -time.Hour)))

	assert.NoError(t, store.Restore(context.Background()))
	assert.False(t, store.LoggedIn())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, stored, "expired token must be cleared")
	assert.Zero(t, mock.MeCallCount, "no network call for a locally expired token")
}

func TestRestoreRejectedTokenClearsStorage(t *testing.T) {
	mock := &MockAuthClient{
		MeFunc: func(ctx context.Context, token string) (*models.Identity, error) {
			return nil, &api.Error{StatusCode: http.StatusUnauthorized, Detail: "Invalid or expired token"}
		},
	}
	store, tokens := newTestStore(t, mock)
	require.NoError(t, tokens.Save(signedToken(t, time.Hour)))

	assert.NoError(t, store.Restore(context.Background()))
	assert.False(t, store.LoggedIn())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRestoreNetworkFailureKeepsToken(t *testing.T) {
	mock := &MockAuthClient{
		MeFunc: func(ctx context.Context, token string) (*models.Identity, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}
	store, tokens := newTestStore(t, mock)
	token := signedToken(t, time.Hour)
	require.NoError(t, tokens.Save(token))

	assert.NoError(t, store.Restore(context.Background()))
	assert.False(t, store.LoggedIn())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, token, stored, "an unverifiable token stays for the next launch")
}

func TestRestoreEstablishesSession(t *testing.T) {
	identity := &models.Identity{ID: "u1", Name: "Ann Lee", Email: "ann@example.com", Role: models.RolePatient}
	mock := &MockAuthClient{
		MeFunc: func(ctx context.Context, token string) (*models.Identity, error) {
			return identity, nil
		},
	}
	store, tokens := newTestStore(t, mock)
	token := signedToken(t, time.Hour)
	require.NoError(t, tokens.Save(token))

	assert.NoError(t, store.Restore(context.Background()))
	assert.True(t, store.LoggedIn())
	assert.Equal(t, identity, store.Current())
	assert.Equal(t, token, store.Token())
}

func TestLoginSuccessPersistsToken(t *testing.T) {
	mock := &MockAuthClient{
		LoginFunc: func(ctx context.Context, email, password string) (*api.AuthResponse, error) {
			return &api.AuthResponse{
				AccessToken: "tok-123",
				User:        models.Identity{ID: "u1", Email: email, Role: models.RolePatient},
			}, nil
		},
	}
	store, tokens := newTestStore(t, mock)

	identity, err := store.Login(context.Background(), "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, identity.Role)
	assert.Equal(t, "tok-123", store.Token())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", stored)
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	mock := &MockAuthClient{
		LoginFunc: func(ctx context.Context, email, password string) (*api.AuthResponse, error) {
			return nil, &api.Error{StatusCode: http.StatusUnauthorized, Detail: "Invalid email or password"}
		},
	}
	store, tokens := newTestStore(t, mock)

	_, err := store.Login(context.Background(), "ann@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", api.Reason(err, ""))
	assert.False(t, store.LoggedIn())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRegisterDoctorYieldsPendingIdentity(t *testing.T) {
	mock := &MockAuthClient{
		RegisterFunc: func(ctx context.Context, profile api.RegisterRequest) (*api.AuthResponse, error) {
			return &api.AuthResponse{
				AccessToken: "tok-456",
				User: models.Identity{
					ID:             "d1",
					Name:           profile.Name,
					Email:          profile.Email,
					Role:           profile.Role,
					ApprovalStatus: models.ApprovalPending,
				},
			}, nil
		},
	}
	store, _ := newTestStore(t, mock)

	identity, err := store.Register(context.Background(), api.RegisterRequest{
		Email: "doc@example.com", Password: "secret1", Name: "Dr. Who", Role: models.RoleDoctor,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, identity.ApprovalStatus)
	assert.False(t, identity.IsApprovedDoctor())
}

func TestLogoutClearsEverything(t *testing.T) {
	mock := &MockAuthClient{
		LoginFunc: func(ctx context.Context, email, password string) (*api.AuthResponse, error) {
			return &api.AuthResponse{AccessToken: "tok", User: models.Identity{ID: "u1"}}, nil
		},
	}
	store, tokens := newTestStore(t, mock)
	_, err := store.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	assert.NoError(t, store.Logout())
	assert.False(t, store.LoggedIn())
	assert.Empty(t, store.Token())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)

	// Logging out twice is fine.
	assert.NoError(t, store.Logout())
}
