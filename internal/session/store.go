package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"soin-client/internal/api"
	"soin-client/internal/models"
	"soin-client/pkg/utils"
)

var (
	// ErrNotLoggedIn is returned by operations that need a session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// AuthClient is the slice of the API client the session store needs.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, profile api.RegisterRequest) (*api.AuthResponse, error)
	Me(ctx context.Context, token string) (*models.Identity, error)
}

// Store is the single source of truth for who is logged in. It owns the
// durable token and hands it out per request; nothing else touches it.
type Store struct {
	client   AuthClient
	tokens   TokenStore
	logger   *log.Logger
	identity *models.Identity
	token    string
}

// New wires a session store to an auth client and a token store.
func New(client AuthClient, tokens TokenStore) *Store {
	return &Store{
		client: client,
		tokens: tokens,
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger enables diagnostics for restore decisions.
func (s *Store) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Restore attempts to resume a previous session from the durable token.
// It never surfaces an auth or network failure to the caller: any such
// failure just leaves the session logged out. A token the server
// rejected is cleared; a token we could not reach the server to check
// stays put for the next launch. Must complete before the first access
// gate decision.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.tokens.Load()
	if err != nil {
		return fmt.Errorf("session: load token: %w", err)
	}
	if token == "" {
		return nil
	}

	if utils.TokenExpired(token) {
		s.logger.Println("restore: stored token expired, clearing")
		return s.tokens.Clear()
	}

	identity, err := s.client.Me(ctx, token)
	if err != nil {
		if api.IsAuthError(err) {
			s.logger.Println("restore: server rejected stored token, clearing")
			return s.tokens.Clear()
		}
		// Network or server fault: keep the token, stay logged out.
		s.logger.Printf("restore: could not verify token: %v", err)
		return nil
	}

	s.token = token
	s.identity = identity
	return nil
}

// Login authenticates and establishes the session. On failure the
// session state is untouched and the server's reason is returned.
func (s *Store) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(res)
}

// Register creates an account and establishes the session. A doctor
// registration yields a pending identity that the access gate keeps off
// the doctor dashboard until approval.
func (s *Store) Register(ctx context.Context, profile api.RegisterRequest) (*models.Identity, error) {
	res, err := s.client.Register(ctx, profile)
	if err != nil {
		return nil, err
	}
	return s.establish(res)
}

func (s *Store) establish(res *api.AuthResponse) (*models.Identity, error) {
	if err := s.tokens.Save(res.AccessToken); err != nil {
		return nil, fmt.Errorf("session: persist token: %w", err)
	}
	s.token = res.AccessToken
	identity := res.User
	s.identity = &identity
	return s.identity, nil
}

// Logout clears the durable token and the in-memory identity. No
// network call is made; the identity is cleared even if the token file
// could not be removed.
func (s *Store) Logout() error {
	s.token = ""
	s.identity = nil
	if err := s.tokens.Clear(); err != nil {
		return fmt.Errorf("session: clear token: %w", err)
	}
	return nil
}

// Current returns the logged-in identity, or nil.
func (s *Store) Current() *models.Identity {
	return s.identity
}

// Token returns the bearer token for the current session, or "".
func (s *Store) Token() string {
	return s.token
}

// LoggedIn reports whether a session is established.
func (s *Store) LoggedIn() bool {
	return s.identity != nil
}
