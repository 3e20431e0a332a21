// Package services orchestrates the ledger's use cases over the storage
// ports. Handlers call into this package only; no HTTP types leak in here.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"moncash/internal/auth"
	"moncash/internal/core"
	"moncash/internal/store"
)

// AuthService is the authentication gate: registration, credential and
// federated login, session resolution and profile updates.
type AuthService struct {
	users      store.UserRepository
	sessions   auth.SessionStore
	verifier   auth.GoogleVerifier
	sessionTTL time.Duration
}

func NewAuthService(users store.UserRepository, sessions auth.SessionStore, verifier auth.GoogleVerifier, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		verifier:   verifier,
		sessionTTL: sessionTTL,
	}
}

// Register creates a new user with a bcrypt password hash. All three fields
// are required; the email must be unused.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (core.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return core.User{}, core.ErrInvalidInput
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, err
	}

	user, err := s.users.CreateUser(ctx, core.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		return core.User{}, err
	}
	return user, nil
}

// Login verifies credentials and establishes a session. Unknown email and
// wrong password stay distinguishable to the client.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, core.User, error) {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		return "", core.User{}, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", core.User{}, core.ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return "", core.User{}, fmt.Errorf("create session: %w", err)
	}
	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return token, user, nil
}

// LoginWithGoogle verifies a Google ID token, reusing the account with the
// token's email or provisioning one with a random unusable password.
func (s *AuthService) LoginWithGoogle(ctx context.Context, credential string) (string, core.User, error) {
	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return "", core.User{}, err
	}

	user, err := s.users.UserByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		// Existing account, reuse it.
	case err == core.ErrUserNotFound:
		password, rerr := auth.RandomPassword()
		if rerr != nil {
			return "", core.User{}, rerr
		}
		hash, herr := auth.HashPassword(password)
		if herr != nil {
			return "", core.User{}, herr
		}
		user, err = s.users.CreateUser(ctx, core.User{
			Name:         identity.Name,
			Email:        identity.Email,
			PasswordHash: hash,
		})
		if err != nil {
			return "", core.User{}, err
		}
		slog.InfoContext(ctx, "user auto-provisioned from google login", "user_id", user.ID)
	default:
		return "", core.User{}, err
	}

	token, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return "", core.User{}, fmt.Errorf("create session: %w", err)
	}
	return token, user, nil
}

// Logout invalidates the session unconditionally.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// SessionUserID resolves a session token to its user id without touching
// the user store. The HTTP gate calls this on every protected request.
func (s *AuthService) SessionUserID(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, core.ErrUnauthenticated
	}
	return s.sessions.UserID(ctx, token)
}

// CurrentUser resolves a session token to its user. Protected operations
// call this before touching any store.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (core.User, error) {
	if token == "" {
		return core.User{}, core.ErrUnauthenticated
	}
	userID, err := s.sessions.UserID(ctx, token)
	if err != nil {
		return core.User{}, err
	}
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		// Session points at a deleted user; treat as unauthenticated.
		return core.User{}, core.ErrUnauthenticated
	}
	return user, nil
}

// UpdateProfile replaces name, email and phone for the user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name, email, phone string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return core.ErrInvalidInput
	}
	return s.users.UpdateProfile(ctx, userID, name, email, phone)
}
