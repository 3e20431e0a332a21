package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"moncash/internal/core"
)

// SessionStore associates opaque tokens with user ids. Implementations must
// expire entries after their TTL.
type SessionStore interface {
	// Create mints a new session token for the user.
	Create(ctx context.Context, userID int64, ttl time.Duration) (string, error)

	// UserID resolves a token. Returns core.ErrUnauthenticated for unknown
	// or expired tokens.
	UserID(ctx context.Context, token string) (int64, error)

	// Destroy invalidates the token unconditionally.
	Destroy(ctx context.Context, token string) error
}

// NewSessionToken returns a 128-bit random token, hex encoded.
func NewSessionToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

type memorySession struct {
	userID    int64
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. Suitable for a
// single-instance deployment; a janitor goroutine sweeps expired entries.
type MemorySessionStore struct {
	mu           sync.Mutex
	sessions     map[string]memorySession
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

var _ SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	s := &MemorySessionStore{
		sessions:    make(map[string]memorySession),
		stopCleanup: make(chan struct{}),
	}
	go s.startCleanup()
	return s
}

func (s *MemorySessionStore) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemorySessionStore) sweepExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
		}
	}
}

// Stop shuts down the janitor goroutine.
func (s *MemorySessionStore) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
	})
}

func (s *MemorySessionStore) Create(_ context.Context, userID int64, ttl time.Duration) (string, error) {
	token, err := NewSessionToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{userID: userID, expiresAt: time.Now().Add(ttl)}
	return token, nil
}

func (s *MemorySessionStore) UserID(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return 0, core.ErrUnauthenticated
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.sessions, token)
		return 0, core.ErrUnauthenticated
	}
	return sess.userID, nil
}

func (s *MemorySessionStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
