package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"moncash/internal/core"
)

func TestMemorySessionLifecycle(t *testing.T) {
	s := NewMemorySessionStore()
	defer s.Stop()
	ctx := context.Background()

	token, err := s.Create(ctx, 42, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	userID, err := s.UserID(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if userID != 42 {
		t.Fatalf("resolved user id = %d", userID)
	}

	if err := s.Destroy(ctx, token); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UserID(ctx, token); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("destroyed token should be unauthenticated, got %v", err)
	}
}

func TestMemorySessionExpiry(t *testing.T) {
	s := NewMemorySessionStore()
	defer s.Stop()
	ctx := context.Background()

	token, err := s.Create(ctx, 7, -time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.UserID(ctx, token); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("expired token should be unauthenticated, got %v", err)
	}
}

func TestUnknownTokenIsUnauthenticated(t *testing.T) {
	s := NewMemorySessionStore()
	defer s.Stop()

	if _, err := s.UserID(context.Background(), "never-issued"); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("unknown token should be unauthenticated, got %v", err)
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewSessionToken()
		if err != nil {
			t.Fatal(err)
		}
		if seen[token] {
			t.Fatal("token collision")
		}
		seen[token] = true
	}
}
