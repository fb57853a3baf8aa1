package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/storage/memory"
)

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(memory.New(), bcrypt.MinCost)

	user, err := a.Register(ctx, "  Alice@Example.com ", "Alice", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}

	tests := []struct {
		name     string
		email    string
		display  string
		password string
		wantErr  error
	}{
		{"duplicate email", "ALICE@example.com", "Other", "password123", ErrEmailExists},
		{"weak password", "bob@example.com", "Bob", "short", ErrWeakPassword},
		{"missing display name", "carol@example.com", " ", "password123", ErrMissingProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.email, tt.display, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := a.Authenticate(ctx, "alice@example.com", "correct-horse"); err != nil {
		t.Errorf("Authenticate failed: %v", err)
	}
	if _, err := a.Authenticate(ctx, "alice@example.com", "wrong-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "whatever1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestJWTManager(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(memory.New(), bcrypt.MinCost)
	user, _ := a.Register(ctx, "dave@example.com", "Dave", "password123")

	m := NewJWTManager("test-secret", time.Hour)
	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := NewJWTManager("other-secret", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
