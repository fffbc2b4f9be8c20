package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/mmynk/groupcard/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	terminal := &models.Terminal{ID: "term-1", Name: "Register 1"}

	token, err := m.Generate(terminal)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.TerminalID != "term-1" || claims.TerminalName != "Register 1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.Subject != "term-1" {
		t.Errorf("expected subject term-1, got %q", claims.Subject)
	}
}

func TestJWTValidateRejects(t *testing.T) {
	terminal := &models.Terminal{ID: "term-1", Name: "Register 1"}
	m := NewJWTManager("test-secret", time.Hour)

	expired := NewJWTManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Generate(terminal)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	otherKey, err := NewJWTManager("other-secret", time.Hour).Generate(terminal)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expiredToken},
		{"wrong key", otherKey},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
