package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/groupcard/internal/models"
	"github.com/mmynk/groupcard/internal/storage"
)

// MinSecretLength is the shortest terminal secret accepted.
const MinSecretLength = 12

var (
	ErrInvalidCredentials = errors.New("invalid terminal id or secret")
	ErrWeakSecret         = fmt.Errorf("secret must be at least %d characters", MinSecretLength)
	ErrMissingName        = errors.New("terminal name is required")
)

// SecretAuthenticator authenticates terminals with a bcrypt-hashed shared secret.
type SecretAuthenticator struct {
	storage storage.TerminalStore
	cost    int
}

// NewSecretAuthenticator creates a shared-secret authenticator.
// cost is the bcrypt cost; values below bcrypt.MinCost use bcrypt.DefaultCost.
func NewSecretAuthenticator(terminals storage.TerminalStore, cost int) *SecretAuthenticator {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &SecretAuthenticator{storage: terminals, cost: cost}
}

// ValidateCredential checks if the secret meets minimum requirements.
func (a *SecretAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinSecretLength {
		return ErrWeakSecret
	}
	return nil
}

// RegisterTerminal creates a terminal with a hashed secret.
func (a *SecretAuthenticator) RegisterTerminal(ctx context.Context, name, credential string) (*models.Terminal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	terminal := &models.Terminal{Name: name, SecretHash: string(hash)}
	if err := a.storage.CreateTerminal(ctx, terminal); err != nil {
		return nil, fmt.Errorf("failed to create terminal: %w", err)
	}
	return terminal, nil
}

// Authenticate verifies the terminal ID and secret.
func (a *SecretAuthenticator) Authenticate(ctx context.Context, terminalID, credential string) (*models.Terminal, error) {
	terminal, err := a.storage.GetTerminal(ctx, terminalID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(terminal.SecretHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return terminal, nil
}
