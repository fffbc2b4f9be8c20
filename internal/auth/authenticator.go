// Package auth authenticates merchant terminals: shared-secret credentials
// and the JWT sessions issued after login.
package auth

import (
	"context"

	"github.com/mmynk/groupcard/internal/models"
)

// Authenticator registers and verifies merchant terminals.
// Implementations can swap the credential scheme (shared secret, mTLS
// certificate fingerprint, API key) without touching the service layer.
type Authenticator interface {
	// RegisterTerminal creates a terminal holding the given credential.
	RegisterTerminal(ctx context.Context, name, credential string) (*models.Terminal, error)

	// Authenticate verifies the terminal's credential and returns the terminal.
	Authenticate(ctx context.Context, terminalID, credential string) (*models.Terminal, error)

	// ValidateCredential checks the credential against the scheme's rules.
	ValidateCredential(credential string) error
}
