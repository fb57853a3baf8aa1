package auth

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// Services depend on this interface so the credential scheme can change
// without touching them.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	// Returns ErrEmailExists when the email is taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
