package session

import (
	"context"
	"strings"
)

//go:generate mockgen -source=provider.go -destination=provider_mocks_test.go -package=session

// Profile is the identity the provider vouches for.
type Profile struct {
	UID      string `json:"uid"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL,omitempty"`
}

// IdentityProvider is the external identity collaborator. Sessions
// themselves are ours, the provider only vouches for credentials.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (Profile, error)
	SignUpWithPassword(ctx context.Context, email, password string) (Profile, error)
	// SignInWithFederatedToken exchanges an id token obtained from a
	// federated provider (google) for a verified profile.
	SignInWithFederatedToken(ctx context.Context, idToken string) (Profile, error)
	SendPasswordReset(ctx context.Context, email string) error
}

// AuthError carries the provider error code alongside the message the
// user should see.
type AuthError struct {
	Code string
}

func (e *AuthError) Error() string {
	return MapAuthError(e.Code)
}

// MapAuthError translates provider error codes to user-facing text.
// Unknown codes collapse to a generic failure so internals never leak.
func MapAuthError(code string) string {
	switch {
	case code == "":
		return "Authentication failed."
	case strings.Contains(code, "INVALID_API_KEY"), strings.Contains(code, "API_KEY_INVALID"):
		return "Invalid identity API key."
	case strings.Contains(code, "OPERATION_NOT_ALLOWED"):
		return "Provider not enabled."
	case strings.Contains(code, "EMAIL_EXISTS"):
		return "Email already in use."
	case strings.Contains(code, "WEAK_PASSWORD"):
		return "Password too weak."
	case strings.Contains(code, "INVALID_PASSWORD"),
		strings.Contains(code, "EMAIL_NOT_FOUND"),
		strings.Contains(code, "INVALID_LOGIN_CREDENTIALS"):
		return "Invalid email or password."
	case strings.Contains(code, "USER_DISABLED"):
		return "Account disabled."
	default:
		return "Authentication failed."
	}
}
