package clinic

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoggedIn is returned when an admin endpoint redirects to the login page.
	ErrNotLoggedIn = errors.New("admin session required")
	// ErrInvalidCredentials is returned when the admin login is rejected.
	ErrInvalidCredentials = errors.New("invalid admin credentials")
)

// APIError is a failure reported by the service itself: a response with
// ok=false, or a non-success status without a usable body.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("clinic service (status %d): %s", e.Status, e.Msg)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// ServerMessage returns the message to show for a server-reported failure.
// The second result is false when err is not a server-reported failure.
func ServerMessage(err error, fallback string) (string, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "", false
	}
	if apiErr.Msg != "" {
		return apiErr.Msg, true
	}
	return fallback, true
}
