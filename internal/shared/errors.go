package shared

import "errors"

var (
	// ErrNotFound indicates a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller lacks permission.
	ErrForbidden = errors.New("forbidden")
)

// userSafe marks errors whose message may be shown to API clients verbatim.
type userSafe interface {
	UserSafe() bool
}

// IsUserSafe reports whether the error message is safe to expose to callers.
func IsUserSafe(err error) bool {
	var marker userSafe
	return errors.As(err, &marker) && marker.UserSafe()
}

type safeError struct {
	msg string
}

func (e *safeError) Error() string  { return e.msg }
func (e *safeError) UserSafe() bool { return true }

// Safe wraps a client-facing message into an error that RespondError will
// forward verbatim instead of masking as an internal error.
func Safe(msg string) error {
	return &safeError{msg: msg}
}
