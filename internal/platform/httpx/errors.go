package httpx

import (
	"errors"
	"net/http"

	"github.com/granary/granary/internal/shared"
)

// RespondError maps domain errors onto the response envelope. Business
// failures (not found, insufficient stock, bad input) surface their message
// with success=false; anything unrecognised becomes an opaque 500.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthorized):
		Deny(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Deny(w, http.StatusForbidden, err.Error())
	case shared.IsUserSafe(err):
		Fail(w, err.Error())
	default:
		Deny(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
