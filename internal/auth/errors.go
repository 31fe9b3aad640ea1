package auth

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrForbidden          = errors.New("not authorized")
	ErrNotOwner           = fmt.Errorf("%w: must own resource", ErrForbidden)
	ErrCredentialNotFound = errors.New("credential not found")
	ErrDuplicate          = errors.New("credential already exists")
)

// MapHTTPStatus maps authorization errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrCredentialNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
