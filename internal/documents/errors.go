package documents

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/folio/internal/auth"
	"github.com/JaimeStill/folio/internal/derive"
)

// Domain errors for document operations.
var (
	ErrNotFound      = errors.New("document not found")
	ErrDuplicate     = errors.New("document already exists")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrInvalidFile   = errors.New("invalid file")
	ErrInvalidQuery  = errors.New("must provide external_id or doi")
	ErrUnknownBucket = errors.New("unknown bucket")
	ErrInvalidID     = errors.New("invalid document id")
	ErrInvalidPage   = errors.New("page_num must be a non-negative integer")
)

// MapHTTPStatus maps document, authorization and derivation errors to
// HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrInvalidQuery),
		errors.Is(err, ErrUnknownBucket),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidPage):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	}
	return derive.MapHTTPStatus(err)
}
