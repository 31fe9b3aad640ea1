package derive

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/folio/pkg/render"
)

var (
	ErrSourceNotFound = errors.New("source document not found")
	ErrGeneration     = errors.New("artifact generation failed")
	ErrStore          = errors.New("blob store failure")
	ErrInvalidBounds  = errors.New("invalid snippet bounds")
	ErrInvalidRequest = errors.New("invalid derivation request")
)

// MapHTTPStatus maps derivation errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidBounds),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, render.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrGeneration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrStore):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
