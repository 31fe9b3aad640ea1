package extractions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/folio/internal/documents"
)

var (
	ErrNotFound          = errors.New("extraction not found")
	ErrInvalidExtraction = errors.New("invalid extraction")
	ErrInvalidID         = errors.New("invalid extraction id")
)

// MapHTTPStatus maps extraction errors to HTTP status codes, deferring to
// the document mapping for parent lookups and authorization.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidExtraction), errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	}
	return documents.MapHTTPStatus(err)
}
