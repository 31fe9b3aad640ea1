package extractions

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/pkg/pagination"
)

// System defines the public contract for extraction operations. Access
// follows the parent document: reads need read access to it, creation
// needs write access, and deletion needs ownership of it.
type System interface {
	Handler(apiKeyHeader string) *Handler

	ListByDocument(
		ctx context.Context,
		token string,
		documentID uuid.UUID,
		page pagination.PageRequest,
	) (*pagination.PageResult[Extraction], error)

	Find(ctx context.Context, token string, id uuid.UUID) (*Extraction, error)
	Create(ctx context.Context, token string, documentID uuid.UUID, cmd CreateCommand) (*Extraction, error)
	Delete(ctx context.Context, token string, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}
