package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/internal/derive"
	"github.com/JaimeStill/folio/pkg/pagination"
	"github.com/JaimeStill/folio/pkg/render"
)

// System defines the public contract for document domain operations.
// token is the caller's credential; empty is anonymous.
type System interface {
	Handler(apiKeyHeader string, maxUploadSize int64) *Handler

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Document], error)
	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Query(ctx context.Context, lookup Lookup) (*Document, error)
	Count(ctx context.Context) (int, error)

	Create(ctx context.Context, token string, cmd CreateCommand) (*Document, error)
	Delete(ctx context.Context, token string, id uuid.UUID) error

	Content(ctx context.Context, token string, id uuid.UUID) (*derive.Artifact, error)
	Page(ctx context.Context, token string, id uuid.UUID, page int, format render.Format) (*derive.Artifact, error)
	Snippet(
		ctx context.Context,
		token string,
		id uuid.UUID,
		page int,
		bounds render.Rect,
		format render.Format,
	) (*derive.Artifact, error)
}
