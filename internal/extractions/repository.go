package extractions

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/internal/auth"
	"github.com/JaimeStill/folio/internal/documents"
	"github.com/JaimeStill/folio/pkg/pagination"
	"github.com/JaimeStill/folio/pkg/query"
	"github.com/JaimeStill/folio/pkg/repository"
)

type repo struct {
	db         *sql.DB
	docs       documents.System
	gate       auth.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an extraction repository implementing the System interface.
func New(
	db *sql.DB,
	docs documents.System,
	gate auth.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		docs:       docs,
		gate:       gate,
		logger:     logger.With("system", "extractions"),
		pagination: pagination,
	}
}

func (r *repo) Handler(apiKeyHeader string) *Handler {
	return NewHandler(r, r.logger, r.pagination, apiKeyHeader)
}

func (r *repo) ListByDocument(
	ctx context.Context,
	token string,
	documentID uuid.UUID,
	page pagination.PageRequest,
) (*pagination.PageResult[Extraction], error) {
	doc, err := r.docs.Find(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := r.gate.AuthorizeRead(ctx, doc.Resource(), token); err != nil {
		return nil, err
	}

	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereEquals("DocumentID", documentID).
		WhereContains("Label", page.Search)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryCount(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count extractions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PerPage)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanExtraction)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PerPage)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, token string, id uuid.UUID) (*Extraction, error) {
	e, doc, err := r.findWithParent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.gate.AuthorizeRead(ctx, doc.Resource(), token); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repo) Create(ctx context.Context, token string, documentID uuid.UUID, cmd CreateCommand) (*Extraction, error) {
	if _, err := r.gate.AuthorizeWrite(ctx, token); err != nil {
		return nil, err
	}

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := r.docs.Find(ctx, documentID); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO extractions(id, document_id, category, label, score, page_num, x0, y0, x1, y1, data, path, url, registered_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, document_id, category, label, score, page_num, x0, y0, x1, y1, data, path, url, registered_by, created_at`

	args := []any{
		uuid.New(),
		documentID,
		strings.TrimSpace(cmd.Category),
		strings.TrimSpace(cmd.Label),
		cmd.Score,
		cmd.Page,
	}
	args = append(args, bboxArgs(cmd.BBox)...)
	args = append(args, dataArg(cmd), nonEmpty(cmd.Path), nonEmpty(cmd.URL), token)

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Extraction, error) {
		return repository.QueryOne(ctx, tx, q, args, scanExtraction)
	})
	if err != nil {
		return nil, repository.MapError(err, extractionErrors)
	}

	r.logger.Info("extraction created", "id", e.ID, "document_id", e.DocumentID, "category", e.Category)
	return &e, nil
}

func (r *repo) Delete(ctx context.Context, token string, id uuid.UUID) error {
	_, doc, err := r.findWithParent(ctx, id)
	if err != nil {
		return err
	}

	if _, err := r.gate.AuthorizeOwner(ctx, doc.Resource(), token); err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM extractions WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, extractionErrors)
	}

	r.logger.Info("extraction deleted", "id", id, "document_id", doc.ID)
	return nil
}

func (r *repo) Count(ctx context.Context) (int, error) {
	q, args := query.NewBuilder(projection).BuildCount()

	n, err := repository.QueryCount(ctx, r.db, q, args)
	if err != nil {
		return 0, fmt.Errorf("count extractions: %w", err)
	}
	return n, nil
}

func (r *repo) findWithParent(ctx context.Context, id uuid.UUID) (*Extraction, *documents.Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanExtraction)
	if err != nil {
		return nil, nil, repository.MapError(err, extractionErrors)
	}

	doc, err := r.docs.Find(ctx, e.DocumentID)
	if err != nil {
		return nil, nil, err
	}
	return &e, doc, nil
}

func nonEmpty(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
