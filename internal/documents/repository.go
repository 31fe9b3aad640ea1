package documents

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/internal/auth"
	"github.com/JaimeStill/folio/internal/derive"
	"github.com/JaimeStill/folio/pkg/pagination"
	"github.com/JaimeStill/folio/pkg/query"
	"github.com/JaimeStill/folio/pkg/render"
	"github.com/JaimeStill/folio/pkg/repository"
	"github.com/JaimeStill/folio/pkg/storage"
)

const doiResolver = "https://doi.org/"

type repo struct {
	db         *sql.DB
	store      storage.System
	buckets    *storage.Config
	backend    render.Backend
	gate       auth.System
	deriver    derive.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
// buckets supplies the allowed upload buckets and the public bucket.
func New(
	db *sql.DB,
	store storage.System,
	buckets *storage.Config,
	backend render.Backend,
	gate auth.System,
	deriver derive.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		store:      store,
		buckets:    buckets,
		backend:    backend,
		gate:       gate,
		deriver:    deriver,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler(apiKeyHeader string, maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, apiKeyHeader, maxUploadSize)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereContains("Title", page.Search)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryCount(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PerPage)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	for i := range docs {
		r.decorate(&docs[i])
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PerPage)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, documentErrors)
	}
	r.decorate(&d)
	return &d, nil
}

func (r *repo) Query(ctx context.Context, lookup Lookup) (*Document, error) {
	if lookup.Empty() {
		return nil, ErrInvalidQuery
	}

	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("ExternalID", lookup.ExternalID).
		WhereEquals("DOI", lookup.DOI).
		BuildFirst()

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, documentErrors)
	}
	r.decorate(&d)
	return &d, nil
}

func (r *repo) Count(ctx context.Context) (int, error) {
	q, args := query.NewBuilder(projection).BuildCount()

	n, err := repository.QueryCount(ctx, r.db, q, args)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (r *repo) Create(ctx context.Context, token string, cmd CreateCommand) (*Document, error) {
	if _, err := r.gate.AuthorizeWrite(ctx, token); err != nil {
		return nil, err
	}

	if err := r.validate(cmd); err != nil {
		return nil, err
	}

	width, height, pages, err := r.measure(cmd.Data)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := derive.SourceKey(id.String())

	if err := r.store.Put(ctx, cmd.Bucket, key, cmd.Data, render.FormatPDF.ContentType()); err != nil {
		return nil, fmt.Errorf("%w: upload %s: %w", derive.ErrStore, key, err)
	}

	q := `
		INSERT INTO documents(id, title, external_id, doi, bucket, page_count, page_width, page_height, ingest_batch, registered_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, title, external_id, doi, bucket, page_count, page_width, page_height, ingested_at, ingest_batch, registered_by`

	insertArgs := []any{
		id,
		strings.TrimSpace(cmd.Title),
		cmd.ExternalID,
		cmd.DOI,
		cmd.Bucket,
		pages,
		width,
		height,
		cmd.IngestBatch,
		token,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanDocument)
	})
	if err != nil {
		if delErr := r.store.Delete(ctx, cmd.Bucket, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "bucket", cmd.Bucket, "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, documentErrors)
	}

	r.decorate(&d)
	r.logger.Info("document created", "id", d.ID, "bucket", d.Bucket, "pages", d.PageCount)
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, token string, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	if _, err := r.gate.AuthorizeOwner(ctx, doc.Resource(), token); err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM documents WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, documentErrors)
	}

	if err := r.deriver.Purge(ctx, doc.Source()); err != nil {
		r.logger.Warn("artifact purge failed after DB delete", "id", id, "bucket", doc.Bucket, "error", err)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func (r *repo) Content(ctx context.Context, token string, id uuid.UUID) (*derive.Artifact, error) {
	return r.derive(ctx, token, id, func(src derive.Source) derive.Request {
		return derive.WholeDocument(src)
	})
}

func (r *repo) Page(ctx context.Context, token string, id uuid.UUID, page int, format render.Format) (*derive.Artifact, error) {
	return r.derive(ctx, token, id, func(src derive.Source) derive.Request {
		return derive.PageExtraction(src, page, format)
	})
}

func (r *repo) Snippet(
	ctx context.Context,
	token string,
	id uuid.UUID,
	page int,
	bounds render.Rect,
	format render.Format,
) (*derive.Artifact, error) {
	return r.derive(ctx, token, id, func(src derive.Source) derive.Request {
		return derive.SnippetHighlight(src, page, bounds, format)
	})
}

func (r *repo) derive(
	ctx context.Context,
	token string,
	id uuid.UUID,
	build func(derive.Source) derive.Request,
) (*derive.Artifact, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.gate.AuthorizeRead(ctx, doc.Resource(), token); err != nil {
		return nil, err
	}

	return r.deriver.Derive(ctx, build(doc.Source()))
}

func (r *repo) decorate(d *Document) {
	d.IsPublic = r.buckets.IsPublic(d.Bucket)
	if d.DOI != nil && *d.DOI != "" {
		link := doiResolver + *d.DOI
		d.DOILink = &link
	}
}

func (r *repo) validate(cmd CreateCommand) error {
	if strings.TrimSpace(cmd.Title) == "" {
		return fmt.Errorf("%w: title required", ErrInvalidFile)
	}
	if cmd.Bucket == "" {
		return fmt.Errorf("%w: bucket required", ErrUnknownBucket)
	}
	if !r.buckets.HasBucket(cmd.Bucket) {
		return fmt.Errorf("%w: %s", ErrUnknownBucket, cmd.Bucket)
	}
	if !bytes.HasPrefix(cmd.Data, []byte("%PDF-")) {
		return fmt.Errorf("%w: not a PDF", ErrInvalidFile)
	}
	return nil
}

// measure returns the first page's dimensions in whole points and the page count.
func (r *repo) measure(data []byte) (width, height, pages int, err error) {
	h, err := r.backend.Parse(data)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	pages = h.PageCount()
	if pages == 0 {
		return 0, 0, 0, fmt.Errorf("%w: document has no pages", ErrInvalidFile)
	}

	size, err := r.backend.PageSize(h, 0)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	return int(math.Round(size.Width)), int(math.Round(size.Height)), pages, nil
}
