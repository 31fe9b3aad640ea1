package documents_test

import (
	"context"
	"database/sql/driver"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/JaimeStill/folio/internal/auth"
	"github.com/JaimeStill/folio/internal/derive"
	"github.com/JaimeStill/folio/internal/documents"
	"github.com/JaimeStill/folio/pkg/lifecycle"
	"github.com/JaimeStill/folio/pkg/pagination"
	"github.com/JaimeStill/folio/pkg/render/rendertest"
	"github.com/JaimeStill/folio/pkg/routes"
	"github.com/JaimeStill/folio/pkg/storage"
	"github.com/JaimeStill/folio/pkg/storage/storagetest"
	"github.com/JaimeStill/folio/pkg/workers"
)

const (
	publicBucket  = "public-pdfs"
	privateBucket = "private-pdfs"
	apiKeyHeader  = "X-API-Key"
	writerToken   = "W"
	readerToken   = "R"
	otherToken    = "O"
)

var documentColumns = []string{
	"id", "title", "external_id", "doi", "bucket",
	"page_count", "page_width", "page_height",
	"ingested_at", "ingest_batch", "registered_by",
}

var ingested = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type credentialStore map[string]auth.Credential

func (s credentialStore) Find(_ context.Context, token string) (*auth.Credential, error) {
	c, ok := s[token]
	if !ok {
		return nil, auth.ErrCredentialNotFound
	}
	return &c, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	sys     documents.System
	mock    sqlmock.Sqlmock
	store   *storagetest.Memory
	backend *rendertest.Backend
	mux     *http.ServeMux
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	logger := discardLogger()

	lc := lifecycle.New()
	pool := workers.New(&workers.Config{Workers: 2, QueueSize: 8}, logger)
	if err := pool.Start(lc); err != nil {
		t.Fatalf("start pool: %v", err)
	}
	t.Cleanup(func() { lc.Shutdown(time.Second) })

	store := storagetest.NewMemory()
	backend := rendertest.New(3)

	deriveCfg := derive.Config{}
	if err := deriveCfg.Finalize(nil); err != nil {
		t.Fatalf("derive finalize: %v", err)
	}

	gate := auth.New(credentialStore{
		writerToken: {Token: writerToken, Enabled: true, WriteEnabled: true},
		otherToken:  {Token: otherToken, Enabled: true, WriteEnabled: true},
		readerToken: {Token: readerToken, Enabled: true},
	}, logger)

	buckets := &storage.Config{
		Buckets:      []string{publicBucket, privateBucket},
		PublicBucket: publicBucket,
	}

	sys := documents.New(
		db,
		store,
		buckets,
		backend,
		gate,
		derive.New(&deriveCfg, store, backend, pool, 300, logger),
		logger,
		pagination.Config{DefaultPerPage: 25, MaxPerPage: 100},
	)

	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(apiKeyHeader, 1<<20).Routes())

	return &fixture{
		sys:     sys,
		mock:    mock,
		store:   store,
		backend: backend,
		mux:     mux,
	}
}

func documentRow(id uuid.UUID, title, bucket string, registrant any) []driver.Value {
	return []driver.Value{id.String(), title, nil, nil, bucket, 3, 612, 792, ingested, nil, registrant}
}

// expectFind registers a point lookup returning the document.
func (f *fixture) expectFind(id uuid.UUID, bucket string, registrant any) {
	f.mock.ExpectQuery("FROM public.documents d WHERE d.id = \\$1").
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(documentColumns).AddRow(documentRow(id, "Doc", bucket, registrant)...))
}

func (f *fixture) seedSource(id uuid.UUID, bucket string) {
	f.store.Seed(bucket, derive.SourceKey(id.String()), []byte("%PDF-1.7 seeded"), "application/pdf")
}

func (f *fixture) verify(t *testing.T) {
	t.Helper()
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
