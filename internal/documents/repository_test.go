package documents_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/folio/internal/auth"
	"github.com/JaimeStill/folio/internal/derive"
	"github.com/JaimeStill/folio/internal/documents"
	"github.com/JaimeStill/folio/pkg/pagination"
	"github.com/JaimeStill/folio/pkg/render"
)

const selectDocuments = "SELECT d.id, d.title, d.external_id, d.doi, d.bucket, d.page_count, d.page_width, d.page_height, d.ingested_at, d.ingest_batch, d.registered_by FROM public.documents d"

func TestListPagination(t *testing.T) {
	f := setup(t)

	f.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM public.documents d")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	f.mock.ExpectQuery(regexp.QuoteMeta(selectDocuments + " ORDER BY d.title ASC LIMIT 2 OFFSET 2")).
		WillReturnRows(sqlmock.NewRows(documentColumns).
			AddRow(documentRow(uuid.New(), "C", publicBucket, nil)...).
			AddRow(documentRow(uuid.New(), "D", privateBucket, nil)...))

	result, err := f.sys.List(context.Background(), pagination.PageRequest{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(result.Data) != 2 || result.Data[0].Title != "C" || result.Data[1].Title != "D" {
		t.Fatalf("titles: got %+v", result.Data)
	}
	if result.Total != 5 || result.TotalPages != 3 || result.Page != 1 || result.PerPage != 2 {
		t.Errorf("envelope: got total=%d pages=%d page=%d per_page=%d",
			result.Total, result.TotalPages, result.Page, result.PerPage)
	}
	if !result.Data[0].IsPublic || result.Data[1].IsPublic {
		t.Errorf("is_public: got %v, %v", result.Data[0].IsPublic, result.Data[1].IsPublic)
	}
	f.verify(t)
}

func TestListSearchAndCap(t *testing.T) {
	f := setup(t)
	search := "100%"

	f.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM public.documents d WHERE d.title ILIKE $1")).
		WithArgs(`%100\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	f.mock.ExpectQuery(regexp.QuoteMeta("LIMIT 100 OFFSET 0")).
		WithArgs(`%100\%%`).
		WillReturnRows(sqlmock.NewRows(documentColumns))

	result, err := f.sys.List(context.Background(), pagination.PageRequest{PerPage: 500, Search: &search})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Data == nil || len(result.Data) != 0 || result.TotalPages != 1 {
		t.Errorf("empty page: got %+v", result)
	}
	f.verify(t)
}

func TestFindDecorates(t *testing.T) {
	f := setup(t)
	id := uuid.New()
	doi := "10.1000/xyz"

	f.mock.ExpectQuery(regexp.QuoteMeta(selectDocuments + " WHERE d.id = $1")).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(documentColumns).
			AddRow(id.String(), "Doc", "X1", doi, publicBucket, 4, 612, 792, ingested, "b1", writerToken))

	doc, err := f.sys.Find(context.Background(), id)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if doc.DOILink == nil || *doc.DOILink != "https://doi.org/10.1000/xyz" {
		t.Errorf("doi_link: got %v", doc.DOILink)
	}
	if !doc.IsPublic || doc.PageCount != 4 || *doc.RegisteredBy != writerToken {
		t.Errorf("document: got %+v", doc)
	}
	f.verify(t)
}

func TestFindNotFound(t *testing.T) {
	f := setup(t)
	id := uuid.New()

	f.mock.ExpectQuery("FROM public.documents d WHERE d.id").
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(documentColumns))

	if _, err := f.sys.Find(context.Background(), id); !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("Find() = %v, want ErrNotFound", err)
	}
	f.verify(t)
}

func TestQuery(t *testing.T) {
	f := setup(t)
	ext := "X9"
	doi := "10.1/abc"

	f.mock.ExpectQuery(regexp.QuoteMeta(selectDocuments + " WHERE d.external_id = $1 AND d.doi = $2 ORDER BY d.title ASC LIMIT 1")).
		WithArgs(ext, doi).
		WillReturnRows(sqlmock.NewRows(documentColumns).AddRow(documentRow(uuid.New(), "Match", publicBucket, nil)...))

	doc, err := f.sys.Query(context.Background(), documents.Lookup{ExternalID: &ext, DOI: &doi})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if doc.Title != "Match" {
		t.Errorf("title: got %s", doc.Title)
	}
	f.verify(t)
}

func TestQueryRequiresField(t *testing.T) {
	f := setup(t)
	empty := ""

	for _, lookup := range []documents.Lookup{{}, {ExternalID: &empty}} {
		if _, err := f.sys.Query(context.Background(), lookup); !errors.Is(err, documents.ErrInvalidQuery) {
			t.Errorf("Query(%+v) = %v, want ErrInvalidQuery", lookup, err)
		}
	}
	f.verify(t)
}

func TestCount(t *testing.T) {
	f := setup(t)

	f.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM public.documents d")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := f.sys.Count(context.Background())
	if err != nil || n != 42 {
		t.Errorf("Count() = %d, %v", n, err)
	}
	f.verify(t)
}

func TestCreateValidation(t *testing.T) {
	pdf := []byte("%PDF-1.7 upload")

	tests := []struct {
		name  string
		token string
		cmd   documents.CreateCommand
		want  error
	}{
		{"anonymous", "", documents.CreateCommand{Data: pdf, Title: "T", Bucket: publicBucket}, auth.ErrForbidden},
		{"read only", readerToken, documents.CreateCommand{Data: pdf, Title: "T", Bucket: publicBucket}, auth.ErrForbidden},
		{"missing title", writerToken, documents.CreateCommand{Data: pdf, Title: " ", Bucket: publicBucket}, documents.ErrInvalidFile},
		{"unknown bucket", writerToken, documents.CreateCommand{Data: pdf, Title: "T", Bucket: "elsewhere"}, documents.ErrUnknownBucket},
		{"not a pdf", writerToken, documents.CreateCommand{Data: []byte("GIF89a"), Title: "T", Bucket: publicBucket}, documents.ErrInvalidFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			_, err := f.sys.Create(context.Background(), tt.token, tt.cmd)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Create() = %v, want %v", err, tt.want)
			}
			if _, puts, _ := f.store.Counts(); puts != 0 {
				t.Errorf("puts: got %d, want 0", puts)
			}
			f.verify(t)
		})
	}
}

func TestCreateStoresSourceAndRow(t *testing.T) {
	f := setup(t)
	ext := "X1"

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("INSERT INTO documents").
		WithArgs(sqlmock.AnyArg(), "Title", ext, nil, privateBucket, 3, 612, 792, nil, writerToken).
		WillReturnRows(sqlmock.NewRows(documentColumns).AddRow(documentRow(uuid.New(), "Title", privateBucket, writerToken)...))
	f.mock.ExpectCommit()

	doc, err := f.sys.Create(context.Background(), writerToken, documents.CreateCommand{
		Data:       []byte("%PDF-1.7 upload"),
		Title:      " Title ",
		Bucket:     privateBucket,
		ExternalID: &ext,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.IsPublic {
		t.Error("private bucket reported public")
	}

	keys := f.store.Keys(privateBucket)
	if len(keys) != 1 || !regexp.MustCompile(`^documents/[0-9a-f-]{36}\.pdf$`).MatchString(keys[0]) {
		t.Errorf("stored keys: got %v", keys)
	}
	f.verify(t)
}

func TestCreateDuplicateCompensates(t *testing.T) {
	f := setup(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("INSERT INTO documents").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	f.mock.ExpectRollback()

	_, err := f.sys.Create(context.Background(), writerToken, documents.CreateCommand{
		Data:   []byte("%PDF-1.7 upload"),
		Title:  "Dup",
		Bucket: publicBucket,
	})
	if !errors.Is(err, documents.ErrDuplicate) {
		t.Fatalf("Create() = %v, want ErrDuplicate", err)
	}
	if keys := f.store.Keys(publicBucket); len(keys) != 0 {
		t.Errorf("blob not compensated: %v", keys)
	}
	f.verify(t)
}

func TestDeleteRequiresOwner(t *testing.T) {
	f := setup(t)
	id := uuid.New()
	f.seedSource(id, publicBucket)

	f.expectFind(id, publicBucket, writerToken)

	err := f.sys.Delete(context.Background(), otherToken, id)
	if !errors.Is(err, auth.ErrNotOwner) {
		t.Fatalf("Delete() = %v, want ErrNotOwner", err)
	}
	if _, _, deletes := f.store.Counts(); deletes != 0 {
		t.Errorf("deletes: got %d, want 0", deletes)
	}
	f.verify(t)
}

func TestDeletePurgesArtifacts(t *testing.T) {
	f := setup(t)
	id := uuid.New()
	f.seedSource(id, publicBucket)
	ctx := context.Background()

	f.expectFind(id, publicBucket, writerToken)
	if _, err := f.sys.Page(ctx, "", id, 0, render.FormatPNG); err != nil {
		t.Fatalf("Page: %v", err)
	}

	f.expectFind(id, publicBucket, writerToken)
	f.mock.ExpectBegin()
	f.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	if err := f.sys.Delete(ctx, writerToken, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if keys := f.store.Keys(publicBucket); len(keys) != 0 {
		t.Errorf("remaining keys: %v", keys)
	}
	f.verify(t)
}

func TestReadGate(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		token  string
		want   error
	}{
		{"public anonymous", publicBucket, "", nil},
		{"private anonymous", privateBucket, "", auth.ErrForbidden},
		{"private unknown", privateBucket, "nope", auth.ErrForbidden},
		{"private reader", privateBucket, readerToken, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			id := uuid.New()
			f.seedSource(id, tt.bucket)
			f.expectFind(id, tt.bucket, nil)

			art, err := f.sys.Content(context.Background(), tt.token, id)
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("Content() = %v, want %v", err, tt.want)
				}
				if got := documents.MapHTTPStatus(err); got != 403 {
					t.Errorf("status: got %d, want 403", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Content() = %v", err)
			}
			if art.Key != derive.SourceKey(id.String()) {
				t.Errorf("key: got %s", art.Key)
			}
			f.verify(t)
		})
	}
}
