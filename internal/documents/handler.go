package documents

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/internal/derive"
	"github.com/JaimeStill/folio/pkg/formatting"
	"github.com/JaimeStill/folio/pkg/handlers"
	"github.com/JaimeStill/folio/pkg/pagination"
	"github.com/JaimeStill/folio/pkg/render"
	"github.com/JaimeStill/folio/pkg/routes"
)

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	apiKeyHeader  string
	maxUploadSize int64
}

// NewHandler creates a Handler. Credentials are read from apiKeyHeader.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	apiKeyHeader string,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "documents"),
		pagination:    pagination,
		apiKeyHeader:  apiKeyHeader,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route groups for document endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Tags: []string{"Documents"},
		Children: []routes.Group{
			{
				Prefix: "/documents",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: spec.List},
					{Method: "POST", Pattern: "", Handler: h.Upload, OpenAPI: spec.Upload},
					{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: spec.Find},
					{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: spec.Delete},
					{Method: "GET", Pattern: "/{id}/content", Handler: h.Content, OpenAPI: spec.Content},
					{Method: "GET", Pattern: "/{id}/page/{page_num}", Handler: h.Page, OpenAPI: spec.Page},
					{Method: "GET", Pattern: "/{id}/page/{page_num}/snippet/{bounds}", Handler: h.Snippet, OpenAPI: spec.Snippet},
				},
			},
			{
				Prefix: "/query",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.Query, OpenAPI: spec.Query},
				},
			},
		},
	}
}

// List returns a page of documents ordered by title.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns document metadata. Metadata is readable without a credential.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Query returns the first document matching external_id or doi.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var lookup Lookup
	values := r.URL.Query()
	if v := values.Get("external_id"); v != "" {
		lookup.ExternalID = &v
	}
	if v := values.Get("doi"); v != "" {
		lookup.DOI = &v
	}

	doc, err := h.sys.Query(r.Context(), lookup)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Upload stores a PDF from a multipart form and registers it under the
// caller's credential.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	tooLarge := fmt.Errorf("%w of %s", ErrFileTooLarge, formatting.FormatBytes(h.maxUploadSize, 1))

	if r.ContentLength > h.maxUploadSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidFile, err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: file required", ErrInvalidFile))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidFile, err))
		return
	}

	cmd := CreateCommand{
		Data:        data,
		Title:       r.FormValue("title"),
		Bucket:      r.FormValue("bucket"),
		ExternalID:  optional(r.FormValue("external_id")),
		DOI:         optional(r.FormValue("doi")),
		IngestBatch: optional(r.FormValue("ingest_batch")),
	}

	doc, err := h.sys.Create(r.Context(), h.token(r), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// Delete removes a document registered by the caller along with its
// extractions and derived artifacts.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), h.token(r), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Content redirects to a signed URL for the full PDF.
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	art, err := h.sys.Content(r.Context(), h.token(r), id)
	h.redirect(w, r, art, err)
}

// Page redirects to a signed URL for one page rendered as content_type.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	id, page, format, ok := h.pageParams(w, r)
	if !ok {
		return
	}

	art, err := h.sys.Page(r.Context(), h.token(r), id, page, format)
	h.redirect(w, r, art, err)
}

// Snippet redirects to a signed URL for one page with bounds highlighted.
func (h *Handler) Snippet(w http.ResponseWriter, r *http.Request) {
	id, page, format, ok := h.pageParams(w, r)
	if !ok {
		return
	}

	bounds, err := ParseBounds(r.PathValue("bounds"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	art, err := h.sys.Snippet(r.Context(), h.token(r), id, page, bounds, format)
	h.redirect(w, r, art, err)
}

// ParseBounds parses "x0,y0,x1,y1" into a rectangle of finite coordinates.
func ParseBounds(s string) (render.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return render.Rect{}, fmt.Errorf("%w: want x0,y0,x1,y1, got %q", derive.ErrInvalidBounds, s)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return render.Rect{}, fmt.Errorf("%w: %q is not a finite number", derive.ErrInvalidBounds, p)
		}
		v[i] = f
	}

	return render.Rect{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}, nil
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, art *derive.Artifact, err error) {
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondRedirect(w, r, art.URL)
}

func (h *Handler) pageParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, render.Format, bool) {
	id, ok := h.documentID(w, r)
	if !ok {
		return uuid.Nil, 0, "", false
	}

	page, err := strconv.Atoi(r.PathValue("page_num"))
	if err != nil || page < 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidPage)
		return uuid.Nil, 0, "", false
	}

	format, err := render.ParseFormat(r.URL.Query().Get("content_type"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return uuid.Nil, 0, "", false
	}

	return id, page, format, true
}

func (h *Handler) documentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) token(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(h.apiKeyHeader))
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
