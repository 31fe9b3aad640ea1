package extractions

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/internal/documents"
	"github.com/JaimeStill/folio/pkg/handlers"
	"github.com/JaimeStill/folio/pkg/openapi"
	"github.com/JaimeStill/folio/pkg/pagination"
	"github.com/JaimeStill/folio/pkg/routes"
)

// Handler provides HTTP endpoints for extraction operations.
type Handler struct {
	sys          System
	logger       *slog.Logger
	pagination   pagination.Config
	apiKeyHeader string
}

// NewHandler creates a Handler. Credentials are read from apiKeyHeader.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config, apiKeyHeader string) *Handler {
	return &Handler{
		sys:          sys,
		logger:       logger.With("handler", "extractions"),
		pagination:   pagination,
		apiKeyHeader: apiKeyHeader,
	}
}

// Routes returns the route groups for extraction endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Tags: []string{"Extractions"},
		Children: []routes.Group{
			{
				Prefix: "/documents/{id}/extractions",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: spec.List},
					{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: spec.Create},
				},
			},
			{
				Prefix: "/extractions",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: spec.Find},
					{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: spec.Delete},
				},
			},
		},
	}
}

// List returns a page of extractions for a document, ordered by page.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrInvalidID)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.ListByDocument(r.Context(), h.token(r), docID, page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single extraction.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.extractionID(w, r)
	if !ok {
		return
	}

	e, err := h.sys.Find(r.Context(), h.token(r), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, e)
}

// Create registers an extraction on a document from a JSON body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	docID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrInvalidID)
		return
	}

	var cmd CreateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	e, err := h.sys.Create(r.Context(), h.token(r), docID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, e)
}

// Delete removes an extraction. The caller must own the parent document.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.extractionID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), h.token(r), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) extractionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
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

var (
	documentParam   = openapi.PathParam("id", "uuid", "Document ID")
	extractionParam = openapi.PathParam("id", "uuid", "Extraction ID")
)

var spec = struct {
	List   *openapi.Operation
	Create *openapi.Operation
	Find   *openapi.Operation
	Delete *openapi.Operation
}{
	List: &openapi.Operation{
		Summary: "List extractions of a document",
		Parameters: []*openapi.Parameter{
			documentParam,
			openapi.QueryParam("page", "integer", "Zero-based page number", false),
			openapi.QueryParam("per_page", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Case-insensitive label filter", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of extractions", "ExtractionPage"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
		Security: openapi.Secured(),
	},
	Create: &openapi.Operation{
		Summary:     "Register an extraction on a document",
		Parameters:  []*openapi.Parameter{documentParam},
		RequestBody: openapi.RequestBodyJSON("CreateExtraction", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created extraction", "Extraction"),
			400: openapi.ResponseRef("BadRequest"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
		Security: openapi.Secured(),
	},
	Find: &openapi.Operation{
		Summary:    "Get an extraction",
		Parameters: []*openapi.Parameter{extractionParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Extraction", "Extraction"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
		Security: openapi.Secured(),
	},
	Delete: &openapi.Operation{
		Summary:    "Delete an extraction",
		Parameters: []*openapi.Parameter{extractionParam},
		Responses: map[int]*openapi.Response{
			204: {Description: "Deleted"},
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
		Security: openapi.Secured(),
	},
}

// Schemas returns the component schemas referenced by extraction operations.
func Schemas() map[string]*openapi.Schema {
	bbox := &openapi.Schema{
		Type:        "array",
		Description: "x0, y0, x1, y1 in points, origin top-left",
		Items:       &openapi.Schema{Type: "number"},
		Nullable:    true,
	}
	payload := map[string]*openapi.Schema{
		"data": {Type: "object", Description: "Inline payload", Nullable: true},
		"path": {Type: "string", Description: "Internal storage path", Nullable: true},
		"url":  {Type: "string", Format: "uri", Description: "External payload URL", Nullable: true},
	}

	extraction := map[string]*openapi.Schema{
		"id":          {Type: "string", Format: "uuid"},
		"document_id": {Type: "string", Format: "uuid"},
		"category":    {Type: "string"},
		"label":       {Type: "string"},
		"score":       {Type: "number"},
		"page_num":    {Type: "integer"},
		"bbox":        bbox,
		"created_at":  {Type: "string", Format: "date-time"},
	}
	create := map[string]*openapi.Schema{
		"category": {Type: "string"},
		"label":    {Type: "string"},
		"score":    {Type: "number"},
		"page_num": {Type: "integer"},
		"bbox":     bbox,
	}
	for k, v := range payload {
		extraction[k] = v
		create[k] = v
	}

	return map[string]*openapi.Schema{
		"Extraction": {Type: "object", Properties: extraction},
		"CreateExtraction": {
			Type:        "object",
			Description: "At most one of data, path and url may be set",
			Required:    []string{"category", "page_num"},
			Properties:  create,
		},
		"ExtractionPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Extraction")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"per_page":    {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
	}
}
