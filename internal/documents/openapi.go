package documents

import (
	"github.com/JaimeStill/folio/pkg/openapi"
	"github.com/JaimeStill/folio/pkg/render"
)

func formatParam() *openapi.Parameter {
	values := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		values[i] = string(f)
	}
	return openapi.EnumQueryParam("content_type", "Output format of the artifact", string(render.FormatPDF), values...)
}

var (
	idParam   = openapi.PathParam("id", "uuid", "Document ID")
	pageParam = &openapi.Parameter{
		Name:        "page_num",
		In:          "path",
		Required:    true,
		Description: "Zero-based page index",
		Schema:      &openapi.Schema{Type: "integer", Minimum: new(float64)},
	}
)

func redirectResponses() map[int]*openapi.Response {
	return map[int]*openapi.Response{
		307: openapi.ResponseRef("Redirect"),
		400: openapi.ResponseRef("BadRequest"),
		403: openapi.ResponseRef("Forbidden"),
		404: openapi.ResponseRef("NotFound"),
		422: openapi.ResponseRef("Unprocessable"),
		502: openapi.ResponseRef("BadGateway"),
	}
}

var spec = struct {
	List    *openapi.Operation
	Find    *openapi.Operation
	Query   *openapi.Operation
	Upload  *openapi.Operation
	Delete  *openapi.Operation
	Content *openapi.Operation
	Page    *openapi.Operation
	Snippet *openapi.Operation
}{
	List: &openapi.Operation{
		Summary: "List documents",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Zero-based page number", false),
			openapi.QueryParam("per_page", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Case-insensitive title filter", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of documents", "DocumentPage"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Get document metadata",
		Parameters: []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Query: &openapi.Operation{
		Summary: "Find a document by external id or DOI",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("external_id", "string", "Canonical id in the upstream corpus", false),
			openapi.QueryParam("doi", "string", "Digital object identifier", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Upload: &openapi.Operation{
		Summary: "Upload a PDF",
		RequestBody: &openapi.RequestBody{
			Required: true,
			Content: map[string]*openapi.MediaType{
				"multipart/form-data": {
					Schema: &openapi.Schema{
						Type:     "object",
						Required: []string{"file", "title", "bucket"},
						Properties: map[string]*openapi.Schema{
							"file":         {Type: "string", Format: "binary"},
							"title":        {Type: "string"},
							"bucket":       {Type: "string"},
							"external_id":  {Type: "string"},
							"doi":          {Type: "string"},
							"ingest_batch": {Type: "string"},
						},
					},
				},
			},
		},
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			403: openapi.ResponseRef("Forbidden"),
			409: openapi.ResponseRef("Conflict"),
			413: {Description: "File exceeds maximum upload size"},
			502: openapi.ResponseRef("BadGateway"),
		},
		Security: openapi.Secured(),
	},
	Delete: &openapi.Operation{
		Summary:    "Delete a document and its derived artifacts",
		Parameters: []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			204: {Description: "Deleted"},
			400: openapi.ResponseRef("BadRequest"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
		Security: openapi.Secured(),
	},
	Content: &openapi.Operation{
		Summary:    "Redirect to the full PDF",
		Parameters: []*openapi.Parameter{idParam},
		Responses:  redirectResponses(),
		Security:   openapi.Secured(),
	},
	Page: &openapi.Operation{
		Summary:    "Redirect to a single page",
		Parameters: []*openapi.Parameter{idParam, pageParam, formatParam()},
		Responses:  redirectResponses(),
		Security:   openapi.Secured(),
	},
	Snippet: &openapi.Operation{
		Summary: "Redirect to a single page with a highlighted region",
		Parameters: []*openapi.Parameter{
			idParam,
			pageParam,
			openapi.PathParam("bounds", "", "x0,y0,x1,y1 in points, origin top-left"),
			formatParam(),
		},
		Responses: redirectResponses(),
		Security:  openapi.Secured(),
	},
}

// Schemas returns the component schemas referenced by document operations.
func Schemas() map[string]*openapi.Schema {
	nullable := func(typ, desc string) *openapi.Schema {
		return &openapi.Schema{Type: typ, Description: desc, Nullable: true}
	}

	return map[string]*openapi.Schema{
		"Document": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"title":        {Type: "string"},
				"external_id":  nullable("string", "Canonical id in the upstream corpus"),
				"doi":          nullable("string", "Digital object identifier"),
				"pages":        {Type: "integer"},
				"page_width":   {Type: "integer", Description: "First page width in points"},
				"page_height":  {Type: "integer", Description: "First page height in points"},
				"ingested_at":  {Type: "string", Format: "date-time"},
				"ingest_batch": nullable("string", "Ingest batch tag"),
				"is_public":    {Type: "boolean", Description: "Content readable without a credential"},
				"doi_link":     {Type: "string", Format: "uri"},
			},
		},
		"DocumentPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Document")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"per_page":    {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
	}
}
