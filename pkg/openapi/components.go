package openapi

import "maps"

// APIKeyScheme is the security scheme name used by protected operations.
const APIKeyScheme = "ApiKey"

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}

// NewComponents creates Components with the shared error body, standard
// error responses, the redirect response and the API key scheme named by
// header.
func NewComponents(header string) *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type: "object",
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":    errorResponse("Invalid request"),
			"Forbidden":     errorResponse("Credential missing, unknown or lacking privilege"),
			"NotFound":      errorResponse("Resource not found"),
			"Conflict":      errorResponse("Resource conflict (duplicate external id or DOI)"),
			"Unprocessable": errorResponse("Artifact generation failed"),
			"BadGateway":    errorResponse("Blob store failure"),
			"Redirect": {
				Description: "Temporary redirect to a signed artifact URL",
				Headers: map[string]*Header{
					"Location": {
						Description: "Time-limited signed URL",
						Schema:      &Schema{Type: "string", Format: "uri"},
					},
				},
			},
		},
		SecuritySchemes: map[string]*SecurityScheme{
			APIKeyScheme: {
				Type:        "apiKey",
				In:          "header",
				Name:        header,
				Description: "Credential token. Optional for public documents.",
			},
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}

// Secured is the security requirement for API key protected operations.
func Secured() []map[string][]string {
	return []map[string][]string{{APIKeyScheme: {}}}
}
