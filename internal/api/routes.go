package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/documents"
	"github.com/JaimeStill/folio/internal/extractions"
	"github.com/JaimeStill/folio/pkg/openapi"
	"github.com/JaimeStill/folio/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Documents.Handler(cfg.API.APIKeyHeader, cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Extractions.Handler(cfg.API.APIKeyHeader).Routes(),
		newMetricsHandler(domain.Documents, domain.Extractions, runtime.Logger).routes(),
	}

	routes.Register(mux, groups...)

	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	spec.Components.AddSchemas(documents.Schemas())
	spec.Components.AddSchemas(extractions.Schemas())
	spec.Components.AddSchemas(metricsSchemas())
	routes.Describe(spec, cfg.API.BasePath, groups...)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}
