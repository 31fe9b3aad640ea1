package api

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/folio/pkg/handlers"
	"github.com/JaimeStill/folio/pkg/openapi"
	"github.com/JaimeStill/folio/pkg/routes"
)

// Counter reports the number of stored records of one kind.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Metrics summarizes the store.
type Metrics struct {
	DocumentCount   int `json:"document_count"`
	ExtractionCount int `json:"extraction_count"`
}

type metricsHandler struct {
	documents   Counter
	extractions Counter
	logger      *slog.Logger
}

func newMetricsHandler(documents, extractions Counter, logger *slog.Logger) *metricsHandler {
	return &metricsHandler{
		documents:   documents,
		extractions: extractions,
		logger:      logger.With("handler", "metrics"),
	}
}

func (h *metricsHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/metrics",
		Tags:   []string{"Metrics"},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.get,
				OpenAPI: &openapi.Operation{
					Summary: "Store record counts",
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Record counts", "Metrics"),
					},
				},
			},
		},
	}
}

func (h *metricsHandler) get(w http.ResponseWriter, r *http.Request) {
	var m Metrics

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		n, err := h.documents.Count(ctx)
		m.DocumentCount = n
		return err
	})
	g.Go(func() error {
		n, err := h.extractions.Count(ctx)
		m.ExtractionCount = n
		return err
	})

	if err := g.Wait(); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, m)
}

func metricsSchemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Metrics": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"document_count":   {Type: "integer"},
				"extraction_count": {Type: "integer"},
			},
		},
	}
}
