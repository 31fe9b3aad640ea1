package api

import (
	"github.com/JaimeStill/folio/internal/auth"
	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/derive"
	"github.com/JaimeStill/folio/internal/documents"
	"github.com/JaimeStill/folio/internal/extractions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Credentials auth.Repository
	Gate        auth.System
	Derive      derive.System
	Documents   documents.System
	Extractions extractions.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	credentials := auth.NewRepository(db, runtime.Logger)
	gate := auth.New(credentials, runtime.Logger)

	deriver := derive.New(
		&cfg.Derive,
		runtime.Storage,
		runtime.Render,
		runtime.Workers,
		cfg.Render.DPI,
		runtime.Logger,
	)

	docsSystem := documents.New(
		db,
		runtime.Storage,
		&cfg.Storage,
		runtime.Render,
		gate,
		deriver,
		runtime.Logger,
		runtime.Pagination,
	)

	extractionsSystem := extractions.New(
		db,
		docsSystem,
		gate,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Credentials: credentials,
		Gate:        gate,
		Derive:      deriver,
		Documents:   docsSystem,
		Extractions: extractionsSystem,
	}
}
