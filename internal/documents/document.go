// Package documents implements the document domain for Folio: metadata
// listing and lookup, upload and deletion, and signed access to the stored
// PDF and its derived page and snippet artifacts.
package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/internal/auth"
	"github.com/JaimeStill/folio/internal/derive"
)

// Document is a stored PDF and its metadata. Bucket and RegisteredBy are
// internal and never serialized.
type Document struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	ExternalID   *string   `json:"external_id"`
	DOI          *string   `json:"doi"`
	Bucket       string    `json:"-"`
	PageCount    int       `json:"pages"`
	PageWidth    int       `json:"page_width"`
	PageHeight   int       `json:"page_height"`
	IngestedAt   time.Time `json:"ingested_at"`
	IngestBatch  *string   `json:"ingest_batch"`
	RegisteredBy *string   `json:"-"`

	IsPublic bool    `json:"is_public"`
	DOILink  *string `json:"doi_link,omitempty"`
}

// Resource returns the access-control view of the document.
func (d *Document) Resource() auth.Resource {
	return auth.Resource{Public: d.IsPublic, Registrant: d.RegisteredBy}
}

// Source locates the stored PDF.
func (d *Document) Source() derive.Source {
	return derive.Source{ID: d.ID.String(), Bucket: d.Bucket}
}

// CreateCommand carries an uploaded PDF and its metadata.
// Optional fields are stored as NULL when nil.
type CreateCommand struct {
	Data        []byte
	Title       string
	Bucket      string
	ExternalID  *string
	DOI         *string
	IngestBatch *string
}

// Lookup selects a single document by external id or DOI. At least one is required.
type Lookup struct {
	ExternalID *string `json:"external_id,omitempty"`
	DOI        *string `json:"doi,omitempty"`
}

// Empty reports whether no lookup field is set.
func (l Lookup) Empty() bool {
	return (l.ExternalID == nil || *l.ExternalID == "") && (l.DOI == nil || *l.DOI == "")
}

