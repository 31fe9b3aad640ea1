package documents

import (
	"github.com/JaimeStill/folio/pkg/query"
	"github.com/JaimeStill/folio/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("title", "Title").
	Project("external_id", "ExternalID").
	Project("doi", "DOI").
	Project("bucket", "Bucket").
	Project("page_count", "PageCount").
	Project("page_width", "PageWidth").
	Project("page_height", "PageHeight").
	Project("ingested_at", "IngestedAt").
	Project("ingest_batch", "IngestBatch").
	Project("registered_by", "RegisteredBy")

var defaultSort = query.SortField{Field: "Title"}

var documentErrors = repository.Errors{
	NotFound:  ErrNotFound,
	Duplicate: ErrDuplicate,
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.Title,
		&d.ExternalID,
		&d.DOI,
		&d.Bucket,
		&d.PageCount,
		&d.PageWidth,
		&d.PageHeight,
		&d.IngestedAt,
		&d.IngestBatch,
		&d.RegisteredBy,
	)
	return d, err
}
