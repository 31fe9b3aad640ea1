package extractions

import (
	"database/sql"

	"github.com/JaimeStill/folio/internal/documents"
	"github.com/JaimeStill/folio/pkg/query"
	"github.com/JaimeStill/folio/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "extractions", "e").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("category", "Category").
	Project("label", "Label").
	Project("score", "Score").
	Project("page_num", "Page").
	Project("x0", "X0").
	Project("y0", "Y0").
	Project("x1", "X1").
	Project("y1", "Y1").
	Project("data", "Data").
	Project("path", "Path").
	Project("url", "URL").
	Project("registered_by", "RegisteredBy").
	Project("created_at", "CreatedAt")

var defaultSort = []query.SortField{
	{Field: "Page"},
	{Field: "CreatedAt"},
}

var extractionErrors = repository.Errors{
	NotFound:   ErrNotFound,
	ForeignKey: documents.ErrNotFound,
}

func scanExtraction(s repository.Scanner) (Extraction, error) {
	var (
		e              Extraction
		x0, y0, x1, y1 sql.NullFloat64
		data           []byte
	)

	err := s.Scan(
		&e.ID,
		&e.DocumentID,
		&e.Category,
		&e.Label,
		&e.Score,
		&e.Page,
		&x0, &y0, &x1, &y1,
		&data,
		&e.Path,
		&e.URL,
		&e.RegisteredBy,
		&e.CreatedAt,
	)
	if err != nil {
		return e, err
	}

	if x0.Valid && y0.Valid && x1.Valid && y1.Valid {
		e.BBox = &BBox{x0.Float64, y0.Float64, x1.Float64, y1.Float64}
	}
	if len(data) > 0 {
		e.Data = data
	}
	return e, nil
}

func bboxArgs(b *BBox) []any {
	if b == nil {
		return []any{nil, nil, nil, nil}
	}
	return []any{b[0], b[1], b[2], b[3]}
}

func dataArg(cmd CreateCommand) any {
	if len(cmd.Data) == 0 {
		return nil
	}
	return string(cmd.Data)
}
