package derive

import (
	"fmt"
	"math"

	"github.com/JaimeStill/folio/pkg/render"
)

// Kind selects the transform applied to a source document.
type Kind int

const (
	KindDocument Kind = iota
	KindPage
	KindSnippet
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindPage:
		return "page"
	case KindSnippet:
		return "snippet"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Source locates a stored document.
type Source struct {
	ID     string
	Bucket string
}

// Request describes one derived artifact. Page is zero-indexed; Bounds is
// only meaningful for KindSnippet.
type Request struct {
	Source Source
	Kind   Kind
	Page   int
	Bounds render.Rect
	Format render.Format
}

// WholeDocument requests a pointer to the stored source.
func WholeDocument(src Source) Request {
	return Request{Source: src, Kind: KindDocument, Format: render.FormatPDF}
}

// PageExtraction requests a single page rendered as format.
func PageExtraction(src Source, page int, format render.Format) Request {
	return Request{Source: src, Kind: KindPage, Page: page, Format: format}
}

// SnippetHighlight requests a single page with bounds highlighted, rendered as format.
func SnippetHighlight(src Source, page int, bounds render.Rect, format render.Format) Request {
	return Request{Source: src, Kind: KindSnippet, Page: page, Bounds: bounds, Format: format}
}

// Validate rejects requests that could not produce a well-formed key.
func (r Request) Validate() error {
	if r.Source.ID == "" || r.Source.Bucket == "" {
		return fmt.Errorf("%w: source id and bucket required", ErrInvalidRequest)
	}

	switch r.Kind {
	case KindDocument:
		return nil
	case KindPage, KindSnippet:
	default:
		return fmt.Errorf("%w: unknown kind %s", ErrInvalidRequest, r.Kind)
	}

	if r.Page < 0 {
		return fmt.Errorf("%w: page %d is negative", ErrInvalidRequest, r.Page)
	}

	// Keys embed the format verbatim, so only canonical names are accepted.
	if parsed, err := render.ParseFormat(string(r.Format)); err != nil || parsed != r.Format {
		return fmt.Errorf("%w: %q", render.ErrUnsupportedFormat, r.Format)
	}

	if r.Kind == KindSnippet {
		for _, v := range []float64{r.Bounds.X0, r.Bounds.Y0, r.Bounds.X1, r.Bounds.Y1} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: coordinates must be finite", ErrInvalidBounds)
			}
		}
	}

	return nil
}
