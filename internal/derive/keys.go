package derive

import (
	"strconv"
	"strings"
)

// SourceKey is the storage key of the original document.
func SourceKey(id string) string {
	return "documents/" + id + ".pdf"
}

// PagePrefix is the key prefix shared by every page extraction of id.
func PagePrefix(id string) string {
	return "pages/" + id + "/"
}

// SnippetPrefix is the key prefix shared by every snippet of id.
func SnippetPrefix(id string) string {
	return "snippets/" + id + "/"
}

// Key maps a request to its canonical storage key:
//
//	documents/{id}.pdf
//	pages/{id}/{page}.{format}
//	snippets/{id}/{page}_{x0}_{y0}_{x1}_{y1}.{format}
//
// Coordinates use the shortest decimal form that round-trips, so 10 and
// 10.0 share a key. Underscore never occurs in a rendered number.
func Key(req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	id := req.Source.ID

	switch req.Kind {
	case KindPage:
		return PagePrefix(id) + strconv.Itoa(req.Page) + "." + req.Format.Ext(), nil
	case KindSnippet:
		b := req.Bounds
		parts := []string{
			strconv.Itoa(req.Page),
			coord(b.X0), coord(b.Y0), coord(b.X1), coord(b.Y1),
		}
		return SnippetPrefix(id) + strings.Join(parts, "_") + "." + req.Format.Ext(), nil
	default:
		return SourceKey(id), nil
	}
}

func coord(v float64) string {
	if v == 0 {
		v = 0 // folds -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

