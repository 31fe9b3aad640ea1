// Package render wraps the PDF operations needed to derive page
// extractions, highlighted snippets and alternate-format renditions.
package render

import "fmt"

// Size is a page size in PDF points.
type Size struct {
	Width  float64
	Height float64
}

// Rect is a region in page coordinates: points, origin at the top-left
// corner, y increasing downward.
type Rect struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// Color is an RGB color with components in [0, 1].
type Color struct {
	R float64
	G float64
	B float64
}

// Gold is the highlight color applied to snippets.
var Gold = Color{R: 1, G: 1, B: 0}

// Handle is a parsed document held in memory.
type Handle struct {
	data  []byte
	sizes []Size
}

// NewHandle wraps document bytes and their per-page sizes.
func NewHandle(data []byte, sizes []Size) *Handle {
	return &Handle{data: data, sizes: sizes}
}

// Bytes returns the serialized PDF.
func (h *Handle) Bytes() []byte {
	return h.data
}

// PageCount returns the number of pages.
func (h *Handle) PageCount() int {
	return len(h.sizes)
}

// Size returns the dimensions of the zero-indexed page.
func (h *Handle) Size(page int) (Size, error) {
	if page < 0 || page >= len(h.sizes) {
		return Size{}, fmt.Errorf("%w: page %d of %d", ErrPageRange, page, len(h.sizes))
	}
	return h.sizes[page], nil
}

// Replace swaps the document bytes and page sizes in place.
func (h *Handle) Replace(data []byte, sizes []Size) {
	h.data = data
	h.sizes = sizes
}

// Backend performs document transformations. Page indices are zero-based.
// Implementations must be safe for concurrent use on distinct handles.
type Backend interface {
	Parse(data []byte) (*Handle, error)
	PageSize(h *Handle, page int) (Size, error)
	// ExtractRange returns a new document holding pages from through to, inclusive.
	ExtractRange(h *Handle, from, to int) (*Handle, error)
	// DrawFilledRect paints rect on page with the given fill color and opacity.
	DrawFilledRect(h *Handle, page int, rect Rect, c Color, opacity float64) error
	// Serialize encodes the document. Raster and vector formats render the first page.
	Serialize(h *Handle, format Format, dpi int) ([]byte, error)
}
