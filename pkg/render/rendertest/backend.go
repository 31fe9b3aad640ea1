// Package rendertest provides a counting render.Backend for tests.
package rendertest

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/JaimeStill/folio/pkg/render"
)

// Backend is a fake render.Backend. Documents are any payload beginning
// with "%PDF-"; every page has Size. Output bytes describe the operations
// applied, so tests can assert on what was produced.
type Backend struct {
	Pages int
	Size  render.Size

	ParseErr     error
	SerializeErr error

	mu         sync.Mutex
	parses     int
	extracts   int
	draws      int
	serializes map[render.Format]int
}

var _ render.Backend = (*Backend)(nil)

// New returns a fake with pages Letter-sized pages.
func New(pages int) *Backend {
	return &Backend{
		Pages:      pages,
		Size:       render.Size{Width: 612, Height: 792},
		serializes: make(map[render.Format]int),
	}
}

// Counts reports the number of Parse, ExtractRange and DrawFilledRect calls.
func (b *Backend) Counts() (parses, extracts, draws int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parses, b.extracts, b.draws
}

// Serialized reports how many times format was produced.
func (b *Backend) Serialized(format render.Format) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.serializes[format]
}

// Rasterized reports the total raster serializations.
func (b *Backend) Rasterized() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.serializes[render.FormatPNG] + b.serializes[render.FormatWebP]
}

func (b *Backend) Parse(data []byte) (*render.Handle, error) {
	b.mu.Lock()
	b.parses++
	b.mu.Unlock()

	if b.ParseErr != nil {
		return nil, b.ParseErr
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, render.ErrInvalidDocument
	}
	return render.NewHandle(data, b.sizes(b.Pages)), nil
}

func (b *Backend) PageSize(h *render.Handle, page int) (render.Size, error) {
	return h.Size(page)
}

func (b *Backend) ExtractRange(h *render.Handle, from, to int) (*render.Handle, error) {
	b.mu.Lock()
	b.extracts++
	b.mu.Unlock()

	if from < 0 || to < from || to >= h.PageCount() {
		return nil, fmt.Errorf("%w: pages %d-%d of %d", render.ErrPageRange, from, to, h.PageCount())
	}

	data := fmt.Appendf(nil, "%%PDF-pages[%d-%d]", from, to)
	return render.NewHandle(data, b.sizes(to-from+1)), nil
}

func (b *Backend) DrawFilledRect(h *render.Handle, page int, rect render.Rect, c render.Color, opacity float64) error {
	b.mu.Lock()
	b.draws++
	b.mu.Unlock()

	if _, err := h.Size(page); err != nil {
		return err
	}

	data := fmt.Appendf(h.Bytes(), "+rect[%d:%g,%g,%g,%g:%g,%g,%g:%g]",
		page, rect.X0, rect.Y0, rect.X1, rect.Y1, c.R, c.G, c.B, opacity)
	h.Replace(data, b.sizes(h.PageCount()))
	return nil
}

func (b *Backend) Serialize(h *render.Handle, format render.Format, dpi int) ([]byte, error) {
	b.mu.Lock()
	b.serializes[format]++
	b.mu.Unlock()

	if b.SerializeErr != nil {
		return nil, b.SerializeErr
	}

	switch format {
	case render.FormatPDF:
		return h.Bytes(), nil
	case render.FormatPNG, render.FormatWebP, render.FormatSVG:
		return fmt.Appendf(nil, "%s@%d:%s", format, dpi, h.Bytes()), nil
	default:
		return nil, render.ErrUnsupportedFormat
	}
}

func (b *Backend) sizes(n int) []render.Size {
	sizes := make([]render.Size, n)
	for i := range sizes {
		sizes[i] = b.Size
	}
	return sizes
}
