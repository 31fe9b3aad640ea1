package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

type pdf struct {
	cfg    *Config
	logger *slog.Logger
}

// New returns a Backend that manipulates PDF structure with pdfcpu,
// rasterizes through ImageMagick via document-context, and exports SVG
// with poppler's pdftocairo.
func New(cfg *Config, logger *slog.Logger) Backend {
	return &pdf{
		cfg:    cfg,
		logger: logger.With("system", "render"),
	}
}

func (p *pdf) conf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func (p *pdf) Parse(data []byte) (*Handle, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: missing pdf header", ErrInvalidDocument)
	}

	sizes, err := p.dims(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrInvalidDocument)
	}

	return NewHandle(data, sizes), nil
}

func (p *pdf) PageSize(h *Handle, page int) (Size, error) {
	return h.Size(page)
}

func (p *pdf) ExtractRange(h *Handle, from, to int) (*Handle, error) {
	if from < 0 || to < from || to >= h.PageCount() {
		return nil, fmt.Errorf("%w: pages %d-%d of %d", ErrPageRange, from, to, h.PageCount())
	}

	selection := fmt.Sprintf("%d-%d", from+1, to+1)

	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(h.Bytes()), &out, []string{selection}, p.conf()); err != nil {
		return nil, fmt.Errorf("%w: extract pages %s: %w", ErrRenderFailed, selection, err)
	}

	data := out.Bytes()
	sizes, err := p.dims(data)
	if err != nil {
		return nil, fmt.Errorf("%w: read extracted pages: %w", ErrRenderFailed, err)
	}

	return NewHandle(data, sizes), nil
}

// annotationDate pins annotation timestamps so repeated derivations of the
// same key produce the same annotation dictionary. pdfcpu still stamps the
// document info dictionary on every write.
var annotationDate = types.DateString(time.Unix(0, 0).UTC())

// DrawFilledRect adds a borderless square annotation. pdfcpu rectangles use
// the PDF bottom-left origin, so y is flipped against the page height.
func (p *pdf) DrawFilledRect(h *Handle, page int, rect Rect, c Color, opacity float64) error {
	size, err := h.Size(page)
	if err != nil {
		return err
	}

	llx, urx := min(rect.X0, rect.X1), max(rect.X0, rect.X1)
	lly := size.Height - max(rect.Y0, rect.Y1)
	ury := size.Height - min(rect.Y0, rect.Y1)

	fill := color.SimpleColor{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
	ca := opacity

	ann := model.NewSquareAnnotation(
		*types.NewRectangle(llx, lly, urx, ury),
		0,
		"", "",
		annotationDate,
		0,
		&fill,
		"",
		nil,
		&ca,
		"", "",
		&fill,
		0, 0, 0, 0,
		0,
		model.BSSolid,
		false,
		0,
	)
	ann.CreationDate = annotationDate

	var out bytes.Buffer
	pages := []string{strconv.Itoa(page + 1)}
	if err := api.AddAnnotations(bytes.NewReader(h.Bytes()), &out, pages, ann, p.conf()); err != nil {
		return fmt.Errorf("%w: draw highlight on page %d: %w", ErrRenderFailed, page, err)
	}

	h.Replace(out.Bytes(), h.sizes)
	return nil
}

func (p *pdf) Serialize(h *Handle, format Format, dpi int) ([]byte, error) {
	switch format {
	case FormatPDF:
		return h.Bytes(), nil
	case FormatPNG, FormatWebP:
		return p.raster(h, format, dpi)
	case FormatSVG:
		return p.vector(h)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (p *pdf) raster(h *Handle, format Format, dpi int) ([]byte, error) {
	if dpi <= 0 {
		dpi = p.cfg.DPI
	}

	return p.withTempPDF(h, func(dir, path string) ([]byte, error) {
		doc, err := document.OpenPDF(path)
		if err != nil {
			return nil, fmt.Errorf("%w: open pdf: %w", ErrRenderFailed, err)
		}
		defer doc.Close()

		page, err := doc.ExtractPage(1)
		if err != nil {
			return nil, fmt.Errorf("%w: extract page: %w", ErrRenderFailed, err)
		}

		renderer, err := image.NewImageMagickRenderer(config.ImageConfig{
			Format: string(FormatPNG),
			DPI:    dpi,
			Options: map[string]any{
				"background": p.cfg.Background,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: create renderer: %w", ErrRenderFailed, err)
		}

		data, err := page.ToImage(renderer, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: rasterize: %w", ErrRenderFailed, err)
		}

		if format == FormatPNG {
			return data, nil
		}
		return p.convert(data, "png", string(format))
	})
}

// convert re-encodes an image through ImageMagick using stdin and stdout.
func (p *pdf) convert(data []byte, from, to string) ([]byte, error) {
	cmd := exec.CommandContext(context.Background(), p.cfg.Magick, from+":-", to+":-")
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: convert %s to %s: %w: %s", ErrRenderFailed, from, to, err, stderr.String())
	}

	return stdout.Bytes(), nil
}

func (p *pdf) vector(h *Handle) ([]byte, error) {
	return p.withTempPDF(h, func(dir, path string) ([]byte, error) {
		out := filepath.Join(dir, "page.svg")

		var stderr bytes.Buffer
		cmd := exec.CommandContext(context.Background(), p.cfg.Pdftocairo, "-svg", "-f", "1", "-l", "1", path, out)
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("%w: export svg: %w: %s", ErrRenderFailed, err, stderr.String())
		}

		data, err := os.ReadFile(out)
		if err != nil {
			return nil, fmt.Errorf("%w: read svg: %w", ErrRenderFailed, err)
		}
		return data, nil
	})
}

func (p *pdf) withTempPDF(h *Handle, fn func(dir, path string) ([]byte, error)) ([]byte, error) {
	dir, err := os.MkdirTemp(p.cfg.TempDir, "folio-render-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp dir: %w", ErrRenderFailed, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			p.logger.Warn("failed to remove render temp dir", "dir", dir, "error", err)
		}
	}()

	path := filepath.Join(dir, "source.pdf")
	if err := os.WriteFile(path, h.Bytes(), 0600); err != nil {
		return nil, fmt.Errorf("%w: write temp pdf: %w", ErrRenderFailed, err)
	}

	return fn(dir, path)
}

func (p *pdf) dims(data []byte) ([]Size, error) {
	dims, err := api.PageDims(bytes.NewReader(data), p.conf())
	if err != nil {
		return nil, err
	}

	sizes := make([]Size, len(dims))
	for i, d := range dims {
		sizes[i] = Size{Width: d.Width, Height: d.Height}
	}
	return sizes, nil
}
