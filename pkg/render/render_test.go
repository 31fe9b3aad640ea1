package render_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/folio/pkg/render"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    render.Format
		wantErr error
	}{
		{"", render.FormatPDF, nil},
		{"pdf", render.FormatPDF, nil},
		{"PNG", render.FormatPNG, nil},
		{" webp ", render.FormatWebP, nil},
		{"svg", render.FormatSVG, nil},
		{"jpeg", "", render.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := render.ParseFormat(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseFormat(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatContentType(t *testing.T) {
	tests := []struct {
		format render.Format
		want   string
		raster bool
	}{
		{render.FormatPDF, "application/pdf", false},
		{render.FormatPNG, "image/png", true},
		{render.FormatWebP, "image/webp", true},
		{render.FormatSVG, "image/svg+xml", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := tt.format.ContentType(); got != tt.want {
				t.Errorf("ContentType() = %s, want %s", got, tt.want)
			}
			if got := tt.format.Raster(); got != tt.raster {
				t.Errorf("Raster() = %v, want %v", got, tt.raster)
			}
		})
	}
}

func TestHandleSize(t *testing.T) {
	h := render.NewHandle([]byte("%PDF-"), []render.Size{{Width: 612, Height: 792}})

	if h.PageCount() != 1 {
		t.Fatalf("PageCount() = %d, want 1", h.PageCount())
	}
	if _, err := h.Size(1); !errors.Is(err, render.ErrPageRange) {
		t.Errorf("Size(1) error = %v, want ErrPageRange", err)
	}
	if _, err := h.Size(-1); !errors.Is(err, render.ErrPageRange) {
		t.Errorf("Size(-1) error = %v, want ErrPageRange", err)
	}
}

func TestParseRejectsNonPDF(t *testing.T) {
	cfg := &render.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	b := render.New(cfg, discardLogger())
	if _, err := b.Parse([]byte("hello")); !errors.Is(err, render.ErrInvalidDocument) {
		t.Errorf("Parse() error = %v, want ErrInvalidDocument", err)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_DPI", "150")

	cfg := &render.Config{}
	if err := cfg.Finalize(&render.Env{DPI: "TEST_DPI"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.DPI != 150 {
		t.Errorf("dpi: got %d, want 150", cfg.DPI)
	}
	if cfg.Magick != "magick" || cfg.Pdftocairo != "pdftocairo" {
		t.Errorf("tools: got %s, %s", cfg.Magick, cfg.Pdftocairo)
	}

	bad := &render.Config{DPI: 5000}
	err := bad.Finalize(nil)
	if err == nil || !strings.Contains(err.Error(), "dpi") {
		t.Errorf("finalize with dpi 5000: got %v, want dpi error", err)
	}
}
