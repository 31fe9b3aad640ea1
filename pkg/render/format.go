package render

import "strings"

// Format identifies an output encoding for a rendered artifact.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatSVG  Format = "svg"
)

// Formats lists every supported format in presentation order.
var Formats = []Format{FormatPDF, FormatPNG, FormatWebP, FormatSVG}

// ParseFormat resolves a user-supplied format name. The empty string
// resolves to FormatPDF.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatPNG, FormatWebP, FormatSVG:
		return f, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Ext returns the file extension used in storage keys.
func (f Format) Ext() string {
	return string(f)
}

// ContentType returns the MIME type stored alongside the artifact.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "application/pdf"
	}
}

// Raster reports whether the format is a bitmap encoding.
func (f Format) Raster() bool {
	return f == FormatPNG || f == FormatWebP
}
