// Package extractions stores regions of interest found within documents
// (figures, tables, equations and the like) with their page, bounding box
// and an optional payload.
package extractions

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Extraction is a classified region of a document page. Exactly one of
// Data, Path and URL may be set.
type Extraction struct {
	ID           uuid.UUID       `json:"id"`
	DocumentID   uuid.UUID       `json:"document_id"`
	Category     string          `json:"category"`
	Label        string          `json:"label"`
	Score        float64         `json:"score"`
	Page         int             `json:"page_num"`
	BBox         *BBox           `json:"bbox"`
	Data         json.RawMessage `json:"data,omitempty"`
	Path         *string         `json:"path,omitempty"`
	URL          *string         `json:"url,omitempty"`
	RegisteredBy *string         `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
}

// BBox is x0, y0, x1, y1 in page points with the origin at the top left.
type BBox [4]float64

// UnmarshalJSON requires exactly four coordinates.
func (b *BBox) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) != 4 {
		return fmt.Errorf("%w: bbox needs 4 values, got %d", ErrInvalidExtraction, len(v))
	}
	copy(b[:], v)
	return nil
}

// CreateCommand is the JSON body accepted when registering an extraction.
type CreateCommand struct {
	Category string          `json:"category"`
	Label    string          `json:"label"`
	Score    float64         `json:"score"`
	Page     int             `json:"page_num"`
	BBox     *BBox           `json:"bbox,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Path     *string         `json:"path,omitempty"`
	URL      *string         `json:"url,omitempty"`
}

// Validate checks required fields, bounding box values and payload exclusivity.
func (c *CreateCommand) Validate() error {
	if strings.TrimSpace(c.Category) == "" {
		return fmt.Errorf("%w: category required", ErrInvalidExtraction)
	}
	if c.Page < 0 {
		return fmt.Errorf("%w: page_num must be non-negative", ErrInvalidExtraction)
	}
	if math.IsNaN(c.Score) || math.IsInf(c.Score, 0) {
		return fmt.Errorf("%w: score must be finite", ErrInvalidExtraction)
	}
	if c.BBox != nil {
		for _, v := range c.BBox {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: bbox coordinates must be finite", ErrInvalidExtraction)
			}
		}
	}

	payloads := 0
	if len(c.Data) > 0 && string(c.Data) != "null" {
		if !json.Valid(c.Data) {
			return fmt.Errorf("%w: data is not valid JSON", ErrInvalidExtraction)
		}
		payloads++
	} else {
		c.Data = nil
	}
	if c.Path != nil && *c.Path != "" {
		payloads++
	}
	if c.URL != nil && *c.URL != "" {
		payloads++
	}
	if payloads > 1 {
		return fmt.Errorf("%w: at most one of data, path and url", ErrInvalidExtraction)
	}

	return nil
}
