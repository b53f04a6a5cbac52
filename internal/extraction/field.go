// Package extraction turns OCR detections from card regions into canonical field values.
//
// Every normalizer returns a Field that is either a canonical value or Unknown; extraction
// failures never surface as errors. Only collaborator failures (preprocessing, OCR) do.
package extraction

import (
	"bytes"
	"encoding/json"

	"github.com/zombor/card-reader/internal/ocr"
)

// Field is a normalized value or the unknown marker
type Field struct {
	value string
	known bool
}

// Known wraps a canonical value
func Known(value string) Field {
	return Field{value: value, known: true}
}

// Unknown is the value of a field that could not be read
func Unknown() Field {
	return Field{}
}

// Value returns the canonical value and whether the field is known
func (f Field) Value() (string, bool) {
	return f.value, f.known
}

// Known reports whether the field holds a value
func (f Field) Known() bool {
	return f.known
}

// Equal reports whether both fields are known and hold the same value
func (f Field) Equal(other Field) bool {
	return f.known && other.known && f.value == other.value
}

// String returns the value, or "unknown"
func (f Field) String() string {
	if !f.known {
		return "unknown"
	}
	return f.value
}

// MarshalJSON encodes unknown as null
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.known {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON decodes null as unknown
func (f *Field) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Unknown()
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Known(v)
	return nil
}

// Normalizer turns the detections of one region into a field
type Normalizer func(detections []ocr.Detection) Field

// Result is anything an extraction can produce; the controller keeps retrying while it is not Known
type Result interface {
	Known() bool
}
