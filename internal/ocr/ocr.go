package ocr

import (
	"context"
	"image"
)

// Detection is a single recognized text span
type Detection struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"` // 0..1
	Location   image.Rectangle `json:"-"`
}

// Allowlist restricts the characters an engine may recognize
type Allowlist string

const (
	AllowAll                     Allowlist = ""
	AllowDates                   Allowlist = "0123456789 ."
	AllowHungarianAlphanumeric   Allowlist = "0123456789abcdefghijklmnopqrstuvwxyzáéíóöőúüűABCDEFGHIJKLMNOPQRSTUVWXYZÁÉÍÓÖŐÚÜŰ "
	AllowUppercaseEnglish        Allowlist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	AllowUppercaseEnglishNumbers Allowlist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	AllowNumbers                 Allowlist = "0123456789"
	AllowUppercaseHungarian      Allowlist = "ABCDEFGHIJKLMNOPQRSTUVWXYZÁÉÍÓÖŐÚÜŰ "
	AllowBirthplace              Allowlist = "ABCDEFGHIJKLMNOPQRSTUVWXYZÁÉÍÓÖŐÚÜŰ() "
)

// Engine recognizes text in a region image.
// Implementations hold expensive native or network resources and are meant to be
// reused across reads by a single worker; they are not safe for concurrent use.
type Engine interface {
	// Read returns the detections found in img, restricted to allowlist when it is not empty
	Read(ctx context.Context, img image.Image, allowlist Allowlist) ([]Detection, error)
	// Close releases the engine's resources
	Close() error
}
