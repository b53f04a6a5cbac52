package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/card-reader/internal/imaging"
)

// Tesseract implements the Engine interface using a local Tesseract installation
type Tesseract struct {
	client *gosseract.Client
}

// NewTesseract creates a Tesseract engine for the given trained-data languages (e.g. "hun")
func NewTesseract(languages ...string) (*Tesseract, error) {
	if len(languages) == 0 {
		languages = []string{"hun"}
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting tesseract languages: %w", err)
	}
	// Card regions are small single blocks of text
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting page segmentation mode: %w", err)
	}

	return &Tesseract{client: client}, nil
}

// Read recognizes text lines in img
func (t *Tesseract) Read(ctx context.Context, img image.Image, allowlist Allowlist) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	if err := t.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("setting image: %w", err)
	}
	// An empty whitelist resets any restriction left over from the previous region
	if err := t.client.SetWhitelist(string(allowlist)); err != nil {
		return nil, fmt.Errorf("setting whitelist: %w", err)
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	detections := make([]Detection, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		detections = append(detections, Detection{
			Text:       text,
			Confidence: clampConfidence(b.Confidence / 100.0),
			Location:   b.Box,
		})
	}
	return detections, nil
}

// Close closes the underlying tesseract client
func (t *Tesseract) Close() error {
	return t.client.Close()
}
