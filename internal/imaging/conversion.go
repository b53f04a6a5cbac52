package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// ErrUndecodable is returned when the uploaded bytes are not an image we can read
var ErrUndecodable = errors.New("undecodable image")

// Decode turns an uploaded card photo or scan into an image.
// Accepts JPEG, PNG, GIF, HEIC/HEIF, PDF (first page) and base64 data URLs of those.
func Decode(data []byte, contentType string) (image.Image, error) {
	if isDataURL(data) {
		decoded, mimeType, err := decodeDataURL(string(data))
		if err != nil {
			return nil, err
		}
		data, contentType = decoded, mimeType
	}

	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrUndecodable)
	}

	switch {
	case mimeType == "application/pdf" || isPDFFormat(data):
		return pdfToImage(data)
	case isHEICFormat(data) || isHEICMimeType(mimeType):
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: decoding HEIC/HEIF image: %v", ErrUndecodable, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: supported formats are JPEG, PNG, GIF, HEIC, HEIF, PDF: %v", ErrUndecodable, err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfToImage renders the first page of a scanned card PDF
func pdfToImage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("%w: opening PDF: %v", ErrUndecodable, err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("%w: rendering PDF page: %v", ErrUndecodable, err)
	}
	return img, nil
}

func isDataURL(data []byte) bool {
	return bytes.HasPrefix(data, []byte("data:"))
}

// decodeDataURL splits "data:image/png;base64,...." into bytes and MIME type
func decodeDataURL(s string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(s), ";base64,")
	if !ok {
		return nil, "", fmt.Errorf("%w: data URL is not base64 encoded", ErrUndecodable)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decoding base64 payload: %v", ErrUndecodable, err)
	}
	return data, strings.TrimPrefix(header, "data:"), nil
}

func isPDFFormat(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// isHEICFormat checks if the image data is in HEIC/HEIF format
// HEIC files carry an ftyp box at offset 4 with a heic-family brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
