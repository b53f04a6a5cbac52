package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zombor/card-reader/internal/ocr"
)

var (
	nameAlphabet     = regexp.MustCompile(`^[a-záéíóöőúüű\s]+$`)
	uppercaseLetter  = regexp.MustCompile(`[A-Z]`)
	nationalityCode  = regexp.MustCompile(`[A-Z]{3}`)
	nationalityToken = regexp.MustCompile(`^[A-Z]{3}$`)
	fixedIdentifier  = regexp.MustCompile(`[0-9O]{6}[A-Z]{2}`)
)

// maxNameCandidates is the most name lines a region may yield before the read is ambiguous
const maxNameCandidates = 3

// confident returns the detections strictly above minConfidence
func confident(detections []ocr.Detection, minConfidence float64) []ocr.Detection {
	out := make([]ocr.Detection, 0, len(detections))
	for _, d := range detections {
		if d.Confidence > minConfidence {
			out = append(out, d)
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Name reads a person's name printed in capitals, e.g. "KOVÁCS" "ANNA" -> "Kovács Anna"
func Name(detections []ocr.Detection) Field {
	var candidates []string
	for _, d := range confident(detections, 0.5) {
		text := strings.ToLower(strings.ReplaceAll(d.Text, "0", "O"))
		if nameAlphabet.MatchString(text) {
			candidates = append(candidates, text)
		}
	}
	if len(candidates) == 0 || len(candidates) > maxNameCandidates {
		return Unknown()
	}

	tokens := strings.Fields(strings.Join(candidates, " "))
	if len(tokens) < 2 {
		return Unknown()
	}
	caser := cases.Title(language.Hungarian)
	for i, t := range tokens {
		tokens[i] = caser.String(t)
	}
	return Known(strings.Join(tokens, " "))
}

// Sex reads the sex box; N (nő) is female and F (férfi) is male
func Sex(detections []ocr.Detection) Field {
	var letters []string
	for _, d := range detections {
		letters = append(letters, uppercaseLetter.FindAllString(d.Text, -1)...)
	}
	if len(letters) == 0 {
		return Unknown()
	}
	// F also appears in FFI/FÉRFI while N only marks the female box
	for _, l := range letters {
		if l == "N" {
			return Known("female")
		}
	}
	for _, l := range letters {
		if l == "F" {
			return Known("male")
		}
	}
	return Unknown()
}

// Nationality returns the first three-letter country code found. A standalone uppercase
// token such as the "HUN" of "Magyar HUN" wins over letters scanned out of a longer word.
func Nationality(detections []ocr.Detection) Field {
	for _, d := range detections {
		for _, token := range strings.Fields(d.Text) {
			if nationalityToken.MatchString(token) {
				return Known(token)
			}
		}
	}
	for _, d := range detections {
		if m := nationalityCode.FindString(strings.ToUpper(d.Text)); m != "" {
			return Known(m)
		}
	}
	return Unknown()
}

// FixedFormatIdentifier reads the six digits plus two letters document number.
// A letter O inside the digit run is read as zero.
func FixedFormatIdentifier(detections []ocr.Detection) Field {
	for _, d := range detections {
		m := fixedIdentifier.FindString(strings.ToUpper(d.Text))
		if m == "" {
			continue
		}
		return Known(strings.ReplaceAll(m[:6], "O", "0") + m[6:])
	}
	return Unknown()
}

// NumericIdentifier concatenates the confident numeric detections and returns the first run of
// exactly digits digits
func NumericIdentifier(digits int) Normalizer {
	pattern := regexp.MustCompile(fmt.Sprintf(`[0-9]{%d}`, digits))
	return func(detections []ocr.Detection) Field {
		var sb strings.Builder
		for _, d := range confident(detections, 0.6) {
			text := strings.ReplaceAll(strings.ReplaceAll(d.Text, " ", ""), "O", "0")
			if isDigits(text) {
				sb.WriteString(text)
			}
		}
		if m := pattern.FindString(sb.String()); m != "" {
			return Known(m)
		}
		return Unknown()
	}
}

// Joined concatenates the confident detections in reading order (birthplace, school)
func Joined(minConfidence float64) Normalizer {
	return func(detections []ocr.Detection) Field {
		var parts []string
		for _, d := range confident(detections, minConfidence) {
			if t := strings.TrimSpace(d.Text); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) == 0 {
			return Unknown()
		}
		return Known(strings.Join(parts, " "))
	}
}

// Address joins the address lines; a Hungarian address starts with a 4-digit postal code
func Address(detections []ocr.Detection) Field {
	value, ok := Joined(0.4)(detections).Value()
	if !ok || len(value) < 4 || !isDigits(value[:4]) {
		return Unknown()
	}
	return Known(value)
}

// Year returns the first four digit number among the confident detections
func Year(detections []ocr.Detection) Field {
	for _, d := range confident(detections, 0.4) {
		for _, token := range strings.Fields(d.Text) {
			if len(token) == 4 && isDigits(token) {
				return Known(token)
			}
		}
	}
	return Unknown()
}

// Checked discards the result of n unless valid accepts it
func Checked(n Normalizer, valid func(string) bool) Normalizer {
	return func(detections []ocr.Detection) Field {
		f := n(detections)
		if v, ok := f.Value(); !ok || !valid(v) {
			return Unknown()
		}
		return f
	}
}
