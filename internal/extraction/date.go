package extraction

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zombor/card-reader/internal/ocr"
)

const isoDate = "2006-01-02"

var hungarianMonths = []string{
	"január", "február", "március", "április", "május", "június",
	"július", "augusztus", "szeptember", "október", "november", "december",
}

// Date reads a date printed as "1990.01.15.", "1990. január 15." or "15 01 1990".
// Detections at or below minConfidence are ignored; stripSpaces removes spaces inside each
// detection before parsing.
func Date(minConfidence float64, stripSpaces bool) Normalizer {
	return func(detections []ocr.Detection) Field {
		var values []string
		for _, d := range confident(detections, minConfidence) {
			text := strings.ToLower(d.Text)
			if stripSpaces {
				text = strings.ReplaceAll(text, " ", "")
			}
			if text = strings.TrimSpace(text); text != "" {
				values = append(values, text)
			}
		}
		if len(values) == 0 {
			return Unknown()
		}

		combined := strings.Join(values, " ")
		if strings.Count(combined, ".") >= 2 {
			if date, ok := parseDotted(digitCorrect(combined)); ok {
				return Known(date)
			}
		}

		// Month names are matched before digit correction: "október" starts with an o
		for i, month := range hungarianMonths {
			if !strings.Contains(combined, month) {
				continue
			}
			combined = strings.ReplaceAll(strings.ReplaceAll(combined, month, fmt.Sprintf("%d.", i+1)), " ", "")
			if date, ok := parseDotted(digitCorrect(combined)); ok {
				return Known(date)
			}
		}

		tokens := values
		if !stripSpaces {
			tokens = strings.Fields(strings.Join(values, " "))
		}
		if date, ok := parseTokens(tokens); ok {
			return Known(date)
		}
		return Unknown()
	}
}

// digitCorrect replaces the letter o, the usual misread of a zero
func digitCorrect(s string) string {
	return strings.ReplaceAll(s, "o", "0")
}

// parseDotted parses year.month.day, tolerating a trailing dot and spaces around parts
func parseDotted(s string) (string, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return "", false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts[0]) != 4 || len(parts[1]) > 2 || len(parts[2]) > 2 {
		return "", false
	}
	return buildDate(parts[0], parts[1], parts[2])
}

// parseTokens handles three bare numbers with the year first or last
func parseTokens(values []string) (string, bool) {
	if len(values) != 3 {
		return "", false
	}
	tokens := make([]string, len(values))
	for i, v := range values {
		v = digitCorrect(v)
		if !isDigits(v) {
			return "", false
		}
		tokens[i] = v
	}

	switch {
	case len(tokens[0]) == 4:
		return buildDate(tokens[0], tokens[1], tokens[2])
	case len(tokens[2]) == 4:
		return buildDate(tokens[2], tokens[1], tokens[0])
	}
	return "", false
}

// buildDate validates the calendar date and formats it as ISO 8601
func buildDate(year, month, day string) (string, bool) {
	if !isDigits(year) || !isDigits(month) || !isDigits(day) || len(month) > 2 || len(day) > 2 {
		return "", false
	}
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return validDate(y, m, d)
}

func validDate(y, m, d int) (string, bool) {
	if y < 1 || y > 9999 || m < 1 || m > 12 || d < 1 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", false
	}
	return t.Format(isoDate), true
}
