package extraction

import (
	"regexp"
	"strings"

	"github.com/zombor/card-reader/internal/ocr"
)

var (
	schoolYearCode = regexp.MustCompile(`^\d{2}/\d{2}$`)
	// the slash of "24/25" is often read as a 1
	schoolYearMisread = regexp.MustCompile(`^\d{5}$`)
)

// StickerExpiry reads the validity sticker on the back of a student card.
// The sticker carries a school year code such as "24/25" and a semester mark ("1." or "2.").
// A first-semester sticker is valid until 31 March, a second-semester or unmarked one until 31 October.
func StickerExpiry(detections []ocr.Detection) Field {
	var yearCode string
	semester := 0
	for _, d := range confident(detections, 0.3) {
		for _, text := range strings.Fields(d.Text) {
			switch {
			case schoolYearCode.MatchString(text):
				yearCode = text
			case schoolYearMisread.MatchString(text) && text[2] == '1':
				yearCode = text[:2] + "/" + text[3:]
			case !isDigits(text) && text[0] >= '0' && text[0] <= '9':
				semester = int(text[0] - '0')
			}
		}
	}
	if yearCode == "" {
		return Unknown()
	}
	return Known(semesterExpiry("20"+yearCode[3:], semester))
}

// YearExpiry turns a printed validity year into an expiry date, treating it as an unmarked sticker
func YearExpiry(year string) Field {
	if len(year) != 4 || !isDigits(year) {
		return Unknown()
	}
	return Known(semesterExpiry(year, 0))
}

func semesterExpiry(year string, semester int) string {
	if semester == 0 || semester == 2 {
		return year + "-10-31"
	}
	return year + "-03-31"
}
