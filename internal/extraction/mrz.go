package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zombor/card-reader/internal/ocr"
)

var mrzFiller = regexp.MustCompile(`<{2,}`)

// MRZRecord holds the fields decoded from the machine readable zone on the back of an ID card
type MRZRecord struct {
	Identifier Field `json:"identifier"`
	BirthDate  Field `json:"birth_date"`
	Sex        Field `json:"sex"`
	Expiry     Field `json:"expiry"`
}

// Known reports whether any field of the record could be decoded
func (r MRZRecord) Known() bool {
	return r.Identifier.Known() || r.BirthDate.Known() || r.Sex.Known() || r.Expiry.Known()
}

// MRZ decodes the machine readable zone. now anchors the century of two-digit birth years.
//
// The OCR lines are joined with '<' and split on filler runs, so for a TD1 block
//
//	I<HUN123456AB<4<<<<<<<<<<<<<<<
//	8001017M3001015HUN<<<<<<<<<<<6
//
// segment 1 is "HUN123456AB", segment 2 the document number check digit and segment 3
// "8001017M3001015HUN".
func MRZ(now func() time.Time) func(detections []ocr.Detection) MRZRecord {
	return func(detections []ocr.Detection) MRZRecord {
		record := MRZRecord{}

		var lines []string
		for _, d := range confident(detections, 0.25) {
			if t := strings.ReplaceAll(d.Text, " ", ""); t != "" {
				lines = append(lines, t)
			}
		}
		if len(lines) == 0 {
			return record
		}

		segments := strings.Split(mrzFiller.ReplaceAllString(strings.Join(lines, "<"), "<"), "<")
		if len(segments) > 1 && len(segments[1]) > 3 {
			record.Identifier = Known(segments[1][3:])
		}
		if len(segments) <= 3 {
			return record
		}

		data := segments[3]
		if len(data) >= 6 {
			record.BirthDate = mrzDate(data[:6], false, now())
		}
		if len(data) > 7 {
			switch strings.ToUpper(data[7:8]) {
			case "F":
				record.Sex = Known("female")
			case "M":
				record.Sex = Known("male")
			}
		}
		if len(data) >= 14 {
			record.Expiry = mrzDate(data[8:14], true, now())
		}
		return record
	}
}

// mrzDate decodes YYMMDD. Expiry dates are always in this century; birth years above the
// current two-digit year belong to the previous one.
func mrzDate(s string, expiry bool, now time.Time) Field {
	if len(s) != 6 || !isDigits(s) {
		return Unknown()
	}
	yy, _ := strconv.Atoi(s[:2])
	mm, _ := strconv.Atoi(s[2:4])
	dd, _ := strconv.Atoi(s[4:])

	century := 1900
	if expiry || yy <= now.Year()%100 {
		century = 2000
	}
	if date, ok := validDate(century+yy, mm, dd); ok {
		return Known(date)
	}
	return Unknown()
}
