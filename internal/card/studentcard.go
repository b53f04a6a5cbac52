package card

import (
	"github.com/zombor/card-reader/internal/extraction"
	"github.com/zombor/card-reader/internal/ocr"
)

// Student card front. Printing on these cards varies a lot in contrast, so most regions sweep.
var (
	studentName = fieldConfig{
		Name:          "name",
		Region:        region(0.2, 0.4, 0.26, 0.65),
		Allowlist:     ocr.AllowUppercaseHungarian,
		Preprocessing: sweep(9, 70, 20, 150),
		Normalize:     extraction.Name,
	}
	studentBirthDate = fieldConfig{
		Name:          "birth_date",
		Region:        region(0.40, 0.52, 0.25, 0.67),
		Allowlist:     ocr.AllowDates,
		Preprocessing: sweep(9, 55, 10, 150),
		Normalize:     extraction.Date(0.5, false),
	}
	studentPlaceOfBirth = fieldConfig{
		Name:          "place_of_birth",
		Region:        region(0.45, 0.55, 0.27, 0.7),
		Allowlist:     ocr.AllowUppercaseHungarian,
		Preprocessing: sweep(9, 55, 10, 150),
		Normalize:     extraction.Joined(0.55),
	}
	studentOMNumber = fieldConfig{
		Name:          "om_number",
		Region:        region(0.63, 0.8, 0.27, 0.6),
		Allowlist:     ocr.AllowNumbers,
		Preprocessing: sweep(9, 60, 10, 150),
		Normalize:     extraction.NumericIdentifier(10),
	}
	studentCardNumber = fieldConfig{
		Name:          "card_number",
		Region:        region(0.0, 0.2, 0.63, 1.0),
		Allowlist:     ocr.AllowNumbers,
		Preprocessing: fixed(5, 100),
		Normalize:     extraction.NumericIdentifier(9),
	}
)

// Student card back
var (
	studentIssueDate = fieldConfig{
		Name:          "issue_date",
		Region:        region(0.15, 0.28, 0.48, 0.71),
		Allowlist:     ocr.AllowDates,
		Preprocessing: sweep(11, 55, 10, 150),
		Normalize:     extraction.Date(0.25, false),
	}
	studentExpiryYear = fieldConfig{
		Name:          "expiry_year",
		Region:        region(0.28, 0.4, 0.48, 0.68),
		Allowlist:     ocr.AllowNumbers,
		Preprocessing: fixed(7, 65),
		Normalize:     extraction.Year,
	}
	studentSchool = fieldConfig{
		Name:   "school",
		Region: region(0.43, 0.54, 0.0, 0.8),
		Preprocessing: &extraction.Preprocessing{
			KernelSize: 7,
			Threshold:  120,
			Otsu:       true,
		},
		Normalize: extraction.Joined(0.3),
	}
	studentAddress = fieldConfig{
		Name:          "address",
		Region:        region(0.593, 0.72, 0.05, 0.6),
		Allowlist:     ocr.AllowHungarianAlphanumeric,
		Preprocessing: sweep(9, 60, 10, 150),
		Normalize:     extraction.Address,
	}
	studentSticker = fieldConfig{
		Name:      "expiry_sticker",
		Region:    region(0.69, 0.95, 0.75, 1.0),
		Normalize: extraction.StickerExpiry,
	}
)

func studentCardSteps() []step[StudentCardDraft] {
	return []step[StudentCardDraft]{
		bind(front, studentName, func(d *StudentCardDraft, v extraction.Field) { d.Name = v }),
		bind(front, studentBirthDate, func(d *StudentCardDraft, v extraction.Field) { d.BirthDate = v }),
		bind(front, studentPlaceOfBirth, func(d *StudentCardDraft, v extraction.Field) { d.PlaceOfBirth = v }),
		bind(front, studentOMNumber, func(d *StudentCardDraft, v extraction.Field) { d.OMNumber = v }),
		bind(front, studentCardNumber, func(d *StudentCardDraft, v extraction.Field) { d.CardNumber = v }),
		bind(back, studentIssueDate, func(d *StudentCardDraft, v extraction.Field) { d.IssueDate = v }),
		bind(back, studentExpiryYear, func(d *StudentCardDraft, v extraction.Field) { d.ExpiryYear = v }),
		bind(back, studentSchool, func(d *StudentCardDraft, v extraction.Field) { d.School = v }),
		bind(back, studentAddress, func(d *StudentCardDraft, v extraction.Field) { d.Address = v }),
		bind(back, studentSticker, func(d *StudentCardDraft, v extraction.Field) { d.ExpirySticker = v }),
	}
}
