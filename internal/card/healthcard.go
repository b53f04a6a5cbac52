package card

import (
	"github.com/zombor/card-reader/internal/extraction"
	"github.com/zombor/card-reader/internal/ocr"
)

var (
	healthName = fieldConfig{
		Name:      "name",
		Region:    region(0.25, 0.42, 0.2, 0.8),
		Allowlist: ocr.AllowUppercaseHungarian,
		Normalize: extraction.Name,
	}
	healthBirthDate = fieldConfig{
		Name:      "birth_date",
		Region:    region(0.47, 0.62, 0.27, 0.6),
		Allowlist: ocr.AllowDates,
		Normalize: extraction.Date(0.7, false),
	}
	healthIssueDate = fieldConfig{
		Name:      "issue_date",
		Region:    region(0.80, 1.0, 0.35, 0.85),
		Normalize: extraction.Date(0.5, false),
	}
	// the nine digit social security number, rejected unless its check digit matches
	healthCardNumber = fieldConfig{
		Name:      "card_number",
		Region:    region(0.62, 0.82, 0.1, 0.65),
		Normalize: extraction.Checked(extraction.NumericIdentifier(9), extraction.ValidCardNumber),
	}
)

func healthCardSteps() []step[HealthCardDraft] {
	return []step[HealthCardDraft]{
		bind(front, healthName, func(d *HealthCardDraft, v extraction.Field) { d.Name = v }),
		bind(front, healthBirthDate, func(d *HealthCardDraft, v extraction.Field) { d.BirthDate = v }),
		bind(front, healthIssueDate, func(d *HealthCardDraft, v extraction.Field) { d.IssueDate = v }),
		bind(front, healthCardNumber, func(d *HealthCardDraft, v extraction.Field) { d.CardNumber = v }),
	}
}
