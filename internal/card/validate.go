package card

import "github.com/zombor/card-reader/internal/extraction"

// Validate cross-checks the redundant readings of a fully read ID card draft.
//
// Four checks run in order: document number (front, back, MRZ), birth date (front, MRZ),
// expiry date (front, MRZ) and sex (front, MRZ). Each check reports a missing front reading or
// a mismatch with the other readings. Validate only appends to d.Errors and never fails.
func Validate(d *IDCardDraft) []ValidationError {
	checks := []struct {
		field    string
		label    string
		front    extraction.Field
		readings []extraction.Field
	}{
		{"identifier", "document number", d.Identifier, []extraction.Field{d.IdentifierBack, d.MRZ.Identifier}},
		{"birth_date", "birth date", d.BirthDate, []extraction.Field{d.MRZ.BirthDate}},
		{"expiry_date", "expiry date", d.ExpiryDate, []extraction.Field{d.MRZ.Expiry}},
		{"sex", "sex", d.Sex, []extraction.Field{d.MRZ.Sex}},
	}

	for _, c := range checks {
		if !c.front.Known() {
			d.Errors = append(d.Errors, ValidationError{
				Field:   c.field,
				Message: "could not read the " + c.label,
			})
			continue
		}
		for _, r := range c.readings {
			if !c.front.Equal(r) {
				d.Errors = append(d.Errors, ValidationError{
					Field:   c.field,
					Message: "the " + c.label + " on the front does not match the back of the card",
				})
				break
			}
		}
	}
	return d.Errors
}
