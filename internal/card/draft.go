package card

import "github.com/zombor/card-reader/internal/extraction"

// IDCardDraft collects the readings of both sides of an ID card, including the redundant
// back-side document number and the MRZ, before validation
type IDCardDraft struct {
	Name           extraction.Field
	Sex            extraction.Field
	Nationality    extraction.Field
	BirthDate      extraction.Field
	ExpiryDate     extraction.Field
	Identifier     extraction.Field
	CAN            extraction.Field
	MothersName    extraction.Field
	IdentifierBack extraction.Field
	BirthPlace     extraction.Field
	MRZ            extraction.MRZRecord
	Errors         []ValidationError
}

// Record converts the draft into the output record
func (d *IDCardDraft) Record() *IDCard {
	errs := d.Errors
	if errs == nil {
		errs = []ValidationError{}
	}
	return &IDCard{
		Name:        d.Name,
		Sex:         d.Sex,
		Nationality: d.Nationality,
		BirthDate:   d.BirthDate,
		ExpiryDate:  d.ExpiryDate,
		Identifier:  d.Identifier,
		CAN:         d.CAN,
		MothersName: d.MothersName,
		BirthPlace:  d.BirthPlace,
		Errors:      errs,
	}
}

// HealthCardDraft collects the readings of a health insurance card
type HealthCardDraft struct {
	Name       extraction.Field
	BirthDate  extraction.Field
	IssueDate  extraction.Field
	CardNumber extraction.Field
}

// Record converts the draft into the output record
func (d *HealthCardDraft) Record() *HealthCard {
	return &HealthCard{
		Name:       d.Name,
		BirthDate:  d.BirthDate,
		IssueDate:  d.IssueDate,
		CardNumber: d.CardNumber,
	}
}

// StudentCardDraft collects the readings of both sides of a student card
type StudentCardDraft struct {
	Name          extraction.Field
	BirthDate     extraction.Field
	PlaceOfBirth  extraction.Field
	OMNumber      extraction.Field
	CardNumber    extraction.Field
	IssueDate     extraction.Field
	ExpiryYear    extraction.Field
	School        extraction.Field
	Address       extraction.Field
	ExpirySticker extraction.Field
}

// Record converts the draft into the output record.
// The sticker wins over the printed validity year.
func (d *StudentCardDraft) Record() *StudentCard {
	expiry := d.ExpirySticker
	if !expiry.Known() {
		year, _ := d.ExpiryYear.Value()
		expiry = extraction.YearExpiry(year)
	}
	return &StudentCard{
		Name:         d.Name,
		BirthDate:    d.BirthDate,
		PlaceOfBirth: d.PlaceOfBirth,
		OMNumber:     d.OMNumber,
		CardNumber:   d.CardNumber,
		IssueDate:    d.IssueDate,
		ExpiryDate:   expiry,
		School:       d.School,
		Address:      d.Address,
	}
}
