package card

import (
	"time"

	"github.com/zombor/card-reader/internal/extraction"
	"github.com/zombor/card-reader/internal/ocr"
)

// ID card front
var (
	idName = fieldConfig{
		Name:      "name",
		Region:    region(0.23, 0.3757, 0.3437, 0.7936),
		Allowlist: ocr.AllowUppercaseHungarian,
		Normalize: extraction.Name,
	}
	idSex = fieldConfig{
		Name:      "sex",
		Region:    region(0.4208, 0.5109, 0.4594, 0.6483),
		Normalize: extraction.Sex,
	}
	idNationality = fieldConfig{
		Name:      "nationality",
		Region:    region(0.4208, 0.4909, 0.8928, 1.0),
		Normalize: extraction.Nationality,
	}
	idBirthDate = fieldConfig{
		Name:      "birth_date",
		Region:    region(0.4709, 0.5511, 0.6944, 1.0),
		Normalize: extraction.Date(0.5, true),
	}
	idExpiryDate = fieldConfig{
		Name:      "expiry_date",
		Region:    region(0.5260, 0.6012, 0.6944, 1.0),
		Normalize: extraction.Date(0.5, true),
	}
	idIdentifier = fieldConfig{
		Name:      "identifier",
		Region:    region(0.5661, 0.6663, 0.6944, 1.0),
		Normalize: extraction.FixedFormatIdentifier,
	}
	idCAN = fieldConfig{
		Name:      "can",
		Region:    region(0.6262, 0.7515, 0.4298, 0.6779),
		Normalize: extraction.NumericIdentifier(6),
	}
)

// ID card back
var (
	idMothersName = fieldConfig{
		Name:      "mothers_name",
		Region:    region(0.39, 0.47, 0.0, 0.394),
		Allowlist: ocr.AllowUppercaseHungarian,
		Normalize: extraction.Name,
	}
	idIdentifierBack = fieldConfig{
		Name:      "identifier_back",
		Region:    region(0.3022, 0.4561, 0.6626, 1.0),
		Normalize: extraction.FixedFormatIdentifier,
	}
	idBirthPlace = fieldConfig{
		Name:      "birth_place",
		Region:    region(0.09, 0.19, 0.0, 0.394),
		Allowlist: ocr.AllowBirthplace,
		Normalize: extraction.Joined(0.55),
	}
	idMRZRegion = region(0.6154, 1.0, 0.0, 1.0)
)

func idCardSteps(now func() time.Time) []step[IDCardDraft] {
	mrz := extraction.FieldConfig[extraction.MRZRecord]{
		Name:      "mrz",
		Region:    idMRZRegion,
		Normalize: extraction.MRZ(now),
	}

	return []step[IDCardDraft]{
		bind(front, idName, func(d *IDCardDraft, v extraction.Field) { d.Name = v }),
		bind(front, idSex, func(d *IDCardDraft, v extraction.Field) { d.Sex = v }),
		bind(front, idNationality, func(d *IDCardDraft, v extraction.Field) { d.Nationality = v }),
		bind(front, idBirthDate, func(d *IDCardDraft, v extraction.Field) { d.BirthDate = v }),
		bind(front, idExpiryDate, func(d *IDCardDraft, v extraction.Field) { d.ExpiryDate = v }),
		bind(front, idIdentifier, func(d *IDCardDraft, v extraction.Field) { d.Identifier = v }),
		bind(front, idCAN, func(d *IDCardDraft, v extraction.Field) { d.CAN = v }),
		bind(back, idMothersName, func(d *IDCardDraft, v extraction.Field) { d.MothersName = v }),
		bind(back, idIdentifierBack, func(d *IDCardDraft, v extraction.Field) { d.IdentifierBack = v }),
		bind(back, idBirthPlace, func(d *IDCardDraft, v extraction.Field) { d.BirthPlace = v }),
		bind(back, mrz, func(d *IDCardDraft, v extraction.MRZRecord) { d.MRZ = v }),
	}
}
