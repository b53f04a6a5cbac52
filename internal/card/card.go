package card

import (
	"time"

	"github.com/zombor/card-reader/internal/extraction"
)

// Kind identifies the type of card that was read
type Kind string

const (
	KindID      Kind = "id"
	KindHealth  Kind = "health"
	KindStudent Kind = "student"
)

// ParseKind parses a card kind name
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindID, KindHealth, KindStudent:
		return Kind(s), true
	}
	return "", false
}

// ValidationError describes an inconsistency between redundant readings of an ID card.
// It flags the read for manual review and never rejects it.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// IDCard is the output record of a national ID card read
type IDCard struct {
	Name        extraction.Field  `json:"name"`
	Sex         extraction.Field  `json:"sex"`
	Nationality extraction.Field  `json:"nationality"`
	BirthDate   extraction.Field  `json:"birth_date"`
	ExpiryDate  extraction.Field  `json:"expiry_date"`
	Identifier  extraction.Field  `json:"identifier"`
	CAN         extraction.Field  `json:"can"`
	MothersName extraction.Field  `json:"mothers_name"`
	BirthPlace  extraction.Field  `json:"birth_place"`
	Errors      []ValidationError `json:"errors"`
}

// HealthCard is the output record of a health insurance card read
type HealthCard struct {
	Name       extraction.Field `json:"name"`
	BirthDate  extraction.Field `json:"birth_date"`
	IssueDate  extraction.Field `json:"issue_date"`
	CardNumber extraction.Field `json:"card_number"`
}

// StudentCard is the output record of a student card read
type StudentCard struct {
	Name         extraction.Field `json:"name"`
	BirthDate    extraction.Field `json:"birth_date"`
	PlaceOfBirth extraction.Field `json:"place_of_birth"`
	OMNumber     extraction.Field `json:"om_number"`
	CardNumber   extraction.Field `json:"card_number"`
	IssueDate    extraction.Field `json:"issue_date"`
	ExpiryDate   extraction.Field `json:"expiry_date"`
	School       extraction.Field `json:"school"`
	Address      extraction.Field `json:"address"`
}

// Read is a stored card read with its cleaned images
type Read struct {
	ID          string       `json:"id"`
	Kind        Kind         `json:"kind"`
	FrontImage  string       `json:"front_image"`
	BackImage   string       `json:"back_image,omitempty"`
	IDCard      *IDCard      `json:"id_card,omitempty"`
	HealthCard  *HealthCard  `json:"health_card,omitempty"`
	StudentCard *StudentCard `json:"student_card,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
