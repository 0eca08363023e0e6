package models

import "github.com/shopspring/decimal"

// PaymentConcept is the database representation of a catalog entry that
// line items can reference for default descriptions and prices.
type PaymentConcept struct {
	ConceptID        string          `json:"conceptID"` // Primary Key (UUID)
	Code             string          `json:"code"`      // Unique short code
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	TypeTag          string          `json:"typeTag"`
	BaseAmount       decimal.Decimal `json:"baseAmount"`
	AppliesToProgram bool            `json:"appliesToProgram"`
	AppliesToStudent bool            `json:"appliesToStudent"`
	DisplayOrder     int             `json:"displayOrder"`
	Active           bool            `json:"active"`
	AuditFields
}
