package domain

import "github.com/shopspring/decimal"

// PaymentConcept is a catalog entry for a payable item (tuition, enrollment
// fee, registration, ...). The ledger reads the catalog; it never writes it.
type PaymentConcept struct {
	ConceptID        string          `json:"conceptID"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	TypeTag          string          `json:"typeTag"` // e.g. ENROLLMENT, TUITION, REGISTRATION
	BaseAmount       decimal.Decimal `json:"baseAmount"`
	AppliesToProgram bool            `json:"appliesToProgram"`
	AppliesToStudent bool            `json:"appliesToStudent"`
	DisplayOrder     int             `json:"displayOrder"`
	Active           bool            `json:"active"`
	AuditFields
}
