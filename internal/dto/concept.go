package dto

import (
	"github.com/formagest/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateConceptRequest defines the payload to add a payment concept to the catalog.
type CreateConceptRequest struct {
	Code             string          `json:"code" binding:"required"`
	Name             string          `json:"name" binding:"required"`
	Description      string          `json:"description,omitempty"`
	TypeTag          string          `json:"typeTag" binding:"required"`
	BaseAmount       decimal.Decimal `json:"baseAmount" binding:"required"`
	AppliesToProgram bool            `json:"appliesToProgram"`
	AppliesToStudent bool            `json:"appliesToStudent"`
	DisplayOrder     int             `json:"displayOrder"`
}

// UpdateConceptRequest defines a partial update of a catalog entry.
type UpdateConceptRequest struct {
	Name             *string          `json:"name,omitempty"`
	Description      *string          `json:"description,omitempty"`
	TypeTag          *string          `json:"typeTag,omitempty"`
	BaseAmount       *decimal.Decimal `json:"baseAmount,omitempty"`
	AppliesToProgram *bool            `json:"appliesToProgram,omitempty"`
	AppliesToStudent *bool            `json:"appliesToStudent,omitempty"`
	DisplayOrder     *int             `json:"displayOrder,omitempty"`
	Active           *bool            `json:"active,omitempty"`
}

// ConceptResponse defines the data returned for a payment concept.
type ConceptResponse struct {
	ConceptID        string          `json:"conceptID"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	TypeTag          string          `json:"typeTag"`
	BaseAmount       decimal.Decimal `json:"baseAmount"`
	AppliesToProgram bool            `json:"appliesToProgram"`
	AppliesToStudent bool            `json:"appliesToStudent"`
	DisplayOrder     int             `json:"displayOrder"`
	Active           bool            `json:"active"`
}

// ToConceptResponse converts a domain.PaymentConcept to ConceptResponse.
func ToConceptResponse(c *domain.PaymentConcept) ConceptResponse {
	return ConceptResponse{
		ConceptID:        c.ConceptID,
		Code:             c.Code,
		Name:             c.Name,
		Description:      c.Description,
		TypeTag:          c.TypeTag,
		BaseAmount:       c.BaseAmount,
		AppliesToProgram: c.AppliesToProgram,
		AppliesToStudent: c.AppliesToStudent,
		DisplayOrder:     c.DisplayOrder,
		Active:           c.Active,
	}
}

// ToConceptResponses converts a slice of domain.PaymentConcept to responses.
func ToConceptResponses(cs []domain.PaymentConcept) []ConceptResponse {
	responses := make([]ConceptResponse, len(cs))
	for i := range cs {
		responses[i] = ToConceptResponse(&cs[i])
	}
	return responses
}
