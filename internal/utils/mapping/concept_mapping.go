package mapping

import (
	"github.com/formagest/ledger_backend/internal/core/domain"
	"github.com/formagest/ledger_backend/internal/models"
)

// ToModelPaymentConcept converts a domain PaymentConcept to a model PaymentConcept
func ToModelPaymentConcept(d domain.PaymentConcept) models.PaymentConcept {
	return models.PaymentConcept{
		ConceptID:        d.ConceptID,
		Code:             d.Code,
		Name:             d.Name,
		Description:      d.Description,
		TypeTag:          d.TypeTag,
		BaseAmount:       d.BaseAmount,
		AppliesToProgram: d.AppliesToProgram,
		AppliesToStudent: d.AppliesToStudent,
		DisplayOrder:     d.DisplayOrder,
		Active:           d.Active,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPaymentConcept converts a model PaymentConcept to a domain PaymentConcept
func ToDomainPaymentConcept(m models.PaymentConcept) domain.PaymentConcept {
	return domain.PaymentConcept{
		ConceptID:        m.ConceptID,
		Code:             m.Code,
		Name:             m.Name,
		Description:      m.Description,
		TypeTag:          m.TypeTag,
		BaseAmount:       m.BaseAmount,
		AppliesToProgram: m.AppliesToProgram,
		AppliesToStudent: m.AppliesToStudent,
		DisplayOrder:     m.DisplayOrder,
		Active:           m.Active,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPaymentConceptSlice converts a slice of model PaymentConcepts to domain ones
func ToDomainPaymentConceptSlice(ms []models.PaymentConcept) []domain.PaymentConcept {
	ds := make([]domain.PaymentConcept, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPaymentConcept(m)
	}
	return ds
}
