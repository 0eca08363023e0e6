package mapping

import (
	"github.com/formagest/ledger_backend/internal/core/domain"
	"github.com/formagest/ledger_backend/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:         d.TransactionID,
		VoucherNumber:         d.VoucherNumber,
		VoucherDate:           d.VoucherDate,
		VoucherSeq:            d.VoucherSeq,
		StudentID:             d.StudentID,
		ProgramID:             d.ProgramID,
		EnrollmentID:          d.EnrollmentID,
		PaymentDate:           d.PaymentDate,
		PaymentMethod:         models.PaymentMethod(d.PaymentMethod),
		BankName:              d.BankName,
		BankAccount:           d.BankAccount,
		ExternalReceiptNumber: d.ExternalReceiptNumber,
		TotalAmount:           d.TotalAmount,
		DiscountAmount:        d.DiscountAmount,
		FinalAmount:           d.FinalAmount,
		Status:                models.TransactionStatus(d.Status),
		Notes:                 d.Notes,
		RegisteredBy:          d.RegisteredBy,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:         m.TransactionID,
		VoucherNumber:         m.VoucherNumber,
		VoucherDate:           m.VoucherDate,
		VoucherSeq:            m.VoucherSeq,
		StudentID:             m.StudentID,
		ProgramID:             m.ProgramID,
		EnrollmentID:          m.EnrollmentID,
		PaymentDate:           m.PaymentDate,
		PaymentMethod:         domain.PaymentMethod(m.PaymentMethod),
		BankName:              m.BankName,
		BankAccount:           m.BankAccount,
		ExternalReceiptNumber: m.ExternalReceiptNumber,
		TotalAmount:           m.TotalAmount,
		DiscountAmount:        m.DiscountAmount,
		FinalAmount:           m.FinalAmount,
		Status:                domain.TransactionStatus(m.Status),
		Notes:                 m.Notes,
		RegisteredBy:          m.RegisteredBy,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLineItem converts a domain TransactionLineItem to a model TransactionLineItem
func ToModelLineItem(d domain.TransactionLineItem) models.TransactionLineItem {
	return models.TransactionLineItem{
		LineItemID:    d.LineItemID,
		TransactionID: d.TransactionID,
		ConceptID:     d.ConceptID,
		Description:   d.Description,
		Quantity:      d.Quantity,
		UnitPrice:     d.UnitPrice,
		Subtotal:      d.Subtotal,
		Position:      d.Position,
	}
}

// ToDomainLineItem converts a model TransactionLineItem to a domain TransactionLineItem
func ToDomainLineItem(m models.TransactionLineItem) domain.TransactionLineItem {
	return domain.TransactionLineItem{
		LineItemID:    m.LineItemID,
		TransactionID: m.TransactionID,
		ConceptID:     m.ConceptID,
		Description:   m.Description,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		Subtotal:      m.Subtotal,
		Position:      m.Position,
	}
}

// ToDomainLineItemSlice converts a slice of model TransactionLineItems to domain ones
func ToDomainLineItemSlice(ms []models.TransactionLineItem) []domain.TransactionLineItem {
	ds := make([]domain.TransactionLineItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLineItem(m)
	}
	return ds
}
