package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the aggregate root of the payment ledger: a single recorded
// payment event against a student, program, or enrollment, itemized into
// line items and identified by a unique voucher number.
type Transaction struct {
	TransactionID         string                `json:"transactionID"` // Primary key (UUID)
	VoucherNumber         string                `json:"voucherNumber"` // Assigned once at creation, immutable
	VoucherDate           time.Time             `json:"voucherDate"`   // Calendar day the voucher sequence is scoped to
	VoucherSeq            int                   `json:"voucherSeq"`    // Per-day sequence component of the voucher number
	StudentID             *string               `json:"studentID,omitempty"`
	ProgramID             *string               `json:"programID,omitempty"`
	EnrollmentID          *string               `json:"enrollmentID,omitempty"`
	PaymentDate           time.Time             `json:"paymentDate"`
	PaymentMethod         PaymentMethod         `json:"paymentMethod"`
	BankName              string                `json:"bankName,omitempty"`    // Required for BANK_TRANSFER
	BankAccount           string                `json:"bankAccount,omitempty"` // Payer-side account, free text
	ExternalReceiptNumber *string               `json:"externalReceiptNumber,omitempty"`
	TotalAmount           decimal.Decimal       `json:"totalAmount"`
	DiscountAmount        decimal.Decimal       `json:"discountAmount"`
	FinalAmount           decimal.Decimal       `json:"finalAmount"` // totalAmount - discountAmount
	Status                TransactionStatus     `json:"status"`
	Notes                 string                `json:"notes"` // Editable in every status
	RegisteredBy          string                `json:"registeredBy"`
	LineItems             []TransactionLineItem `json:"lineItems,omitempty"`
	AuditFields
}

// TransactionLineItem is one payable concept within a transaction. Line items
// have no lifecycle of their own; they are written and removed with their
// owning transaction.
type TransactionLineItem struct {
	LineItemID    string          `json:"lineItemID"`
	TransactionID string          `json:"transactionID"`
	ConceptID     string          `json:"conceptID"`
	Description   string          `json:"description"` // Defaults to the concept name
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"` // quantity * unitPrice
	Position      int             `json:"position"` // 1-based display/audit order
}

// IsIncome reports whether the transaction records money coming in.
// Expense records carry a negative final amount.
func (t Transaction) IsIncome() bool {
	return !t.FinalAmount.IsNegative()
}

// TransactionPatch carries a partial update for a transaction. Nil fields are
// left untouched. Status is never part of a patch; it only changes through
// the state machine.
type TransactionPatch struct {
	StudentID             *string
	ProgramID             *string
	EnrollmentID          *string
	PaymentDate           *time.Time
	PaymentMethod         *PaymentMethod
	BankName              *string
	BankAccount           *string
	ExternalReceiptNumber *string
	TotalAmount           *decimal.Decimal
	DiscountAmount        *decimal.Decimal
	FinalAmount           *decimal.Decimal
	Notes                 *string
	LineItems             *[]TransactionLineItem // Full replacement of the item set
}

// FieldNames returns the names of the fields present in the patch, used to
// check the patch against the per-status mutable-field table.
func (p TransactionPatch) FieldNames() []string {
	var fields []string
	if p.StudentID != nil {
		fields = append(fields, FieldStudentID)
	}
	if p.ProgramID != nil {
		fields = append(fields, FieldProgramID)
	}
	if p.EnrollmentID != nil {
		fields = append(fields, FieldEnrollmentID)
	}
	if p.PaymentDate != nil {
		fields = append(fields, FieldPaymentDate)
	}
	if p.PaymentMethod != nil {
		fields = append(fields, FieldPaymentMethod)
	}
	if p.BankName != nil {
		fields = append(fields, FieldBankName)
	}
	if p.BankAccount != nil {
		fields = append(fields, FieldBankAccount)
	}
	if p.ExternalReceiptNumber != nil {
		fields = append(fields, FieldExternalReceiptNumber)
	}
	if p.TotalAmount != nil {
		fields = append(fields, FieldTotalAmount)
	}
	if p.DiscountAmount != nil {
		fields = append(fields, FieldDiscountAmount)
	}
	if p.FinalAmount != nil {
		fields = append(fields, FieldFinalAmount)
	}
	if p.Notes != nil {
		fields = append(fields, FieldNotes)
	}
	if p.LineItems != nil {
		fields = append(fields, FieldLineItems)
	}
	return fields
}

// IsEmpty reports whether the patch carries no changes at all.
func (p TransactionPatch) IsEmpty() bool {
	return len(p.FieldNames()) == 0
}

// TouchesAmounts reports whether any amount field is present in the patch.
func (p TransactionPatch) TouchesAmounts() bool {
	return p.TotalAmount != nil || p.DiscountAmount != nil || p.FinalAmount != nil
}

// TransactionFilters narrows a ledger listing. Nil fields are not applied.
type TransactionFilters struct {
	StudentID     *string
	ProgramID     *string
	EnrollmentID  *string
	Status        *TransactionStatus
	PaymentMethod *PaymentMethod
	DateFrom      *time.Time
	DateTo        *time.Time
}
