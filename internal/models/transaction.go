package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus mirrors the status column values on the transactions table.
type TransactionStatus string

// PaymentMethod mirrors the payment_method column values on the transactions table.
type PaymentMethod string

// Transaction is the database representation of a ledger transaction.
type Transaction struct {
	TransactionID         string            `json:"transactionID"` // Primary Key (UUID)
	VoucherNumber         string            `json:"voucherNumber"` // Unique
	VoucherDate           time.Time         `json:"voucherDate"`
	VoucherSeq            int               `json:"voucherSeq"` // Per-day sequence, unique with VoucherDate
	StudentID             *string           `json:"studentID"`
	ProgramID             *string           `json:"programID"`
	EnrollmentID          *string           `json:"enrollmentID"`
	PaymentDate           time.Time         `json:"paymentDate"`
	PaymentMethod         PaymentMethod     `json:"paymentMethod"`
	BankName              string            `json:"bankName"`
	BankAccount           string            `json:"bankAccount"`
	ExternalReceiptNumber *string           `json:"externalReceiptNumber"`
	TotalAmount           decimal.Decimal   `json:"totalAmount"`
	DiscountAmount        decimal.Decimal   `json:"discountAmount"`
	FinalAmount           decimal.Decimal   `json:"finalAmount"`
	Status                TransactionStatus `json:"status"`
	Notes                 string            `json:"notes"`
	RegisteredBy          string            `json:"registeredBy"`
	AuditFields
}

// TransactionLineItem is the database representation of a single line within a transaction.
type TransactionLineItem struct {
	LineItemID    string          `json:"lineItemID"` // Primary Key (UUID)
	TransactionID string          `json:"transactionID"`
	ConceptID     string          `json:"conceptID"`
	Description   string          `json:"description"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Position      int             `json:"position"` // 1-based order within the transaction
}
