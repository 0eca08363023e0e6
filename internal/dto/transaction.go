package dto

import (
	"time"

	"github.com/formagest/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaymentDateLayout is the wire format for date-only fields.
const PaymentDateLayout = "2006-01-02"

// CreateLineItemRequest defines one line within a transaction creation request.
// Description and UnitPrice may be omitted; the referenced catalog entry then
// supplies the defaults.
type CreateLineItemRequest struct {
	ConceptID   string           `json:"conceptID" binding:"required"`
	Description *string          `json:"description,omitempty"`
	Quantity    int64            `json:"quantity" binding:"required,min=1"`
	UnitPrice   *decimal.Decimal `json:"unitPrice,omitempty"`
	Subtotal    *decimal.Decimal `json:"subtotal,omitempty"`
}

// CreateTransactionRequest defines the payload to register a new transaction.
type CreateTransactionRequest struct {
	StudentID             *string                 `json:"studentID,omitempty"`
	ProgramID             *string                 `json:"programID,omitempty"`
	EnrollmentID          *string                 `json:"enrollmentID,omitempty"`
	PaymentDate           string                  `json:"paymentDate" binding:"required,datetime=2006-01-02"`
	PaymentMethod         string                  `json:"paymentMethod" binding:"required,oneof=CASH BANK_TRANSFER CARD BANK_DEPOSIT QR"`
	BankName              *string                 `json:"bankName,omitempty"`
	BankAccount           *string                 `json:"bankAccount,omitempty"`
	ExternalReceiptNumber *string                 `json:"externalReceiptNumber,omitempty"`
	TotalAmount           decimal.Decimal         `json:"totalAmount" binding:"required"`
	DiscountAmount        *decimal.Decimal        `json:"discountAmount,omitempty"`
	FinalAmount           *decimal.Decimal        `json:"finalAmount,omitempty"`
	Notes                 string                  `json:"notes,omitempty"`
	LineItems             []CreateLineItemRequest `json:"lineItems" binding:"required,min=1,dive"`
}

// UpdateTransactionRequest defines a partial update. Only non-nil fields are
// applied; the status field is deliberately absent, status moves through the
// dedicated status endpoints.
type UpdateTransactionRequest struct {
	StudentID             *string                  `json:"studentID,omitempty"`
	ProgramID             *string                  `json:"programID,omitempty"`
	EnrollmentID          *string                  `json:"enrollmentID,omitempty"`
	PaymentDate           *string                  `json:"paymentDate,omitempty" binding:"omitempty,datetime=2006-01-02"`
	PaymentMethod         *string                  `json:"paymentMethod,omitempty" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD BANK_DEPOSIT QR"`
	BankName              *string                  `json:"bankName,omitempty"`
	BankAccount           *string                  `json:"bankAccount,omitempty"`
	ExternalReceiptNumber *string                  `json:"externalReceiptNumber,omitempty"`
	TotalAmount           *decimal.Decimal         `json:"totalAmount,omitempty"`
	DiscountAmount        *decimal.Decimal         `json:"discountAmount,omitempty"`
	FinalAmount           *decimal.Decimal         `json:"finalAmount,omitempty"`
	Notes                 *string                  `json:"notes,omitempty"`
	LineItems             *[]CreateLineItemRequest `json:"lineItems,omitempty" binding:"omitempty,min=1,dive"`
}

// ChangeStatusRequest defines the payload for a generic status transition.
type ChangeStatusRequest struct {
	Status string  `json:"status" binding:"required,oneof=REGISTERED CONFIRMED PENDING VOID REJECTED"`
	Reason *string `json:"reason,omitempty"`
}

// VoidTransactionRequest defines the payload to void a transaction. The
// reason is kept in the transaction notes.
type VoidTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListTransactionsParams defines the query parameters for listing transactions.
type ListTransactionsParams struct {
	StudentID     *string `form:"studentID"`
	ProgramID     *string `form:"programID"`
	EnrollmentID  *string `form:"enrollmentID"`
	Status        *string `form:"status" binding:"omitempty,oneof=REGISTERED CONFIRMED PENDING VOID REJECTED"`
	PaymentMethod *string `form:"paymentMethod" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD BANK_DEPOSIT QR"`
	DateFrom      *string `form:"dateFrom" binding:"omitempty,datetime=2006-01-02"`
	DateTo        *string `form:"dateTo" binding:"omitempty,datetime=2006-01-02"`
	Page          int     `form:"page" binding:"omitempty,min=1"`
	PageSize      int     `form:"pageSize" binding:"omitempty,min=1,max=200"`
}

// SearchTransactionsParams defines the query parameters for free-text search.
type SearchTransactionsParams struct {
	Query    string `form:"q" binding:"required"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=200"`
}

// LineItemResponse defines the data returned for a transaction line item.
type LineItemResponse struct {
	LineItemID  string          `json:"lineItemID"`
	ConceptID   string          `json:"conceptID"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Position    int             `json:"position"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID         string             `json:"transactionID"`
	VoucherNumber         string             `json:"voucherNumber"`
	StudentID             *string            `json:"studentID,omitempty"`
	ProgramID             *string            `json:"programID,omitempty"`
	EnrollmentID          *string            `json:"enrollmentID,omitempty"`
	PaymentDate           string             `json:"paymentDate"`
	PaymentMethod         string             `json:"paymentMethod"`
	BankName              string             `json:"bankName,omitempty"`
	BankAccount           string             `json:"bankAccount,omitempty"`
	ExternalReceiptNumber *string            `json:"externalReceiptNumber,omitempty"`
	TotalAmount           decimal.Decimal    `json:"totalAmount"`
	DiscountAmount        decimal.Decimal    `json:"discountAmount"`
	FinalAmount           decimal.Decimal    `json:"finalAmount"`
	Status                string             `json:"status"`
	Notes                 string             `json:"notes,omitempty"`
	RegisteredBy          string             `json:"registeredBy"`
	LineItems             []LineItemResponse `json:"lineItems"`
	CreatedAt             time.Time          `json:"createdAt"`
	LastUpdatedAt         time.Time          `json:"lastUpdatedAt"`
}

// PageSummaryResponse carries the aggregates of the returned page's filter.
type PageSummaryResponse struct {
	Count            int64           `json:"count"`
	TotalFinalAmount decimal.Decimal `json:"totalFinalAmount"`
}

// ListTransactionsResponse defines the paginated list payload. Summary covers
// the returned page only, not the whole filter.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"pageSize"`
	Summary      PageSummaryResponse   `json:"summary"`
}

// StudentSummaryResponse aggregates the transactions of one student.
type StudentSummaryResponse struct {
	StudentID        string          `json:"studentID"`
	TransactionCount int64           `json:"transactionCount"`
	ConfirmedCount   int64           `json:"confirmedCount"`
	PendingCount     int64           `json:"pendingCount"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	TotalConfirmed   decimal.Decimal `json:"totalConfirmed"`
	FirstPaymentDate *string         `json:"firstPaymentDate,omitempty"`
	LastPaymentDate  *string         `json:"lastPaymentDate,omitempty"`
}

// MethodSummaryResponse is one payment method's slice of a daily summary.
type MethodSummaryResponse struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// DailySummaryResponse aggregates one day's confirmed transactions.
type DailySummaryResponse struct {
	Date        string                  `json:"date"`
	Count       int64                   `json:"count"`
	TotalIncome decimal.Decimal         `json:"totalIncome"`
	ByMethod    []MethodSummaryResponse `json:"byMethod"`
}

// ToLineItemResponse converts a domain.TransactionLineItem to LineItemResponse.
func ToLineItemResponse(item domain.TransactionLineItem) LineItemResponse {
	return LineItemResponse{
		LineItemID:  item.LineItemID,
		ConceptID:   item.ConceptID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Subtotal:    item.Subtotal,
		Position:    item.Position,
	}
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	items := make([]LineItemResponse, len(txn.LineItems))
	for i, item := range txn.LineItems {
		items[i] = ToLineItemResponse(item)
	}
	return TransactionResponse{
		TransactionID:         txn.TransactionID,
		VoucherNumber:         txn.VoucherNumber,
		StudentID:             txn.StudentID,
		ProgramID:             txn.ProgramID,
		EnrollmentID:          txn.EnrollmentID,
		PaymentDate:           txn.PaymentDate.Format(PaymentDateLayout),
		PaymentMethod:         string(txn.PaymentMethod),
		BankName:              txn.BankName,
		BankAccount:           txn.BankAccount,
		ExternalReceiptNumber: txn.ExternalReceiptNumber,
		TotalAmount:           txn.TotalAmount,
		DiscountAmount:        txn.DiscountAmount,
		FinalAmount:           txn.FinalAmount,
		Status:                string(txn.Status),
		Notes:                 txn.Notes,
		RegisteredBy:          txn.RegisteredBy,
		LineItems:             items,
		CreatedAt:             txn.CreatedAt,
		LastUpdatedAt:         txn.LastUpdatedAt,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to responses.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToPageSummaryResponse converts a domain.PageSummary to its response.
func ToPageSummaryResponse(s domain.PageSummary) PageSummaryResponse {
	return PageSummaryResponse{
		Count:            int64(s.Count),
		TotalFinalAmount: s.TotalFinalAmount,
	}
}

// ToStudentSummaryResponse converts a domain.StudentSummary to its response.
func ToStudentSummaryResponse(s *domain.StudentSummary) StudentSummaryResponse {
	resp := StudentSummaryResponse{
		StudentID:        s.StudentID,
		TransactionCount: s.TransactionCount,
		ConfirmedCount:   s.ConfirmedCount,
		PendingCount:     s.PendingCount,
		TotalPaid:        s.TotalPaid,
		TotalConfirmed:   s.TotalConfirmed,
	}
	if s.FirstPaymentDate != nil {
		v := s.FirstPaymentDate.Format(PaymentDateLayout)
		resp.FirstPaymentDate = &v
	}
	if s.LastPaymentDate != nil {
		v := s.LastPaymentDate.Format(PaymentDateLayout)
		resp.LastPaymentDate = &v
	}
	return resp
}

// ToDailySummaryResponse converts a domain.DailySummary to its response.
func ToDailySummaryResponse(s *domain.DailySummary) DailySummaryResponse {
	byMethod := make([]MethodSummaryResponse, len(s.ByMethod))
	for i, m := range s.ByMethod {
		byMethod[i] = MethodSummaryResponse{
			Method: string(m.Method),
			Count:  m.Count,
			Amount: m.Amount,
		}
	}
	return DailySummaryResponse{
		Date:        s.Date.Format(PaymentDateLayout),
		Count:       s.Count,
		TotalIncome: s.TotalIncome,
		ByMethod:    byMethod,
	}
}
