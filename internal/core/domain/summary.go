package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PageSummary aggregates the transactions on a single listing page. It is
// display data, recomputed per page, not a ledger invariant.
type PageSummary struct {
	Count            int             `json:"count"`
	TotalFinalAmount decimal.Decimal `json:"totalFinalAmount"`
}

// StudentSummary aggregates a student's payment history across the ledger.
type StudentSummary struct {
	StudentID        string          `json:"studentID"`
	TransactionCount int64           `json:"transactionCount"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	ConfirmedCount   int64           `json:"confirmedCount"`
	PendingCount     int64           `json:"pendingCount"`
	TotalConfirmed   decimal.Decimal `json:"totalConfirmed"`
	FirstPaymentDate *time.Time      `json:"firstPaymentDate,omitempty"`
	LastPaymentDate  *time.Time      `json:"lastPaymentDate,omitempty"`
}

// MethodSummary is the per-payment-method slice of a daily summary.
type MethodSummary struct {
	Method PaymentMethod   `json:"method"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// DailySummary aggregates the confirmed transactions of one calendar day.
type DailySummary struct {
	Date        time.Time       `json:"date"`
	Count       int64           `json:"count"`
	TotalIncome decimal.Decimal `json:"totalIncome"`
	ByMethod    []MethodSummary `json:"byMethod"`
}
