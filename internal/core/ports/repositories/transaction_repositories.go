package repositories

import (
	"context"
	"time"

	"github.com/formagest/ledger_backend/internal/core/domain"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction with its line items by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionByVoucherNumber retrieves a transaction with its line items by voucher number.
	FindTransactionByVoucherNumber(ctx context.Context, voucherNumber string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered page of transactions ordered by payment date
	// descending. It returns the page, the total row count for the filter, and an error.
	ListTransactions(ctx context.Context, filters domain.TransactionFilters, limit, offset int) ([]domain.Transaction, int64, error)

	// SearchTransactions retrieves transactions whose voucher number, receipt number,
	// notes or line item descriptions match the query, newest first.
	SearchTransactions(ctx context.Context, query string, limit, offset int) ([]domain.Transaction, int64, error)

	// ExistsReceiptNumber reports whether a non-void transaction already carries the
	// given external receipt number. excludeTransactionID, when non-nil, is left out
	// of the check so updates do not collide with themselves.
	ExistsReceiptNumber(ctx context.Context, receiptNumber string, excludeTransactionID *string) (bool, error)

	// ExistsVoucherNumber reports whether any transaction carries the given voucher number.
	ExistsVoucherNumber(ctx context.Context, voucherNumber string) (bool, error)

	// MaxVoucherSequence returns the highest per-day voucher sequence already issued
	// for the given date, or zero when none exists.
	MaxVoucherSequence(ctx context.Context, voucherDate time.Time) (int, error)

	// SummarizeStudent aggregates the transactions of one student.
	SummarizeStudent(ctx context.Context, studentID string) (*domain.StudentSummary, error)

	// SummarizeDay aggregates the confirmed transactions of one day, split by payment method.
	SummarizeDay(ctx context.Context, day time.Time) (*domain.DailySummary, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveTransaction persists a transaction together with its line items atomically.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction applies a partial update to a transaction, replacing its line
	// items when the patch carries any. It returns apperrors.ErrNotFound when the
	// transaction does not exist.
	UpdateTransaction(ctx context.Context, transactionID string, patch domain.TransactionPatch, updatedBy string, updatedAt time.Time) error

	// UpdateTransactionStatus moves a transaction from expectedCurrent to next in a
	// single guarded statement. It returns apperrors.ErrConflict when the row is no
	// longer in expectedCurrent, and apperrors.ErrNotFound when it does not exist.
	UpdateTransactionStatus(ctx context.Context, transactionID string, expectedCurrent, next domain.TransactionStatus, notes *string, updatedBy string, updatedAt time.Time) error

	// DeleteTransaction removes a transaction and its line items.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
