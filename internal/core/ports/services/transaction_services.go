package services

import (
	"context"
	"time"

	"github.com/formagest/ledger_backend/internal/core/domain"
	"github.com/formagest/ledger_backend/internal/dto"
)

// TransactionReaderSvc defines read operations for ledger transactions
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a transaction with its line items.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// GetTransactionByVoucherNumber retrieves a transaction by its voucher number.
	GetTransactionByVoucherNumber(ctx context.Context, voucherNumber string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered, paginated list of transactions.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// SearchTransactions retrieves transactions matching a free-text query.
	SearchTransactions(ctx context.Context, params dto.SearchTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines write operations for ledger transactions
type TransactionWriterSvc interface {
	// CreateTransaction registers a new transaction, assigning its voucher number.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, registrarID string) (*domain.Transaction, error)

	// UpdateTransaction applies a partial update, honouring the per-status
	// field lock table.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, registrarID string) (*domain.Transaction, error)

	// ChangeStatus moves a transaction to the target status when the state
	// machine allows it.
	ChangeStatus(ctx context.Context, transactionID string, next domain.TransactionStatus, reason *string, registrarID string) (*domain.Transaction, error)

	// ConfirmTransaction moves a transaction to CONFIRMED.
	ConfirmTransaction(ctx context.Context, transactionID string, registrarID string) (*domain.Transaction, error)

	// VoidTransaction moves a transaction to VOID, keeping the reason in the notes.
	VoidTransaction(ctx context.Context, transactionID string, reason string, registrarID string) (*domain.Transaction, error)

	// RejectTransaction moves a transaction to REJECTED.
	RejectTransaction(ctx context.Context, transactionID string, reason *string, registrarID string) (*domain.Transaction, error)

	// MarkTransactionPending moves a transaction to PENDING.
	MarkTransactionPending(ctx context.Context, transactionID string, registrarID string) (*domain.Transaction, error)

	// DeleteTransaction removes a transaction while its status still allows it.
	DeleteTransaction(ctx context.Context, transactionID string, registrarID string) error
}

// TransactionSummarySvc defines aggregate operations over the ledger
type TransactionSummarySvc interface {
	// GetStudentSummary aggregates the transactions of one student.
	GetStudentSummary(ctx context.Context, studentID string) (*domain.StudentSummary, error)

	// GetDailySummary aggregates the confirmed transactions of one day.
	GetDailySummary(ctx context.Context, day time.Time) (*domain.DailySummary, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
// This is a facade for clients that need access to all operations
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
	TransactionSummarySvc
}
