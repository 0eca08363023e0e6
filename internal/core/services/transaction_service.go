package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/formagest/ledger_backend/internal/apperrors"
	"github.com/formagest/ledger_backend/internal/core/domain"
	portsrepo "github.com/formagest/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/formagest/ledger_backend/internal/core/ports/services"
	"github.com/formagest/ledger_backend/internal/dto"
	"github.com/formagest/ledger_backend/internal/middleware"
	"github.com/formagest/ledger_backend/internal/utils/amounts"
	"github.com/formagest/ledger_backend/internal/utils/voucher"
)

var (
	ErrInvalidTransition      = errors.New("status transition is not allowed")
	ErrImmutableState         = errors.New("transaction state does not allow this change")
	ErrDuplicateReceiptNumber = errors.New("external receipt number is already in use")
	ErrVoucherGeneration      = errors.New("voucher number generation failed")
	ErrInvalidState           = errors.New("transaction status does not allow deletion")
	ErrMissingBankName        = errors.New("bank name is required for this payment method")
	ErrMissingReceiptNumber   = errors.New("external receipt number is required for this payment method")
)

const defaultPageSize = 50

// transactionService provides the core ledger operations.
type transactionService struct {
	transactionRepo portsrepo.TransactionRepositoryWithTx
	conceptSvc      portssvc.ConceptReaderSvc
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(transactionRepo portsrepo.TransactionRepositoryWithTx, conceptSvc portssvc.ConceptReaderSvc) portssvc.TransactionSvcFacade {
	return &transactionService{
		transactionRepo: transactionRepo,
		conceptSvc:      conceptSvc,
	}
}

// Ensure transactionService implements the portssvc.TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// validatePaymentMethod runs the method-specific field requirements.
func validatePaymentMethod(method domain.PaymentMethod, bankName string, receiptNumber *string) error {
	if !method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, method)
	}
	if method.RequiresBankName() && strings.TrimSpace(bankName) == "" {
		return fmt.Errorf("%w: %s", ErrMissingBankName, method)
	}
	if method.RequiresReceiptNumber() && (receiptNumber == nil || strings.TrimSpace(*receiptNumber) == "") {
		return fmt.Errorf("%w: %s", ErrMissingReceiptNumber, method)
	}
	return nil
}

// resolveLineItems turns line item requests into domain line items. Every
// line references a catalog concept; the concept supplies the description and
// unit price where the request omits them.
func (s *transactionService) resolveLineItems(ctx context.Context, transactionID string, reqs []dto.CreateLineItemRequest) ([]domain.TransactionLineItem, error) {
	conceptIDs := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if strings.TrimSpace(req.ConceptID) == "" {
			return nil, fmt.Errorf("%w: every line item needs a concept reference", apperrors.ErrValidation)
		}
		conceptIDs = append(conceptIDs, req.ConceptID)
	}

	concepts, err := s.conceptSvc.GetConceptsByIDs(ctx, conceptIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve concepts: %w", err)
	}

	items := make([]domain.TransactionLineItem, len(reqs))
	for i, req := range reqs {
		concept, found := concepts[req.ConceptID]
		if !found {
			return nil, fmt.Errorf("%w: concept %s not found", apperrors.ErrValidation, req.ConceptID)
		}

		item := domain.TransactionLineItem{
			LineItemID:    uuid.NewString(),
			TransactionID: transactionID,
			ConceptID:     req.ConceptID,
			Description:   concept.Name,
			UnitPrice:     concept.BaseAmount,
			Quantity:      req.Quantity,
			Position:      i + 1,
		}
		if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
			item.Description = *req.Description
		}
		if req.UnitPrice != nil {
			item.UnitPrice = *req.UnitPrice
		}
		if req.Subtotal != nil {
			item.Subtotal = *req.Subtotal
		} else {
			item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		}

		items[i] = item
	}
	return items, nil
}

// checkReceiptUniqueness enforces receipt uniqueness among non-void transactions.
func (s *transactionService) checkReceiptUniqueness(ctx context.Context, receiptNumber *string, excludeID *string) error {
	if receiptNumber == nil || strings.TrimSpace(*receiptNumber) == "" {
		return nil
	}
	exists, err := s.transactionRepo.ExistsReceiptNumber(ctx, *receiptNumber, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateReceiptNumber, *receiptNumber)
	}
	return nil
}

// CreateTransaction registers a new transaction in status REGISTERED and
// assigns its voucher number.
func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, registrarID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	paymentDate, err := time.Parse(dto.PaymentDateLayout, req.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid payment date %q", apperrors.ErrValidation, req.PaymentDate)
	}

	method := domain.PaymentMethod(req.PaymentMethod)
	var bankName string
	if req.BankName != nil {
		bankName = *req.BankName
	}
	if err := validatePaymentMethod(method, bankName, req.ExternalReceiptNumber); err != nil {
		return nil, err
	}

	discount := decimal.Zero
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}
	finalAmount := amounts.ExpectedFinal(req.TotalAmount, discount)
	if req.FinalAmount != nil {
		finalAmount = *req.FinalAmount
	}
	if err := amounts.ValidateAmounts(req.TotalAmount, discount, finalAmount); err != nil {
		return nil, err
	}

	if err := s.checkReceiptUniqueness(ctx, req.ExternalReceiptNumber, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transactionID := uuid.NewString()

	lineItems, err := s.resolveLineItems(ctx, transactionID, req.LineItems)
	if err != nil {
		return nil, err
	}
	if err := amounts.ValidateLineItems(lineItems, req.TotalAmount); err != nil {
		return nil, err
	}

	var bankAccount string
	if req.BankAccount != nil {
		bankAccount = *req.BankAccount
	}

	txn := domain.Transaction{
		TransactionID:         transactionID,
		VoucherDate:           paymentDate,
		StudentID:             req.StudentID,
		ProgramID:             req.ProgramID,
		EnrollmentID:          req.EnrollmentID,
		PaymentDate:           paymentDate,
		PaymentMethod:         method,
		BankName:              bankName,
		BankAccount:           bankAccount,
		ExternalReceiptNumber: req.ExternalReceiptNumber,
		TotalAmount:           req.TotalAmount,
		DiscountAmount:        discount,
		FinalAmount:           finalAmount,
		Status:                domain.StatusRegistered,
		Notes:                 req.Notes,
		RegisteredBy:          registrarID,
		LineItems:             lineItems,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     registrarID,
			LastUpdatedAt: now,
			LastUpdatedBy: registrarID,
		},
	}

	// Voucher assignment races with concurrent creates on the same day; the
	// unique index on (voucher_date, voucher_seq) is the arbiter and the
	// sequence is regenerated at most once.
	if err := s.persistWithVoucher(ctx, &txn); err != nil {
		logger.Error("Failed to persist transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, err
	}

	logger.Info("Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("voucher_number", txn.VoucherNumber),
		slog.String("payment_method", string(txn.PaymentMethod)),
	)
	return s.transactionRepo.FindTransactionByID(ctx, txn.TransactionID)
}

// persistWithVoucher assigns the next per-day voucher sequence and saves the
// transaction, retrying the generation once on a uniqueness collision.
func (s *transactionService) persistWithVoucher(ctx context.Context, txn *domain.Transaction) error {
	for attempt := 0; attempt < 2; attempt++ {
		maxSeq, err := s.transactionRepo.MaxVoucherSequence(ctx, txn.VoucherDate)
		if err != nil {
			return err
		}
		txn.VoucherSeq = maxSeq + 1
		txn.VoucherNumber = voucher.Format(txn.IsIncome(), txn.VoucherDate, txn.VoucherSeq)

		err = s.transactionRepo.SaveTransaction(ctx, *txn)
		if err == nil {
			return nil
		}
		// A concurrent create can claim the receipt number after the
		// pre-check ran; that is a conflict, not a voucher collision.
		if errors.Is(err, apperrors.ErrDuplicateReceipt) {
			return fmt.Errorf("%w: %v", ErrDuplicateReceiptNumber, err)
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
	}
	return ErrVoucherGeneration
}

// GetTransactionByID retrieves a transaction with its line items.
func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.transactionRepo.FindTransactionByID(ctx, transactionID)
}

// GetTransactionByVoucherNumber retrieves a transaction by its voucher number.
func (s *transactionService) GetTransactionByVoucherNumber(ctx context.Context, voucherNumber string) (*domain.Transaction, error) {
	return s.transactionRepo.FindTransactionByVoucherNumber(ctx, voucherNumber)
}

// buildPatch converts an update request into a domain patch.
func buildPatch(req dto.UpdateTransactionRequest) (domain.TransactionPatch, error) {
	patch := domain.TransactionPatch{
		StudentID:             req.StudentID,
		ProgramID:             req.ProgramID,
		EnrollmentID:          req.EnrollmentID,
		BankName:              req.BankName,
		BankAccount:           req.BankAccount,
		ExternalReceiptNumber: req.ExternalReceiptNumber,
		TotalAmount:           req.TotalAmount,
		DiscountAmount:        req.DiscountAmount,
		FinalAmount:           req.FinalAmount,
		Notes:                 req.Notes,
	}
	if req.PaymentDate != nil {
		parsed, err := time.Parse(dto.PaymentDateLayout, *req.PaymentDate)
		if err != nil {
			return domain.TransactionPatch{}, fmt.Errorf("%w: invalid payment date %q", apperrors.ErrValidation, *req.PaymentDate)
		}
		patch.PaymentDate = &parsed
	}
	if req.PaymentMethod != nil {
		method := domain.PaymentMethod(*req.PaymentMethod)
		patch.PaymentMethod = &method
	}
	return patch, nil
}

// UpdateTransaction applies a partial update, honouring the per-status field lock.
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, registrarID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	current, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	patch, err := buildPatch(req)
	if err != nil {
		return nil, err
	}

	if current.Status == domain.StatusVoid {
		return nil, fmt.Errorf("%w: transaction %s is void", ErrImmutableState, transactionID)
	}

	touchedFields := patch.FieldNames()
	if req.LineItems != nil {
		touchedFields = append(touchedFields, domain.FieldLineItems)
	}
	mutable := domain.MutableFields(current.Status)
	for _, field := range touchedFields {
		if _, ok := mutable[field]; !ok {
			return nil, fmt.Errorf("%w: field %s is locked while %s", ErrImmutableState, field, current.Status)
		}
	}

	merged := mergeAmounts(*current, patch)
	// The stored final amount must track total and discount even when the
	// caller leaves it implicit.
	if patch.FinalAmount == nil && (patch.TotalAmount != nil || patch.DiscountAmount != nil) {
		patch.FinalAmount = &merged.FinalAmount
	}

	var lineItems []domain.TransactionLineItem
	if req.LineItems != nil {
		lineItems, err = s.resolveLineItems(ctx, transactionID, *req.LineItems)
		if err != nil {
			return nil, err
		}
		patch.LineItems = &lineItems
	} else {
		lineItems = current.LineItems
	}

	if patch.TouchesAmounts() || req.LineItems != nil {
		if err := amounts.ValidateAmounts(merged.TotalAmount, merged.DiscountAmount, merged.FinalAmount); err != nil {
			return nil, err
		}
		if err := amounts.ValidateLineItems(lineItems, merged.TotalAmount); err != nil {
			return nil, err
		}
	}

	if patch.ExternalReceiptNumber != nil {
		if err := s.checkReceiptUniqueness(ctx, patch.ExternalReceiptNumber, &transactionID); err != nil {
			return nil, err
		}
	}

	if patch.IsEmpty() {
		return current, nil
	}

	if err := s.transactionRepo.UpdateTransaction(ctx, transactionID, patch, registrarID, time.Now().UTC()); err != nil {
		logger.Error("Failed to update transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, err
	}

	logger.Info("Transaction updated", slog.String("transaction_id", transactionID))
	return s.transactionRepo.FindTransactionByID(ctx, transactionID)
}

// mergeAmounts overlays the patch's amount fields onto the current values.
func mergeAmounts(current domain.Transaction, patch domain.TransactionPatch) domain.Transaction {
	if patch.TotalAmount != nil {
		current.TotalAmount = *patch.TotalAmount
	}
	if patch.DiscountAmount != nil {
		current.DiscountAmount = *patch.DiscountAmount
	}
	if patch.FinalAmount != nil {
		current.FinalAmount = *patch.FinalAmount
	} else if patch.TotalAmount != nil || patch.DiscountAmount != nil {
		current.FinalAmount = amounts.ExpectedFinal(current.TotalAmount, current.DiscountAmount)
	}
	return current
}

// ChangeStatus moves a transaction to next when the state machine allows it.
// The optional reason is appended to the notes.
func (s *transactionService) ChangeStatus(ctx context.Context, transactionID string, next domain.TransactionStatus, reason *string, registrarID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, next)
	}

	current, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(current.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
	}

	var notes *string
	if reason != nil && strings.TrimSpace(*reason) != "" {
		appended := appendNote(current.Notes, next, *reason)
		notes = &appended
	}

	err = s.transactionRepo.UpdateTransactionStatus(ctx, transactionID, current.Status, next, notes, registrarID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Concurrent status transition detected",
				slog.String("transaction_id", transactionID),
				slog.String("expected_status", string(current.Status)),
			)
		}
		return nil, err
	}

	logger.Info("Transaction status changed",
		slog.String("transaction_id", transactionID),
		slog.String("from", string(current.Status)),
		slog.String("to", string(next)),
	)
	return s.transactionRepo.FindTransactionByID(ctx, transactionID)
}

// appendNote attaches a transition reason to the existing notes.
func appendNote(existing string, next domain.TransactionStatus, reason string) string {
	entry := fmt.Sprintf("%s: %s", next, reason)
	if strings.TrimSpace(existing) == "" {
		return entry
	}
	return existing + "\n" + entry
}

// ConfirmTransaction moves a transaction to CONFIRMED.
func (s *transactionService) ConfirmTransaction(ctx context.Context, transactionID string, registrarID string) (*domain.Transaction, error) {
	return s.ChangeStatus(ctx, transactionID, domain.StatusConfirmed, nil, registrarID)
}

// VoidTransaction moves a transaction to VOID, keeping the reason in the notes.
func (s *transactionService) VoidTransaction(ctx context.Context, transactionID string, reason string, registrarID string) (*domain.Transaction, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: a void reason is required", apperrors.ErrValidation)
	}
	return s.ChangeStatus(ctx, transactionID, domain.StatusVoid, &reason, registrarID)
}

// RejectTransaction moves a transaction to REJECTED.
func (s *transactionService) RejectTransaction(ctx context.Context, transactionID string, reason *string, registrarID string) (*domain.Transaction, error) {
	return s.ChangeStatus(ctx, transactionID, domain.StatusRejected, reason, registrarID)
}

// MarkTransactionPending moves a transaction to PENDING.
func (s *transactionService) MarkTransactionPending(ctx context.Context, transactionID string, registrarID string) (*domain.Transaction, error) {
	return s.ChangeStatus(ctx, transactionID, domain.StatusPending, nil, registrarID)
}

// DeleteTransaction removes a transaction while its status still allows it.
// Everything else must be voided instead.
func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string, registrarID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	current, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if !domain.CanDelete(current.Status) {
		return fmt.Errorf("%w: cannot delete a %s transaction", ErrInvalidState, current.Status)
	}

	if err := s.transactionRepo.DeleteTransaction(ctx, transactionID); err != nil {
		return err
	}

	logger.Info("Transaction deleted",
		slog.String("transaction_id", transactionID),
		slog.String("voucher_number", current.VoucherNumber),
		slog.String("deleted_by", registrarID),
	)
	return nil
}

// buildFilters converts list params into domain filters.
func buildFilters(params dto.ListTransactionsParams) (domain.TransactionFilters, error) {
	filters := domain.TransactionFilters{
		StudentID:    params.StudentID,
		ProgramID:    params.ProgramID,
		EnrollmentID: params.EnrollmentID,
	}
	if params.Status != nil {
		status := domain.TransactionStatus(*params.Status)
		filters.Status = &status
	}
	if params.PaymentMethod != nil {
		method := domain.PaymentMethod(*params.PaymentMethod)
		filters.PaymentMethod = &method
	}
	if params.DateFrom != nil {
		from, err := time.Parse(dto.PaymentDateLayout, *params.DateFrom)
		if err != nil {
			return domain.TransactionFilters{}, fmt.Errorf("%w: invalid dateFrom %q", apperrors.ErrValidation, *params.DateFrom)
		}
		filters.DateFrom = &from
	}
	if params.DateTo != nil {
		to, err := time.Parse(dto.PaymentDateLayout, *params.DateTo)
		if err != nil {
			return domain.TransactionFilters{}, fmt.Errorf("%w: invalid dateTo %q", apperrors.ErrValidation, *params.DateTo)
		}
		filters.DateTo = &to
	}
	return filters, nil
}

// normalizePage applies the pagination defaults.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// pageSummary computes the display aggregates over one returned page.
func pageSummary(txns []domain.Transaction) domain.PageSummary {
	summary := domain.PageSummary{Count: len(txns)}
	for _, txn := range txns {
		summary.TotalFinalAmount = summary.TotalFinalAmount.Add(txn.FinalAmount)
	}
	return summary
}

// ListTransactions retrieves a filtered, paginated list of transactions.
func (s *transactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	filters, err := buildFilters(params)
	if err != nil {
		return nil, err
	}
	page, pageSize := normalizePage(params.Page, params.PageSize)

	txns, total, err := s.transactionRepo.ListTransactions(ctx, filters, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
		Summary:      dto.ToPageSummaryResponse(pageSummary(txns)),
	}, nil
}

// SearchTransactions retrieves transactions matching a free-text query.
func (s *transactionService) SearchTransactions(ctx context.Context, params dto.SearchTransactionsParams) (*dto.ListTransactionsResponse, error) {
	page, pageSize := normalizePage(params.Page, params.PageSize)

	txns, total, err := s.transactionRepo.SearchTransactions(ctx, params.Query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
		Summary:      dto.ToPageSummaryResponse(pageSummary(txns)),
	}, nil
}

// GetStudentSummary aggregates the transactions of one student.
func (s *transactionService) GetStudentSummary(ctx context.Context, studentID string) (*domain.StudentSummary, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, fmt.Errorf("%w: student ID is required", apperrors.ErrValidation)
	}
	return s.transactionRepo.SummarizeStudent(ctx, studentID)
}

// GetDailySummary aggregates the confirmed transactions of one day.
func (s *transactionService) GetDailySummary(ctx context.Context, day time.Time) (*domain.DailySummary, error) {
	return s.transactionRepo.SummarizeDay(ctx, day)
}
