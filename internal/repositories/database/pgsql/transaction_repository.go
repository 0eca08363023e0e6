package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/formagest/ledger_backend/internal/apperrors"
	"github.com/formagest/ledger_backend/internal/core/domain"
	portsrepo "github.com/formagest/ledger_backend/internal/core/ports/repositories"
	"github.com/formagest/ledger_backend/internal/models"
	"github.com/formagest/ledger_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, voucher_number, voucher_date, voucher_seq,
	       student_id, program_id, enrollment_id,
	       payment_date, payment_method, bank_name, bank_account, external_receipt_number,
	       total_amount, discount_amount, final_amount, status, notes, registered_by,
	       created_at, created_by, last_updated_at, last_updated_by`

// receiptConstraint is the partial unique index guarding external receipt
// numbers among non-void transactions.
const receiptConstraint = "uq_transactions_external_receipt"

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for ledger transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var m models.Transaction
	var studentID, programID, enrollmentID, receiptNumber sql.NullString
	err := row.Scan(
		&m.TransactionID,
		&m.VoucherNumber,
		&m.VoucherDate,
		&m.VoucherSeq,
		&studentID,
		&programID,
		&enrollmentID,
		&m.PaymentDate,
		&m.PaymentMethod,
		&m.BankName,
		&m.BankAccount,
		&receiptNumber,
		&m.TotalAmount,
		&m.DiscountAmount,
		&m.FinalAmount,
		&m.Status,
		&m.Notes,
		&m.RegisteredBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Transaction{}, err
	}
	if studentID.Valid {
		m.StudentID = &studentID.String
	}
	if programID.Valid {
		m.ProgramID = &programID.String
	}
	if enrollmentID.Valid {
		m.EnrollmentID = &enrollmentID.String
	}
	if receiptNumber.Valid {
		m.ExternalReceiptNumber = &receiptNumber.String
	}
	return m, nil
}

// SaveTransaction persists a transaction and its line items within a DB transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored once the transaction is committed

	m := mapping.ToModelTransaction(txn)
	insertQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.TransactionID,
		m.VoucherNumber,
		m.VoucherDate,
		m.VoucherSeq,
		m.StudentID,
		m.ProgramID,
		m.EnrollmentID,
		m.PaymentDate,
		m.PaymentMethod,
		m.BankName,
		m.BankAccount,
		m.ExternalReceiptNumber,
		m.TotalAmount,
		m.DiscountAmount,
		m.FinalAmount,
		m.Status,
		m.Notes,
		m.RegisteredBy,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == receiptConstraint {
				return fmt.Errorf("%w: constraint %s for transaction %s", apperrors.ErrDuplicateReceipt, constraint, m.TransactionID)
			}
			return fmt.Errorf("%w: constraint %s for transaction %s", apperrors.ErrDuplicate, constraint, m.TransactionID)
		}
		return apperrors.NewAppError(500, "failed to insert transaction "+m.TransactionID, err)
	}

	if err := insertLineItems(ctx, tx, txn.TransactionID, txn.LineItems); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// insertLineItems batch-inserts the line items of one transaction.
func insertLineItems(ctx context.Context, tx pgx.Tx, transactionID string, items []domain.TransactionLineItem) error {
	batch := &pgx.Batch{}
	itemQuery := `
		INSERT INTO transaction_line_items (line_item_id, transaction_id, concept_id, description, quantity, unit_price, subtotal, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, item := range items {
		mi := mapping.ToModelLineItem(item)
		batch.Queue(itemQuery,
			mi.LineItemID,
			transactionID,
			mi.ConceptID,
			mi.Description,
			mi.Quantity,
			mi.UnitPrice,
			mi.Subtotal,
			mi.Position,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert line items for transaction "+transactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction with its line items.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findTransactionBy(ctx, "transaction_id", transactionID)
}

// FindTransactionByVoucherNumber retrieves a transaction with its line items by voucher number.
func (r *PgxTransactionRepository) FindTransactionByVoucherNumber(ctx context.Context, voucherNumber string) (*domain.Transaction, error) {
	return r.findTransactionBy(ctx, "voucher_number", voucherNumber)
}

func (r *PgxTransactionRepository) findTransactionBy(ctx context.Context, column, value string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ` + column + ` = $1;
	`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by "+column, err)
	}

	itemsByTxn, err := r.findLineItemsByTransactionIDs(ctx, []string{m.TransactionID})
	if err != nil {
		return nil, err
	}

	d := mapping.ToDomainTransaction(m)
	d.LineItems = itemsByTxn[m.TransactionID]
	return &d, nil
}

// findLineItemsByTransactionIDs retrieves line items for multiple transactions, grouped by owner.
func (r *PgxTransactionRepository) findLineItemsByTransactionIDs(ctx context.Context, transactionIDs []string) (map[string][]domain.TransactionLineItem, error) {
	if len(transactionIDs) == 0 {
		return map[string][]domain.TransactionLineItem{}, nil
	}
	query := `
		SELECT line_item_id, transaction_id, concept_id, description, quantity, unit_price, subtotal, position
		FROM transaction_line_items
		WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, position;
	`
	rows, err := r.Pool.Query(ctx, query, transactionIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query line items", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.TransactionLineItem, len(transactionIDs))
	for rows.Next() {
		var mi models.TransactionLineItem
		err := rows.Scan(
			&mi.LineItemID,
			&mi.TransactionID,
			&mi.ConceptID,
			&mi.Description,
			&mi.Quantity,
			&mi.UnitPrice,
			&mi.Subtotal,
			&mi.Position,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line item row", err)
		}
		result[mi.TransactionID] = append(result[mi.TransactionID], mapping.ToDomainLineItem(mi))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading line item rows", err)
	}
	return result, nil
}

// buildFilterClause renders the WHERE fragment and args for a transaction filter.
func buildFilterClause(filters domain.TransactionFilters) (string, []any) {
	var conditions []string
	var args []any

	addCondition := func(column, op string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s %s $%d", column, op, len(args)))
	}

	if filters.StudentID != nil {
		addCondition("student_id", "=", *filters.StudentID)
	}
	if filters.ProgramID != nil {
		addCondition("program_id", "=", *filters.ProgramID)
	}
	if filters.EnrollmentID != nil {
		addCondition("enrollment_id", "=", *filters.EnrollmentID)
	}
	if filters.Status != nil {
		addCondition("status", "=", string(*filters.Status))
	}
	if filters.PaymentMethod != nil {
		addCondition("payment_method", "=", string(*filters.PaymentMethod))
	}
	if filters.DateFrom != nil {
		addCondition("payment_date", ">=", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		addCondition("payment_date", "<=", *filters.DateTo)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// ListTransactions retrieves a filtered page of transactions, newest payment first.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filters domain.TransactionFilters, limit, offset int) ([]domain.Transaction, int64, error) {
	whereClause, args := buildFilterClause(filters)

	countQuery := `SELECT COUNT(*) FROM transactions ` + whereClause
	var total int64
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count transactions", err)
	}

	pageQuery := `
		SELECT ` + transactionColumns + `
		FROM transactions ` + whereClause + `
		ORDER BY payment_date DESC, voucher_number DESC
		LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	pageArgs := append(args, limit, offset)

	txns, err := r.queryTransactions(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// SearchTransactions retrieves transactions matching the query in voucher number,
// receipt number, notes or line item descriptions.
func (r *PgxTransactionRepository) SearchTransactions(ctx context.Context, query string, limit, offset int) ([]domain.Transaction, int64, error) {
	pattern := "%" + query + "%"
	whereClause := `
		WHERE voucher_number ILIKE $1
		   OR external_receipt_number ILIKE $1
		   OR notes ILIKE $1
		   OR EXISTS (
			SELECT 1 FROM transaction_line_items li
			WHERE li.transaction_id = transactions.transaction_id AND li.description ILIKE $1
		   )`

	countQuery := `SELECT COUNT(*) FROM transactions ` + whereClause
	var total int64
	if err := r.Pool.QueryRow(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count matching transactions", err)
	}

	pageQuery := `
		SELECT ` + transactionColumns + `
		FROM transactions ` + whereClause + `
		ORDER BY payment_date DESC, voucher_number DESC
		LIMIT $2 OFFSET $3`

	txns, err := r.queryTransactions(ctx, pageQuery, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// queryTransactions runs a SELECT over transactionColumns and attaches line items.
func (r *PgxTransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	var ids []string
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		txns = append(txns, mapping.ToDomainTransaction(m))
		ids = append(ids, m.TransactionID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading transaction rows", err)
	}

	itemsByTxn, err := r.findLineItemsByTransactionIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range txns {
		txns[i].LineItems = itemsByTxn[txns[i].TransactionID]
	}
	return txns, nil
}

// ExistsReceiptNumber reports whether a non-void transaction already carries the receipt number.
func (r *PgxTransactionRepository) ExistsReceiptNumber(ctx context.Context, receiptNumber string, excludeTransactionID *string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE external_receipt_number = $1
			  AND status <> 'VOID'
			  AND ($2::text IS NULL OR transaction_id <> $2)
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, receiptNumber, excludeTransactionID).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check receipt number uniqueness", err)
	}
	return exists, nil
}

// ExistsVoucherNumber reports whether any transaction carries the voucher number.
func (r *PgxTransactionRepository) ExistsVoucherNumber(ctx context.Context, voucherNumber string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE voucher_number = $1);`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, voucherNumber).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check voucher number uniqueness", err)
	}
	return exists, nil
}

// MaxVoucherSequence returns the highest per-day sequence issued for the date, or zero.
func (r *PgxTransactionRepository) MaxVoucherSequence(ctx context.Context, voucherDate time.Time) (int, error) {
	query := `SELECT COALESCE(MAX(voucher_seq), 0) FROM transactions WHERE voucher_date = $1;`
	var maxSeq int
	if err := r.Pool.QueryRow(ctx, query, voucherDate).Scan(&maxSeq); err != nil {
		return 0, apperrors.NewAppError(500, "failed to read max voucher sequence", err)
	}
	return maxSeq, nil
}

// SummarizeStudent aggregates the non-void transactions of one student.
func (r *PgxTransactionRepository) SummarizeStudent(ctx context.Context, studentID string) (*domain.StudentSummary, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(final_amount), 0),
		       COUNT(*) FILTER (WHERE status = 'CONFIRMED'),
		       COUNT(*) FILTER (WHERE status = 'PENDING'),
		       COALESCE(SUM(final_amount) FILTER (WHERE status = 'CONFIRMED'), 0),
		       MIN(payment_date),
		       MAX(payment_date)
		FROM transactions
		WHERE student_id = $1 AND status NOT IN ('VOID', 'REJECTED');
	`
	summary := domain.StudentSummary{StudentID: studentID}
	var first, last sql.NullTime
	err := r.Pool.QueryRow(ctx, query, studentID).Scan(
		&summary.TransactionCount,
		&summary.TotalPaid,
		&summary.ConfirmedCount,
		&summary.PendingCount,
		&summary.TotalConfirmed,
		&first,
		&last,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to summarize student "+studentID, err)
	}
	if first.Valid {
		summary.FirstPaymentDate = &first.Time
	}
	if last.Valid {
		summary.LastPaymentDate = &last.Time
	}
	return &summary, nil
}

// SummarizeDay aggregates the confirmed transactions of one calendar day by payment method.
func (r *PgxTransactionRepository) SummarizeDay(ctx context.Context, day time.Time) (*domain.DailySummary, error) {
	query := `
		SELECT payment_method, COUNT(*), COALESCE(SUM(final_amount), 0)
		FROM transactions
		WHERE payment_date = $1 AND status = 'CONFIRMED'
		GROUP BY payment_method
		ORDER BY payment_method;
	`
	rows, err := r.Pool.Query(ctx, query, day)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to summarize day", err)
	}
	defer rows.Close()

	summary := domain.DailySummary{Date: day}
	for rows.Next() {
		var m domain.MethodSummary
		if err := rows.Scan(&m.Method, &m.Count, &m.Amount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan daily summary row", err)
		}
		summary.ByMethod = append(summary.ByMethod, m)
		summary.Count += m.Count
		summary.TotalIncome = summary.TotalIncome.Add(m.Amount)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading daily summary rows", err)
	}
	return &summary, nil
}

// patchColumns maps a TransactionPatch onto SET fragments and args, continuing
// the placeholder numbering from base.
func patchColumns(patch domain.TransactionPatch, args *[]any) []string {
	var sets []string
	set := func(column string, value any) {
		*args = append(*args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(*args)))
	}

	if patch.StudentID != nil {
		set("student_id", nullable(*patch.StudentID))
	}
	if patch.ProgramID != nil {
		set("program_id", nullable(*patch.ProgramID))
	}
	if patch.EnrollmentID != nil {
		set("enrollment_id", nullable(*patch.EnrollmentID))
	}
	if patch.PaymentDate != nil {
		set("payment_date", *patch.PaymentDate)
	}
	if patch.PaymentMethod != nil {
		set("payment_method", string(*patch.PaymentMethod))
	}
	if patch.BankName != nil {
		set("bank_name", *patch.BankName)
	}
	if patch.BankAccount != nil {
		set("bank_account", *patch.BankAccount)
	}
	if patch.ExternalReceiptNumber != nil {
		set("external_receipt_number", nullable(*patch.ExternalReceiptNumber))
	}
	if patch.TotalAmount != nil {
		set("total_amount", *patch.TotalAmount)
	}
	if patch.DiscountAmount != nil {
		set("discount_amount", *patch.DiscountAmount)
	}
	if patch.FinalAmount != nil {
		set("final_amount", *patch.FinalAmount)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	return sets
}

// nullable converts an empty string to NULL so clearing a reference works.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// UpdateTransaction applies a partial update and, when the patch carries line
// items, replaces the item set, all within one DB transaction.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, transactionID string, patch domain.TransactionPatch, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var args []any
	sets := patchColumns(patch, &args)

	args = append(args, updatedAt)
	sets = append(sets, fmt.Sprintf("last_updated_at = $%d", len(args)))
	args = append(args, updatedBy)
	sets = append(sets, fmt.Sprintf("last_updated_by = $%d", len(args)))

	args = append(args, transactionID)
	query := fmt.Sprintf("UPDATE transactions SET %s WHERE transaction_id = $%d;", strings.Join(sets, ", "), len(args))

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == receiptConstraint {
				return fmt.Errorf("%w: constraint %s for transaction %s", apperrors.ErrDuplicateReceipt, constraint, transactionID)
			}
			return fmt.Errorf("%w: constraint %s for transaction %s", apperrors.ErrDuplicate, constraint, transactionID)
		}
		return apperrors.NewAppError(500, "failed to update transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if patch.LineItems != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM transaction_line_items WHERE transaction_id = $1;`, transactionID); err != nil {
			return apperrors.NewAppError(500, "failed to clear line items for transaction "+transactionID, err)
		}
		if err := insertLineItems(ctx, tx, transactionID, *patch.LineItems); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// UpdateTransactionStatus moves a transaction between statuses with an
// optimistic guard on the expected current status.
func (r *PgxTransactionRepository) UpdateTransactionStatus(ctx context.Context, transactionID string, expectedCurrent, next domain.TransactionStatus, notes *string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = $1,
		    notes = COALESCE($2, notes),
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE transaction_id = $5 AND status = $6;
	`
	tag, err := r.Pool.Exec(ctx, query, string(next), notes, updatedAt, updatedBy, transactionID, string(expectedCurrent))
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a vanished row from a concurrent transition.
		var current string
		err := r.Pool.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1;`, transactionID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return apperrors.NewAppError(500, "failed to re-read status of transaction "+transactionID, err)
		}
		return fmt.Errorf("%w: transaction %s moved to %s concurrently", apperrors.ErrConflict, transactionID, current)
	}
	return nil
}

// DeleteTransaction removes a transaction and its line items.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM transaction_line_items WHERE transaction_id = $1;`, transactionID); err != nil {
		return apperrors.NewAppError(500, "failed to delete line items of transaction "+transactionID, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}
