package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/formagest/ledger_backend/internal/apperrors"
	"github.com/formagest/ledger_backend/internal/core/domain"
	portsrepo "github.com/formagest/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/formagest/ledger_backend/internal/core/ports/services"
	"github.com/formagest/ledger_backend/internal/core/services"
	"github.com/formagest/ledger_backend/internal/dto"
	"github.com/formagest/ledger_backend/internal/utils/amounts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

// Ensure MockTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByVoucherNumber(ctx context.Context, voucherNumber string) (*domain.Transaction, error) {
	args := m.Called(ctx, voucherNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, filters domain.TransactionFilters, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, filters, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) SearchTransactions(ctx context.Context, query string, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, query, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) ExistsReceiptNumber(ctx context.Context, receiptNumber string, excludeTransactionID *string) (bool, error) {
	args := m.Called(ctx, receiptNumber, excludeTransactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) ExistsVoucherNumber(ctx context.Context, voucherNumber string) (bool, error) {
	args := m.Called(ctx, voucherNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) MaxVoucherSequence(ctx context.Context, voucherDate time.Time) (int, error) {
	args := m.Called(ctx, voucherDate)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) SummarizeStudent(ctx context.Context, studentID string) (*domain.StudentSummary, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentSummary), args.Error(1)
}

func (m *MockTransactionRepository) SummarizeDay(ctx context.Context, day time.Time) (*domain.DailySummary, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailySummary), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, transactionID string, patch domain.TransactionPatch, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, transactionID, patch, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransactionStatus(ctx context.Context, transactionID string, expectedCurrent, next domain.TransactionStatus, notes *string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, transactionID, expectedCurrent, next, notes, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockTransactionRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTransactionRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock ConceptReaderSvc ---
type MockConceptReaderSvc struct {
	mock.Mock
}

var _ portssvc.ConceptReaderSvc = (*MockConceptReaderSvc)(nil)

func (m *MockConceptReaderSvc) GetConceptByID(ctx context.Context, conceptID string) (*domain.PaymentConcept, error) {
	args := m.Called(ctx, conceptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentConcept), args.Error(1)
}

func (m *MockConceptReaderSvc) GetConceptsByIDs(ctx context.Context, conceptIDs []string) (map[string]domain.PaymentConcept, error) {
	args := m.Called(ctx, conceptIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.PaymentConcept), args.Error(1)
}

func (m *MockConceptReaderSvc) ListConcepts(ctx context.Context, activeOnly bool) ([]domain.PaymentConcept, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentConcept), args.Error(1)
}

// --- Test Suite Setup ---
type TransactionServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockTransactionRepository
	mockConceptSvc *MockConceptReaderSvc
	service        portssvc.TransactionSvcFacade
	registrarID    string
	conceptID      string
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTransactionRepository)
	suite.mockConceptSvc = new(MockConceptReaderSvc)
	suite.service = services.NewTransactionService(suite.mockRepo, suite.mockConceptSvc)
	suite.registrarID = uuid.NewString()
	suite.conceptID = uuid.NewString()
}

func strPtr(s string) *string { return &s }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

// baseCreateRequest builds a valid cash payment of 2 x 50.00.
func (suite *TransactionServiceTestSuite) baseCreateRequest() dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		StudentID:     strPtr(uuid.NewString()),
		PaymentDate:   "2026-01-15",
		PaymentMethod: "CASH",
		TotalAmount:   decimal.RequireFromString("100.00"),
		LineItems: []dto.CreateLineItemRequest{
			{
				ConceptID:   suite.conceptID,
				Description: strPtr("Monthly tuition"),
				Quantity:    2,
				UnitPrice:   decPtr(decimal.RequireFromString("50.00")),
			},
		},
	}
}

// expectConceptLookup wires the catalog read that line item resolution makes.
func (suite *TransactionServiceTestSuite) expectConceptLookup() {
	concept := domain.PaymentConcept{
		ConceptID:  suite.conceptID,
		Code:       "TUITION",
		Name:       "Monthly tuition",
		BaseAmount: decimal.RequireFromString("50.00"),
		Active:     true,
	}
	suite.mockConceptSvc.On("GetConceptsByIDs", mock.Anything, []string{suite.conceptID}).
		Return(map[string]domain.PaymentConcept{suite.conceptID: concept}, nil).Once()
}

// expectSaveAndReload wires the repository so the saved transaction is what
// the final reload returns, and hands back a pointer to inspect it.
func (suite *TransactionServiceTestSuite) expectSaveAndReload(ctx context.Context) *domain.Transaction {
	saved := &domain.Transaction{}
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) {
			*saved = args.Get(1).(domain.Transaction)
		}).
		Return(nil).Once()
	suite.mockRepo.On("FindTransactionByID", ctx, mock.AnythingOfType("string")).Return(saved, nil).Once()
	return saved
}

// --- CreateTransaction ---

func (suite *TransactionServiceTestSuite) TestCreateTransaction_Success() {
	ctx := context.Background()
	req := suite.baseCreateRequest()

	suite.expectConceptLookup()
	suite.mockRepo.On("MaxVoucherSequence", ctx, mock.AnythingOfType("time.Time")).Return(4, nil).Once()
	saved := suite.expectSaveAndReload(ctx)

	created, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(saved.TransactionID)
	suite.Equal(domain.StatusRegistered, saved.Status)
	suite.Equal("ING-20260115-0005", saved.VoucherNumber)
	suite.Equal(5, saved.VoucherSeq)
	suite.True(saved.TotalAmount.Equal(decimal.RequireFromString("100.00")))
	suite.True(saved.DiscountAmount.IsZero())
	suite.True(saved.FinalAmount.Equal(decimal.RequireFromString("100.00")))
	suite.Equal(suite.registrarID, saved.RegisteredBy)
	suite.Require().Len(saved.LineItems, 1)
	suite.Equal(1, saved.LineItems[0].Position)
	suite.True(saved.LineItems[0].Subtotal.Equal(decimal.RequireFromString("100.00")))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_NegativeUnitPrice() {
	ctx := context.Background()
	req := suite.baseCreateRequest()
	req.LineItems[0].UnitPrice = decPtr(decimal.RequireFromString("-50.00"))

	suite.expectConceptLookup()

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, amounts.ErrLineItemsInconsistent)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_RepoErrorPropagates() {
	ctx := context.Background()
	req := suite.baseCreateRequest()
	repoErr := assert.AnError

	suite.expectConceptLookup()
	suite.mockRepo.On("MaxVoucherSequence", ctx, mock.AnythingOfType("time.Time")).Return(0, repoErr).Once()

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, repoErr)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_BankTransferMissingBankName() {
	ctx := context.Background()
	req := suite.baseCreateRequest()
	req.PaymentMethod = "BANK_TRANSFER"
	req.ExternalReceiptNumber = strPtr("R-9001")

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrMissingBankName)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_BankDepositMissingReceipt() {
	ctx := context.Background()
	req := suite.baseCreateRequest()
	req.PaymentMethod = "BANK_DEPOSIT"

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrMissingReceiptNumber)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_DuplicateReceipt() {
	ctx := context.Background()
	req := suite.baseCreateRequest()
	req.PaymentMethod = "BANK_DEPOSIT"
	req.ExternalReceiptNumber = strPtr("R-9001")

	suite.mockRepo.On("ExistsReceiptNumber", ctx, "R-9001", (*string)(nil)).Return(true, nil).Once()

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDuplicateReceiptNumber)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ReceiptRaceSurfacesAsConflict() {
	ctx := context.Background()
	req := suite.baseCreateRequest()
	req.PaymentMethod = "BANK_DEPOSIT"
	req.ExternalReceiptNumber = strPtr("R-9001")

	// The pre-check passes, then a concurrent create commits the same receipt
	// number before the insert lands on the partial unique index.
	suite.expectConceptLookup()
	suite.mockRepo.On("ExistsReceiptNumber", ctx, "R-9001", (*string)(nil)).Return(false, nil).Once()
	suite.mockRepo.On("MaxVoucherSequence", ctx, mock.AnythingOfType("time.Time")).Return(0, nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(fmt.Errorf("%w: constraint uq_transactions_external_receipt for transaction %s",
			apperrors.ErrDuplicateReceipt, uuid.NewString())).Once()

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDuplicateReceiptNumber)
	suite.NotErrorIs(err, services.ErrVoucherGeneration)
	suite.mockRepo.AssertNumberOfCalls(suite.T(), "SaveTransaction", 1)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_InconsistentFinalAmount() {
	ctx := context.Background()
	req := suite.baseCreateRequest()
	req.DiscountAmount = decPtr(decimal.RequireFromString("10.00"))
	req.FinalAmount = decPtr(decimal.RequireFromString("95.00")) // expected 90.00

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, amounts.ErrInconsistent)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_FinalWithinTolerance() {
	ctx := context.Background()
	req := suite.baseCreateRequest()
	req.DiscountAmount = decPtr(decimal.RequireFromString("10.00"))
	req.FinalAmount = decPtr(decimal.RequireFromString("90.01"))
	req.LineItems[0].UnitPrice = decPtr(decimal.RequireFromString("50.00"))

	suite.expectConceptLookup()
	suite.mockRepo.On("MaxVoucherSequence", ctx, mock.AnythingOfType("time.Time")).Return(0, nil).Once()
	saved := suite.expectSaveAndReload(ctx)

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().NoError(err)
	suite.True(saved.FinalAmount.Equal(decimal.RequireFromString("90.01")))
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_LineItemsDoNotSumToTotal() {
	ctx := context.Background()
	req := suite.baseCreateRequest()
	req.LineItems[0].Quantity = 1 // 50.00 against a 100.00 total

	suite.expectConceptLookup()

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, amounts.ErrLineItemsInconsistent)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ConceptSuppliesDefaults() {
	ctx := context.Background()
	conceptID := uuid.NewString()
	req := suite.baseCreateRequest()
	req.TotalAmount = decimal.RequireFromString("350.00")
	req.LineItems = []dto.CreateLineItemRequest{
		{ConceptID: conceptID, Quantity: 1},
	}

	concept := domain.PaymentConcept{
		ConceptID:  conceptID,
		Code:       "TUITION",
		Name:       "Monthly tuition",
		BaseAmount: decimal.RequireFromString("350.00"),
		Active:     true,
	}
	suite.mockConceptSvc.On("GetConceptsByIDs", ctx, []string{conceptID}).
		Return(map[string]domain.PaymentConcept{conceptID: concept}, nil).Once()
	suite.mockRepo.On("MaxVoucherSequence", ctx, mock.AnythingOfType("time.Time")).Return(0, nil).Once()
	saved := suite.expectSaveAndReload(ctx)

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().NoError(err)
	suite.Require().Len(saved.LineItems, 1)
	suite.Equal("Monthly tuition", saved.LineItems[0].Description)
	suite.True(saved.LineItems[0].UnitPrice.Equal(decimal.RequireFromString("350.00")))
	suite.True(saved.LineItems[0].Subtotal.Equal(decimal.RequireFromString("350.00")))
	suite.mockConceptSvc.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_UnknownConcept() {
	ctx := context.Background()
	conceptID := uuid.NewString()
	req := suite.baseCreateRequest()
	req.LineItems = []dto.CreateLineItemRequest{
		{ConceptID: conceptID, Quantity: 1},
	}

	suite.mockConceptSvc.On("GetConceptsByIDs", ctx, []string{conceptID}).
		Return(map[string]domain.PaymentConcept{}, nil).Once()

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_VoucherCollisionRetriesOnce() {
	ctx := context.Background()
	req := suite.baseCreateRequest()

	suite.expectConceptLookup()
	suite.mockRepo.On("MaxVoucherSequence", ctx, mock.AnythingOfType("time.Time")).Return(7, nil).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("MaxVoucherSequence", ctx, mock.AnythingOfType("time.Time")).Return(8, nil).Once()
	saved := suite.expectSaveAndReload(ctx)

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().NoError(err)
	suite.Equal(9, saved.VoucherSeq)
	suite.Equal("ING-20260115-0009", saved.VoucherNumber)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_VoucherCollisionExhausted() {
	ctx := context.Background()
	req := suite.baseCreateRequest()

	suite.expectConceptLookup()
	suite.mockRepo.On("MaxVoucherSequence", ctx, mock.AnythingOfType("time.Time")).Return(7, nil).Twice()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(apperrors.ErrDuplicate).Twice()

	_, err := suite.service.CreateTransaction(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrVoucherGeneration)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- Status transitions ---

func (suite *TransactionServiceTestSuite) registeredTransaction() *domain.Transaction {
	return &domain.Transaction{
		TransactionID: uuid.NewString(),
		VoucherNumber: "ING-20260115-0001",
		Status:        domain.StatusRegistered,
		FinalAmount:   decimal.RequireFromString("100.00"),
	}
}

func (suite *TransactionServiceTestSuite) TestConfirmTransaction_Success() {
	ctx := context.Background()
	txn := suite.registeredTransaction()

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Twice()
	suite.mockRepo.On("UpdateTransactionStatus", ctx, txn.TransactionID,
		domain.StatusRegistered, domain.StatusConfirmed, (*string)(nil),
		suite.registrarID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	_, err := suite.service.ConfirmTransaction(ctx, txn.TransactionID, suite.registrarID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestConfirmTransaction_AlreadyConfirmed() {
	ctx := context.Background()
	txn := suite.registeredTransaction()
	txn.Status = domain.StatusConfirmed

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.ConfirmTransaction(ctx, txn.TransactionID, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateTransactionStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestVoidTransaction_RequiresReason() {
	ctx := context.Background()

	_, err := suite.service.VoidTransaction(ctx, uuid.NewString(), "   ", suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindTransactionByID", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestVoidTransaction_AppendsReasonToNotes() {
	ctx := context.Background()
	txn := suite.registeredTransaction()
	txn.Notes = "first installment"

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Twice()
	suite.mockRepo.On("UpdateTransactionStatus", ctx, txn.TransactionID,
		domain.StatusRegistered, domain.StatusVoid, mock.MatchedBy(func(notes *string) bool {
			return notes != nil && *notes == "first installment\nVOID: registered in error"
		}), suite.registrarID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	_, err := suite.service.VoidTransaction(ctx, txn.TransactionID, "registered in error", suite.registrarID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestVoidTransaction_VoidIsTerminal() {
	ctx := context.Background()
	txn := suite.registeredTransaction()
	txn.Status = domain.StatusVoid

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.VoidTransaction(ctx, txn.TransactionID, "again", suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
}

func (suite *TransactionServiceTestSuite) TestRejectTransaction_NoInboundTransition() {
	// The transition table has no edge into REJECTED; rejection is recorded
	// upstream before the transaction reaches the ledger.
	ctx := context.Background()
	txn := suite.registeredTransaction()

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.RejectTransaction(ctx, txn.TransactionID, nil, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
}

func (suite *TransactionServiceTestSuite) TestMarkPending_FromRejected() {
	ctx := context.Background()
	txn := suite.registeredTransaction()
	txn.Status = domain.StatusRejected

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Twice()
	suite.mockRepo.On("UpdateTransactionStatus", ctx, txn.TransactionID,
		domain.StatusRejected, domain.StatusPending, (*string)(nil),
		suite.registrarID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	_, err := suite.service.MarkTransactionPending(ctx, txn.TransactionID, suite.registrarID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestChangeStatus_ConcurrentTransition() {
	ctx := context.Background()
	txn := suite.registeredTransaction()

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockRepo.On("UpdateTransactionStatus", ctx, txn.TransactionID,
		domain.StatusRegistered, domain.StatusConfirmed, (*string)(nil),
		suite.registrarID, mock.AnythingOfType("time.Time")).Return(apperrors.ErrConflict).Once()

	_, err := suite.service.ConfirmTransaction(ctx, txn.TransactionID, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestChangeStatus_UnknownStatus() {
	ctx := context.Background()

	_, err := suite.service.ChangeStatus(ctx, uuid.NewString(), domain.TransactionStatus("ARCHIVED"), nil, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- UpdateTransaction ---

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_ConfirmedAllowsNotesOnly() {
	ctx := context.Background()
	txn := suite.registeredTransaction()
	txn.Status = domain.StatusConfirmed

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Twice()
	suite.mockRepo.On("UpdateTransaction", ctx, txn.TransactionID,
		mock.AnythingOfType("domain.TransactionPatch"),
		suite.registrarID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	_, err := suite.service.UpdateTransaction(ctx, txn.TransactionID,
		dto.UpdateTransactionRequest{Notes: strPtr("settled by bank")}, suite.registrarID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_ConfirmedLocksAmounts() {
	ctx := context.Background()
	txn := suite.registeredTransaction()
	txn.Status = domain.StatusConfirmed

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.UpdateTransaction(ctx, txn.TransactionID,
		dto.UpdateTransactionRequest{TotalAmount: decPtr(decimal.RequireFromString("200.00"))}, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrImmutableState)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateTransaction",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_ConfirmedLocksLineItems() {
	ctx := context.Background()
	txn := suite.registeredTransaction()
	txn.Status = domain.StatusConfirmed

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	items := []dto.CreateLineItemRequest{
		{ConceptID: suite.conceptID, Description: strPtr("Replaced line"), Quantity: 1, UnitPrice: decPtr(decimal.RequireFromString("100.00"))},
	}
	_, err := suite.service.UpdateTransaction(ctx, txn.TransactionID,
		dto.UpdateTransactionRequest{LineItems: &items}, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrImmutableState)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_VoidRejectsEverything() {
	ctx := context.Background()
	txn := suite.registeredTransaction()
	txn.Status = domain.StatusVoid

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.UpdateTransaction(ctx, txn.TransactionID,
		dto.UpdateTransactionRequest{Notes: strPtr("too late")}, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrImmutableState)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_RecomputesFinalOnDiscountChange() {
	ctx := context.Background()
	txn := suite.registeredTransaction()
	txn.TotalAmount = decimal.RequireFromString("100.00")
	txn.DiscountAmount = decimal.Zero
	txn.FinalAmount = decimal.RequireFromString("100.00")
	txn.LineItems = []domain.TransactionLineItem{
		{
			LineItemID:  uuid.NewString(),
			ConceptID:   suite.conceptID,
			Description: "Monthly tuition",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("50.00"),
			Subtotal:    decimal.RequireFromString("100.00"),
			Position:    1,
		},
	}

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Twice()
	suite.mockRepo.On("UpdateTransaction", ctx, txn.TransactionID,
		mock.MatchedBy(func(patch domain.TransactionPatch) bool {
			return patch.FinalAmount != nil && patch.FinalAmount.Equal(decimal.RequireFromString("90.00"))
		}),
		suite.registrarID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	_, err := suite.service.UpdateTransaction(ctx, txn.TransactionID,
		dto.UpdateTransactionRequest{DiscountAmount: decPtr(decimal.RequireFromString("10.00"))}, suite.registrarID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_ReceiptCollisionExcludesSelf() {
	ctx := context.Background()
	txn := suite.registeredTransaction()

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockRepo.On("ExistsReceiptNumber", ctx, "R-9001", mock.MatchedBy(func(exclude *string) bool {
		return exclude != nil && *exclude == txn.TransactionID
	})).Return(true, nil).Once()

	_, err := suite.service.UpdateTransaction(ctx, txn.TransactionID,
		dto.UpdateTransactionRequest{ExternalReceiptNumber: strPtr("R-9001")}, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDuplicateReceiptNumber)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_EmptyPatchIsNoOp() {
	ctx := context.Background()
	txn := suite.registeredTransaction()

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	updated, err := suite.service.UpdateTransaction(ctx, txn.TransactionID,
		dto.UpdateTransactionRequest{}, suite.registrarID)

	suite.Require().NoError(err)
	suite.Equal(txn, updated)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateTransaction",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- DeleteTransaction ---

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_Registered() {
	ctx := context.Background()
	txn := suite.registeredTransaction()

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockRepo.On("DeleteTransaction", ctx, txn.TransactionID).Return(nil).Once()

	err := suite.service.DeleteTransaction(ctx, txn.TransactionID, suite.registrarID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_ConfirmedMustBeVoided() {
	ctx := context.Background()
	txn := suite.registeredTransaction()
	txn.Status = domain.StatusConfirmed

	suite.mockRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	err := suite.service.DeleteTransaction(ctx, txn.TransactionID, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidState)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteTransaction", mock.Anything, mock.Anything)
}

// --- Listing ---

func (suite *TransactionServiceTestSuite) TestListTransactions_PageSummary() {
	ctx := context.Background()
	txns := []domain.Transaction{
		{TransactionID: uuid.NewString(), FinalAmount: decimal.RequireFromString("100.00")},
		{TransactionID: uuid.NewString(), FinalAmount: decimal.RequireFromString("-25.50")},
	}

	suite.mockRepo.On("ListTransactions", ctx, mock.AnythingOfType("domain.TransactionFilters"), 50, 0).
		Return(txns, int64(12), nil).Once()

	resp, err := suite.service.ListTransactions(ctx, dto.ListTransactionsParams{})

	suite.Require().NoError(err)
	suite.Equal(int64(12), resp.Total)
	suite.Equal(1, resp.Page)
	suite.Equal(50, resp.PageSize)
	suite.Equal(int64(2), resp.Summary.Count)
	suite.True(resp.Summary.TotalFinalAmount.Equal(decimal.RequireFromString("74.50")))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestListTransactions_OffsetFromPage() {
	ctx := context.Background()

	suite.mockRepo.On("ListTransactions", ctx, mock.AnythingOfType("domain.TransactionFilters"), 20, 40).
		Return([]domain.Transaction{}, int64(0), nil).Once()

	_, err := suite.service.ListTransactions(ctx, dto.ListTransactionsParams{Page: 3, PageSize: 20})

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestGetStudentSummary_RequiresID() {
	ctx := context.Background()

	_, err := suite.service.GetStudentSummary(ctx, "  ")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
