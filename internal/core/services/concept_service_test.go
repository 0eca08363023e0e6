package services_test

import (
	"context"
	"testing"

	"github.com/formagest/ledger_backend/internal/apperrors"
	"github.com/formagest/ledger_backend/internal/core/domain"
	portsrepo "github.com/formagest/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/formagest/ledger_backend/internal/core/ports/services"
	"github.com/formagest/ledger_backend/internal/core/services"
	"github.com/formagest/ledger_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ConceptRepository ---
type MockConceptRepository struct {
	mock.Mock
}

var _ portsrepo.ConceptRepositoryFacade = (*MockConceptRepository)(nil)

func (m *MockConceptRepository) FindConceptByID(ctx context.Context, conceptID string) (*domain.PaymentConcept, error) {
	args := m.Called(ctx, conceptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentConcept), args.Error(1)
}

func (m *MockConceptRepository) FindConceptsByIDs(ctx context.Context, conceptIDs []string) (map[string]domain.PaymentConcept, error) {
	args := m.Called(ctx, conceptIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.PaymentConcept), args.Error(1)
}

func (m *MockConceptRepository) ListConcepts(ctx context.Context, activeOnly bool) ([]domain.PaymentConcept, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentConcept), args.Error(1)
}

func (m *MockConceptRepository) SaveConcept(ctx context.Context, concept domain.PaymentConcept) error {
	args := m.Called(ctx, concept)
	return args.Error(0)
}

func (m *MockConceptRepository) UpdateConcept(ctx context.Context, concept domain.PaymentConcept) error {
	args := m.Called(ctx, concept)
	return args.Error(0)
}

// --- Test Suite Setup ---
type ConceptServiceTestSuite struct {
	suite.Suite
	mockRepo    *MockConceptRepository
	service     portssvc.ConceptSvcFacade
	registrarID string
}

func (suite *ConceptServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockConceptRepository)
	suite.service = services.NewConceptService(suite.mockRepo)
	suite.registrarID = uuid.NewString()
}

func (suite *ConceptServiceTestSuite) TestCreateConcept_Success() {
	ctx := context.Background()
	req := dto.CreateConceptRequest{
		Code:             " tuition ",
		Name:             "Monthly tuition",
		TypeTag:          "TUITION",
		BaseAmount:       decimal.RequireFromString("350.00"),
		AppliesToStudent: true,
		DisplayOrder:     2,
	}

	suite.mockRepo.On("SaveConcept", ctx, mock.MatchedBy(func(c domain.PaymentConcept) bool {
		return c.Code == "TUITION" && c.Active && c.CreatedBy == suite.registrarID
	})).Return(nil).Once()

	created, err := suite.service.CreateConcept(ctx, req, suite.registrarID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.Equal("TUITION", created.Code)
	suite.True(created.Active)
	suite.NotEmpty(created.ConceptID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ConceptServiceTestSuite) TestCreateConcept_MissingCode() {
	ctx := context.Background()
	req := dto.CreateConceptRequest{Name: "No code", TypeTag: "FEE"}

	_, err := suite.service.CreateConcept(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveConcept", mock.Anything, mock.Anything)
}

func (suite *ConceptServiceTestSuite) TestCreateConcept_NegativeBaseAmount() {
	ctx := context.Background()
	req := dto.CreateConceptRequest{
		Code:       "FEE",
		Name:       "Fee",
		TypeTag:    "FEE",
		BaseAmount: decimal.RequireFromString("-1.00"),
	}

	_, err := suite.service.CreateConcept(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ConceptServiceTestSuite) TestCreateConcept_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateConceptRequest{
		Code:       "TUITION",
		Name:       "Monthly tuition",
		TypeTag:    "TUITION",
		BaseAmount: decimal.RequireFromString("350.00"),
	}

	suite.mockRepo.On("SaveConcept", ctx, mock.AnythingOfType("domain.PaymentConcept")).
		Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateConcept(ctx, req, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *ConceptServiceTestSuite) TestUpdateConcept_MergesFields() {
	ctx := context.Background()
	existing := &domain.PaymentConcept{
		ConceptID:  uuid.NewString(),
		Code:       "TUITION",
		Name:       "Monthly tuition",
		TypeTag:    "TUITION",
		BaseAmount: decimal.RequireFromString("350.00"),
		Active:     true,
	}
	newAmount := decimal.RequireFromString("375.00")

	suite.mockRepo.On("FindConceptByID", ctx, existing.ConceptID).Return(existing, nil).Once()
	suite.mockRepo.On("UpdateConcept", ctx, mock.MatchedBy(func(c domain.PaymentConcept) bool {
		return c.BaseAmount.Equal(newAmount) && c.Name == "Monthly tuition" && c.LastUpdatedBy == suite.registrarID
	})).Return(nil).Once()

	updated, err := suite.service.UpdateConcept(ctx, existing.ConceptID,
		dto.UpdateConceptRequest{BaseAmount: &newAmount}, suite.registrarID)

	suite.Require().NoError(err)
	suite.True(updated.BaseAmount.Equal(newAmount))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ConceptServiceTestSuite) TestUpdateConcept_NotFound() {
	ctx := context.Background()
	conceptID := uuid.NewString()

	suite.mockRepo.On("FindConceptByID", ctx, conceptID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.UpdateConcept(ctx, conceptID, dto.UpdateConceptRequest{}, suite.registrarID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ConceptServiceTestSuite) TestDeactivateConcept() {
	ctx := context.Background()
	existing := &domain.PaymentConcept{
		ConceptID: uuid.NewString(),
		Code:      "TUITION",
		Name:      "Monthly tuition",
		Active:    true,
	}

	suite.mockRepo.On("FindConceptByID", ctx, existing.ConceptID).Return(existing, nil).Once()
	suite.mockRepo.On("UpdateConcept", ctx, mock.MatchedBy(func(c domain.PaymentConcept) bool {
		return !c.Active
	})).Return(nil).Once()

	err := suite.service.DeactivateConcept(ctx, existing.ConceptID, suite.registrarID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestConceptServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConceptServiceTestSuite))
}
