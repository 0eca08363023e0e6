package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/formagest/ledger_backend/internal/apperrors"
	"github.com/formagest/ledger_backend/internal/core/domain"
	portsrepo "github.com/formagest/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/formagest/ledger_backend/internal/core/ports/services"
	"github.com/formagest/ledger_backend/internal/dto"
	"github.com/formagest/ledger_backend/internal/middleware"
)

// conceptService manages the payment concept catalog.
type conceptService struct {
	conceptRepo portsrepo.ConceptRepositoryFacade
}

// NewConceptService creates a new ConceptService.
func NewConceptService(conceptRepo portsrepo.ConceptRepositoryFacade) portssvc.ConceptSvcFacade {
	return &conceptService{conceptRepo: conceptRepo}
}

// Ensure conceptService implements the portssvc.ConceptSvcFacade interface
var _ portssvc.ConceptSvcFacade = (*conceptService)(nil)

// GetConceptByID retrieves a catalog entry by its ID.
func (s *conceptService) GetConceptByID(ctx context.Context, conceptID string) (*domain.PaymentConcept, error) {
	return s.conceptRepo.FindConceptByID(ctx, conceptID)
}

// GetConceptsByIDs retrieves catalog entries for multiple IDs, keyed by ID.
func (s *conceptService) GetConceptsByIDs(ctx context.Context, conceptIDs []string) (map[string]domain.PaymentConcept, error) {
	return s.conceptRepo.FindConceptsByIDs(ctx, conceptIDs)
}

// ListConcepts retrieves catalog entries, optionally only active ones.
func (s *conceptService) ListConcepts(ctx context.Context, activeOnly bool) ([]domain.PaymentConcept, error) {
	return s.conceptRepo.ListConcepts(ctx, activeOnly)
}

// CreateConcept adds a new catalog entry.
func (s *conceptService) CreateConcept(ctx context.Context, req dto.CreateConceptRequest, registrarID string) (*domain.PaymentConcept, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: concept code and name are required", apperrors.ErrValidation)
	}
	if req.BaseAmount.IsNegative() {
		return nil, fmt.Errorf("%w: base amount must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	concept := domain.PaymentConcept{
		ConceptID:        uuid.NewString(),
		Code:             strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:             req.Name,
		Description:      req.Description,
		TypeTag:          req.TypeTag,
		BaseAmount:       req.BaseAmount,
		AppliesToProgram: req.AppliesToProgram,
		AppliesToStudent: req.AppliesToStudent,
		DisplayOrder:     req.DisplayOrder,
		Active:           true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     registrarID,
			LastUpdatedAt: now,
			LastUpdatedBy: registrarID,
		},
	}

	if err := s.conceptRepo.SaveConcept(ctx, concept); err != nil {
		return nil, err
	}

	logger.Info("Concept created", slog.String("concept_id", concept.ConceptID), slog.String("code", concept.Code))
	return &concept, nil
}

// UpdateConcept applies a partial update to a catalog entry.
func (s *conceptService) UpdateConcept(ctx context.Context, conceptID string, req dto.UpdateConceptRequest, registrarID string) (*domain.PaymentConcept, error) {
	current, err := s.conceptRepo.FindConceptByID(ctx, conceptID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.TypeTag != nil {
		current.TypeTag = *req.TypeTag
	}
	if req.BaseAmount != nil {
		if req.BaseAmount.IsNegative() {
			return nil, fmt.Errorf("%w: base amount must not be negative", apperrors.ErrValidation)
		}
		current.BaseAmount = *req.BaseAmount
	}
	if req.AppliesToProgram != nil {
		current.AppliesToProgram = *req.AppliesToProgram
	}
	if req.AppliesToStudent != nil {
		current.AppliesToStudent = *req.AppliesToStudent
	}
	if req.DisplayOrder != nil {
		current.DisplayOrder = *req.DisplayOrder
	}
	if req.Active != nil {
		current.Active = *req.Active
	}
	current.LastUpdatedAt = time.Now().UTC()
	current.LastUpdatedBy = registrarID

	if err := s.conceptRepo.UpdateConcept(ctx, *current); err != nil {
		return nil, err
	}
	return current, nil
}

// DeactivateConcept marks a catalog entry inactive.
func (s *conceptService) DeactivateConcept(ctx context.Context, conceptID string, registrarID string) error {
	inactive := false
	_, err := s.UpdateConcept(ctx, conceptID, dto.UpdateConceptRequest{Active: &inactive}, registrarID)
	return err
}
