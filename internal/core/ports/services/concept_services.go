package services

import (
	"context"

	"github.com/formagest/ledger_backend/internal/core/domain"
	"github.com/formagest/ledger_backend/internal/dto"
)

// ConceptReaderSvc defines read operations for the payment concept catalog
type ConceptReaderSvc interface {
	// GetConceptByID retrieves a catalog entry by its ID.
	GetConceptByID(ctx context.Context, conceptID string) (*domain.PaymentConcept, error)

	// GetConceptsByIDs retrieves catalog entries for multiple IDs, keyed by ID.
	GetConceptsByIDs(ctx context.Context, conceptIDs []string) (map[string]domain.PaymentConcept, error)

	// ListConcepts retrieves catalog entries, optionally only active ones.
	ListConcepts(ctx context.Context, activeOnly bool) ([]domain.PaymentConcept, error)
}

// ConceptWriterSvc defines write operations for the payment concept catalog
type ConceptWriterSvc interface {
	// CreateConcept adds a new catalog entry.
	CreateConcept(ctx context.Context, req dto.CreateConceptRequest, registrarID string) (*domain.PaymentConcept, error)

	// UpdateConcept applies a partial update to a catalog entry.
	UpdateConcept(ctx context.Context, conceptID string, req dto.UpdateConceptRequest, registrarID string) (*domain.PaymentConcept, error)

	// DeactivateConcept marks a catalog entry inactive so new transactions stop
	// offering it. Existing line items keep their reference.
	DeactivateConcept(ctx context.Context, conceptID string, registrarID string) error
}

// ConceptSvcFacade combines all concept-related service interfaces
type ConceptSvcFacade interface {
	ConceptReaderSvc
	ConceptWriterSvc
}
