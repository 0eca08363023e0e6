package repositories

import (
	"context"

	"github.com/formagest/ledger_backend/internal/core/domain"
)

// ConceptReader defines read operations for the payment concept catalog
type ConceptReader interface {
	// FindConceptByID retrieves a catalog entry by its unique identifier.
	FindConceptByID(ctx context.Context, conceptID string) (*domain.PaymentConcept, error)

	// FindConceptsByIDs retrieves catalog entries for multiple identifiers, keyed by ID.
	// Missing identifiers are simply absent from the result.
	FindConceptsByIDs(ctx context.Context, conceptIDs []string) (map[string]domain.PaymentConcept, error)

	// ListConcepts retrieves catalog entries ordered by display order. When
	// activeOnly is set, inactive entries are left out.
	ListConcepts(ctx context.Context, activeOnly bool) ([]domain.PaymentConcept, error)
}

// ConceptWriter defines write operations for the payment concept catalog
type ConceptWriter interface {
	// SaveConcept persists a new catalog entry.
	SaveConcept(ctx context.Context, concept domain.PaymentConcept) error

	// UpdateConcept replaces the mutable fields of a catalog entry.
	UpdateConcept(ctx context.Context, concept domain.PaymentConcept) error
}

// ConceptRepositoryFacade combines all concept-related repository interfaces
type ConceptRepositoryFacade interface {
	ConceptReader
	ConceptWriter
}

// ConceptRepositoryWithTx extends ConceptRepositoryFacade with transaction capabilities
type ConceptRepositoryWithTx interface {
	ConceptRepositoryFacade
	TransactionManager
}
