package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/formagest/ledger_backend/internal/apperrors"
	"github.com/formagest/ledger_backend/internal/core/domain"
	portsrepo "github.com/formagest/ledger_backend/internal/core/ports/repositories"
	"github.com/formagest/ledger_backend/internal/models"
	"github.com/formagest/ledger_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const conceptColumns = `concept_id, code, name, description, type_tag, base_amount,
	       applies_to_program, applies_to_student, display_order, active,
	       created_at, created_by, last_updated_at, last_updated_by`

type PgxConceptRepository struct {
	BaseRepository
}

// newPgxConceptRepository creates a new repository for the payment concept catalog.
func newPgxConceptRepository(pool *pgxpool.Pool) portsrepo.ConceptRepositoryWithTx {
	return &PgxConceptRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxConceptRepository implements portsrepo.ConceptRepositoryWithTx
var _ portsrepo.ConceptRepositoryWithTx = (*PgxConceptRepository)(nil)

func scanConcept(row rowScanner) (models.PaymentConcept, error) {
	var m models.PaymentConcept
	err := row.Scan(
		&m.ConceptID,
		&m.Code,
		&m.Name,
		&m.Description,
		&m.TypeTag,
		&m.BaseAmount,
		&m.AppliesToProgram,
		&m.AppliesToStudent,
		&m.DisplayOrder,
		&m.Active,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindConceptByID retrieves a catalog entry by its ID.
func (r *PgxConceptRepository) FindConceptByID(ctx context.Context, conceptID string) (*domain.PaymentConcept, error) {
	query := `SELECT ` + conceptColumns + ` FROM payment_concepts WHERE concept_id = $1;`
	m, err := scanConcept(r.Pool.QueryRow(ctx, query, conceptID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find concept by ID "+conceptID, err)
	}
	d := mapping.ToDomainPaymentConcept(m)
	return &d, nil
}

// FindConceptsByIDs retrieves catalog entries for multiple IDs, keyed by ID.
func (r *PgxConceptRepository) FindConceptsByIDs(ctx context.Context, conceptIDs []string) (map[string]domain.PaymentConcept, error) {
	if len(conceptIDs) == 0 {
		return map[string]domain.PaymentConcept{}, nil
	}
	query := `SELECT ` + conceptColumns + ` FROM payment_concepts WHERE concept_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, conceptIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query concepts by IDs", err)
	}
	defer rows.Close()

	result := make(map[string]domain.PaymentConcept, len(conceptIDs))
	for rows.Next() {
		m, err := scanConcept(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan concept row", err)
		}
		result[m.ConceptID] = mapping.ToDomainPaymentConcept(m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading concept rows", err)
	}
	return result, nil
}

// ListConcepts retrieves catalog entries ordered for display.
func (r *PgxConceptRepository) ListConcepts(ctx context.Context, activeOnly bool) ([]domain.PaymentConcept, error) {
	query := `SELECT ` + conceptColumns + ` FROM payment_concepts`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY display_order, name;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query concepts", err)
	}
	defer rows.Close()

	concepts := []models.PaymentConcept{}
	for rows.Next() {
		m, err := scanConcept(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan concept row", err)
		}
		concepts = append(concepts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading concept rows", err)
	}
	return mapping.ToDomainPaymentConceptSlice(concepts), nil
}

// SaveConcept persists a new catalog entry.
func (r *PgxConceptRepository) SaveConcept(ctx context.Context, concept domain.PaymentConcept) error {
	m := mapping.ToModelPaymentConcept(concept)
	query := `
		INSERT INTO payment_concepts (` + conceptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ConceptID,
		m.Code,
		m.Name,
		m.Description,
		m.TypeTag,
		m.BaseAmount,
		m.AppliesToProgram,
		m.AppliesToStudent,
		m.DisplayOrder,
		m.Active,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: concept code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return apperrors.NewAppError(500, "failed to insert concept "+m.ConceptID, err)
	}
	return nil
}

// UpdateConcept replaces the mutable fields of a catalog entry.
func (r *PgxConceptRepository) UpdateConcept(ctx context.Context, concept domain.PaymentConcept) error {
	m := mapping.ToModelPaymentConcept(concept)
	query := `
		UPDATE payment_concepts
		SET name = $2, description = $3, type_tag = $4, base_amount = $5,
		    applies_to_program = $6, applies_to_student = $7, display_order = $8, active = $9,
		    last_updated_at = $10, last_updated_by = $11
		WHERE concept_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.ConceptID,
		m.Name,
		m.Description,
		m.TypeTag,
		m.BaseAmount,
		m.AppliesToProgram,
		m.AppliesToStudent,
		m.DisplayOrder,
		m.Active,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update concept "+m.ConceptID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
