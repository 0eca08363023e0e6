package pgsql

import (
	portsrepo "github.com/formagest/ledger_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	transactionRepo := newPgxTransactionRepository(dbPool)
	conceptRepo := newPgxConceptRepository(dbPool)

	return portsrepo.RepositoryProvider{
		TransactionRepo: transactionRepo,
		ConceptRepo:     conceptRepo,
	}
}
