package services

import (
	portsrepo "github.com/formagest/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/formagest/ledger_backend/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Concept catalog first; the ledger service reads it when resolving line items.
	container.Concept = NewConceptService(repos.ConceptRepo)
	container.Transaction = NewTransactionService(repos.TransactionRepo, container.Concept)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.TransactionSvcFacade = (*transactionService)(nil)
	_ portssvc.ConceptSvcFacade     = (*conceptService)(nil)
)
