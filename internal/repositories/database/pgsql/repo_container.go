package pgsql

import (
	"time"

	portsrepo "github.com/clearbooks/finance_core_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires all pgsql repositories over a shared pool. The
// flow repository is injected into the transfer and document repositories so
// their multi-write transactions reuse the single posting path.
func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool, lockTimeout)
	flowRepo := newPgxFlowRepository(dbPool, lockTimeout, accountRepo)

	return portsrepo.RepositoryProvider{
		CurrencyRepo:    newPgxCurrencyRepository(dbPool),
		AccountRepo:     accountRepo,
		FlowRepo:        flowRepo,
		TransferRepo:    newPgxTransferRepository(dbPool, lockTimeout, accountRepo, flowRepo),
		DocumentRepo:    newPgxDocumentRepository(dbPool, lockTimeout, flowRepo),
		SettlementRepo:  newPgxSettlementRepository(dbPool, lockTimeout),
		ReportingRepo:   newPgxReportingRepository(dbPool),
		IdempotencyRepo: newPgxIdempotencyRepository(dbPool),
	}
}
