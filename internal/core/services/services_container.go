package services

import (
	portsrepo "github.com/clearbooks/finance_core_app/internal/core/ports/repositories"
	portssvc "github.com/clearbooks/finance_core_app/internal/core/ports/services"
	"github.com/clearbooks/finance_core_app/internal/platform/audit"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, auditPub audit.Publisher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.Account = NewAccountService(
		repos.AccountRepo,
		WithCurrencyRepository(repos.CurrencyRepo),
	)
	container.Flow = NewFlowService(repos.FlowRepo, repos.AccountRepo, repos.CurrencyRepo, auditPub)
	container.Transfer = NewTransferService(repos.TransferRepo, repos.AccountRepo, auditPub)
	container.Document = NewDocumentService(repos.DocumentRepo, repos.AccountRepo, repos.CurrencyRepo, repos.IdempotencyRepo, auditPub)
	container.Settlement = NewSettlementService(repos.SettlementRepo, repos.DocumentRepo, repos.FlowRepo, repos.IdempotencyRepo, auditPub)
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.AccountRepo, repos.CurrencyRepo)

	return container
}
