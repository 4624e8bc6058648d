package repositories

import (
	"context"
	"time"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts using token-based pagination.
	ListAccounts(ctx context.Context, limit int, nextToken *string) ([]domain.Account, *string, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccountDetails updates mutable account fields (name, description).
	// Balance is never written through this path.
	UpdateAccountDetails(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountPostingSupport defines the lock-and-mutate operations the ledger's
// single posting path relies on. All balance mutation funnels through these,
// inside a transaction holding the account row lock.
type AccountPostingSupport interface {
	// FindAccountForUpdate selects an account and locks its row within the transaction.
	FindAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)

	// FindAccountsForUpdate selects and locks multiple accounts in ascending
	// accountID order, which keeps multi-account lock acquisition deadlock-free.
	FindAccountsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalanceInTx writes the new running balance within the transaction.
	UpdateAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, newBalanceCents int64, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountPostingSupport
}
