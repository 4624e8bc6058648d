package domain

// AccountType classifies a money-holding account.
type AccountType string

const (
	AccountCash    AccountType = "CASH"
	AccountBank    AccountType = "BANK"
	AccountWallet  AccountType = "WALLET"
	AccountVirtual AccountType = "VIRTUAL"
)

// IsValid checks if the value is a known AccountType.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountCash, AccountBank, AccountWallet, AccountVirtual:
		return true
	}
	return false
}

// Account represents a money-holding entity within the core domain.
// BalanceCents is derived: it always equals the sum of signed amounts of all
// flows posted against the account, in posting order, and is only ever
// written by the ledger's single mutation path.
type Account struct {
	AccountID      string      `json:"accountID"` // Primary Key (UUID)
	Name           string      `json:"name"`
	AccountType    AccountType `json:"accountType"`
	CurrencyCode   string      `json:"currencyCode"` // fixed at creation
	Description    string      `json:"description"`
	IsActive       bool        `json:"isActive"`       // soft-disable flag
	AllowOverdraft bool        `json:"allowOverdraft"` // permits negative balance
	BalanceCents   int64       `json:"balanceCents"`   // derived, integer minor units
	AuditFields
}
