package models

// AccountType classifies a money-holding account.
type AccountType string

// Account represents an account row. BalanceCents is the persisted running
// balance in integer minor units; it is only mutated inside the ledger's
// posting transaction.
type Account struct {
	AccountID      string      `db:"account_id"`
	Name           string      `db:"name"`
	AccountType    AccountType `db:"account_type"`
	CurrencyCode   string      `db:"currency_code"`
	Description    string      `db:"description"`
	IsActive       bool        `db:"is_active"`
	AllowOverdraft bool        `db:"allow_overdraft"`
	BalanceCents   int64       `db:"balance_cents"`
	AuditFields
}
