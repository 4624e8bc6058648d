package domain

// AccountBalanceRow is one account's slice of the balance report: opening is
// the sum of postings strictly before the period, closing is
// opening + income - expense. Pure fold over the immutable flow history.
type AccountBalanceRow struct {
	AccountID    string      `json:"accountID"`
	AccountName  string      `json:"accountName"`
	AccountType  AccountType `json:"accountType"`
	CurrencyCode string      `json:"currencyCode"`
	OpeningCents int64       `json:"openingCents"`
	IncomeCents  int64       `json:"incomeCents"`
	ExpenseCents int64       `json:"expenseCents"`
	ClosingCents int64       `json:"closingCents"`
}

// CurrencyRollup aggregates account rows sharing a currency.
type CurrencyRollup struct {
	CurrencyCode string              `json:"currencyCode"`
	OpeningCents int64               `json:"openingCents"`
	IncomeCents  int64               `json:"incomeCents"`
	ExpenseCents int64               `json:"expenseCents"`
	ClosingCents int64               `json:"closingCents"`
	Accounts     []AccountBalanceRow `json:"accounts"`
}
