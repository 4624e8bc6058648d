package dto

// AccountBalanceRowResponse is one account's slice of the balance report.
// The *Display fields carry amounts formatted with the currency's precision.
type AccountBalanceRowResponse struct {
	AccountID      string `json:"accountID"`
	AccountName    string `json:"accountName"`
	AccountType    string `json:"accountType"`
	CurrencyCode   string `json:"currencyCode"`
	OpeningCents   int64  `json:"openingCents"`
	IncomeCents    int64  `json:"incomeCents"`
	ExpenseCents   int64  `json:"expenseCents"`
	ClosingCents   int64  `json:"closingCents"`
	OpeningDisplay string `json:"openingDisplay"`
	ClosingDisplay string `json:"closingDisplay"`
}

// CurrencyRollupResponse aggregates account rows sharing a currency.
type CurrencyRollupResponse struct {
	CurrencyCode   string                      `json:"currencyCode"`
	OpeningCents   int64                       `json:"openingCents"`
	IncomeCents    int64                       `json:"incomeCents"`
	ExpenseCents   int64                       `json:"expenseCents"`
	ClosingCents   int64                       `json:"closingCents"`
	OpeningDisplay string                      `json:"openingDisplay"`
	ClosingDisplay string                      `json:"closingDisplay"`
	Accounts       []AccountBalanceRowResponse `json:"accounts"`
}

// AccountBalanceReportResponse is the full per-period rollup.
type AccountBalanceReportResponse struct {
	PeriodStart string                   `json:"periodStart"`
	PeriodEnd   string                   `json:"periodEnd"`
	Currencies  []CurrencyRollupResponse `json:"currencies"`
}

// AccountStatementParams defines query parameters for an account statement.
type AccountStatementParams struct {
	From      string  `form:"from" binding:"required,dateformat"` // YYYY-MM-DD
	To        string  `form:"to" binding:"required,dateformat"`   // YYYY-MM-DD
	Limit     int     `form:"limit,default=50"`
	NextToken *string `form:"nextToken"`
}

// AccountStatementResponse is the raw flow sequence with running balances.
type AccountStatementResponse struct {
	AccountID string         `json:"accountID"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Lines     []FlowResponse `json:"lines"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// AccountBalanceReportParams defines query parameters for the balance report.
type AccountBalanceReportParams struct {
	AsOf string `form:"asOf" binding:"required,dateformat"` // YYYY-MM-DD
}
