package domain

// Currency represents a supported currency in the domain.
// All amounts in the system are integer minor units; Precision records how
// many minor-unit digits the currency carries and is only consulted when
// formatting amounts for display.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	Precision    int    `json:"precision"`    // minor unit digits, e.g. 2 for USD, 0 for JPY
	IsActive     bool   `json:"isActive"`     // deactivated currencies reject new postings
	AuditFields
}
