package models

// Currency represents a supported currency row.
type Currency struct {
	CurrencyCode string `db:"currency_code"`
	Symbol       string `db:"symbol"`
	Name         string `db:"name"`
	Precision    int    `db:"precision"`
	IsActive     bool   `db:"is_active"`
	AuditFields
}
