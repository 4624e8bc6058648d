package utils

import (
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FormatCents renders an integer minor-unit amount with the correct number of
// fraction digits for the currency.
// Example: 1234 cents with USD (precision 2) returns "12.34"
// Example: 1234 with JPY (precision 0) returns "1234"
func FormatCents(cents int64, currency domain.Currency) string {
	return decimal.New(cents, -int32(currency.Precision)).StringFixed(int32(currency.Precision))
}

// FormatCentsWithPrecision is a convenience function when only the precision
// value is at hand.
func FormatCentsWithPrecision(cents int64, precision int) string {
	return decimal.New(cents, -int32(precision)).StringFixed(int32(precision))
}
