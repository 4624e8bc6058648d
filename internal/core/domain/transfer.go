package domain

import "time"

// AccountTransfer is an atomic two-leg movement between accounts. It always
// produces exactly one TRANSFER_OUT flow on the source account and one
// TRANSFER_IN flow on the destination, created together or not at all.
// Cross-currency transfers carry a caller-supplied destination amount; the
// engine never computes FX rates.
type AccountTransfer struct {
	TransferID       string    `json:"transferID"` // Primary Key (UUID)
	FromAccountID    string    `json:"fromAccountID"`
	ToAccountID      string    `json:"toAccountID"`
	AmountCents      int64     `json:"amountCents"` // source leg magnitude
	CurrencyCode     string    `json:"currencyCode"`
	DestAmountCents  int64     `json:"destAmountCents"` // destination leg magnitude
	DestCurrencyCode string    `json:"destCurrencyCode"`
	BizDate          time.Time `json:"bizDate"`
	Memo             string    `json:"memo"`
	OutFlowID        string    `json:"outFlowID"`
	InFlowID         string    `json:"inFlowID"`
	AuditFields
}
