package models

import "time"

// AccountTransfer represents a two-leg transfer row linking its flows.
type AccountTransfer struct {
	TransferID       string    `db:"transfer_id"`
	FromAccountID    string    `db:"from_account_id"`
	ToAccountID      string    `db:"to_account_id"`
	AmountCents      int64     `db:"amount_cents"`
	CurrencyCode     string    `db:"currency_code"`
	DestAmountCents  int64     `db:"dest_amount_cents"`
	DestCurrencyCode string    `db:"dest_currency_code"`
	BizDate          time.Time `db:"biz_date"`
	Memo             string    `db:"memo"`
	OutFlowID        string    `db:"out_flow_id"`
	InFlowID         string    `db:"in_flow_id"`
	AuditFields
}
