package models

import "time"

// FlowType classifies a ledger entry row.
type FlowType string

// Flow represents a ledger entry row. FlowSeq is a per-table sequence used
// to order entries by posting order (biz_date may be backdated).
type Flow struct {
	FlowID             string    `db:"flow_id"`
	FlowSeq            int64     `db:"flow_seq"`
	AccountID          string    `db:"account_id"`
	FlowType           FlowType  `db:"flow_type"`
	AmountCents        int64     `db:"amount_cents"`
	SignedAmountCents  int64     `db:"signed_amount_cents"`
	CurrencyCode       string    `db:"currency_code"`
	BizDate            time.Time `db:"biz_date"`
	BalanceBeforeCents int64     `db:"balance_before_cents"`
	BalanceAfterCents  int64     `db:"balance_after_cents"`
	CategoryID         string    `db:"category_id"`
	Counterparty       string    `db:"counterparty"`
	Memo               string    `db:"memo"`
	VoucherURLs        []string  `db:"voucher_urls"`
	TransferID         *string   `db:"transfer_id"`
	OriginalFlowID     *string   `db:"original_flow_id"`
	AuditFields
}
