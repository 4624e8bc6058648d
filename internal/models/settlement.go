package models

// Settlement represents an immutable settlement row.
type Settlement struct {
	SettlementID      string `db:"settlement_id"`
	DocID             string `db:"doc_id"`
	FlowID            string `db:"flow_id"`
	SettleAmountCents int64  `db:"settle_amount_cents"`
	Reversed          bool   `db:"reversed"`
	AuditFields
}

// SettlementReversal represents the compensating record for a settlement.
type SettlementReversal struct {
	ReversalID   string `db:"reversal_id"`
	SettlementID string `db:"settlement_id"`
	AmountCents  int64  `db:"amount_cents"`
	Reason       string `db:"reason"`
	AuditFields
}
