package domain

// Settlement applies part of a flow's value against an AR/AP document's
// outstanding amount. Rows are immutable once created; undoing one requires
// an explicit reversal record, never deletion. Per flow and per document the
// settled sums never exceed the respective amounts.
type Settlement struct {
	SettlementID      string `json:"settlementID"` // Primary Key (UUID)
	DocID             string `json:"docID"`
	FlowID            string `json:"flowID"`
	SettleAmountCents int64  `json:"settleAmountCents"` // > 0
	Reversed          bool   `json:"reversed"`          // set when a reversal record exists
	AuditFields
}

// SettlementReversal is the explicit compensating record for a settlement.
type SettlementReversal struct {
	ReversalID   string `json:"reversalID"` // Primary Key (UUID)
	SettlementID string `json:"settlementID"`
	AmountCents  int64  `json:"amountCents"` // equals the original settle amount
	Reason       string `json:"reason"`
	AuditFields
}

// SettlementCandidate is a flow eligible to back a document settlement,
// annotated with how much of its value is still unallocated.
type SettlementCandidate struct {
	Flow           Flow  `json:"flow"`
	RemainingCents int64 `json:"remainingCents"`
}
