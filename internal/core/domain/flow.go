package domain

import "time"

// FlowType classifies a ledger entry. The sign of the balance effect is
// implied by the type, except for ADJUST entries which carry an explicit
// signed delta supplied by the caller.
type FlowType string

const (
	FlowIncome      FlowType = "INCOME"
	FlowExpense     FlowType = "EXPENSE"
	FlowTransferIn  FlowType = "TRANSFER_IN"
	FlowTransferOut FlowType = "TRANSFER_OUT"
	FlowAdjust      FlowType = "ADJUST"
)

// IsValid checks if the value is a known FlowType.
func (t FlowType) IsValid() bool {
	switch t {
	case FlowIncome, FlowExpense, FlowTransferIn, FlowTransferOut, FlowAdjust:
		return true
	}
	return false
}

// IsOutgoing reports whether the type reduces the account balance.
// ADJUST is excluded: its direction comes from the signed delta.
func (t FlowType) IsOutgoing() bool {
	return t == FlowExpense || t == FlowTransferOut
}

// Flow is a single posted ledger entry affecting one account's balance.
// AmountCents is the unsigned magnitude; SignedAmountCents is the
// authoritative balance effect (direction implied by FlowType, or the
// caller's delta for ADJUST). Invariant:
// BalanceAfterCents == BalanceBeforeCents + SignedAmountCents, and within an
// account each entry's BalanceBeforeCents equals the previous entry's
// BalanceAfterCents in FlowSeq order.
//
// A Flow is immutable after creation except for voucher attachment;
// corrections are posted as new offsetting flows referencing the original.
type Flow struct {
	FlowID             string    `json:"flowID"` // Primary Key (UUID)
	FlowSeq            int64     `json:"flowSeq"`
	AccountID          string    `json:"accountID"`
	FlowType           FlowType  `json:"flowType"`
	AmountCents        int64     `json:"amountCents"`       // > 0
	SignedAmountCents  int64     `json:"signedAmountCents"` // balance effect
	CurrencyCode       string    `json:"currencyCode"`      // equals the account's currency
	BizDate            time.Time `json:"bizDate"`           // business date, may precede posting date
	BalanceBeforeCents int64     `json:"balanceBeforeCents"`
	BalanceAfterCents  int64     `json:"balanceAfterCents"`
	CategoryID         string    `json:"categoryID"`
	Counterparty       string    `json:"counterparty"`
	Memo               string    `json:"memo"`
	VoucherURLs        []string  `json:"voucherURLs"`
	TransferID         *string   `json:"transferID,omitempty"`     // set on transfer legs
	OriginalFlowID     *string   `json:"originalFlowID,omitempty"` // set on reversal flows
	AuditFields
}

// SignedAmount derives the balance effect of a magnitude for a given type.
// ADJUST deltas are caller-supplied and bypass this helper.
func SignedAmount(t FlowType, amountCents int64) int64 {
	if t.IsOutgoing() {
		return -amountCents
	}
	return amountCents
}
