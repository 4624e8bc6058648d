package domain

import "time"

// DocumentKind distinguishes receivable from payable obligations.
type DocumentKind string

const (
	KindReceivable DocumentKind = "AR" // money owed to the organization
	KindPayable    DocumentKind = "AP" // money the organization owes
)

// IsValid checks if the value is a known DocumentKind.
func (k DocumentKind) IsValid() bool {
	return k == KindReceivable || k == KindPayable
}

// ConfirmFlowType returns the flow type a confirmation posts: receivables
// book income-like recognition, payables book expense-like recognition.
func (k DocumentKind) ConfirmFlowType() FlowType {
	if k == KindReceivable {
		return FlowIncome
	}
	return FlowExpense
}

// DocumentStatus is the lifecycle state of an AR/AP document.
type DocumentStatus string

const (
	DocDraft            DocumentStatus = "DRAFT"
	DocConfirmed        DocumentStatus = "CONFIRMED"
	DocPartiallySettled DocumentStatus = "PARTIALLY_SETTLED"
	DocSettled          DocumentStatus = "SETTLED"
	DocReversed         DocumentStatus = "REVERSED"
)

// IsValid checks if the value is a known DocumentStatus.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocDraft, DocConfirmed, DocPartiallySettled, DocSettled, DocReversed:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocSettled || s == DocReversed
}

// CanSettle reports whether settlements may be applied in this status.
func (s DocumentStatus) CanSettle() bool {
	return s == DocConfirmed || s == DocPartiallySettled
}

// StatusForSettled derives the post-settlement status from the settled and
// total amounts.
func StatusForSettled(settledCents, amountCents int64) DocumentStatus {
	if settledCents >= amountCents {
		return DocSettled
	}
	return DocPartiallySettled
}

// Document is a receivable or payable obligation. SettledCents is derived
// from settlements and never exceeds AmountCents. Transitions never remove a
// prior flow; corrections are always additive or compensating.
type Document struct {
	DocID          string         `json:"docID"` // Primary Key (UUID)
	Kind           DocumentKind   `json:"kind"`
	PartyID        string         `json:"partyID,omitempty"` // AP counterparty reference
	SiteID         string         `json:"siteID,omitempty"`  // AR site reference
	IssueDate      time.Time      `json:"issueDate"`
	DueDate        *time.Time     `json:"dueDate,omitempty"`
	AmountCents    int64          `json:"amountCents"` // > 0
	CurrencyCode   string         `json:"currencyCode"`
	Status         DocumentStatus `json:"status"`
	SettledCents   int64          `json:"settledCents"`             // derived, <= AmountCents
	ConfirmFlowID  *string        `json:"confirmFlowID,omitempty"`  // set on confirmation
	ReversalFlowID *string        `json:"reversalFlowID,omitempty"` // set on reversal
	Memo           string         `json:"memo"`
	AuditFields
}

// RemainingCents is the unsettled portion of the document.
func (d Document) RemainingCents() int64 {
	return d.AmountCents - d.SettledCents
}
