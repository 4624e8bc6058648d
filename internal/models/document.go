package models

import "time"

// DocumentKind distinguishes receivable (AR) from payable (AP) rows.
type DocumentKind string

// DocumentStatus is the persisted lifecycle state of a document.
type DocumentStatus string

// Document represents an AR/AP obligation row. SettledCents is maintained in
// the same transaction as every settlement insert.
type Document struct {
	DocID          string         `db:"doc_id"`
	Kind           DocumentKind   `db:"kind"`
	PartyID        string         `db:"party_id"`
	SiteID         string         `db:"site_id"`
	IssueDate      time.Time      `db:"issue_date"`
	DueDate        *time.Time     `db:"due_date"`
	AmountCents    int64          `db:"amount_cents"`
	CurrencyCode   string         `db:"currency_code"`
	Status         DocumentStatus `db:"status"`
	SettledCents   int64          `db:"settled_cents"`
	ConfirmFlowID  *string        `db:"confirm_flow_id"`
	ReversalFlowID *string        `db:"reversal_flow_id"`
	Memo           string         `db:"memo"`
	AuditFields
}
