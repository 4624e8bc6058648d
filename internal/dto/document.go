package dto

import (
	"time"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
)

// CreateDocumentRequest defines the data needed to create an AR/AP document.
// AR documents reference a site, AP documents a party.
type CreateDocumentRequest struct {
	Kind         domain.DocumentKind `json:"kind" binding:"required,oneof=AR AP"`
	PartyID      string              `json:"partyId"`
	SiteID       string              `json:"siteId"`
	AmountCents  int64               `json:"amountCents" binding:"required,gt=0"`
	CurrencyCode string              `json:"currency" binding:"required"`
	IssueDate    string              `json:"issueDate" binding:"required,dateformat"` // YYYY-MM-DD
	DueDate      *string             `json:"dueDate" binding:"omitempty,dateformat"`  // YYYY-MM-DD
	Memo         string              `json:"memo"`
}

// ConfirmDocumentRequest posts the confirmation flow for a draft document.
type ConfirmDocumentRequest struct {
	AccountID      string  `json:"accountId" binding:"required"`
	CategoryID     string  `json:"categoryId" binding:"required"`
	BizDate        string  `json:"bizDate" binding:"required,dateformat"` // YYYY-MM-DD
	VoucherURL     string  `json:"voucherUrl" binding:"required,url"`
	IdempotencyKey *string `json:"idempotencyKey"`
}

// ReverseDocumentRequest carries the optional memo for a document reversal.
type ReverseDocumentRequest struct {
	Memo string `json:"memo"`
}

// DocumentResponse defines the data returned for an AR/AP document.
type DocumentResponse struct {
	DocID          string                `json:"id"`
	Kind           domain.DocumentKind   `json:"kind"`
	PartyID        string                `json:"partyId,omitempty"`
	SiteID         string                `json:"siteId,omitempty"`
	IssueDate      string                `json:"issueDate"`
	DueDate        *string               `json:"dueDate,omitempty"`
	AmountCents    int64                 `json:"amountCents"`
	CurrencyCode   string                `json:"currency"`
	Status         domain.DocumentStatus `json:"status"`
	SettledCents   int64                 `json:"settledCents"`
	RemainingCents int64                 `json:"remainingCents"`
	ConfirmFlowID  *string               `json:"confirmFlowId,omitempty"`
	ReversalFlowID *string               `json:"reversalFlowId,omitempty"`
	Memo           string                `json:"memo,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	CreatedBy      string                `json:"createdBy"`
}

// ToDocumentResponse converts a domain.Document to DocumentResponse DTO
func ToDocumentResponse(d *domain.Document) DocumentResponse {
	var due *string
	if d.DueDate != nil {
		s := d.DueDate.Format("2006-01-02")
		due = &s
	}
	return DocumentResponse{
		DocID:          d.DocID,
		Kind:           d.Kind,
		PartyID:        d.PartyID,
		SiteID:         d.SiteID,
		IssueDate:      d.IssueDate.Format("2006-01-02"),
		DueDate:        due,
		AmountCents:    d.AmountCents,
		CurrencyCode:   d.CurrencyCode,
		Status:         d.Status,
		SettledCents:   d.SettledCents,
		RemainingCents: d.RemainingCents(),
		ConfirmFlowID:  d.ConfirmFlowID,
		ReversalFlowID: d.ReversalFlowID,
		Memo:           d.Memo,
		CreatedAt:      d.CreatedAt,
		CreatedBy:      d.CreatedBy,
	}
}

// ToDocumentResponses converts a slice of domain.Document to DocumentResponse DTOs
func ToDocumentResponses(docs []domain.Document) []DocumentResponse {
	res := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		res[i] = ToDocumentResponse(&d)
	}
	return res
}

// ListDocumentsParams defines query parameters for listing documents.
type ListDocumentsParams struct {
	Kind      *string `form:"kind"`
	Status    *string `form:"status"`
	PartyID   *string `form:"partyId"`
	SiteID    *string `form:"siteId"`
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListDocumentsResponse wraps the paginated list of documents.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	NextToken *string            `json:"nextToken,omitempty"`
}
