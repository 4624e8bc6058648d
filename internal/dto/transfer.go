package dto

import (
	"time"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
)

// CreateTransferRequest defines the data needed for a two-leg transfer.
// DestAmountCents is required when the destination account uses a different
// currency; the engine never computes conversion rates itself.
type CreateTransferRequest struct {
	FromAccountID   string `json:"fromAccountId" binding:"required"`
	ToAccountID     string `json:"toAccountId" binding:"required"`
	AmountCents     int64  `json:"amountCents" binding:"required,gt=0"`
	CurrencyCode    string `json:"currency" binding:"required"`
	DestAmountCents *int64 `json:"destAmountCents"`
	BizDate         string `json:"bizDate" binding:"required,dateformat"` // YYYY-MM-DD
	Memo            string `json:"memo"`
}

// TransferResponse defines the data returned for a transfer.
type TransferResponse struct {
	TransferID       string    `json:"id"`
	FromAccountID    string    `json:"fromAccountId"`
	ToAccountID      string    `json:"toAccountId"`
	AmountCents      int64     `json:"amountCents"`
	CurrencyCode     string    `json:"currency"`
	DestAmountCents  int64     `json:"destAmountCents"`
	DestCurrencyCode string    `json:"destCurrency"`
	BizDate          string    `json:"bizDate"`
	Memo             string    `json:"memo,omitempty"`
	OutFlowID        string    `json:"outFlowId"`
	InFlowID         string    `json:"inFlowId"`
	CreatedAt        time.Time `json:"createdAt"`
	CreatedBy        string    `json:"createdBy"`
}

// ToTransferResponse converts a domain.AccountTransfer to TransferResponse DTO
func ToTransferResponse(t *domain.AccountTransfer) TransferResponse {
	return TransferResponse{
		TransferID:       t.TransferID,
		FromAccountID:    t.FromAccountID,
		ToAccountID:      t.ToAccountID,
		AmountCents:      t.AmountCents,
		CurrencyCode:     t.CurrencyCode,
		DestAmountCents:  t.DestAmountCents,
		DestCurrencyCode: t.DestCurrencyCode,
		BizDate:          t.BizDate.Format("2006-01-02"),
		Memo:             t.Memo,
		OutFlowID:        t.OutFlowID,
		InFlowID:         t.InFlowID,
		CreatedAt:        t.CreatedAt,
		CreatedBy:        t.CreatedBy,
	}
}

// ListTransfersParams defines query parameters for listing transfers.
type ListTransfersParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransfersResponse wraps the paginated list of transfers.
type ListTransfersResponse struct {
	Transfers []TransferResponse `json:"transfers"`
	NextToken *string            `json:"nextToken,omitempty"`
}
