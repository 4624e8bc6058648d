package dto

import (
	"time"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
)

// PostFlowRequest defines the data needed to post a ledger entry.
// AmountCents is the unsigned magnitude for non-adjust types; ADJUST entries
// supply the signed delta in AdjustDeltaCents instead.
type PostFlowRequest struct {
	AccountID        string          `json:"accountId" binding:"required"`
	TransactionType  domain.FlowType `json:"transactionType" binding:"required,oneof=INCOME EXPENSE ADJUST"`
	AmountCents      int64           `json:"amountCents"`
	AdjustDeltaCents *int64          `json:"adjustDeltaCents"`
	CurrencyCode     string          `json:"currency" binding:"required"`
	BizDate          string          `json:"bizDate" binding:"required,dateformat"` // YYYY-MM-DD
	CategoryID       string          `json:"categoryId"`
	Counterparty     string          `json:"counterparty"`
	Memo             string          `json:"memo"`
	VoucherURLs      []string        `json:"voucherUrls"`
}

// AttachVoucherRequest adds a voucher reference to a posted flow.
type AttachVoucherRequest struct {
	VoucherURL string `json:"voucherUrl" binding:"required,url"`
}

// FlowResponse defines the data returned for a ledger entry.
type FlowResponse struct {
	FlowID             string          `json:"id"`
	FlowSeq            int64           `json:"flowSeq"`
	AccountID          string          `json:"accountId"`
	TransactionType    domain.FlowType `json:"transactionType"`
	AmountCents        int64           `json:"amountCents"`
	SignedAmountCents  int64           `json:"signedAmountCents"`
	CurrencyCode       string          `json:"currency"`
	BizDate            string          `json:"bizDate"`
	BalanceBeforeCents int64           `json:"balanceBeforeCents"`
	BalanceAfterCents  int64           `json:"balanceAfterCents"`
	CategoryID         string          `json:"categoryId,omitempty"`
	Counterparty       string          `json:"counterparty,omitempty"`
	Memo               string          `json:"memo,omitempty"`
	VoucherURLs        []string        `json:"voucherUrls,omitempty"`
	TransferID         *string         `json:"transferId,omitempty"`
	OriginalFlowID     *string         `json:"originalFlowId,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	CreatedBy          string          `json:"createdBy"`
}

// ToFlowResponse converts a domain.Flow to FlowResponse DTO
func ToFlowResponse(f *domain.Flow) FlowResponse {
	return FlowResponse{
		FlowID:             f.FlowID,
		FlowSeq:            f.FlowSeq,
		AccountID:          f.AccountID,
		TransactionType:    f.FlowType,
		AmountCents:        f.AmountCents,
		SignedAmountCents:  f.SignedAmountCents,
		CurrencyCode:       f.CurrencyCode,
		BizDate:            f.BizDate.Format("2006-01-02"),
		BalanceBeforeCents: f.BalanceBeforeCents,
		BalanceAfterCents:  f.BalanceAfterCents,
		CategoryID:         f.CategoryID,
		Counterparty:       f.Counterparty,
		Memo:               f.Memo,
		VoucherURLs:        f.VoucherURLs,
		TransferID:         f.TransferID,
		OriginalFlowID:     f.OriginalFlowID,
		CreatedAt:          f.CreatedAt,
		CreatedBy:          f.CreatedBy,
	}
}

// ToFlowResponses converts a slice of domain.Flow to FlowResponse DTOs
func ToFlowResponses(flows []domain.Flow) []FlowResponse {
	res := make([]FlowResponse, len(flows))
	for i, f := range flows {
		res[i] = ToFlowResponse(&f)
	}
	return res
}

// ListFlowsParams defines query parameters for listing an account's flows.
type ListFlowsParams struct {
	From      *string `form:"from"` // YYYY-MM-DD inclusive
	To        *string `form:"to"`   // YYYY-MM-DD inclusive
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListFlowsResponse wraps the paginated flow history of an account.
type ListFlowsResponse struct {
	Flows     []FlowResponse `json:"flows"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// ReverseFlowRequest defines the optional memo for a flow reversal.
type ReverseFlowRequest struct {
	Memo string `json:"memo"`
}
