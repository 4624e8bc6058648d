package dto

import (
	"time"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
)

// CreateSettlementRequest allocates part of a flow against a document.
type CreateSettlementRequest struct {
	DocID             string  `json:"docId" binding:"required"`
	FlowID            string  `json:"flowId" binding:"required"`
	SettleAmountCents int64   `json:"settleAmountCents" binding:"required,gt=0"`
	IdempotencyKey    *string `json:"idempotencyKey"`
}

// ReverseSettlementRequest carries the reason for a settlement reversal.
type ReverseSettlementRequest struct {
	Reason string `json:"reason"`
}

// SettlementResponse defines the data returned for a settlement.
type SettlementResponse struct {
	SettlementID      string    `json:"id"`
	DocID             string    `json:"docId"`
	FlowID            string    `json:"flowId"`
	SettleAmountCents int64     `json:"settleAmountCents"`
	Reversed          bool      `json:"reversed"`
	CreatedAt         time.Time `json:"createdAt"`
	CreatedBy         string    `json:"createdBy"`
}

// ToSettlementResponse converts a domain.Settlement to SettlementResponse DTO
func ToSettlementResponse(s *domain.Settlement) SettlementResponse {
	return SettlementResponse{
		SettlementID:      s.SettlementID,
		DocID:             s.DocID,
		FlowID:            s.FlowID,
		SettleAmountCents: s.SettleAmountCents,
		Reversed:          s.Reversed,
		CreatedAt:         s.CreatedAt,
		CreatedBy:         s.CreatedBy,
	}
}

// ToSettlementResponses converts a slice of domain.Settlement to SettlementResponse DTOs
func ToSettlementResponses(settlements []domain.Settlement) []SettlementResponse {
	res := make([]SettlementResponse, len(settlements))
	for i, s := range settlements {
		res[i] = ToSettlementResponse(&s)
	}
	return res
}

// SettlementReversalResponse defines the data returned for a settlement reversal.
type SettlementReversalResponse struct {
	ReversalID   string    `json:"id"`
	SettlementID string    `json:"settlementId"`
	AmountCents  int64     `json:"amountCents"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	CreatedBy    string    `json:"createdBy"`
}

// ToSettlementReversalResponse converts a domain.SettlementReversal to its DTO
func ToSettlementReversalResponse(r *domain.SettlementReversal) SettlementReversalResponse {
	return SettlementReversalResponse{
		ReversalID:   r.ReversalID,
		SettlementID: r.SettlementID,
		AmountCents:  r.AmountCents,
		Reason:       r.Reason,
		CreatedAt:    r.CreatedAt,
		CreatedBy:    r.CreatedBy,
	}
}

// SettlementCandidateResponse is a flow eligible to back a settlement,
// annotated with its unallocated remainder.
type SettlementCandidateResponse struct {
	Flow           FlowResponse `json:"flow"`
	RemainingCents int64        `json:"remainingCents"`
}

// ToSettlementCandidateResponses converts domain candidates to DTOs
func ToSettlementCandidateResponses(cands []domain.SettlementCandidate) []SettlementCandidateResponse {
	res := make([]SettlementCandidateResponse, len(cands))
	for i, c := range cands {
		res[i] = SettlementCandidateResponse{
			Flow:           ToFlowResponse(&c.Flow),
			RemainingCents: c.RemainingCents,
		}
	}
	return res
}

// ListSettlementCandidatesParams defines query parameters for candidate listing.
type ListSettlementCandidatesParams struct {
	Counterparty string  `form:"counterparty"`
	Limit        int     `form:"limit,default=20"`
	NextToken    *string `form:"nextToken"`
}

// ListSettlementCandidatesResponse wraps the paginated candidate list.
type ListSettlementCandidatesResponse struct {
	Candidates []SettlementCandidateResponse `json:"candidates"`
	NextToken  *string                       `json:"nextToken,omitempty"`
}

// ListSettlementsResponse wraps a document's settlements.
type ListSettlementsResponse struct {
	Settlements []SettlementResponse `json:"settlements"`
}
