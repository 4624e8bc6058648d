package mapping

import (
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	"github.com/clearbooks/finance_core_app/internal/models"
)

// ToModelFlow converts a domain Flow to a model Flow
func ToModelFlow(d domain.Flow) models.Flow {
	return models.Flow{
		FlowID:             d.FlowID,
		FlowSeq:            d.FlowSeq,
		AccountID:          d.AccountID,
		FlowType:           models.FlowType(d.FlowType),
		AmountCents:        d.AmountCents,
		SignedAmountCents:  d.SignedAmountCents,
		CurrencyCode:       d.CurrencyCode,
		BizDate:            d.BizDate,
		BalanceBeforeCents: d.BalanceBeforeCents,
		BalanceAfterCents:  d.BalanceAfterCents,
		CategoryID:         d.CategoryID,
		Counterparty:       d.Counterparty,
		Memo:               d.Memo,
		VoucherURLs:        d.VoucherURLs,
		TransferID:         d.TransferID,
		OriginalFlowID:     d.OriginalFlowID,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFlow converts a model Flow to a domain Flow
func ToDomainFlow(m models.Flow) domain.Flow {
	return domain.Flow{
		FlowID:             m.FlowID,
		FlowSeq:            m.FlowSeq,
		AccountID:          m.AccountID,
		FlowType:           domain.FlowType(m.FlowType),
		AmountCents:        m.AmountCents,
		SignedAmountCents:  m.SignedAmountCents,
		CurrencyCode:       m.CurrencyCode,
		BizDate:            m.BizDate,
		BalanceBeforeCents: m.BalanceBeforeCents,
		BalanceAfterCents:  m.BalanceAfterCents,
		CategoryID:         m.CategoryID,
		Counterparty:       m.Counterparty,
		Memo:               m.Memo,
		VoucherURLs:        m.VoucherURLs,
		TransferID:         m.TransferID,
		OriginalFlowID:     m.OriginalFlowID,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainFlowSlice converts a slice of model Flows to domain Flows
func ToDomainFlowSlice(ms []models.Flow) []domain.Flow {
	ds := make([]domain.Flow, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainFlow(m)
	}
	return ds
}
