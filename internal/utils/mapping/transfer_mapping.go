package mapping

import (
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	"github.com/clearbooks/finance_core_app/internal/models"
)

// ToModelTransfer converts a domain AccountTransfer to a model AccountTransfer
func ToModelTransfer(d domain.AccountTransfer) models.AccountTransfer {
	return models.AccountTransfer{
		TransferID:       d.TransferID,
		FromAccountID:    d.FromAccountID,
		ToAccountID:      d.ToAccountID,
		AmountCents:      d.AmountCents,
		CurrencyCode:     d.CurrencyCode,
		DestAmountCents:  d.DestAmountCents,
		DestCurrencyCode: d.DestCurrencyCode,
		BizDate:          d.BizDate,
		Memo:             d.Memo,
		OutFlowID:        d.OutFlowID,
		InFlowID:         d.InFlowID,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransfer converts a model AccountTransfer to a domain AccountTransfer
func ToDomainTransfer(m models.AccountTransfer) domain.AccountTransfer {
	return domain.AccountTransfer{
		TransferID:       m.TransferID,
		FromAccountID:    m.FromAccountID,
		ToAccountID:      m.ToAccountID,
		AmountCents:      m.AmountCents,
		CurrencyCode:     m.CurrencyCode,
		DestAmountCents:  m.DestAmountCents,
		DestCurrencyCode: m.DestCurrencyCode,
		BizDate:          m.BizDate,
		Memo:             m.Memo,
		OutFlowID:        m.OutFlowID,
		InFlowID:         m.InFlowID,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransferSlice converts a slice of model AccountTransfers to domain AccountTransfers
func ToDomainTransferSlice(ms []models.AccountTransfer) []domain.AccountTransfer {
	ds := make([]domain.AccountTransfer, 0, len(ms))
	for _, m := range ms {
		ds = append(ds, ToDomainTransfer(m))
	}
	return ds
}
