package mapping

import (
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	"github.com/clearbooks/finance_core_app/internal/models"
)

// ToModelSettlement converts a domain Settlement to a model Settlement
func ToModelSettlement(d domain.Settlement) models.Settlement {
	return models.Settlement{
		SettlementID:      d.SettlementID,
		DocID:             d.DocID,
		FlowID:            d.FlowID,
		SettleAmountCents: d.SettleAmountCents,
		Reversed:          d.Reversed,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSettlement converts a model Settlement to a domain Settlement
func ToDomainSettlement(m models.Settlement) domain.Settlement {
	return domain.Settlement{
		SettlementID:      m.SettlementID,
		DocID:             m.DocID,
		FlowID:            m.FlowID,
		SettleAmountCents: m.SettleAmountCents,
		Reversed:          m.Reversed,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainSettlementSlice converts a slice of model Settlements to domain Settlements
func ToDomainSettlementSlice(ms []models.Settlement) []domain.Settlement {
	ds := make([]domain.Settlement, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSettlement(m)
	}
	return ds
}

// ToDomainSettlementReversal converts a model SettlementReversal to its domain form
func ToDomainSettlementReversal(m models.SettlementReversal) domain.SettlementReversal {
	return domain.SettlementReversal{
		ReversalID:   m.ReversalID,
		SettlementID: m.SettlementID,
		AmountCents:  m.AmountCents,
		Reason:       m.Reason,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
