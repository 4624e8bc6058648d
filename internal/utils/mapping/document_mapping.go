package mapping

import (
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	"github.com/clearbooks/finance_core_app/internal/models"
)

// ToModelDocument converts a domain Document to a model Document
func ToModelDocument(d domain.Document) models.Document {
	return models.Document{
		DocID:          d.DocID,
		Kind:           models.DocumentKind(d.Kind),
		PartyID:        d.PartyID,
		SiteID:         d.SiteID,
		IssueDate:      d.IssueDate,
		DueDate:        d.DueDate,
		AmountCents:    d.AmountCents,
		CurrencyCode:   d.CurrencyCode,
		Status:         models.DocumentStatus(d.Status),
		SettledCents:   d.SettledCents,
		ConfirmFlowID:  d.ConfirmFlowID,
		ReversalFlowID: d.ReversalFlowID,
		Memo:           d.Memo,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDocument converts a model Document to a domain Document
func ToDomainDocument(m models.Document) domain.Document {
	return domain.Document{
		DocID:          m.DocID,
		Kind:           domain.DocumentKind(m.Kind),
		PartyID:        m.PartyID,
		SiteID:         m.SiteID,
		IssueDate:      m.IssueDate,
		DueDate:        m.DueDate,
		AmountCents:    m.AmountCents,
		CurrencyCode:   m.CurrencyCode,
		Status:         domain.DocumentStatus(m.Status),
		SettledCents:   m.SettledCents,
		ConfirmFlowID:  m.ConfirmFlowID,
		ReversalFlowID: m.ReversalFlowID,
		Memo:           m.Memo,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainDocumentSlice converts a slice of model Documents to domain Documents
func ToDomainDocumentSlice(ms []models.Document) []domain.Document {
	ds := make([]domain.Document, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDocument(m)
	}
	return ds
}
