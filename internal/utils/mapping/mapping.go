// Package mapping converts between persistence row models and domain types.
package mapping

import (
	"github.com/openbooks/ledger_engine/internal/core/domain"
	"github.com/openbooks/ledger_engine/internal/models"
)

func toModelAudit(a domain.AuditFields) models.AuditFields {
	return models.AuditFields{CreatedAt: a.CreatedAt, LastUpdatedAt: a.LastUpdatedAt, RevisedAt: a.RevisedAt}
}

func toDomainAudit(a models.AuditFields) domain.AuditFields {
	return domain.AuditFields{CreatedAt: a.CreatedAt, LastUpdatedAt: a.LastUpdatedAt, RevisedAt: a.RevisedAt}
}

// ToModelAccount converts a domain account to its row model. Names are
// persisted separately.
func ToModelAccount(a domain.Account) models.Account {
	return models.Account{
		AccountID:   a.AccountID,
		Code:        a.Code,
		ParentID:    a.ParentID,
		Category:    a.Category,
		Debit:       a.Debit,
		Credit:      a.Credit,
		Closed:      a.Closed,
		Extra:       a.Extra,
		AuditFields: toModelAudit(a.AuditFields),
	}
}

// ToDomainAccount converts an account row to its domain type.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:   m.AccountID,
		Code:        m.Code,
		ParentID:    m.ParentID,
		Category:    m.Category,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Closed:      m.Closed,
		Extra:       m.Extra,
		AuditFields: toDomainAudit(m.AuditFields),
	}
}

// ToDomainAccountSlice converts account rows to domain types.
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	out := make([]domain.Account, len(ms))
	for i := range ms {
		out[i] = ToDomainAccount(ms[i])
	}
	return out
}

// ToModelName converts a domain name to its row model.
func ToModelName(n domain.LedgerName) models.LedgerName {
	return models.LedgerName{OwnerID: n.OwnerID, Language: n.Language, Name: n.Name}
}

// ToDomainName converts a name row to its domain type.
func ToDomainName(m models.LedgerName) domain.LedgerName {
	return domain.LedgerName{OwnerID: m.OwnerID, Language: m.Language, Name: m.Name}
}

// ToDomainNameSlice converts name rows to domain types.
func ToDomainNameSlice(ms []models.LedgerName) []domain.LedgerName {
	out := make([]domain.LedgerName, len(ms))
	for i := range ms {
		out[i] = ToDomainName(ms[i])
	}
	return out
}

// ToModelCurrency converts a domain currency to its row model.
func ToModelCurrency(c domain.Currency) models.Currency {
	return models.Currency{Code: c.Code, Decimals: c.Decimals, AuditFields: toModelAudit(c.AuditFields)}
}

// ToDomainCurrency converts a currency row to its domain type.
func ToDomainCurrency(m models.Currency) domain.Currency {
	return domain.Currency{Code: m.Code, Decimals: m.Decimals, AuditFields: toDomainAudit(m.AuditFields)}
}

// ToDomainCurrencySlice converts currency rows to domain types.
func ToDomainCurrencySlice(ms []models.Currency) []domain.Currency {
	out := make([]domain.Currency, len(ms))
	for i := range ms {
		out[i] = ToDomainCurrency(ms[i])
	}
	return out
}

// ToModelDomain converts a domain partition to its row model. Names are
// persisted separately.
func ToModelDomain(d domain.Domain) models.Domain {
	return models.Domain{
		DomainID:            d.DomainID,
		Code:                d.Code,
		DefaultCurrencyCode: d.DefaultCurrencyCode,
		UseSubJournals:      d.UseSubJournals,
		AuditFields:         toModelAudit(d.AuditFields),
	}
}

// ToDomainDomain converts a domain row to its domain type.
func ToDomainDomain(m models.Domain) domain.Domain {
	return domain.Domain{
		DomainID:            m.DomainID,
		Code:                m.Code,
		DefaultCurrencyCode: m.DefaultCurrencyCode,
		UseSubJournals:      m.UseSubJournals,
		AuditFields:         toDomainAudit(m.AuditFields),
	}
}

// ToDomainDomainSlice converts domain rows to domain types.
func ToDomainDomainSlice(ms []models.Domain) []domain.Domain {
	out := make([]domain.Domain, len(ms))
	for i := range ms {
		out[i] = ToDomainDomain(ms[i])
	}
	return out
}

// ToModelSubJournal converts a sub-journal to its row model.
func ToModelSubJournal(s domain.SubJournal) models.SubJournal {
	return models.SubJournal{SubJournalID: s.SubJournalID, Code: s.Code, AuditFields: toModelAudit(s.AuditFields)}
}

// ToDomainSubJournal converts a sub-journal row to its domain type.
func ToDomainSubJournal(m models.SubJournal) domain.SubJournal {
	return domain.SubJournal{SubJournalID: m.SubJournalID, Code: m.Code, AuditFields: toDomainAudit(m.AuditFields)}
}

// ToDomainSubJournalSlice converts sub-journal rows to domain types.
func ToDomainSubJournalSlice(ms []models.SubJournal) []domain.SubJournal {
	out := make([]domain.SubJournal, len(ms))
	for i := range ms {
		out[i] = ToDomainSubJournal(ms[i])
	}
	return out
}

// ToModelReference converts a journal reference to its row model.
func ToModelReference(r domain.JournalReference) models.JournalReference {
	return models.JournalReference{
		ReferenceID: r.ReferenceID,
		DomainID:    r.DomainID,
		Code:        r.Code,
		Extra:       r.Extra,
		AuditFields: toModelAudit(r.AuditFields),
	}
}

// ToDomainReference converts a journal reference row to its domain type.
func ToDomainReference(m models.JournalReference) domain.JournalReference {
	return domain.JournalReference{
		ReferenceID: m.ReferenceID,
		DomainID:    m.DomainID,
		Code:        m.Code,
		Extra:       m.Extra,
		AuditFields: toDomainAudit(m.AuditFields),
	}
}

// ToModelEntry converts an entry header to its row model. Details are
// persisted separately.
func ToModelEntry(e domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:         e.EntryID,
		EntryDate:       e.Date,
		DomainID:        e.DomainID,
		CurrencyCode:    e.CurrencyCode,
		SubJournalID:    e.SubJournalID,
		ReferenceID:     e.ReferenceID,
		Description:     e.Description,
		DescriptionArgs: e.DescriptionArgs,
		Language:        e.Language,
		Opening:         e.Opening,
		Reviewed:        e.Reviewed,
		Locked:          e.Locked,
		Extra:           e.Extra,
		AuditFields:     toModelAudit(e.AuditFields),
	}
}

// ToDomainEntry converts an entry row to its domain type.
func ToDomainEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:         m.EntryID,
		Date:            m.EntryDate,
		DomainID:        m.DomainID,
		CurrencyCode:    m.CurrencyCode,
		SubJournalID:    m.SubJournalID,
		ReferenceID:     m.ReferenceID,
		Description:     m.Description,
		DescriptionArgs: m.DescriptionArgs,
		Language:        m.Language,
		Opening:         m.Opening,
		Reviewed:        m.Reviewed,
		Locked:          m.Locked,
		Extra:           m.Extra,
		AuditFields:     toDomainAudit(m.AuditFields),
	}
}

// ToDomainEntrySlice converts entry rows to domain types.
func ToDomainEntrySlice(ms []models.JournalEntry) []domain.JournalEntry {
	out := make([]domain.JournalEntry, len(ms))
	for i := range ms {
		out[i] = ToDomainEntry(ms[i])
	}
	return out
}

// ToModelDetail converts a posting line to its row model.
func ToModelDetail(d domain.JournalDetail) models.JournalDetail {
	return models.JournalDetail{
		DetailID:    d.DetailID,
		EntryID:     d.EntryID,
		AccountID:   d.AccountID,
		Amount:      d.Amount,
		ReferenceID: d.ReferenceID,
	}
}

// ToDomainDetail converts a posting line row to its domain type.
func ToDomainDetail(m models.JournalDetail) domain.JournalDetail {
	return domain.JournalDetail{
		DetailID:    m.DetailID,
		EntryID:     m.EntryID,
		AccountID:   m.AccountID,
		Amount:      m.Amount,
		ReferenceID: m.ReferenceID,
	}
}

// ToDomainDetailSlice converts posting line rows to domain types.
func ToDomainDetailSlice(ms []models.JournalDetail) []domain.JournalDetail {
	out := make([]domain.JournalDetail, len(ms))
	for i := range ms {
		out[i] = ToDomainDetail(ms[i])
	}
	return out
}

// ToDomainBalance converts a balance row to its domain type.
func ToDomainBalance(m models.LedgerBalance) domain.LedgerBalance {
	return domain.LedgerBalance{
		BalanceID:    m.BalanceID,
		AccountID:    m.AccountID,
		DomainID:     m.DomainID,
		CurrencyCode: m.CurrencyCode,
		Amount:       m.Amount,
		AuditFields:  toDomainAudit(m.AuditFields),
	}
}

// ToDomainBalanceSlice converts balance rows to domain types.
func ToDomainBalanceSlice(ms []models.LedgerBalance) []domain.LedgerBalance {
	out := make([]domain.LedgerBalance, len(ms))
	for i := range ms {
		out[i] = ToDomainBalance(ms[i])
	}
	return out
}
