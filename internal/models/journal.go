package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the journal_entries table row.
type JournalEntry struct {
	EntryID         int64          `json:"entryID"` // Primary Key (bigserial)
	EntryDate       time.Time      `json:"entryDate"`
	DomainID        string         `json:"domainID"`
	CurrencyCode    string         `json:"currencyCode"`
	SubJournalID    *string        `json:"subJournalID"`
	ReferenceID     *string        `json:"referenceID"`
	Description     string         `json:"description"`
	DescriptionArgs []string       `json:"descriptionArgs"`
	Language        string         `json:"language"`
	Opening         bool           `json:"opening"`
	Reviewed        bool           `json:"reviewed"`
	Locked          bool           `json:"locked"`
	Extra           map[string]any `json:"extra"` // JSONB
	AuditFields
}

// JournalDetail is the journal_details table row. Amount is signed: debit
// negative, credit positive.
type JournalDetail struct {
	DetailID    string          `json:"detailID"` // Primary Key (UUID)
	EntryID     int64           `json:"entryID"`
	AccountID   string          `json:"accountID"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceID *string         `json:"referenceID"`
}

// LedgerBalance is the balances table row, one per
// (account, domain, currency).
type LedgerBalance struct {
	BalanceID    string          `json:"balanceID"` // Primary Key (UUID)
	AccountID    string          `json:"accountID"`
	DomainID     string          `json:"domainID"`
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
	AuditFields
}
