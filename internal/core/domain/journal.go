package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the transaction header of a balanced set of detail lines.
type JournalEntry struct {
	EntryID         int64          `json:"entryID"` // Numeric, store-assigned
	Date            time.Time      `json:"date"`
	DomainID        string         `json:"domainID"`
	CurrencyCode    string         `json:"currencyCode"`
	SubJournalID    *string        `json:"subJournalID,omitempty"`
	ReferenceID     *string        `json:"referenceID,omitempty"`
	Description     string         `json:"description"`
	DescriptionArgs []string       `json:"descriptionArgs,omitempty"`
	Language        string         `json:"language,omitempty"`
	Opening         bool           `json:"opening"` // Generated at bootstrap
	Reviewed        bool           `json:"reviewed"`
	Locked          bool           `json:"locked"` // Locked entries reject mutation
	Extra           map[string]any `json:"extra,omitempty"`

	Details []JournalDetail `json:"details,omitempty"`
	AuditFields
}

// JournalDetail is one posting line of an entry. Amount is signed: debit
// negative, credit positive, scaled to the entry currency's decimals.
type JournalDetail struct {
	DetailID    string          `json:"detailID"` // Primary Key (UUID)
	EntryID     int64           `json:"entryID"`
	AccountID   string          `json:"accountID"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceID *string         `json:"referenceID,omitempty"`
}

// IsDebit reports whether the line posts to the debit side.
func (d *JournalDetail) IsDebit() bool {
	return d.Amount.IsNegative()
}
