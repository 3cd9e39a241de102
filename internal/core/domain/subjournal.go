package domain

// SubJournal is an optional named channel entries can be tagged with
// (e.g. "Sales Journal"). It cannot be deleted while referenced by entries.
type SubJournal struct {
	SubJournalID string       `json:"subJournalID"` // Primary Key (UUID)
	Code         string       `json:"code"`         // Unique
	Names        []LedgerName `json:"names,omitempty"`
	AuditFields
}
