package models

// SubJournal is the sub_journals table row.
type SubJournal struct {
	SubJournalID string `json:"subJournalID"` // Primary Key (UUID)
	Code         string `json:"code"`         // Unique
	AuditFields
}
