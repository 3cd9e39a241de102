package models

// JournalReference is the journal_references table row. Code is unique per
// domain.
type JournalReference struct {
	ReferenceID string         `json:"referenceID"` // Primary Key (UUID)
	DomainID    string         `json:"domainID"`
	Code        string         `json:"code"`
	Extra       map[string]any `json:"extra"` // JSONB
	AuditFields
}
