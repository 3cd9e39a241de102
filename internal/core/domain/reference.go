package domain

// JournalReference links entries and detail lines to an external entity
// (customer, vendor, ...). Code is unique per domain; a reference cannot be
// deleted while any detail line uses it.
type JournalReference struct {
	ReferenceID string         `json:"referenceID"` // Primary Key (UUID)
	DomainID    string         `json:"domainID"`
	Code        string         `json:"code"`
	Extra       map[string]any `json:"extra,omitempty"`
	AuditFields
}
