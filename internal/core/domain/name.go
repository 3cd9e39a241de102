package domain

// LedgerName is one multilingual name row for an owning entity
// (Account, Domain or SubJournal). Unique per (owner, language); deleting the
// last name of an entity is rejected.
type LedgerName struct {
	OwnerID  string `json:"ownerID"`
	Language string `json:"language"`
	Name     string `json:"name"`
}
