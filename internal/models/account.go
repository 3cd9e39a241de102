package models

// Account is the accounts table row.
type Account struct {
	AccountID string         `json:"accountID"` // Primary Key (UUID)
	Code      string         `json:"code"`      // Unique
	ParentID  *string        `json:"parentID"`  // Null only for the root
	Category  bool           `json:"category"`
	Debit     bool           `json:"debit"`
	Credit    bool           `json:"credit"`
	Closed    bool           `json:"closed"`
	Extra     map[string]any `json:"extra"` // JSONB
	AuditFields
}

// LedgerName is the names table row, shared by accounts, domains and
// sub-journals via owner_id.
type LedgerName struct {
	OwnerID  string `json:"ownerID"`
	Language string `json:"language"`
	Name     string `json:"name"`
}
