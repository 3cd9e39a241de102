package domain

// Account is a node in the hierarchical chart of accounts.
//
// Exactly one account (the root) has a nil parent and an empty code. Category
// accounts are non-posting grouping nodes; every non-category account carries
// exactly one of the Debit/Credit flags, inherited from the nearest flagged
// ancestor when not supplied explicitly.
type Account struct {
	AccountID string         `json:"accountID"` // Primary Key (UUID)
	Code      string         `json:"code"`      // Globally unique, format per ledger rules
	ParentID  *string        `json:"parentID"`  // Nullable FK -> accounts.account_id; nil only for root
	Category  bool           `json:"category"`  // Non-posting grouping node
	Debit     bool           `json:"debit"`
	Credit    bool           `json:"credit"`
	Closed    bool           `json:"closed"`
	Extra     map[string]any `json:"extra,omitempty"` // Free-form extra data; root stores the ledger rules here
	Names     []LedgerName   `json:"names,omitempty"` // One per language
	AuditFields
}

// IsRoot reports whether this is the singleton root account.
func (a *Account) IsRoot() bool {
	return a.ParentID == nil
}

// Name returns the account name for the given language, falling back to the
// first name when the language has no entry.
func (a *Account) Name(language string) string {
	for _, n := range a.Names {
		if n.Language == language {
			return n.Name
		}
	}
	if len(a.Names) > 0 {
		return a.Names[0].Name
	}
	return ""
}
