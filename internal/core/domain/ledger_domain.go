package domain

// Domain is an organizational partition of the ledger (a legal entity or
// department) with its own default currency. One domain code is designated
// the ledger-wide default via the rules.
type Domain struct {
	DomainID            string       `json:"domainID"` // Primary Key (UUID)
	Code                string       `json:"code"`     // Unique
	DefaultCurrencyCode string       `json:"defaultCurrencyCode"`
	UseSubJournals      bool         `json:"useSubJournals"`
	Names               []LedgerName `json:"names,omitempty"`
	AuditFields
}
