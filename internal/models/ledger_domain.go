package models

// Domain is the domains table row.
type Domain struct {
	DomainID            string `json:"domainID"` // Primary Key (UUID)
	Code                string `json:"code"`     // Unique
	DefaultCurrencyCode string `json:"defaultCurrencyCode"`
	UseSubJournals      bool   `json:"useSubJournals"`
	AuditFields
}
