package domain

import "time"

// Section is a report-section definition covering a contiguous range of
// account codes.
type Section struct {
	Code     string `json:"code"`
	FromCode string `json:"fromCode"`
	ToCode   string `json:"toCode"`
}

// LedgerRules is the singleton ledger configuration. It lives as structured
// data on the root account once the ledger is booted; before that a transient
// in-memory copy seeded by BaseRuleSet is used.
type LedgerRules struct {
	DefaultDomainCode    string    `json:"defaultDomainCode"`
	DefaultLanguage      string    `json:"defaultLanguage"`
	AccountCodeFormat    string    `json:"accountCodeFormat"` // Regex for account codes
	PageSize             int       `json:"pageSize"`
	MaxBatchSize         int       `json:"maxBatchSize"` // Caps bootstrap account and balance lists
	OpeningDate          time.Time `json:"openingDate"`
	AllowCategoryPosting bool      `json:"allowCategoryPosting"`
	Sections             []Section `json:"sections,omitempty"`
	Salt                 string    `json:"salt,omitempty"` // Random per ledger, feeds revision tokens
}

// LedgerRulesPatch is a partial rules update; nil fields are left unchanged.
type LedgerRulesPatch struct {
	DefaultDomainCode    *string    `json:"defaultDomainCode,omitempty"`
	DefaultLanguage      *string    `json:"defaultLanguage,omitempty"`
	AccountCodeFormat    *string    `json:"accountCodeFormat,omitempty"`
	PageSize             *int       `json:"pageSize,omitempty"`
	MaxBatchSize         *int       `json:"maxBatchSize,omitempty"`
	OpeningDate          *time.Time `json:"openingDate,omitempty"`
	AllowCategoryPosting *bool      `json:"allowCategoryPosting,omitempty"`
	Sections             []Section  `json:"sections,omitempty"`
}

// BaseRuleSet returns the boot-time defaults used before the root exists.
func BaseRuleSet() LedgerRules {
	return LedgerRules{
		DefaultLanguage:   "en",
		AccountCodeFormat: `^[0-9]{1,10}$`,
		PageSize:          50,
		MaxBatchSize:      500,
	}
}

// Merge applies a partial update, returning the merged rules.
func (r LedgerRules) Merge(patch LedgerRulesPatch) LedgerRules {
	if patch.DefaultDomainCode != nil {
		r.DefaultDomainCode = *patch.DefaultDomainCode
	}
	if patch.DefaultLanguage != nil {
		r.DefaultLanguage = *patch.DefaultLanguage
	}
	if patch.AccountCodeFormat != nil {
		r.AccountCodeFormat = *patch.AccountCodeFormat
	}
	if patch.PageSize != nil {
		r.PageSize = *patch.PageSize
	}
	if patch.MaxBatchSize != nil {
		r.MaxBatchSize = *patch.MaxBatchSize
	}
	if patch.OpeningDate != nil {
		r.OpeningDate = *patch.OpeningDate
	}
	if patch.AllowCategoryPosting != nil {
		r.AllowCategoryPosting = *patch.AllowCategoryPosting
	}
	if patch.Sections != nil {
		r.Sections = patch.Sections
	}
	return r
}
