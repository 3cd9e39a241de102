package domain

import "github.com/shopspring/decimal"

// LedgerBalance is the denormalized running total per
// (account, domain, currency). It is created on first posting and only ever
// mutated by the posting engine, never directly by a client.
type LedgerBalance struct {
	BalanceID    string          `json:"balanceID"` // Primary Key (UUID)
	AccountID    string          `json:"accountID"`
	DomainID     string          `json:"domainID"`
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
	AuditFields
}
