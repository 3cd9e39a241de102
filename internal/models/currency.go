package models

// Currency is the currencies table row.
type Currency struct {
	Code     string `json:"code"` // Primary Key
	Decimals int32  `json:"decimals"`
	AuditFields
}
