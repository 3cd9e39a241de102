package domain

// Currency defines a currency code and the decimal scale used for every
// amount recorded in it. The scale cannot be decreased while any journal
// entry uses the currency.
type Currency struct {
	Code     string `json:"code"`     // Unique, uppercased
	Decimals int32  `json:"decimals"` // Scale for all amounts in this currency
	AuditFields
}
