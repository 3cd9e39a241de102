package dto

import (
	"strings"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
)

// CurrencyRequest is the validated message for currency operations.
// ToCode renames the currency on update, cascading to every entry, balance
// and domain default that references it.
type CurrencyRequest struct {
	Code     string `json:"code,omitempty" binding:"omitempty,entitycode"`
	ToCode   string `json:"toCode,omitempty" binding:"omitempty,entitycode"`
	Decimals *int32 `json:"decimals,omitempty"`
	Revision string `json:"revision,omitempty"`
}

// Validate checks the request for the given operation. Codes are normalized
// to upper case in place.
func (r *CurrencyRequest) Validate(op Operation, opts Options) error {
	v := &apperrors.ValidationErrors{}
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	r.ToCode = strings.ToUpper(strings.TrimSpace(r.ToCode))
	switch op {
	case OpAdd, OpCreate:
		if r.Code == "" {
			v.Add("currency: code is required")
		}
		if r.Decimals == nil {
			v.Add("currency: decimals is required")
		}
		if r.ToCode != "" {
			v.Add("currency: toCode is only valid on update")
		}
	case OpUpdate:
		if r.Code == "" {
			v.Add("currency: code is required")
		}
		if r.Revision == "" {
			v.Add("currency: revision is required for update")
		}
		if r.ToCode == "" && r.Decimals == nil {
			v.Add("currency: nothing to update")
		}
	case OpDelete:
		if r.Code == "" {
			v.Add("currency: code is required")
		}
		if r.Revision == "" {
			v.Add("currency: revision is required for delete")
		}
	case OpGet:
		if r.Code == "" {
			v.Add("currency: code is required")
		}
	}
	if r.Decimals != nil && (*r.Decimals < 0 || *r.Decimals > 12) {
		v.Add("currency: decimals must be between 0 and 12")
	}
	return v.ErrOrNil()
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	Code     string `json:"code"`
	Decimals int32  `json:"decimals"`
	Revision string `json:"revision"`
}

// ToCurrencyResponse converts a domain.Currency to its response shape.
func ToCurrencyResponse(c *domain.Currency, revisionToken string) CurrencyResponse {
	return CurrencyResponse{
		Code:     c.Code,
		Decimals: c.Decimals,
		Revision: revisionToken,
	}
}
