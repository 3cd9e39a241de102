package dto

import (
	"strings"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
)

// DomainRequest is the validated message for domain operations.
type DomainRequest struct {
	Ref             EntityRef     `json:"ref,omitempty"`
	Code            *string       `json:"code,omitempty" binding:"omitempty,entitycode"`
	DefaultCurrency *string       `json:"defaultCurrency,omitempty"`
	UseSubJournals  *bool         `json:"useSubJournals,omitempty"`
	Default         *bool         `json:"default,omitempty"` // Designate ledger-wide default domain
	Names           []NameRequest `json:"names,omitempty"`
	Revision        string        `json:"revision,omitempty"`
}

// Validate checks the request for the given operation.
func (r *DomainRequest) Validate(op Operation, opts Options) error {
	v := &apperrors.ValidationErrors{}
	if r.DefaultCurrency != nil {
		upper := strings.ToUpper(strings.TrimSpace(*r.DefaultCurrency))
		r.DefaultCurrency = &upper
	}
	switch op {
	case OpAdd, OpCreate:
		if !r.Ref.IsEmpty() {
			v.Add("domain: identifier must not be supplied on add")
		}
		if r.Code == nil || *r.Code == "" {
			v.Add("domain: code is required")
		}
		validateNames(v, r.Names, op, "domain.names")
	case OpUpdate:
		r.Ref.check(v, "domain", true)
		if r.Revision == "" {
			v.Add("domain: revision is required for update")
		}
		validateNames(v, r.Names, op, "domain.names")
	case OpDelete:
		r.Ref.check(v, "domain", true)
		if r.Revision == "" {
			v.Add("domain: revision is required for delete")
		}
	case OpGet:
		r.Ref.check(v, "domain", true)
	}
	return v.ErrOrNil()
}

// DomainResponse defines the data returned for a domain.
type DomainResponse struct {
	DomainID        string              `json:"domainID"`
	Code            string              `json:"code"`
	DefaultCurrency string              `json:"defaultCurrency"`
	UseSubJournals  bool                `json:"useSubJournals"`
	Default         bool                `json:"default"`
	Names           []domain.LedgerName `json:"names,omitempty"`
	Revision        string              `json:"revision"`
}

// ToDomainResponse converts a domain.Domain to its response shape.
func ToDomainResponse(d *domain.Domain, isDefault bool, revisionToken string) DomainResponse {
	return DomainResponse{
		DomainID:        d.DomainID,
		Code:            d.Code,
		DefaultCurrency: d.DefaultCurrencyCode,
		UseSubJournals:  d.UseSubJournals,
		Default:         isDefault,
		Names:           d.Names,
		Revision:        revisionToken,
	}
}
