package dto

import (
	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
)

// ReferenceRequest is the validated message for journal-reference operations.
// Reference codes are unique per domain.
type ReferenceRequest struct {
	Ref      EntityRef      `json:"ref,omitempty"`
	Domain   *EntityRef     `json:"domain,omitempty"` // Default domain when unspecified
	Code     *string        `json:"code,omitempty" binding:"omitempty,entitycode"`
	Extra    map[string]any `json:"extra,omitempty"`
	Revision string         `json:"revision,omitempty"`
}

// Validate checks the request for the given operation.
func (r *ReferenceRequest) Validate(op Operation, opts Options) error {
	v := &apperrors.ValidationErrors{}
	switch op {
	case OpAdd, OpCreate:
		if !r.Ref.IsEmpty() {
			v.Add("reference: identifier must not be supplied on add")
		}
		if r.Code == nil || *r.Code == "" {
			v.Add("reference: code is required")
		}
	case OpUpdate:
		r.Ref.check(v, "reference", true)
		if r.Revision == "" {
			v.Add("reference: revision is required for update")
		}
	case OpDelete:
		r.Ref.check(v, "reference", true)
		if r.Revision == "" {
			v.Add("reference: revision is required for delete")
		}
	case OpGet:
		r.Ref.check(v, "reference", true)
	}
	if r.Domain != nil {
		r.Domain.check(v, "reference.domain", false)
	}
	return v.ErrOrNil()
}

// ReferenceResponse defines the data returned for a journal reference.
type ReferenceResponse struct {
	ReferenceID string         `json:"referenceID"`
	DomainID    string         `json:"domainID"`
	Code        string         `json:"code"`
	Extra       map[string]any `json:"extra,omitempty"`
	Revision    string         `json:"revision"`
}

// ToReferenceResponse converts a domain.JournalReference to its response shape.
func ToReferenceResponse(ref *domain.JournalReference, revisionToken string) ReferenceResponse {
	return ReferenceResponse{
		ReferenceID: ref.ReferenceID,
		DomainID:    ref.DomainID,
		Code:        ref.Code,
		Extra:       ref.Extra,
		Revision:    revisionToken,
	}
}
