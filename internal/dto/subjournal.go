package dto

import (
	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
)

// SubJournalRequest is the validated message for sub-journal operations.
type SubJournalRequest struct {
	Ref      EntityRef     `json:"ref,omitempty"`
	Code     *string       `json:"code,omitempty" binding:"omitempty,entitycode"`
	Names    []NameRequest `json:"names,omitempty"`
	Revision string        `json:"revision,omitempty"`
}

// Validate checks the request for the given operation.
func (r *SubJournalRequest) Validate(op Operation, opts Options) error {
	v := &apperrors.ValidationErrors{}
	switch op {
	case OpAdd, OpCreate:
		if !r.Ref.IsEmpty() {
			v.Add("subjournal: identifier must not be supplied on add")
		}
		if r.Code == nil || *r.Code == "" {
			v.Add("subjournal: code is required")
		}
		validateNames(v, r.Names, op, "subjournal.names")
	case OpUpdate:
		r.Ref.check(v, "subjournal", true)
		if r.Revision == "" {
			v.Add("subjournal: revision is required for update")
		}
		validateNames(v, r.Names, op, "subjournal.names")
	case OpDelete:
		r.Ref.check(v, "subjournal", true)
		if r.Revision == "" {
			v.Add("subjournal: revision is required for delete")
		}
	case OpGet:
		r.Ref.check(v, "subjournal", true)
	}
	return v.ErrOrNil()
}

// SubJournalResponse defines the data returned for a sub-journal.
type SubJournalResponse struct {
	SubJournalID string              `json:"subJournalID"`
	Code         string              `json:"code"`
	Names        []domain.LedgerName `json:"names,omitempty"`
	Revision     string              `json:"revision"`
}

// ToSubJournalResponse converts a domain.SubJournal to its response shape.
func ToSubJournalResponse(s *domain.SubJournal, revisionToken string) SubJournalResponse {
	return SubJournalResponse{
		SubJournalID: s.SubJournalID,
		Code:         s.Code,
		Names:        s.Names,
		Revision:     revisionToken,
	}
}
