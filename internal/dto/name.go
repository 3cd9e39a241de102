package dto

import (
	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
)

// NameRequest carries one multilingual name. On update, Delete removes the
// name for that language; removing the last remaining name is rejected by the
// owning service.
type NameRequest struct {
	Language string `json:"language" binding:"required"`
	Name     string `json:"name"`
	Delete   bool   `json:"delete,omitempty"`
}

// validateNames accumulates problems with a name list. Add requires at least
// one non-deleted name; update allows an empty list (names unchanged).
func validateNames(v *apperrors.ValidationErrors, names []NameRequest, op Operation, field string) {
	if op == OpAdd || op == OpCreate {
		hasName := false
		for _, n := range names {
			if !n.Delete {
				hasName = true
			}
		}
		if !hasName {
			v.Add("%s: at least one name is required", field)
		}
	}
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		if n.Language == "" {
			v.Add("%s[%d]: language is required", field, i)
			continue
		}
		if seen[n.Language] {
			v.Add("%s[%d]: duplicate language %q", field, i, n.Language)
		}
		seen[n.Language] = true
		if !n.Delete && n.Name == "" {
			v.Add("%s[%d]: name is required for language %q", field, i, n.Language)
		}
		if n.Delete && (op == OpAdd || op == OpCreate) {
			v.Add("%s[%d]: cannot delete a name while adding", field, i)
		}
	}
}

// ToDomainNames converts non-deleted name requests to domain names for owner.
func ToDomainNames(names []NameRequest, ownerID string) []domain.LedgerName {
	result := make([]domain.LedgerName, 0, len(names))
	for _, n := range names {
		if n.Delete {
			continue
		}
		result = append(result, domain.LedgerName{
			OwnerID:  ownerID,
			Language: n.Language,
			Name:     n.Name,
		})
	}
	return result
}
