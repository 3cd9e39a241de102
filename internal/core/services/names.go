package services

import (
	"fmt"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	"github.com/openbooks/ledger_engine/internal/dto"
)

// mergeNames applies name-request edits onto the existing name set of an
// entity: add or overwrite per language, delete per language. Removing the
// last remaining name is rejected.
func mergeNames(existing []domain.LedgerName, reqs []dto.NameRequest, ownerID string) ([]domain.LedgerName, error) {
	byLanguage := make(map[string]domain.LedgerName, len(existing))
	order := make([]string, 0, len(existing))
	for _, n := range existing {
		if _, ok := byLanguage[n.Language]; !ok {
			order = append(order, n.Language)
		}
		byLanguage[n.Language] = n
	}

	for _, req := range reqs {
		if req.Delete {
			delete(byLanguage, req.Language)
			continue
		}
		if _, ok := byLanguage[req.Language]; !ok {
			order = append(order, req.Language)
		}
		byLanguage[req.Language] = domain.LedgerName{
			OwnerID:  ownerID,
			Language: req.Language,
			Name:     req.Name,
		}
	}

	merged := make([]domain.LedgerName, 0, len(byLanguage))
	for _, lang := range order {
		if n, ok := byLanguage[lang]; ok {
			merged = append(merged, n)
		}
	}
	if len(merged) == 0 {
		return nil, fmt.Errorf("%w: can not delete the last name of an entity", apperrors.ErrRuleViolation)
	}
	return merged, nil
}
