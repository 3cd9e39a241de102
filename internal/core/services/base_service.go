package services

import (
	"context"
	"fmt"

	"github.com/openbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/utils/revision"
)

// BaseService carries the dependencies every engine service shares.
type BaseService struct {
	rulesSvc portssvc.RulesSvcFacade
}

// accountRevision computes the current revision token of an account.
func accountRevision(a *domain.Account, salt string) string {
	return revision.Token(a.RevisedAt, a.LastUpdatedAt, salt)
}

// checkRevision compares a caller-supplied token against the entity's current
// one. The batch sentinel passes; any other mismatch fails the operation.
func (b *BaseService) checkRevision(ctx context.Context, supplied string, audit domain.AuditFields) error {
	current := revision.Token(audit.RevisedAt, audit.LastUpdatedAt, b.rulesSvc.Salt(ctx))
	if err := revision.Check(supplied, current); err != nil {
		return fmt.Errorf("%w: please re-fetch the entity and retry", err)
	}
	return nil
}
