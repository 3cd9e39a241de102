package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/middleware"
)

// rulesExtraKey is where the encoded rules live inside the root account's
// extra data.
const rulesExtraKey = "ledgerRules"

// rulesService is the process-wide rules store. Unbooted (no root account) it
// serves transient in-memory defaults; booted it lazily loads and caches the
// rules persisted on the root account.
type rulesService struct {
	accountRepo portsrepo.AccountRepositoryFacade

	mu     sync.RWMutex
	loaded bool
	booted bool // Root account exists
	cached domain.LedgerRules
}

// NewRulesService creates the rules store.
func NewRulesService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.RulesSvcFacade {
	return &rulesService{accountRepo: accountRepo}
}

var _ portssvc.RulesSvcFacade = (*rulesService)(nil)

// Rules returns the active rule set, loading it from the root account on
// first access after boot or reset.
func (s *rulesService) Rules(ctx context.Context) (domain.LedgerRules, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.cached, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.cached, nil
	}
	if err := s.loadLocked(ctx); err != nil {
		return domain.LedgerRules{}, err
	}
	return s.cached, nil
}

// loadLocked populates the cache; the caller holds the write lock.
func (s *rulesService) loadLocked(ctx context.Context) error {
	root, err := s.accountRepo.FindRootAccount(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.cached = domain.BaseRuleSet()
			s.booted = false
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to load ledger rules: %w", err)
	}
	rules, err := decodeRules(root.Extra)
	if err != nil {
		return err
	}
	s.cached = rules
	s.booted = true
	s.loaded = true
	return nil
}

// SetRules deep-merges a partial update into the active state, persisting to
// the root account when booted.
func (s *rulesService) SetRules(ctx context.Context, patch domain.LedgerRulesPatch) (domain.LedgerRules, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		if err := s.loadLocked(ctx); err != nil {
			return domain.LedgerRules{}, err
		}
	}

	merged := s.cached.Merge(patch)
	if s.booted {
		root, err := s.accountRepo.FindRootAccount(ctx)
		if err != nil {
			return domain.LedgerRules{}, fmt.Errorf("failed to load root account for rules update: %w", err)
		}
		if root.Extra == nil {
			root.Extra = map[string]any{}
		}
		encoded, err := encodeRules(merged)
		if err != nil {
			return domain.LedgerRules{}, err
		}
		root.Extra[rulesExtraKey] = encoded
		root.Touch(time.Now().UTC())
		if err := s.accountRepo.UpdateAccount(ctx, *root); err != nil {
			return domain.LedgerRules{}, fmt.Errorf("failed to persist ledger rules: %w", err)
		}
	}
	s.cached = merged
	middleware.GetLoggerFromCtx(ctx).Debug("Ledger rules updated", "booted", s.booted)
	return merged, nil
}

// Reset discards cached state, forcing the next read to reload from storage.
// Bootstrap calls this first so stale in-memory state never leaks across
// requests or tests.
func (s *rulesService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.booted = false
	s.cached = domain.LedgerRules{}
}

// Salt returns the ledger revision salt, empty before bootstrap.
func (s *rulesService) Salt(ctx context.Context) string {
	rules, err := s.Rules(ctx)
	if err != nil {
		return ""
	}
	return rules.Salt
}

// encodeRules round-trips rules through JSON into the generic extra-data
// shape stored on the root account.
func encodeRules(rules domain.LedgerRules) (map[string]any, error) {
	raw, err := json.Marshal(rules)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode ledger rules", apperrors.ErrInternal)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: failed to encode ledger rules", apperrors.ErrInternal)
	}
	return out, nil
}

// decodeRules extracts rules from a root account's extra data.
func decodeRules(extra map[string]any) (domain.LedgerRules, error) {
	encoded, ok := extra[rulesExtraKey]
	if !ok {
		// Root predates rules persistence; fall back to defaults.
		return domain.BaseRuleSet(), nil
	}
	raw, err := json.Marshal(encoded)
	if err != nil {
		return domain.LedgerRules{}, fmt.Errorf("%w: failed to decode ledger rules", apperrors.ErrInternal)
	}
	var rules domain.LedgerRules
	if err := json.Unmarshal(raw, &rules); err != nil {
		return domain.LedgerRules{}, fmt.Errorf("%w: failed to decode ledger rules", apperrors.ErrInternal)
	}
	return rules, nil
}
