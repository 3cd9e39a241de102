package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/middleware"
)

var ErrDomainInUse = errors.New("domain is referenced by journal entries or balances")

// domainService manages the ledger's organizational partitions and the
// ledger-wide default domain designation.
type domainService struct {
	BaseService
	domainRepo   portsrepo.DomainRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
	nameRepo     portsrepo.NameRepositoryFacade
	resolver     *Resolver
	txManager    portsrepo.TxManager
}

// NewDomainService creates the domain manager.
func NewDomainService(
	domainRepo portsrepo.DomainRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	nameRepo portsrepo.NameRepositoryFacade,
	resolver *Resolver,
	txManager portsrepo.TxManager,
	rulesSvc portssvc.RulesSvcFacade,
) portssvc.DomainSvcFacade {
	return &domainService{
		BaseService:  BaseService{rulesSvc: rulesSvc},
		domainRepo:   domainRepo,
		currencyRepo: currencyRepo,
		nameRepo:     nameRepo,
		resolver:     resolver,
		txManager:    txManager,
	}
}

var _ portssvc.DomainSvcFacade = (*domainService)(nil)

// AddDomain validates and persists a new domain with its names, optionally
// designating it the ledger default.
func (s *domainService) AddDomain(ctx context.Context, req dto.DomainRequest) (*domain.Domain, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpAdd, dto.Options{}); err != nil {
		return nil, err
	}
	if err := s.checkCodeFree(ctx, *req.Code); err != nil {
		return nil, err
	}

	d := domain.Domain{
		DomainID: uuid.NewString(),
		Code:     *req.Code,
	}
	if req.DefaultCurrency != nil && *req.DefaultCurrency != "" {
		if _, err := s.currencyRepo.FindCurrencyByCode(ctx, *req.DefaultCurrency); err != nil {
			return nil, fmt.Errorf("failed to resolve default currency %q: %w", *req.DefaultCurrency, err)
		}
		d.DefaultCurrencyCode = *req.DefaultCurrency
	}
	if req.UseSubJournals != nil {
		d.UseSubJournals = *req.UseSubJournals
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.Touch(now)
	d.Names = dto.ToDomainNames(req.Names, d.DomainID)

	setDefault := req.Default != nil && *req.Default
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.domainRepo.SaveDomain(ctx, d); err != nil {
			return fmt.Errorf("failed to save domain: %w", err)
		}
		if err := s.nameRepo.ReplaceNames(ctx, d.DomainID, d.Names); err != nil {
			return err
		}
		if setDefault {
			_, err := s.rulesSvc.SetRules(ctx, domain.LedgerRulesPatch{DefaultDomainCode: &d.Code})
			return err
		}
		return nil
	})
	if err != nil {
		if setDefault {
			// A rollback discards the persisted rules but not the cache.
			s.rulesSvc.Reset()
		}
		return nil, err
	}

	logger.Info("Domain created", slog.String("domain_id", d.DomainID), slog.String("code", d.Code))
	return &d, nil
}

// GetDomain resolves and returns one domain with its names.
func (s *domainService) GetDomain(ctx context.Context, req dto.DomainRequest) (*domain.Domain, error) {
	if err := req.Validate(dto.OpGet, dto.Options{}); err != nil {
		return nil, err
	}
	d, err := s.resolver.Domain(ctx, &req.Ref)
	if err != nil {
		return nil, err
	}
	d.Names, err = s.nameRepo.FindNamesByOwner(ctx, d.DomainID)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DefaultDomain resolves the ledger-wide default domain from the rules.
func (s *domainService) DefaultDomain(ctx context.Context) (*domain.Domain, error) {
	rules, err := s.rulesSvc.Rules(ctx)
	if err != nil {
		return nil, err
	}
	if rules.DefaultDomainCode == "" {
		return nil, fmt.Errorf("%w: the ledger has no default domain", apperrors.ErrNotFound)
	}
	d, err := s.domainRepo.FindDomainByCode(ctx, rules.DefaultDomainCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default domain %q: %w", rules.DefaultDomainCode, err)
	}
	return d, nil
}

// ListDomains returns every domain with its names attached.
func (s *domainService) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	domains, err := s.domainRepo.ListDomains(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(domains))
	for i := range domains {
		ids[i] = domains[i].DomainID
	}
	names, err := s.nameRepo.FindNamesByOwners(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range domains {
		domains[i].Names = names[domains[i].DomainID]
	}
	return domains, nil
}

// UpdateDomain applies a revision-checked partial update.
func (s *domainService) UpdateDomain(ctx context.Context, req dto.DomainRequest) (*domain.Domain, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpUpdate, dto.Options{}); err != nil {
		return nil, err
	}

	d, err := s.resolver.Domain(ctx, &req.Ref)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevision(ctx, req.Revision, d.AuditFields); err != nil {
		return nil, err
	}

	rules, err := s.rulesSvc.Rules(ctx)
	if err != nil {
		return nil, err
	}
	isDefault := rules.DefaultDomainCode != "" && rules.DefaultDomainCode == d.Code

	codeChanged := false
	if req.Code != nil && *req.Code != d.Code {
		if err := s.checkCodeFree(ctx, *req.Code); err != nil {
			return nil, err
		}
		d.Code = *req.Code
		codeChanged = true
	}
	if req.DefaultCurrency != nil && *req.DefaultCurrency != d.DefaultCurrencyCode {
		if *req.DefaultCurrency != "" {
			if _, err := s.currencyRepo.FindCurrencyByCode(ctx, *req.DefaultCurrency); err != nil {
				return nil, fmt.Errorf("failed to resolve default currency %q: %w", *req.DefaultCurrency, err)
			}
		}
		d.DefaultCurrencyCode = *req.DefaultCurrency
	}
	if req.UseSubJournals != nil {
		d.UseSubJournals = *req.UseSubJournals
	}
	if req.Default != nil && !*req.Default && isDefault {
		return nil, fmt.Errorf("%w: designate another domain as default instead of unsetting it", apperrors.ErrRuleViolation)
	}

	if len(req.Names) > 0 {
		existing, err := s.nameRepo.FindNamesByOwner(ctx, d.DomainID)
		if err != nil {
			return nil, err
		}
		d.Names, err = mergeNames(existing, req.Names, d.DomainID)
		if err != nil {
			return nil, err
		}
	}

	// The default designation follows the domain through a rename.
	retarget := (codeChanged && isDefault) || (req.Default != nil && *req.Default)

	d.Touch(time.Now().UTC())
	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.domainRepo.UpdateDomain(ctx, *d); err != nil {
			return fmt.Errorf("failed to update domain: %w", err)
		}
		if len(req.Names) > 0 {
			if err := s.nameRepo.ReplaceNames(ctx, d.DomainID, d.Names); err != nil {
				return err
			}
		}
		if retarget {
			_, err := s.rulesSvc.SetRules(ctx, domain.LedgerRulesPatch{DefaultDomainCode: &d.Code})
			return err
		}
		return nil
	})
	if err != nil {
		if retarget {
			// A rollback discards the persisted rules but not the cache.
			s.rulesSvc.Reset()
		}
		return nil, err
	}

	logger.Info("Domain updated", slog.String("domain_id", d.DomainID))
	return d, nil
}

// DeleteDomain removes a domain that nothing references and that is not the
// ledger default.
func (s *domainService) DeleteDomain(ctx context.Context, req dto.DomainRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpDelete, dto.Options{}); err != nil {
		return err
	}

	d, err := s.resolver.Domain(ctx, &req.Ref)
	if err != nil {
		return err
	}
	if err := s.checkRevision(ctx, req.Revision, d.AuditFields); err != nil {
		return err
	}

	rules, err := s.rulesSvc.Rules(ctx)
	if err != nil {
		return err
	}
	if rules.DefaultDomainCode != "" && rules.DefaultDomainCode == d.Code {
		return fmt.Errorf("%w: the default domain can not be deleted", apperrors.ErrRuleViolation)
	}

	entries, err := s.domainRepo.CountEntriesUsingDomain(ctx, d.DomainID)
	if err != nil {
		return err
	}
	balances, err := s.domainRepo.CountBalancesUsingDomain(ctx, d.DomainID)
	if err != nil {
		return err
	}
	if entries > 0 || balances > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrDomainInUse)
	}

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.nameRepo.DeleteNamesByOwners(ctx, []string{d.DomainID}); err != nil {
			return err
		}
		return s.domainRepo.DeleteDomain(ctx, d.DomainID)
	})
	if err != nil {
		return err
	}

	logger.Info("Domain deleted", slog.String("domain_id", d.DomainID), slog.String("code", d.Code))
	return nil
}

func (s *domainService) checkCodeFree(ctx context.Context, code string) error {
	_, err := s.domainRepo.FindDomainByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return fmt.Errorf("%w: domain code %q is already in use", apperrors.ErrDuplicate, code)
}
