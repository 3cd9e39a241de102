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

var ErrReferenceInUse = errors.New("reference is used by journal detail lines")

// referenceService manages links between the journal and external entities.
type referenceService struct {
	BaseService
	referenceRepo portsrepo.ReferenceRepositoryFacade
	domainRepo    portsrepo.DomainRepositoryFacade
	resolver      *Resolver
}

// NewReferenceService creates the journal-reference manager.
func NewReferenceService(
	referenceRepo portsrepo.ReferenceRepositoryFacade,
	domainRepo portsrepo.DomainRepositoryFacade,
	resolver *Resolver,
	rulesSvc portssvc.RulesSvcFacade,
) portssvc.ReferenceSvcFacade {
	return &referenceService{
		BaseService:   BaseService{rulesSvc: rulesSvc},
		referenceRepo: referenceRepo,
		domainRepo:    domainRepo,
		resolver:      resolver,
	}
}

var _ portssvc.ReferenceSvcFacade = (*referenceService)(nil)

// AddReference validates and persists a new journal reference. The code must
// be unique within its domain; the default domain applies when none is given.
func (s *referenceService) AddReference(ctx context.Context, req dto.ReferenceRequest) (*domain.JournalReference, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpAdd, dto.Options{}); err != nil {
		return nil, err
	}

	d, err := s.resolveDomain(ctx, req.Domain)
	if err != nil {
		return nil, err
	}
	if err := s.checkCodeFree(ctx, d.DomainID, *req.Code); err != nil {
		return nil, err
	}

	ref := domain.JournalReference{
		ReferenceID: uuid.NewString(),
		DomainID:    d.DomainID,
		Code:        *req.Code,
		Extra:       req.Extra,
	}
	now := time.Now().UTC()
	ref.CreatedAt = now
	ref.Touch(now)

	if err := s.referenceRepo.SaveReference(ctx, ref); err != nil {
		return nil, fmt.Errorf("failed to save reference: %w", err)
	}
	logger.Info("Reference created", slog.String("reference_id", ref.ReferenceID), slog.String("code", ref.Code))
	return &ref, nil
}

// GetReference resolves and returns one journal reference.
func (s *referenceService) GetReference(ctx context.Context, req dto.ReferenceRequest) (*domain.JournalReference, error) {
	if err := req.Validate(dto.OpGet, dto.Options{}); err != nil {
		return nil, err
	}
	domainID, err := s.domainIDForLookup(ctx, req.Domain)
	if err != nil {
		return nil, err
	}
	return s.resolver.Reference(ctx, &req.Ref, domainID)
}

// UpdateReference applies a revision-checked partial update. References stay
// in their domain; moving one would silently rewrite posted lines.
func (s *referenceService) UpdateReference(ctx context.Context, req dto.ReferenceRequest) (*domain.JournalReference, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpUpdate, dto.Options{}); err != nil {
		return nil, err
	}

	domainID, err := s.domainIDForLookup(ctx, req.Domain)
	if err != nil {
		return nil, err
	}
	ref, err := s.resolver.Reference(ctx, &req.Ref, domainID)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevision(ctx, req.Revision, ref.AuditFields); err != nil {
		return nil, err
	}
	if req.Domain != nil && !req.Domain.IsEmpty() {
		d, err := s.resolver.Domain(ctx, req.Domain)
		if err != nil {
			return nil, err
		}
		if d.DomainID != ref.DomainID {
			return nil, fmt.Errorf("%w: a reference can not move to another domain", apperrors.ErrRuleViolation)
		}
	}

	if req.Code != nil && *req.Code != ref.Code {
		if err := s.checkCodeFree(ctx, ref.DomainID, *req.Code); err != nil {
			return nil, err
		}
		ref.Code = *req.Code
	}
	if req.Extra != nil {
		ref.Extra = req.Extra
	}

	ref.Touch(time.Now().UTC())
	if err := s.referenceRepo.UpdateReference(ctx, *ref); err != nil {
		return nil, fmt.Errorf("failed to update reference: %w", err)
	}
	logger.Info("Reference updated", slog.String("reference_id", ref.ReferenceID))
	return ref, nil
}

// DeleteReference removes a reference that no detail line uses.
func (s *referenceService) DeleteReference(ctx context.Context, req dto.ReferenceRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpDelete, dto.Options{}); err != nil {
		return err
	}

	domainID, err := s.domainIDForLookup(ctx, req.Domain)
	if err != nil {
		return err
	}
	ref, err := s.resolver.Reference(ctx, &req.Ref, domainID)
	if err != nil {
		return err
	}
	if err := s.checkRevision(ctx, req.Revision, ref.AuditFields); err != nil {
		return err
	}

	used, err := s.referenceRepo.CountDetailsUsingReference(ctx, ref.ReferenceID)
	if err != nil {
		return err
	}
	if used > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrReferenceInUse)
	}

	if err := s.referenceRepo.DeleteReference(ctx, ref.ReferenceID); err != nil {
		return fmt.Errorf("failed to delete reference: %w", err)
	}
	logger.Info("Reference deleted", slog.String("reference_id", ref.ReferenceID), slog.String("code", ref.Code))
	return nil
}

// resolveDomain picks the requested domain or falls back to the default.
func (s *referenceService) resolveDomain(ctx context.Context, ref *dto.EntityRef) (*domain.Domain, error) {
	if ref != nil && !ref.IsEmpty() {
		return s.resolver.Domain(ctx, ref)
	}
	rules, err := s.rulesSvc.Rules(ctx)
	if err != nil {
		return nil, err
	}
	if rules.DefaultDomainCode == "" {
		return nil, fmt.Errorf("%w: no domain given and the ledger has no default domain", apperrors.ErrValidation)
	}
	d, err := s.domainRepo.FindDomainByCode(ctx, rules.DefaultDomainCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default domain %q: %w", rules.DefaultDomainCode, err)
	}
	return d, nil
}

// domainIDForLookup scopes code lookups; UUID lookups work without it.
func (s *referenceService) domainIDForLookup(ctx context.Context, ref *dto.EntityRef) (string, error) {
	if ref == nil || ref.IsEmpty() {
		rules, err := s.rulesSvc.Rules(ctx)
		if err != nil {
			return "", err
		}
		if rules.DefaultDomainCode == "" {
			return "", nil
		}
		d, err := s.domainRepo.FindDomainByCode(ctx, rules.DefaultDomainCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return "", nil
			}
			return "", err
		}
		return d.DomainID, nil
	}
	d, err := s.resolver.Domain(ctx, ref)
	if err != nil {
		return "", err
	}
	return d.DomainID, nil
}

func (s *referenceService) checkCodeFree(ctx context.Context, domainID, code string) error {
	_, err := s.referenceRepo.FindReferenceByCode(ctx, domainID, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return fmt.Errorf("%w: reference code %q is already in use in this domain", apperrors.ErrDuplicate, code)
}
