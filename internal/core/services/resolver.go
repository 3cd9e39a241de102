package services

import (
	"context"
	"fmt"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	"github.com/openbooks/ledger_engine/internal/dto"
)

// Resolver turns {code, uuid} references into stored entities. When both are
// given the UUID wins and the code must match, else the lookup fails with a
// bad-reference error. On success the resolved UUID is cached back onto the
// reference so callers avoid re-resolving.
type Resolver struct {
	accountRepo    portsrepo.AccountRepositoryFacade
	domainRepo     portsrepo.DomainRepositoryFacade
	subJournalRepo portsrepo.SubJournalRepositoryFacade
	referenceRepo  portsrepo.ReferenceRepositoryFacade
}

// NewResolver creates an entity reference resolver over the given repositories.
func NewResolver(
	accountRepo portsrepo.AccountRepositoryFacade,
	domainRepo portsrepo.DomainRepositoryFacade,
	subJournalRepo portsrepo.SubJournalRepositoryFacade,
	referenceRepo portsrepo.ReferenceRepositoryFacade,
) *Resolver {
	return &Resolver{
		accountRepo:    accountRepo,
		domainRepo:     domainRepo,
		subJournalRepo: subJournalRepo,
		referenceRepo:  referenceRepo,
	}
}

// resolve applies the uuid-over-code precedence shared by every entity kind.
func resolve[T any](
	ref *dto.EntityRef,
	kind string,
	byID func(id string) (*T, error),
	byCode func(code string) (*T, error),
	codeOf func(*T) string,
	idOf func(*T) string,
) (*T, error) {
	if ref.IsEmpty() {
		return nil, fmt.Errorf("%w: %s reference requires code or uuid", apperrors.ErrValidation, kind)
	}
	var (
		entity *T
		err    error
	)
	if ref.UUID != "" {
		entity, err = byID(ref.UUID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s %s: %w", kind, ref.UUID, err)
		}
		if ref.Code != "" && ref.Code != codeOf(entity) {
			return nil, fmt.Errorf("%w: %s code %q does not match uuid %s", apperrors.ErrBadReference, kind, ref.Code, ref.UUID)
		}
	} else {
		entity, err = byCode(ref.Code)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s %q: %w", kind, ref.Code, err)
		}
	}
	ref.SetUUID(idOf(entity))
	return entity, nil
}

// Account resolves an account reference.
func (r *Resolver) Account(ctx context.Context, ref *dto.EntityRef) (*domain.Account, error) {
	return resolve(ref, "account",
		func(id string) (*domain.Account, error) { return r.accountRepo.FindAccountByID(ctx, id) },
		func(code string) (*domain.Account, error) { return r.accountRepo.FindAccountByCode(ctx, code) },
		func(a *domain.Account) string { return a.Code },
		func(a *domain.Account) string { return a.AccountID },
	)
}

// Domain resolves a domain reference.
func (r *Resolver) Domain(ctx context.Context, ref *dto.EntityRef) (*domain.Domain, error) {
	return resolve(ref, "domain",
		func(id string) (*domain.Domain, error) { return r.domainRepo.FindDomainByID(ctx, id) },
		func(code string) (*domain.Domain, error) { return r.domainRepo.FindDomainByCode(ctx, code) },
		func(d *domain.Domain) string { return d.Code },
		func(d *domain.Domain) string { return d.DomainID },
	)
}

// SubJournal resolves a sub-journal reference.
func (r *Resolver) SubJournal(ctx context.Context, ref *dto.EntityRef) (*domain.SubJournal, error) {
	return resolve(ref, "subjournal",
		func(id string) (*domain.SubJournal, error) { return r.subJournalRepo.FindSubJournalByID(ctx, id) },
		func(code string) (*domain.SubJournal, error) { return r.subJournalRepo.FindSubJournalByCode(ctx, code) },
		func(s *domain.SubJournal) string { return s.Code },
		func(s *domain.SubJournal) string { return s.SubJournalID },
	)
}

// Reference resolves a journal-reference reference within a domain. The
// domain scopes code lookups; UUID lookups ignore it.
func (r *Resolver) Reference(ctx context.Context, ref *dto.EntityRef, domainID string) (*domain.JournalReference, error) {
	return resolve(ref, "reference",
		func(id string) (*domain.JournalReference, error) { return r.referenceRepo.FindReferenceByID(ctx, id) },
		func(code string) (*domain.JournalReference, error) {
			return r.referenceRepo.FindReferenceByCode(ctx, domainID, code)
		},
		func(j *domain.JournalReference) string { return j.Code },
		func(j *domain.JournalReference) string { return j.ReferenceID },
	)
}
