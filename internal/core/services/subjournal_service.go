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

var ErrSubJournalInUse = errors.New("sub-journal is referenced by journal entries")

// subJournalService manages named entry channels.
type subJournalService struct {
	BaseService
	subJournalRepo portsrepo.SubJournalRepositoryFacade
	nameRepo       portsrepo.NameRepositoryFacade
	resolver       *Resolver
	txManager      portsrepo.TxManager
}

// NewSubJournalService creates the sub-journal manager.
func NewSubJournalService(
	subJournalRepo portsrepo.SubJournalRepositoryFacade,
	nameRepo portsrepo.NameRepositoryFacade,
	resolver *Resolver,
	txManager portsrepo.TxManager,
	rulesSvc portssvc.RulesSvcFacade,
) portssvc.SubJournalSvcFacade {
	return &subJournalService{
		BaseService:    BaseService{rulesSvc: rulesSvc},
		subJournalRepo: subJournalRepo,
		nameRepo:       nameRepo,
		resolver:       resolver,
		txManager:      txManager,
	}
}

var _ portssvc.SubJournalSvcFacade = (*subJournalService)(nil)

// AddSubJournal validates and persists a new sub-journal with its names.
func (s *subJournalService) AddSubJournal(ctx context.Context, req dto.SubJournalRequest) (*domain.SubJournal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpAdd, dto.Options{}); err != nil {
		return nil, err
	}
	if err := s.checkCodeFree(ctx, *req.Code); err != nil {
		return nil, err
	}

	sub := domain.SubJournal{
		SubJournalID: uuid.NewString(),
		Code:         *req.Code,
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.Touch(now)
	sub.Names = dto.ToDomainNames(req.Names, sub.SubJournalID)

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.subJournalRepo.SaveSubJournal(ctx, sub); err != nil {
			return fmt.Errorf("failed to save sub-journal: %w", err)
		}
		return s.nameRepo.ReplaceNames(ctx, sub.SubJournalID, sub.Names)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Sub-journal created", slog.String("subjournal_id", sub.SubJournalID), slog.String("code", sub.Code))
	return &sub, nil
}

// GetSubJournal resolves and returns one sub-journal with its names.
func (s *subJournalService) GetSubJournal(ctx context.Context, req dto.SubJournalRequest) (*domain.SubJournal, error) {
	if err := req.Validate(dto.OpGet, dto.Options{}); err != nil {
		return nil, err
	}
	sub, err := s.resolver.SubJournal(ctx, &req.Ref)
	if err != nil {
		return nil, err
	}
	sub.Names, err = s.nameRepo.FindNamesByOwner(ctx, sub.SubJournalID)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubJournals returns every sub-journal with its names attached.
func (s *subJournalService) ListSubJournals(ctx context.Context) ([]domain.SubJournal, error) {
	subs, err := s.subJournalRepo.ListSubJournals(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(subs))
	for i := range subs {
		ids[i] = subs[i].SubJournalID
	}
	names, err := s.nameRepo.FindNamesByOwners(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		subs[i].Names = names[subs[i].SubJournalID]
	}
	return subs, nil
}

// UpdateSubJournal applies a revision-checked partial update.
func (s *subJournalService) UpdateSubJournal(ctx context.Context, req dto.SubJournalRequest) (*domain.SubJournal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpUpdate, dto.Options{}); err != nil {
		return nil, err
	}

	sub, err := s.resolver.SubJournal(ctx, &req.Ref)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevision(ctx, req.Revision, sub.AuditFields); err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != sub.Code {
		if err := s.checkCodeFree(ctx, *req.Code); err != nil {
			return nil, err
		}
		sub.Code = *req.Code
	}
	if len(req.Names) > 0 {
		existing, err := s.nameRepo.FindNamesByOwner(ctx, sub.SubJournalID)
		if err != nil {
			return nil, err
		}
		sub.Names, err = mergeNames(existing, req.Names, sub.SubJournalID)
		if err != nil {
			return nil, err
		}
	}

	sub.Touch(time.Now().UTC())
	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.subJournalRepo.UpdateSubJournal(ctx, *sub); err != nil {
			return fmt.Errorf("failed to update sub-journal: %w", err)
		}
		if len(req.Names) > 0 {
			return s.nameRepo.ReplaceNames(ctx, sub.SubJournalID, sub.Names)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Sub-journal updated", slog.String("subjournal_id", sub.SubJournalID))
	return sub, nil
}

// DeleteSubJournal removes a sub-journal that no entry references.
func (s *subJournalService) DeleteSubJournal(ctx context.Context, req dto.SubJournalRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpDelete, dto.Options{}); err != nil {
		return err
	}

	sub, err := s.resolver.SubJournal(ctx, &req.Ref)
	if err != nil {
		return err
	}
	if err := s.checkRevision(ctx, req.Revision, sub.AuditFields); err != nil {
		return err
	}

	used, err := s.subJournalRepo.CountEntriesUsingSubJournal(ctx, sub.SubJournalID)
	if err != nil {
		return err
	}
	if used > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrSubJournalInUse)
	}

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.nameRepo.DeleteNamesByOwners(ctx, []string{sub.SubJournalID}); err != nil {
			return err
		}
		return s.subJournalRepo.DeleteSubJournal(ctx, sub.SubJournalID)
	})
	if err != nil {
		return err
	}

	logger.Info("Sub-journal deleted", slog.String("subjournal_id", sub.SubJournalID), slog.String("code", sub.Code))
	return nil
}

func (s *subJournalService) checkCodeFree(ctx context.Context, code string) error {
	_, err := s.subJournalRepo.FindSubJournalByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return fmt.Errorf("%w: sub-journal code %q is already in use", apperrors.ErrDuplicate, code)
}
