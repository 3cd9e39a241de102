package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/middleware"
	"github.com/openbooks/ledger_engine/internal/utils/money"
	"github.com/openbooks/ledger_engine/internal/utils/revision"
)

var (
	ErrEntryLocked      = errors.New("entry is locked and can not be modified")
	ErrManyToMany       = errors.New("an entry can not have multiple debit and multiple credit lines")
	ErrDuplicateAccount = errors.New("an account can appear only once per entry")
)

// journalService is the posting engine: balanced entry creation, full-reversal
// delete, reverse-then-reapply update and filtered queries.
type journalService struct {
	BaseService
	journalRepo  portsrepo.JournalRepositoryFacade
	balanceRepo  portsrepo.BalanceRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
	domainRepo   portsrepo.DomainRepositoryFacade
	resolver     *Resolver
	txManager    portsrepo.TxManager
}

// NewJournalService creates the posting engine.
func NewJournalService(
	journalRepo portsrepo.JournalRepositoryFacade,
	balanceRepo portsrepo.BalanceRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	domainRepo portsrepo.DomainRepositoryFacade,
	resolver *Resolver,
	txManager portsrepo.TxManager,
	rulesSvc portssvc.RulesSvcFacade,
) portssvc.JournalSvcFacade {
	return &journalService{
		BaseService:  BaseService{rulesSvc: rulesSvc},
		journalRepo:  journalRepo,
		balanceRepo:  balanceRepo,
		currencyRepo: currencyRepo,
		domainRepo:   domainRepo,
		resolver:     resolver,
		txManager:    txManager,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// entryRevision computes the current revision token of an entry.
func entryRevision(e *domain.JournalEntry, salt string) string {
	return revision.Token(e.RevisedAt, e.LastUpdatedAt, salt)
}

// checkEntryShape enforces the structural posting rules over normalized
// detail lines: the lines must sum to zero at the currency scale, at least
// one debit and one credit must be present, and mixing multiple debits with
// multiple credits is rejected unless allowManyToMany is set.
func checkEntryShape(details []domain.JournalDetail, scale int32, allowManyToMany bool) error {
	sum := decimal.Zero
	debits, credits := 0, 0
	for i := range details {
		sum = money.Add(sum, details[i].Amount, scale)
		if details[i].IsDebit() {
			debits++
		} else {
			credits++
		}
	}
	if !sum.IsZero() {
		return fmt.Errorf("%w: Entry amounts are out of balance by %s.",
			apperrors.ErrRuleViolation, money.Format(sum.Abs(), scale))
	}
	if debits == 0 || credits == 0 {
		return fmt.Errorf("%w: an entry needs at least one debit and one credit line", apperrors.ErrRuleViolation)
	}
	if !allowManyToMany && debits > 1 && credits > 1 {
		return fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrManyToMany)
	}
	return nil
}

// applyDetails shifts running balances by every detail line, negated for a
// reversal.
func applyDetails(ctx context.Context, balanceRepo portsrepo.BalanceRepositoryFacade,
	entry *domain.JournalEntry, reverse bool, now time.Time) error {
	for i := range entry.Details {
		delta := entry.Details[i].Amount
		if reverse {
			delta = delta.Neg()
		}
		err := balanceRepo.ApplyBalanceDelta(ctx, entry.Details[i].AccountID, entry.DomainID, entry.CurrencyCode, delta, now)
		if err != nil {
			return fmt.Errorf("failed to apply balance delta: %w", err)
		}
	}
	return nil
}

// AddEntry validates, resolves and posts a new balanced journal entry,
// persisting the header, its detail lines and the balance shifts atomically.
func (s *journalService) AddEntry(ctx context.Context, req dto.EntryRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpAdd, dto.Options{}); err != nil {
		return nil, err
	}

	rules, err := s.rulesSvc.Rules(ctx)
	if err != nil {
		return nil, err
	}

	entry, currency, err := s.resolveHeader(ctx, &req, rules)
	if err != nil {
		return nil, err
	}

	entry.Details, err = s.resolveDetails(ctx, req.Details, entry, currency.Decimals, rules)
	if err != nil {
		return nil, err
	}
	if err := checkEntryShape(entry.Details, currency.Decimals, false); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.Touch(now)

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.journalRepo.SaveEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}
		return applyDetails(ctx, s.balanceRepo, entry, false, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Entry posted",
		slog.Int64("entry_id", entry.EntryID),
		slog.String("domain_id", entry.DomainID),
		slog.Int("details", len(entry.Details)))
	return entry, nil
}

// resolveHeader builds an entry header from the request, falling back to the
// default domain and the domain's default currency when unspecified.
func (s *journalService) resolveHeader(ctx context.Context, req *dto.EntryRequest, rules domain.LedgerRules) (*domain.JournalEntry, *domain.Currency, error) {
	var d *domain.Domain
	var err error
	if req.Domain != nil && !req.Domain.IsEmpty() {
		d, err = s.resolver.Domain(ctx, req.Domain)
	} else {
		d, err = s.defaultDomain(ctx, rules)
	}
	if err != nil {
		return nil, nil, err
	}

	currencyCode := d.DefaultCurrencyCode
	if req.Currency != nil && *req.Currency != "" {
		currencyCode = *req.Currency
	}
	if currencyCode == "" {
		return nil, nil, fmt.Errorf("%w: entry currency is required when the domain has no default", apperrors.ErrValidation)
	}
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve currency %q: %w", currencyCode, err)
	}

	entry := &domain.JournalEntry{
		DomainID:     d.DomainID,
		CurrencyCode: currency.Code,
		Language:     req.Language,
		Extra:        req.Extra,
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	entry.DescriptionArgs = req.DescriptionArgs
	if entry.Language == "" {
		entry.Language = rules.DefaultLanguage
	}
	if req.Reviewed != nil {
		entry.Reviewed = *req.Reviewed
	}
	if req.Locked != nil {
		entry.Locked = *req.Locked
	}

	entry.Date = time.Now().UTC()
	if req.Date != nil {
		entry.Date = req.Date.UTC()
	}
	if err := checkEntryDate(entry.Date, rules.OpeningDate); err != nil {
		return nil, nil, err
	}

	if d.UseSubJournals && (req.SubJournal == nil || req.SubJournal.IsEmpty()) {
		return nil, nil, fmt.Errorf("%w: domain %s requires a sub-journal on every entry", apperrors.ErrRuleViolation, d.Code)
	}
	if req.SubJournal != nil && !req.SubJournal.IsEmpty() {
		sub, err := s.resolver.SubJournal(ctx, req.SubJournal)
		if err != nil {
			return nil, nil, err
		}
		entry.SubJournalID = &sub.SubJournalID
	}
	if req.Reference != nil && !req.Reference.IsEmpty() {
		ref, err := s.resolver.Reference(ctx, req.Reference, d.DomainID)
		if err != nil {
			return nil, nil, err
		}
		entry.ReferenceID = &ref.ReferenceID
	}
	return entry, currency, nil
}

// checkEntryDate rejects posting dates before the ledger opening date. Only
// the calendar date matters, not the time of day.
func checkEntryDate(date, openingDate time.Time) error {
	if openingDate.IsZero() {
		return nil
	}
	y1, m1, d1 := date.UTC().Date()
	y2, m2, d2 := openingDate.UTC().Date()
	entryDay := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	openingDay := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	if entryDay.Before(openingDay) {
		return fmt.Errorf("%w: entry date %s is before the ledger opening date %s",
			apperrors.ErrRuleViolation, entryDay.Format(time.DateOnly), openingDay.Format(time.DateOnly))
	}
	return nil
}

// resolveDetails turns detail requests into normalized posting lines,
// rejecting category and closed accounts and duplicate account usage.
func (s *journalService) resolveDetails(ctx context.Context, reqs []dto.DetailRequest,
	entry *domain.JournalEntry, scale int32, rules domain.LedgerRules) ([]domain.JournalDetail, error) {
	seen := make(map[string]bool, len(reqs))
	details := make([]domain.JournalDetail, 0, len(reqs))
	for i := range reqs {
		account, err := s.resolver.Account(ctx, &reqs[i].Account)
		if err != nil {
			return nil, err
		}
		if account.Category && !rules.AllowCategoryPosting {
			return nil, fmt.Errorf("%w: can not post to category account %s", apperrors.ErrRuleViolation, account.Code)
		}
		if account.IsRoot() {
			return nil, fmt.Errorf("%w: can not post to the root account", apperrors.ErrRuleViolation)
		}
		if account.Closed {
			return nil, fmt.Errorf("%w: can not post to closed account %s", apperrors.ErrRuleViolation, account.Code)
		}
		if seen[account.AccountID] {
			return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrRuleViolation, ErrDuplicateAccount, account.Code)
		}
		seen[account.AccountID] = true

		amount, err := reqs[i].SignedAmount(scale)
		if err != nil {
			return nil, err
		}
		detail := domain.JournalDetail{
			DetailID:  uuid.NewString(),
			AccountID: account.AccountID,
			Amount:    amount,
		}
		if reqs[i].Reference != nil && !reqs[i].Reference.IsEmpty() {
			ref, err := s.resolver.Reference(ctx, reqs[i].Reference, entry.DomainID)
			if err != nil {
				return nil, err
			}
			detail.ReferenceID = &ref.ReferenceID
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *journalService) defaultDomain(ctx context.Context, rules domain.LedgerRules) (*domain.Domain, error) {
	if rules.DefaultDomainCode == "" {
		return nil, fmt.Errorf("%w: no domain given and the ledger has no default domain", apperrors.ErrValidation)
	}
	d, err := s.domainRepo.FindDomainByCode(ctx, rules.DefaultDomainCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default domain %q: %w", rules.DefaultDomainCode, err)
	}
	return d, nil
}

// GetEntry returns one entry with its detail lines.
func (s *journalService) GetEntry(ctx context.Context, entryID int64) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.Details, err = s.journalRepo.FindDetailsByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry applies a revision-checked update. Header-only changes leave
// balances alone; when new detail lines are supplied the old lines are fully
// reversed and the new set posted in the same transaction.
func (s *journalService) UpdateEntry(ctx context.Context, req dto.EntryRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpUpdate, dto.Options{}); err != nil {
		return nil, err
	}

	entry, err := s.GetEntry(ctx, *req.EntryID)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevision(ctx, req.Revision, entry.AuditFields); err != nil {
		return nil, err
	}
	if entry.Locked && (req.Locked == nil || *req.Locked) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrEntryLocked)
	}
	if entry.Opening {
		return nil, fmt.Errorf("%w: opening entries can not be updated", apperrors.ErrRuleViolation)
	}

	rules, err := s.rulesSvc.Rules(ctx)
	if err != nil {
		return nil, err
	}

	// Rebasing an entry onto another domain or currency moves balances, so
	// it is only allowed together with a full replacement of the lines.
	if req.Details == nil {
		if req.Domain != nil && !req.Domain.IsEmpty() {
			d, err := s.resolver.Domain(ctx, req.Domain)
			if err != nil {
				return nil, err
			}
			if d.DomainID != entry.DomainID {
				return nil, fmt.Errorf("%w: changing an entry's domain requires new detail lines", apperrors.ErrRuleViolation)
			}
		}
		if req.Currency != nil && *req.Currency != entry.CurrencyCode {
			return nil, fmt.Errorf("%w: changing an entry's currency requires new detail lines", apperrors.ErrRuleViolation)
		}
	}

	previous := *entry

	if req.Details != nil {
		// Unspecified header fields keep the entry's current values.
		if req.Domain == nil || req.Domain.IsEmpty() {
			req.Domain = &dto.EntityRef{UUID: entry.DomainID}
		}
		if req.Currency == nil {
			req.Currency = &entry.CurrencyCode
		}
		if (req.SubJournal == nil || req.SubJournal.IsEmpty()) && entry.SubJournalID != nil {
			req.SubJournal = &dto.EntityRef{UUID: *entry.SubJournalID}
		}
		if (req.Reference == nil || req.Reference.IsEmpty()) && entry.ReferenceID != nil {
			req.Reference = &dto.EntityRef{UUID: *entry.ReferenceID}
		}
		updated, currency, err := s.resolveHeader(ctx, &req, rules)
		if err != nil {
			return nil, err
		}
		updated.EntryID = entry.EntryID
		updated.Opening = entry.Opening
		updated.AuditFields = entry.AuditFields
		if req.Description == nil {
			updated.Description = entry.Description
			updated.DescriptionArgs = entry.DescriptionArgs
		}
		if req.Date == nil {
			updated.Date = entry.Date
		}
		if req.Reviewed == nil {
			updated.Reviewed = entry.Reviewed
		}
		if req.Extra == nil {
			updated.Extra = entry.Extra
		}

		updated.Details, err = s.resolveDetails(ctx, req.Details, updated, currency.Decimals, rules)
		if err != nil {
			return nil, err
		}
		for i := range updated.Details {
			updated.Details[i].EntryID = updated.EntryID
		}
		if err := checkEntryShape(updated.Details, currency.Decimals, false); err != nil {
			return nil, err
		}
		entry = updated
	} else {
		s.patchHeader(entry, &req)
	}

	now := time.Now().UTC()
	entry.Touch(now)

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if req.Details != nil {
			if err := applyDetails(ctx, s.balanceRepo, &previous, true, now); err != nil {
				return err
			}
		}
		if err := s.journalRepo.UpdateEntryHeader(ctx, *entry); err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}
		if req.Details != nil {
			if err := s.journalRepo.ReplaceDetails(ctx, entry.EntryID, entry.Details); err != nil {
				return fmt.Errorf("failed to replace entry details: %w", err)
			}
			return applyDetails(ctx, s.balanceRepo, entry, false, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Entry updated", slog.Int64("entry_id", entry.EntryID), slog.Bool("reposted", req.Details != nil))
	return entry, nil
}

// patchHeader applies the header-only fields of an update request.
func (s *journalService) patchHeader(entry *domain.JournalEntry, req *dto.EntryRequest) {
	if req.Date != nil {
		entry.Date = req.Date.UTC()
	}
	if req.Description != nil {
		entry.Description = *req.Description
		entry.DescriptionArgs = req.DescriptionArgs
	}
	if req.Language != "" {
		entry.Language = req.Language
	}
	if req.Reviewed != nil {
		entry.Reviewed = *req.Reviewed
	}
	if req.Locked != nil {
		entry.Locked = *req.Locked
	}
	if req.Extra != nil {
		entry.Extra = req.Extra
	}
}

// DeleteEntry removes an entry after reversing every balance shift it caused.
func (s *journalService) DeleteEntry(ctx context.Context, req dto.EntryRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpDelete, dto.Options{}); err != nil {
		return err
	}

	entry, err := s.GetEntry(ctx, *req.EntryID)
	if err != nil {
		return err
	}
	if err := s.checkRevision(ctx, req.Revision, entry.AuditFields); err != nil {
		return err
	}
	if entry.Locked {
		return fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrEntryLocked)
	}

	now := time.Now().UTC()
	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := applyDetails(ctx, s.balanceRepo, entry, true, now); err != nil {
			return err
		}
		if err := s.journalRepo.DeleteEntry(ctx, entry.EntryID); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Entry deleted", slog.Int64("entry_id", entry.EntryID))
	return nil
}

// QueryEntries returns a filtered, cursor-paginated page of entries with
// their detail lines.
func (s *journalService) QueryEntries(ctx context.Context, q dto.EntryQueryRequest, opts dto.Options) (*dto.ListEntriesResponse, error) {
	rules, err := s.rulesSvc.Rules(ctx)
	if err != nil {
		return nil, err
	}
	if err := q.Validate(opts, rules.PageSize); err != nil {
		return nil, err
	}

	filter := portsrepo.EntryFilter{
		FromDate:        q.FromDate,
		ToDate:          q.ToDate,
		DescriptionLike: q.DescriptionLike,
		Reviewed:        q.Reviewed,
		Limit:           q.Limit,
		NextToken:       q.NextToken,
	}
	if q.MinAmount != nil {
		a, err := money.Parse(*q.MinAmount)
		if err != nil {
			return nil, err
		}
		filter.MinAmount = &a
	}
	if q.MaxAmount != nil {
		a, err := money.Parse(*q.MaxAmount)
		if err != nil {
			return nil, err
		}
		filter.MaxAmount = &a
	}
	if q.Domain != nil && !q.Domain.IsEmpty() {
		d, err := s.resolver.Domain(ctx, q.Domain)
		if err != nil {
			return nil, err
		}
		filter.DomainID = &d.DomainID
	}
	if q.Reference != nil && !q.Reference.IsEmpty() {
		domainID := ""
		if filter.DomainID != nil {
			domainID = *filter.DomainID
		} else if q.Reference.UUID == "" {
			// Reference codes are unique per domain, so a code-only filter
			// without a domain filter scopes to the default domain.
			if rules.DefaultDomainCode == "" {
				return nil, fmt.Errorf("%w: a reference code filter needs a domain filter and the ledger has no default domain", apperrors.ErrValidation)
			}
			d, err := s.domainRepo.FindDomainByCode(ctx, rules.DefaultDomainCode)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve default domain %q: %w", rules.DefaultDomainCode, err)
			}
			domainID = d.DomainID
		}
		ref, err := s.resolver.Reference(ctx, q.Reference, domainID)
		if err != nil {
			return nil, err
		}
		filter.ReferenceID = &ref.ReferenceID
	}

	entries, nextToken, err := s.journalRepo.QueryEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}

	salt := s.rulesSvc.Salt(ctx)
	responses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		entries[i].Details, err = s.journalRepo.FindDetailsByEntryID(ctx, entries[i].EntryID)
		if err != nil {
			return nil, err
		}
		responses[i] = dto.ToEntryResponse(&entries[i], entryRevision(&entries[i], salt))
	}
	return &dto.ListEntriesResponse{Entries: responses, NextToken: nextToken}, nil
}

// SetReviewed toggles the reviewed flag, revision-checked. Review is workflow
// metadata and is allowed on locked entries.
func (s *journalService) SetReviewed(ctx context.Context, entryID int64, reviewed bool, revisionToken string) (*domain.JournalEntry, error) {
	entry, err := s.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevision(ctx, revisionToken, entry.AuditFields); err != nil {
		return nil, err
	}
	if entry.Reviewed == reviewed {
		return entry, nil
	}
	entry.Reviewed = reviewed
	entry.Touch(time.Now().UTC())
	if err := s.journalRepo.UpdateEntryHeader(ctx, *entry); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return entry, nil
}

// QueryBalances returns running balances filtered by account, domain and/or
// currency.
func (s *journalService) QueryBalances(ctx context.Context, q dto.BalanceQueryRequest, opts dto.Options) ([]domain.LedgerBalance, error) {
	if err := q.Validate(opts); err != nil {
		return nil, err
	}
	var accountID, domainID, currency *string
	if q.Account != nil && !q.Account.IsEmpty() {
		account, err := s.resolver.Account(ctx, q.Account)
		if err != nil {
			return nil, err
		}
		accountID = &account.AccountID
	}
	if q.Domain != nil && !q.Domain.IsEmpty() {
		d, err := s.resolver.Domain(ctx, q.Domain)
		if err != nil {
			return nil, err
		}
		domainID = &d.DomainID
	}
	if q.Currency != "" {
		currency = &q.Currency
	}
	balances, err := s.balanceRepo.ListBalances(ctx, accountID, domainID, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	return balances, nil
}
