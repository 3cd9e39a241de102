package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/coatemplates"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/middleware"
)

// ledgerService is the one-time bootstrap orchestrator. It creates the root
// account carrying the ledger rules, then currencies, domains, sub-journals,
// the chart of accounts and the opening entries, all in a single transaction.
type ledgerService struct {
	BaseService
	accountRepo    portsrepo.AccountRepositoryFacade
	nameRepo       portsrepo.NameRepositoryFacade
	currencyRepo   portsrepo.CurrencyRepositoryFacade
	domainRepo     portsrepo.DomainRepositoryFacade
	subJournalRepo portsrepo.SubJournalRepositoryFacade
	journalRepo    portsrepo.JournalRepositoryFacade
	balanceRepo    portsrepo.BalanceRepositoryFacade
	accountSvc     portssvc.AccountSvcFacade
	resolver       *Resolver
	txManager      portsrepo.TxManager
}

// NewLedgerService creates the bootstrap orchestrator.
func NewLedgerService(
	accountRepo portsrepo.AccountRepositoryFacade,
	nameRepo portsrepo.NameRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	domainRepo portsrepo.DomainRepositoryFacade,
	subJournalRepo portsrepo.SubJournalRepositoryFacade,
	journalRepo portsrepo.JournalRepositoryFacade,
	balanceRepo portsrepo.BalanceRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	resolver *Resolver,
	txManager portsrepo.TxManager,
	rulesSvc portssvc.RulesSvcFacade,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService:    BaseService{rulesSvc: rulesSvc},
		accountRepo:    accountRepo,
		nameRepo:       nameRepo,
		currencyRepo:   currencyRepo,
		domainRepo:     domainRepo,
		subJournalRepo: subJournalRepo,
		journalRepo:    journalRepo,
		balanceRepo:    balanceRepo,
		accountSvc:     accountSvc,
		resolver:       resolver,
		txManager:      txManager,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateLedger initializes the ledger exactly once. Any existing account,
// root included, makes the call fail; nothing is partially applied.
func (s *ledgerService) CreateLedger(ctx context.Context, req dto.CreateLedgerRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.Options{}); err != nil {
		return nil, err
	}

	count, err := s.accountRepo.CountAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: the ledger has already been created", apperrors.ErrInvalidOperation)
	}

	accounts := req.Accounts
	rules := domain.BaseRuleSet()
	if req.Template != "" {
		template, err := coatemplates.Load(req.Template)
		if err != nil {
			return nil, err
		}
		if template.CodeFormat != "" {
			rules.AccountCodeFormat = template.CodeFormat
		}
		if len(template.Sections) > 0 {
			rules.Sections = template.Sections
		}
		accounts = append(templateAccountRequests(template), accounts...)
	}
	if req.Rules != nil {
		rules = rules.Merge(*req.Rules)
	}
	if rules.MaxBatchSize > 0 {
		if len(req.Accounts) > rules.MaxBatchSize {
			return nil, fmt.Errorf("%w: %d accounts exceed the batch limit of %d",
				apperrors.ErrValidation, len(req.Accounts), rules.MaxBatchSize)
		}
		if len(req.Balances) > rules.MaxBatchSize {
			return nil, fmt.Errorf("%w: %d opening balances exceed the batch limit of %d",
				apperrors.ErrValidation, len(req.Balances), rules.MaxBatchSize)
		}
	}
	if rules.OpeningDate.IsZero() {
		rules.OpeningDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	domains := req.Domains
	if len(domains) == 0 {
		// A ledger always has at least one domain; synthesize the default.
		code := rules.DefaultDomainCode
		if code == "" {
			code = "GENERAL"
		}
		domains = []dto.DomainRequest{{
			Code:  &code,
			Names: []dto.NameRequest{{Language: rules.DefaultLanguage, Name: "General"}},
		}}
	}
	if rules.DefaultDomainCode == "" {
		rules.DefaultDomainCode = *domains[0].Code
	}
	for i := range domains {
		if domains[i].Default != nil && *domains[i].Default {
			rules.DefaultDomainCode = *domains[i].Code
		}
	}
	salt, err := newSalt()
	if err != nil {
		return nil, err
	}
	rules.Salt = salt

	// The rules service must not serve stale pre-boot defaults afterwards.
	s.rulesSvc.Reset()
	defer s.rulesSvc.Reset()

	var root *domain.Account
	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		root, err = s.createRoot(ctx, rules)
		if err != nil {
			return err
		}
		if err := s.createCurrencies(ctx, req.Currencies); err != nil {
			return err
		}
		if err := s.createDomains(ctx, domains, req.Currencies[0].Code, rules); err != nil {
			return err
		}
		if err := s.createSubJournals(ctx, req.SubJournals); err != nil {
			return err
		}
		if err := s.createAccounts(ctx, accounts); err != nil {
			return err
		}
		return s.postOpeningBalances(ctx, req.Balances, rules)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Ledger created",
		slog.String("root_account_id", root.AccountID),
		slog.Int("currencies", len(req.Currencies)),
		slog.Int("domains", len(domains)),
		slog.Int("accounts", len(accounts)),
		slog.Int("opening_balances", len(req.Balances)))
	return root, nil
}

// createRoot persists the root account with the ledger rules embedded in its
// extra data.
func (s *ledgerService) createRoot(ctx context.Context, rules domain.LedgerRules) (*domain.Account, error) {
	encoded, err := encodeRules(rules)
	if err != nil {
		return nil, err
	}
	// The root is the only account with an empty code and a nil parent; it
	// is exempt from the account code format rule.
	root := domain.Account{
		AccountID: uuid.NewString(),
		Category:  true,
		Extra:     map[string]any{rulesExtraKey: encoded},
	}
	now := time.Now().UTC()
	root.CreatedAt = now
	root.Touch(now)
	root.Names = []domain.LedgerName{{
		OwnerID:  root.AccountID,
		Language: rules.DefaultLanguage,
		Name:     "Root",
	}}

	if err := s.accountRepo.SaveAccount(ctx, root); err != nil {
		return nil, fmt.Errorf("failed to save root account: %w", err)
	}
	if err := s.nameRepo.ReplaceNames(ctx, root.AccountID, root.Names); err != nil {
		return nil, err
	}
	return &root, nil
}

func (s *ledgerService) createCurrencies(ctx context.Context, reqs []dto.CurrencyRequest) error {
	seen := make(map[string]bool, len(reqs))
	now := time.Now().UTC()
	for i := range reqs {
		if seen[reqs[i].Code] {
			return fmt.Errorf("%w: currency %q appears twice", apperrors.ErrDuplicate, reqs[i].Code)
		}
		seen[reqs[i].Code] = true
		currency := domain.Currency{Code: reqs[i].Code, Decimals: *reqs[i].Decimals}
		currency.CreatedAt = now
		currency.Touch(now)
		if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
			return fmt.Errorf("failed to save currency %s: %w", currency.Code, err)
		}
	}
	return nil
}

// createDomains persists the domains. A domain that omits a default currency
// inherits the ledger's first currency.
func (s *ledgerService) createDomains(ctx context.Context, reqs []dto.DomainRequest, firstCurrency string, rules domain.LedgerRules) error {
	seen := make(map[string]bool, len(reqs))
	now := time.Now().UTC()
	for i := range reqs {
		code := *reqs[i].Code
		if seen[code] {
			return fmt.Errorf("%w: domain %q appears twice", apperrors.ErrDuplicate, code)
		}
		seen[code] = true
		d := domain.Domain{DomainID: uuid.NewString(), Code: code}
		if reqs[i].DefaultCurrency != nil && *reqs[i].DefaultCurrency != "" {
			if _, err := s.currencyRepo.FindCurrencyByCode(ctx, *reqs[i].DefaultCurrency); err != nil {
				return fmt.Errorf("failed to resolve default currency of domain %s: %w", code, err)
			}
			d.DefaultCurrencyCode = *reqs[i].DefaultCurrency
		} else {
			d.DefaultCurrencyCode = firstCurrency
		}
		if reqs[i].UseSubJournals != nil {
			d.UseSubJournals = *reqs[i].UseSubJournals
		}
		d.CreatedAt = now
		d.Touch(now)
		d.Names = dto.ToDomainNames(reqs[i].Names, d.DomainID)
		if err := s.domainRepo.SaveDomain(ctx, d); err != nil {
			return fmt.Errorf("failed to save domain %s: %w", code, err)
		}
		if err := s.nameRepo.ReplaceNames(ctx, d.DomainID, d.Names); err != nil {
			return err
		}
	}
	if rules.DefaultDomainCode != "" && !seen[rules.DefaultDomainCode] {
		return fmt.Errorf("%w: default domain %q is not among the created domains", apperrors.ErrValidation, rules.DefaultDomainCode)
	}
	return nil
}

func (s *ledgerService) createSubJournals(ctx context.Context, reqs []dto.SubJournalRequest) error {
	seen := make(map[string]bool, len(reqs))
	now := time.Now().UTC()
	for i := range reqs {
		code := *reqs[i].Code
		if seen[code] {
			return fmt.Errorf("%w: sub-journal %q appears twice", apperrors.ErrDuplicate, code)
		}
		seen[code] = true
		sub := domain.SubJournal{SubJournalID: uuid.NewString(), Code: code}
		sub.CreatedAt = now
		sub.Touch(now)
		sub.Names = dto.ToDomainNames(reqs[i].Names, sub.SubJournalID)
		if err := s.subJournalRepo.SaveSubJournal(ctx, sub); err != nil {
			return fmt.Errorf("failed to save sub-journal %s: %w", code, err)
		}
		if err := s.nameRepo.ReplaceNames(ctx, sub.SubJournalID, sub.Names); err != nil {
			return err
		}
	}
	return nil
}

// createAccounts posts the account requests in dependency order: a request
// is runnable once its parent exists. A full pass that creates nothing means
// the remaining parents can never resolve.
func (s *ledgerService) createAccounts(ctx context.Context, reqs []dto.AccountRequest) error {
	pending := make([]dto.AccountRequest, len(reqs))
	copy(pending, reqs)

	for len(pending) > 0 {
		var stuck []dto.AccountRequest
		progressed := false
		for i := range pending {
			if _, err := s.accountSvc.AddAccount(ctx, pending[i]); err != nil {
				if isUnresolvedParent(err) {
					stuck = append(stuck, pending[i])
					continue
				}
				return err
			}
			progressed = true
		}
		if !progressed {
			codes := make([]string, len(stuck))
			for i := range stuck {
				codes[i] = *stuck[i].Code
			}
			return fmt.Errorf("%w: accounts %v reference parents that do not exist", apperrors.ErrValidation, codes)
		}
		pending = stuck
	}
	return nil
}

// isUnresolvedParent reports whether an add failed only because the parent
// has not been created yet, which a later pass can fix.
func isUnresolvedParent(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

// postOpeningBalances groups balance lines by (domain, currency) and posts
// one opening entry per group. Opening entries may carry any mix of debit
// and credit lines but every group must net to zero.
func (s *ledgerService) postOpeningBalances(ctx context.Context, reqs []dto.OpeningBalanceRequest, rules domain.LedgerRules) error {
	if len(reqs) == 0 {
		return nil
	}

	type group struct {
		domainID     string
		currencyCode string
		scale        int32
		details      []domain.JournalDetail
		seen         map[string]bool
	}
	groups := map[string]*group{}
	var order []string

	for i := range reqs {
		b := &reqs[i]
		d, err := s.openingDomain(ctx, b.Domain, rules)
		if err != nil {
			return err
		}
		currencyCode := b.Currency
		if currencyCode == "" {
			currencyCode = d.DefaultCurrencyCode
		}
		if currencyCode == "" {
			return fmt.Errorf("%w: opening balance needs a currency and domain %s has no default", apperrors.ErrValidation, d.Code)
		}
		currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
		if err != nil {
			return fmt.Errorf("failed to resolve currency %q: %w", currencyCode, err)
		}

		account, err := s.resolver.Account(ctx, &b.Account)
		if err != nil {
			return err
		}
		if account.Category && !rules.AllowCategoryPosting {
			return fmt.Errorf("%w: can not post an opening balance to category account %s", apperrors.ErrRuleViolation, account.Code)
		}
		if account.IsRoot() {
			return fmt.Errorf("%w: can not post an opening balance to the root account", apperrors.ErrRuleViolation)
		}

		key := d.DomainID + "|" + currency.Code
		g, ok := groups[key]
		if !ok {
			g = &group{domainID: d.DomainID, currencyCode: currency.Code, scale: currency.Decimals, seen: map[string]bool{}}
			groups[key] = g
			order = append(order, key)
		}
		if g.seen[account.AccountID] {
			return fmt.Errorf("%w: account %s has two opening balances in the same domain and currency",
				apperrors.ErrDuplicate, account.Code)
		}
		g.seen[account.AccountID] = true

		detail := b.AsDetail()
		amount, err := detail.SignedAmount(currency.Decimals)
		if err != nil {
			return err
		}
		g.details = append(g.details, domain.JournalDetail{
			DetailID:  uuid.NewString(),
			AccountID: account.AccountID,
			Amount:    amount,
		})
	}

	now := time.Now().UTC()
	for _, key := range order {
		g := groups[key]
		if err := checkEntryShape(g.details, g.scale, true); err != nil {
			return err
		}
		entry := &domain.JournalEntry{
			Date:         rules.OpeningDate,
			DomainID:     g.domainID,
			CurrencyCode: g.currencyCode,
			Description:  "Opening balances",
			Language:     rules.DefaultLanguage,
			Opening:      true,
			Details:      g.details,
		}
		entry.CreatedAt = now
		entry.Touch(now)
		if err := s.journalRepo.SaveEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to save opening entry: %w", err)
		}
		if err := applyDetails(ctx, s.balanceRepo, entry, false, now); err != nil {
			return err
		}
	}
	return nil
}

// openingDomain resolves a balance line's domain, defaulting via the rules.
func (s *ledgerService) openingDomain(ctx context.Context, ref *dto.EntityRef, rules domain.LedgerRules) (*domain.Domain, error) {
	if ref != nil && !ref.IsEmpty() {
		return s.resolver.Domain(ctx, ref)
	}
	if rules.DefaultDomainCode == "" {
		return nil, fmt.Errorf("%w: opening balance needs a domain and the ledger has no default domain", apperrors.ErrValidation)
	}
	d, err := s.domainRepo.FindDomainByCode(ctx, rules.DefaultDomainCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default domain %q: %w", rules.DefaultDomainCode, err)
	}
	return d, nil
}

// templateAccountRequests converts an embedded template into account add
// requests, parents referenced by code.
func templateAccountRequests(t *coatemplates.Template) []dto.AccountRequest {
	reqs := make([]dto.AccountRequest, 0, len(t.Accounts))
	for _, a := range t.Accounts {
		req := dto.AccountRequest{Code: ptr(a.Code)}
		if a.Parent != "" {
			req.Parent = &dto.EntityRef{Code: a.Parent}
		}
		if a.Category {
			req.Category = ptr(true)
		}
		if a.Debit {
			req.Debit = ptr(true)
		}
		if a.Credit {
			req.Credit = ptr(true)
		}
		for lang, name := range a.Names {
			req.Names = append(req.Names, dto.NameRequest{Language: lang, Name: name})
		}
		reqs = append(reqs, req)
	}
	return reqs
}

func ptr[T any](v T) *T { return &v }

// newSalt generates the per-ledger revision salt.
func newSalt() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("%w: failed to generate ledger salt", apperrors.ErrInternal)
	}
	return hex.EncodeToString(raw), nil
}
