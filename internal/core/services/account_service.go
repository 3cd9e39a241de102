package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/middleware"
)

var (
	ErrBothFlagsSet       = errors.New("account can not have both debit and credit flags set")
	ErrNoInheritableFlag  = errors.New("account has neither debit nor credit and no ancestor to inherit from")
	ErrParentCycle        = errors.New("account parent chain would form a cycle")
	ErrSubtreeHasBalances = errors.New("can't delete: account or sub-accounts have transactions")
)

// accountService owns the account hierarchy and its structural rules.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	nameRepo    portsrepo.NameRepositoryFacade
	balanceRepo portsrepo.BalanceRepositoryFacade
	resolver    *Resolver
	txManager   portsrepo.TxManager
}

// NewAccountService creates the account graph manager.
func NewAccountService(
	accountRepo portsrepo.AccountRepositoryFacade,
	nameRepo portsrepo.NameRepositoryFacade,
	balanceRepo portsrepo.BalanceRepositoryFacade,
	resolver *Resolver,
	txManager portsrepo.TxManager,
	rulesSvc portssvc.RulesSvcFacade,
) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: BaseService{rulesSvc: rulesSvc},
		accountRepo: accountRepo,
		nameRepo:    nameRepo,
		balanceRepo: balanceRepo,
		resolver:    resolver,
		txManager:   txManager,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// ParentPath walks parent pointers from start to root, collecting ancestors.
// Encountering lookingFor anywhere on the chain (start included) fails with a
// rule violation; a chain that breaks before root is an integrity error.
func (s *accountService) ParentPath(ctx context.Context, start *domain.Account, lookingFor string) ([]domain.Account, error) {
	if lookingFor != "" && start.AccountID == lookingFor {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrRuleViolation, ErrParentCycle)
	}

	var path []domain.Account
	visited := map[string]bool{start.AccountID: true}
	current := start
	for current.ParentID != nil {
		parent, err := s.accountRepo.FindAccountByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent chain of account %s is broken at %s",
					apperrors.ErrInternal, start.AccountID, *current.ParentID)
			}
			return nil, err
		}
		if lookingFor != "" && parent.AccountID == lookingFor {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrParentCycle)
		}
		if visited[parent.AccountID] {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrParentCycle)
		}
		visited[parent.AccountID] = true
		path = append(path, *parent)
		current = parent
	}
	if !current.IsRoot() {
		return nil, fmt.Errorf("%w: parent chain of account %s does not reach root", apperrors.ErrInternal, start.AccountID)
	}
	return path, nil
}

// inheritFlag finds the nearest ancestor (starting at parent) with a
// debit/credit flag set.
func inheritFlag(parent *domain.Account, path []domain.Account) (debit, credit, found bool) {
	chain := append([]domain.Account{*parent}, path...)
	for _, ancestor := range chain {
		if ancestor.Debit || ancestor.Credit {
			return ancestor.Debit, ancestor.Credit, true
		}
	}
	return false, false, false
}

// AddAccount validates and persists a new account with its names.
func (s *accountService) AddAccount(ctx context.Context, req dto.AccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpAdd, dto.Options{}); err != nil {
		return nil, err
	}

	rules, err := s.rulesSvc.Rules(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkCodeFormat(rules, *req.Code); err != nil {
		return nil, err
	}
	if err := s.checkCodeFree(ctx, *req.Code); err != nil {
		return nil, err
	}

	parent, err := s.resolveParent(ctx, req.Parent)
	if err != nil {
		return nil, err
	}
	path, err := s.ParentPath(ctx, parent, "")
	if err != nil {
		return nil, err
	}

	account := domain.Account{
		AccountID: uuid.NewString(),
		Code:      *req.Code,
		ParentID:  &parent.AccountID,
		Category:  req.Category != nil && *req.Category,
		Closed:    req.Closed != nil && *req.Closed,
		Extra:     req.Extra,
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.Touch(now)

	if err := s.applyFlags(&account, req.Debit, req.Credit, parent, path); err != nil {
		return nil, err
	}
	if account.Category && !parent.IsRoot() && !parent.Category {
		return nil, fmt.Errorf("%w: a category account's parent must be root or a category", apperrors.ErrRuleViolation)
	}

	account.Names = dto.ToDomainNames(req.Names, account.AccountID)

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		return s.nameRepo.ReplaceNames(ctx, account.AccountID, account.Names)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

// applyFlags resolves the debit/credit flags for a non-category account,
// inheriting from the nearest flagged ancestor when neither is supplied.
// A non-category account ending up with no flag is a hard failure.
func (s *accountService) applyFlags(account *domain.Account, debit, credit *bool, parent *domain.Account, path []domain.Account) error {
	switch {
	case debit != nil && credit != nil:
		if *debit && *credit {
			return fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrBothFlagsSet)
		}
		account.Debit = *debit
		account.Credit = *credit
	case debit != nil:
		account.Debit = *debit
	case credit != nil:
		account.Credit = *credit
	default:
		d, c, found := inheritFlag(parent, path)
		if found {
			account.Debit = d
			account.Credit = c
		}
	}
	if !account.Category && !account.Debit && !account.Credit {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidOperation, ErrNoInheritableFlag)
	}
	if account.Debit && account.Credit {
		return fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrBothFlagsSet)
	}
	return nil
}

// GetAccount resolves and returns one account with its names.
func (s *accountService) GetAccount(ctx context.Context, req dto.AccountRequest) (*domain.Account, error) {
	if err := req.Validate(dto.OpGet, dto.Options{}); err != nil {
		return nil, err
	}
	account, err := s.resolver.Account(ctx, &req.Ref)
	if err != nil {
		return nil, err
	}
	names, err := s.nameRepo.FindNamesByOwner(ctx, account.AccountID)
	if err != nil {
		return nil, err
	}
	account.Names = names
	return account, nil
}

// UpdateAccount applies a revision-checked partial update, guarding every
// structural transition of the account graph.
func (s *accountService) UpdateAccount(ctx context.Context, req dto.AccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpUpdate, dto.Options{}); err != nil {
		return nil, err
	}

	account, err := s.resolver.Account(ctx, &req.Ref)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevision(ctx, req.Revision, account.AuditFields); err != nil {
		return nil, err
	}

	// Closing accounts is an explicitly stubbed business rule.
	if req.Closed != nil && *req.Closed != account.Closed {
		return nil, fmt.Errorf("%w: account closing", apperrors.ErrNotImplemented)
	}

	rules, err := s.rulesSvc.Rules(ctx)
	if err != nil {
		return nil, err
	}
	if req.Code != nil && *req.Code != account.Code {
		if account.IsRoot() {
			return nil, fmt.Errorf("%w: the root account's code can not change", apperrors.ErrRuleViolation)
		}
		if err := s.checkCodeFormat(rules, *req.Code); err != nil {
			return nil, err
		}
		if err := s.checkCodeFree(ctx, *req.Code); err != nil {
			return nil, err
		}
		account.Code = *req.Code
	}

	parent, path, err := s.reparent(ctx, account, req.Parent)
	if err != nil {
		return nil, err
	}

	hasBalances, err := s.subtreeHasBalances(ctx, []string{account.AccountID})
	if err != nil {
		return nil, err
	}

	if req.Category != nil && *req.Category != account.Category {
		if *req.Category {
			if hasBalances {
				return nil, fmt.Errorf("%w: an account with posted balances can not become a category", apperrors.ErrRuleViolation)
			}
			if !parent.IsRoot() && !parent.Category {
				return nil, fmt.Errorf("%w: a category account's parent must be root or a category", apperrors.ErrRuleViolation)
			}
		} else {
			children, err := s.accountRepo.FindChildren(ctx, account.AccountID)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				if child.Category {
					return nil, fmt.Errorf("%w: account %s still has category children", apperrors.ErrRuleViolation, account.Code)
				}
			}
		}
		account.Category = *req.Category
	}

	if req.Debit != nil || req.Credit != nil {
		prevDebit, prevCredit := account.Debit, account.Credit
		if err := s.toggleFlags(account, req.Debit, req.Credit); err != nil {
			return nil, err
		}
		if hasBalances && (account.Debit != prevDebit || account.Credit != prevCredit) {
			return nil, fmt.Errorf("%w: an account with posted balances can not change debit/credit polarity", apperrors.ErrRuleViolation)
		}
	}
	if !account.Category && !account.Debit && !account.Credit {
		d, c, found := inheritFlag(parent, path)
		if !found {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidOperation, ErrNoInheritableFlag)
		}
		account.Debit, account.Credit = d, c
	}

	if len(req.Names) > 0 {
		existing, err := s.nameRepo.FindNamesByOwner(ctx, account.AccountID)
		if err != nil {
			return nil, err
		}
		merged, err := mergeNames(existing, req.Names, account.AccountID)
		if err != nil {
			return nil, err
		}
		account.Names = merged
	}
	if req.Extra != nil {
		account.Extra = req.Extra
	}

	account.Touch(time.Now().UTC())
	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		if len(req.Names) > 0 {
			return s.nameRepo.ReplaceNames(ctx, account.AccountID, account.Names)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Account updated", slog.String("account_id", account.AccountID))
	return account, nil
}

// toggleFlags re-derives the complementary flag automatically unless both
// flags are given explicitly; an explicit double-set is a conflict.
func (s *accountService) toggleFlags(account *domain.Account, debit, credit *bool) error {
	if debit != nil && credit != nil {
		if *debit && *credit {
			return fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrBothFlagsSet)
		}
		account.Debit = *debit
		account.Credit = *credit
		return nil
	}
	if debit != nil {
		account.Debit = *debit
		if *debit {
			account.Credit = false
		}
	}
	if credit != nil {
		account.Credit = *credit
		if *credit {
			account.Debit = false
		}
	}
	return nil
}

// reparent resolves the (possibly new) parent and re-walks the chain so a
// parent change can neither orphan the account nor create a cycle.
func (s *accountService) reparent(ctx context.Context, account *domain.Account, parentRef *dto.EntityRef) (*domain.Account, []domain.Account, error) {
	if account.IsRoot() {
		if parentRef != nil && !parentRef.IsEmpty() {
			return nil, nil, fmt.Errorf("%w: the root account can not have a parent", apperrors.ErrRuleViolation)
		}
		return account, nil, nil
	}

	var parent *domain.Account
	var err error
	if parentRef != nil && !parentRef.IsEmpty() {
		parent, err = s.resolver.Account(ctx, parentRef)
		if err != nil {
			return nil, nil, err
		}
		account.ParentID = &parent.AccountID
	} else {
		parent, err = s.accountRepo.FindAccountByID(ctx, *account.ParentID)
		if err != nil {
			return nil, nil, err
		}
	}
	path, err := s.ParentPath(ctx, parent, account.AccountID)
	if err != nil {
		return nil, nil, err
	}
	return parent, path, nil
}

// DeleteAccount removes the account and its whole descendant subtree after
// verifying no balance rows exist anywhere in it.
func (s *accountService) DeleteAccount(ctx context.Context, req dto.AccountRequest) ([]string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpDelete, dto.Options{}); err != nil {
		return nil, err
	}

	account, err := s.resolver.Account(ctx, &req.Ref)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevision(ctx, req.Revision, account.AuditFields); err != nil {
		return nil, err
	}
	if account.IsRoot() {
		return nil, fmt.Errorf("%w: the root account can not be deleted", apperrors.ErrInvalidOperation)
	}

	subtree, err := s.collectSubtree(ctx, account)
	if err != nil {
		return nil, err
	}
	hasBalances, err := s.subtreeHasBalances(ctx, subtree)
	if err != nil {
		return nil, err
	}
	if hasBalances {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrSubtreeHasBalances)
	}

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.balanceRepo.DeleteBalancesForAccounts(ctx, subtree); err != nil {
			return err
		}
		if err := s.nameRepo.DeleteNamesByOwners(ctx, subtree); err != nil {
			return err
		}
		return s.accountRepo.DeleteAccounts(ctx, subtree)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Account subtree deleted", slog.String("account_id", account.AccountID), slog.Int("removed", len(subtree)))
	return subtree, nil
}

// collectSubtree gathers the account and all descendants, breadth-first.
func (s *accountService) collectSubtree(ctx context.Context, account *domain.Account) ([]string, error) {
	ids := []string{account.AccountID}
	queue := []string{account.AccountID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		children, err := s.accountRepo.FindChildren(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			ids = append(ids, child.AccountID)
			queue = append(queue, child.AccountID)
		}
	}
	return ids, nil
}

func (s *accountService) subtreeHasBalances(ctx context.Context, accountIDs []string) (bool, error) {
	count, err := s.balanceRepo.CountBalancesForAccounts(ctx, accountIDs)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// QueryAccounts returns a filtered, cursor-paginated account page.
func (s *accountService) QueryAccounts(ctx context.Context, q dto.AccountQueryRequest, opts dto.Options) (*dto.ListAccountsResponse, error) {
	rules, err := s.rulesSvc.Rules(ctx)
	if err != nil {
		return nil, err
	}
	if err := q.Validate(opts, rules.PageSize); err != nil {
		return nil, err
	}

	var parentID *string
	if q.Parent != nil && !q.Parent.IsEmpty() {
		parent, err := s.resolver.Account(ctx, q.Parent)
		if err != nil {
			return nil, err
		}
		parentID = &parent.AccountID
	}

	accounts, nextToken, err := s.accountRepo.ListAccounts(ctx, q.CodePrefix, q.NameLike, parentID, q.Limit, q.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	salt := s.rulesSvc.Salt(ctx)
	responses := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToAccountResponse(&accounts[i], accountRevision(&accounts[i], salt))
	}
	return &dto.ListAccountsResponse{Accounts: responses, NextToken: nextToken}, nil
}

func (s *accountService) resolveParent(ctx context.Context, ref *dto.EntityRef) (*domain.Account, error) {
	if ref == nil || ref.IsEmpty() {
		root, err := s.accountRepo.FindRootAccount(ctx)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: the ledger has not been created yet", apperrors.ErrInvalidOperation)
			}
			return nil, err
		}
		return root, nil
	}
	return s.resolver.Account(ctx, ref)
}

func (s *accountService) checkCodeFormat(rules domain.LedgerRules, code string) error {
	if rules.AccountCodeFormat == "" {
		return nil
	}
	re, err := regexp.Compile(rules.AccountCodeFormat)
	if err != nil {
		return fmt.Errorf("%w: invalid account code format rule", apperrors.ErrInternal)
	}
	if !re.MatchString(code) {
		return fmt.Errorf("%w: account code %q does not match the required format", apperrors.ErrValidation, code)
	}
	return nil
}

func (s *accountService) checkCodeFree(ctx context.Context, code string) error {
	existing, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return fmt.Errorf("%w: account code %q is already in use by account %s", apperrors.ErrDuplicate, code, existing.AccountID)
}
