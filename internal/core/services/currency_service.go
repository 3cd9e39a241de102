package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/middleware"
)

var (
	ErrCurrencyInUse     = errors.New("currency is referenced by journal entries")
	ErrScaleDecreaseUsed = errors.New("can not decrease the scale of a currency with posted entries")
)

// currencyService manages currencies, including code renames that cascade
// through entries, balances and domain defaults.
type currencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
	domainRepo   portsrepo.DomainRepositoryFacade
	txManager    portsrepo.TxManager
}

// NewCurrencyService creates the currency manager.
func NewCurrencyService(
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	domainRepo portsrepo.DomainRepositoryFacade,
	txManager portsrepo.TxManager,
	rulesSvc portssvc.RulesSvcFacade,
) portssvc.CurrencySvcFacade {
	return &currencyService{
		BaseService:  BaseService{rulesSvc: rulesSvc},
		currencyRepo: currencyRepo,
		domainRepo:   domainRepo,
		txManager:    txManager,
	}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

// AddCurrency validates and persists a new currency.
func (s *currencyService) AddCurrency(ctx context.Context, req dto.CurrencyRequest) (*domain.Currency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpAdd, dto.Options{}); err != nil {
		return nil, err
	}
	if err := s.checkCodeFree(ctx, req.Code); err != nil {
		return nil, err
	}

	currency := domain.Currency{
		Code:     req.Code,
		Decimals: *req.Decimals,
	}
	now := time.Now().UTC()
	currency.CreatedAt = now
	currency.Touch(now)

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		return nil, fmt.Errorf("failed to save currency: %w", err)
	}
	logger.Info("Currency created", slog.String("code", currency.Code), slog.Int("decimals", int(currency.Decimals)))
	return &currency, nil
}

// GetCurrency returns one currency by code.
func (s *currencyService) GetCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	req := dto.CurrencyRequest{Code: code}
	if err := req.Validate(dto.OpGet, dto.Options{}); err != nil {
		return nil, err
	}
	return s.currencyRepo.FindCurrencyByCode(ctx, req.Code)
}

// ListCurrencies returns every currency.
func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	return s.currencyRepo.ListCurrencies(ctx)
}

// UpdateCurrency applies a revision-checked update. A scale decrease is
// rejected while any entry uses the currency; a code rename cascades to
// entries, balances and domain defaults in one transaction.
func (s *currencyService) UpdateCurrency(ctx context.Context, req dto.CurrencyRequest) (*domain.Currency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpUpdate, dto.Options{}); err != nil {
		return nil, err
	}

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevision(ctx, req.Revision, currency.AuditFields); err != nil {
		return nil, err
	}

	if req.Decimals != nil && *req.Decimals != currency.Decimals {
		if *req.Decimals < currency.Decimals {
			used, err := s.currencyRepo.CountEntriesUsingCurrency(ctx, currency.Code)
			if err != nil {
				return nil, err
			}
			if used > 0 {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrScaleDecreaseUsed)
			}
		}
		currency.Decimals = *req.Decimals
	}

	rename := req.ToCode != "" && req.ToCode != currency.Code
	if rename {
		if err := s.checkCodeFree(ctx, req.ToCode); err != nil {
			return nil, err
		}
	}

	currency.Touch(time.Now().UTC())
	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.currencyRepo.UpdateCurrency(ctx, *currency); err != nil {
			return fmt.Errorf("failed to update currency: %w", err)
		}
		if rename {
			if err := s.currencyRepo.RenameCurrency(ctx, currency.Code, req.ToCode); err != nil {
				return fmt.Errorf("failed to rename currency: %w", err)
			}
			currency.Code = req.ToCode
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Currency updated", slog.String("code", currency.Code), slog.Bool("renamed", rename))
	return currency, nil
}

// DeleteCurrency removes a currency that no entry and no domain default uses.
func (s *currencyService) DeleteCurrency(ctx context.Context, req dto.CurrencyRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := req.Validate(dto.OpDelete, dto.Options{}); err != nil {
		return err
	}

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, req.Code)
	if err != nil {
		return err
	}
	if err := s.checkRevision(ctx, req.Revision, currency.AuditFields); err != nil {
		return err
	}

	used, err := s.currencyRepo.CountEntriesUsingCurrency(ctx, currency.Code)
	if err != nil {
		return err
	}
	if used > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrRuleViolation, ErrCurrencyInUse)
	}

	domains, err := s.domainRepo.ListDomains(ctx)
	if err != nil {
		return err
	}
	for _, d := range domains {
		if d.DefaultCurrencyCode == currency.Code {
			return fmt.Errorf("%w: currency %s is the default of domain %s", apperrors.ErrRuleViolation, currency.Code, d.Code)
		}
	}

	if err := s.currencyRepo.DeleteCurrency(ctx, currency.Code); err != nil {
		return fmt.Errorf("failed to delete currency: %w", err)
	}
	logger.Info("Currency deleted", slog.String("code", currency.Code))
	return nil
}

func (s *currencyService) checkCodeFree(ctx context.Context, code string) error {
	_, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return fmt.Errorf("%w: currency %q already exists", apperrors.ErrDuplicate, code)
}
