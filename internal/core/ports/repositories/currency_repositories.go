package repositories

import (
	"context"

	"github.com/openbooks/ledger_engine/internal/core/domain"
)

// CurrencyRepositoryFacade provides persistence for currencies.
type CurrencyRepositoryFacade interface {
	SaveCurrency(ctx context.Context, currency domain.Currency) error
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
	UpdateCurrency(ctx context.Context, currency domain.Currency) error
	DeleteCurrency(ctx context.Context, code string) error
	// RenameCurrency updates the code on the currency row and cascades to
	// entries, balances and domain defaults.
	RenameCurrency(ctx context.Context, fromCode, toCode string) error
	CountEntriesUsingCurrency(ctx context.Context, code string) (int64, error)
}
