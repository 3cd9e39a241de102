package dto

import (
	"strings"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceQueryRequest filters ledger balances by account, domain and/or
// currency. Balances are read-only to clients.
type BalanceQueryRequest struct {
	Account  *EntityRef `json:"account,omitempty"`
	Domain   *EntityRef `json:"domain,omitempty"`
	Currency string     `json:"currency,omitempty" form:"currency"`
}

// Validate checks the query.
func (q *BalanceQueryRequest) Validate(opts Options) error {
	v := &apperrors.ValidationErrors{}
	q.Currency = strings.ToUpper(strings.TrimSpace(q.Currency))
	if q.Account != nil {
		q.Account.check(v, "balance query.account", false)
	}
	if q.Domain != nil {
		q.Domain.check(v, "balance query.domain", false)
	}
	return v.ErrOrNil()
}

// BalanceResponse defines the data returned for a running balance row.
type BalanceResponse struct {
	AccountID    string          `json:"accountID"`
	DomainID     string          `json:"domainID"`
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
}

// ToBalanceResponse converts a domain.LedgerBalance to its response shape.
func ToBalanceResponse(b *domain.LedgerBalance) BalanceResponse {
	return BalanceResponse{
		AccountID:    b.AccountID,
		DomainID:     b.DomainID,
		CurrencyCode: b.CurrencyCode,
		Amount:       b.Amount,
	}
}

// ToBalanceResponses converts a slice of balances.
func ToBalanceResponses(balances []domain.LedgerBalance) []BalanceResponse {
	responses := make([]BalanceResponse, len(balances))
	for i := range balances {
		responses[i] = ToBalanceResponse(&balances[i])
	}
	return responses
}
