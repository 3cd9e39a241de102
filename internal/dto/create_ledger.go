package dto

import (
	"strconv"
	"strings"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
)

// OpeningBalanceRequest seeds one account balance at ledger bootstrap.
// Opening balances are grouped by (domain, currency) and every group must
// net to exactly zero.
type OpeningBalanceRequest struct {
	Account  EntityRef  `json:"account"`
	Domain   *EntityRef `json:"domain,omitempty"`   // Default domain when unspecified
	Currency string     `json:"currency,omitempty"` // Domain default when unspecified
	Amount   *string    `json:"amount,omitempty"`
	Debit    *string    `json:"debit,omitempty"`
	Credit   *string    `json:"credit,omitempty"`
}

// AsDetail reuses the detail-line amount normalization.
func (b *OpeningBalanceRequest) AsDetail() DetailRequest {
	return DetailRequest{
		Account: b.Account,
		Amount:  b.Amount,
		Debit:   b.Debit,
		Credit:  b.Credit,
	}
}

// CreateLedgerRequest is the one-time bootstrap message: rules, currencies,
// domains, sub-journals, chart of accounts (template and/or inline) and
// opening balances.
type CreateLedgerRequest struct {
	Rules       *domain.LedgerRulesPatch `json:"rules,omitempty"`
	Template    string                   `json:"template,omitempty"` // Chart-of-accounts template name
	Currencies  []CurrencyRequest        `json:"currencies,omitempty"`
	Domains     []DomainRequest          `json:"domains,omitempty"`
	SubJournals []SubJournalRequest      `json:"subJournals,omitempty"`
	Accounts    []AccountRequest         `json:"accounts,omitempty"`
	Balances    []OpeningBalanceRequest  `json:"balances,omitempty"`
}

// Validate checks the whole bootstrap request, accumulating problems across
// every sub-object so the caller gets one complete correction list.
func (r *CreateLedgerRequest) Validate(opts Options) error {
	v := &apperrors.ValidationErrors{}
	if len(r.Currencies) == 0 {
		v.Add("create: at least one currency is required")
	}
	for i := range r.Currencies {
		v.Append(r.Currencies[i].Validate(OpCreate, opts))
	}
	for i := range r.Domains {
		v.Append(r.Domains[i].Validate(OpCreate, opts))
	}
	for i := range r.SubJournals {
		v.Append(r.SubJournals[i].Validate(OpCreate, opts))
	}
	for i := range r.Accounts {
		v.Append(r.Accounts[i].Validate(OpCreate, opts))
	}
	for i := range r.Balances {
		b := &r.Balances[i]
		b.Currency = strings.ToUpper(strings.TrimSpace(b.Currency))
		detail := b.AsDetail()
		detail.validate(v, "create.balances["+strconv.Itoa(i)+"]")
		if b.Domain != nil {
			b.Domain.check(v, "create.balances["+strconv.Itoa(i)+"].domain", false)
		}
	}
	return v.ErrOrNil()
}
