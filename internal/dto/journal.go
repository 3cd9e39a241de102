package dto

import (
	"strconv"
	"time"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	"github.com/openbooks/ledger_engine/internal/utils/money"
	"github.com/shopspring/decimal"
)

// DetailRequest is one posting line of an entry request. A caller supplies
// Amount (signed: debit negative, credit positive) OR exactly one of
// Debit/Credit as a positive magnitude; whichever is supplied is normalized
// to a signed amount at the entry currency's scale. A zero amount is invalid.
type DetailRequest struct {
	Account   EntityRef  `json:"account"`
	Amount    *string    `json:"amount,omitempty"`
	Debit     *string    `json:"debit,omitempty"`
	Credit    *string    `json:"credit,omitempty"`
	Reference *EntityRef `json:"reference,omitempty"`
}

// validate accumulates structural problems with the detail line.
func (d *DetailRequest) validate(v *apperrors.ValidationErrors, field string) {
	d.Account.check(v, field+".account", true)
	if d.Reference != nil {
		d.Reference.check(v, field+".reference", false)
	}

	supplied := 0
	for _, a := range []*string{d.Amount, d.Debit, d.Credit} {
		if a != nil {
			supplied++
		}
	}
	if supplied == 0 {
		v.Add("%s: amount, debit or credit is required", field)
		return
	}
	if supplied > 1 {
		v.Add("%s: amount, debit and credit are mutually exclusive", field)
		return
	}
	if _, err := d.signedAmount(); err != nil {
		v.Append(err)
	}
}

// signedAmount converts whichever of amount/debit/credit was supplied to a
// signed decimal: debit negative, credit positive.
func (d *DetailRequest) signedAmount() (decimal.Decimal, error) {
	switch {
	case d.Amount != nil:
		a, err := money.Parse(*d.Amount)
		if err != nil {
			return decimal.Zero, err
		}
		if a.IsZero() {
			return decimal.Zero, &apperrors.ValidationErrors{Messages: []string{"detail: amount must not be zero"}}
		}
		return a, nil
	case d.Debit != nil:
		a, err := money.Parse(*d.Debit)
		if err != nil {
			return decimal.Zero, err
		}
		if !a.IsPositive() {
			return decimal.Zero, &apperrors.ValidationErrors{Messages: []string{"detail: debit must be positive"}}
		}
		return a.Neg(), nil
	case d.Credit != nil:
		a, err := money.Parse(*d.Credit)
		if err != nil {
			return decimal.Zero, err
		}
		if !a.IsPositive() {
			return decimal.Zero, &apperrors.ValidationErrors{Messages: []string{"detail: credit must be positive"}}
		}
		return a, nil
	}
	return decimal.Zero, &apperrors.ValidationErrors{Messages: []string{"detail: amount, debit or credit is required"}}
}

// SignedAmount returns the normalized signed amount at the given currency
// scale. Callers must have validated the request first.
func (d *DetailRequest) SignedAmount(scale int32) (decimal.Decimal, error) {
	a, err := d.signedAmount()
	if err != nil {
		return decimal.Zero, err
	}
	normalized := money.Normalize(a, scale)
	if normalized.IsZero() {
		return decimal.Zero, &apperrors.ValidationErrors{Messages: []string{
			"detail: amount rounds to zero at currency scale"}}
	}
	return normalized, nil
}

// EntryRequest is the validated message for journal-entry operations.
type EntryRequest struct {
	EntryID         *int64          `json:"entryID,omitempty"` // Identifier for update/delete/get
	Date            *time.Time      `json:"date,omitempty"`
	Domain          *EntityRef      `json:"domain,omitempty"`   // Default domain when unspecified
	Currency        *string         `json:"currency,omitempty"` // Domain default when unspecified
	SubJournal      *EntityRef      `json:"subJournal,omitempty"`
	Reference       *EntityRef      `json:"reference,omitempty"`
	Description     *string         `json:"description,omitempty"`
	DescriptionArgs []string        `json:"descriptionArgs,omitempty"`
	Language        string          `json:"language,omitempty"`
	Reviewed        *bool           `json:"reviewed,omitempty"`
	Locked          *bool           `json:"locked,omitempty"`
	Extra           map[string]any  `json:"extra,omitempty"`
	Details         []DetailRequest `json:"details,omitempty"`
	Revision        string          `json:"revision,omitempty"`
}

// Validate checks the request for the given operation, accumulating all
// problems across the entry and every detail line.
func (r *EntryRequest) Validate(op Operation, opts Options) error {
	v := &apperrors.ValidationErrors{}
	switch op {
	case OpAdd, OpCreate:
		if r.EntryID != nil {
			v.Add("entry: identifier must not be supplied on add")
		}
		if r.Description == nil || *r.Description == "" {
			v.Add("entry: description is required")
		}
		if len(r.Details) == 0 {
			v.Add("entry: at least one detail line is required")
		}
	case OpUpdate:
		if r.EntryID == nil {
			v.Add("entry: identifier is required for update")
		}
		if r.Revision == "" {
			v.Add("entry: revision is required for update")
		}
	case OpDelete:
		if r.EntryID == nil {
			v.Add("entry: identifier is required for delete")
		}
		if r.Revision == "" {
			v.Add("entry: revision is required for delete")
		}
	case OpGet:
		if r.EntryID == nil {
			v.Add("entry: identifier is required")
		}
	}
	if r.Domain != nil {
		r.Domain.check(v, "entry.domain", false)
	}
	if r.SubJournal != nil {
		r.SubJournal.check(v, "entry.subJournal", false)
	}
	if r.Reference != nil {
		r.Reference.check(v, "entry.reference", false)
	}
	if op == OpAdd || op == OpCreate || (op == OpUpdate && r.Details != nil) {
		for i := range r.Details {
			r.Details[i].validate(v, "entry.details["+strconv.Itoa(i)+"]")
		}
	}
	return v.ErrOrNil()
}

// EntryQueryRequest filters and paginates journal entries. Amount bounds are
// absolute values compared at the currency scale.
type EntryQueryRequest struct {
	FromDate        *time.Time `json:"fromDate,omitempty" form:"fromDate"`
	ToDate          *time.Time `json:"toDate,omitempty" form:"toDate"`
	MinAmount       *string    `json:"minAmount,omitempty" form:"minAmount"`
	MaxAmount       *string    `json:"maxAmount,omitempty" form:"maxAmount"`
	DescriptionLike string     `json:"descriptionLike,omitempty" form:"descriptionLike"`
	Domain          *EntityRef `json:"domain,omitempty"`
	Reference       *EntityRef `json:"reference,omitempty"`
	Reviewed        *bool      `json:"reviewed,omitempty" form:"reviewed"`
	Limit           int        `json:"limit,omitempty" form:"limit"`
	NextToken       *string    `json:"nextToken,omitempty" form:"nextToken"`
}

// Validate checks the query and clamps the page size for API calls.
func (q *EntryQueryRequest) Validate(opts Options, maxPageSize int) error {
	v := &apperrors.ValidationErrors{}
	if q.Limit < 0 {
		v.Add("entry query: limit must not be negative")
	}
	if q.FromDate != nil && q.ToDate != nil && q.ToDate.Before(*q.FromDate) {
		v.Add("entry query: toDate is before fromDate")
	}
	for field, bound := range map[string]*string{"minAmount": q.MinAmount, "maxAmount": q.MaxAmount} {
		if bound == nil {
			continue
		}
		a, err := money.Parse(*bound)
		if err != nil {
			v.Append(err)
			continue
		}
		if a.IsNegative() {
			v.Add("entry query: %s must not be negative", field)
		}
	}
	if q.Domain != nil {
		q.Domain.check(v, "entry query.domain", false)
	}
	if q.Reference != nil {
		q.Reference.check(v, "entry query.reference", false)
	}
	if q.Limit == 0 || (opts.IsAPICall && q.Limit > maxPageSize) {
		q.Limit = maxPageSize
	}
	return v.ErrOrNil()
}

// DetailResponse defines the data returned for a posting line.
type DetailResponse struct {
	DetailID    string          `json:"detailID"`
	AccountID   string          `json:"accountID"`
	Amount      decimal.Decimal `json:"amount"`
	Debit       bool            `json:"debit"`
	ReferenceID *string         `json:"referenceID,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID      int64            `json:"entryID"`
	Date         time.Time        `json:"date"`
	DomainID     string           `json:"domainID"`
	CurrencyCode string           `json:"currencyCode"`
	SubJournalID *string          `json:"subJournalID,omitempty"`
	ReferenceID  *string          `json:"referenceID,omitempty"`
	Description  string           `json:"description"`
	Opening      bool             `json:"opening"`
	Reviewed     bool             `json:"reviewed"`
	Locked       bool             `json:"locked"`
	Details      []DetailResponse `json:"details,omitempty"`
	Revision     string           `json:"revision"`
}

// ToEntryResponse converts a domain.JournalEntry to its response shape.
func ToEntryResponse(e *domain.JournalEntry, revisionToken string) EntryResponse {
	details := make([]DetailResponse, len(e.Details))
	for i, d := range e.Details {
		details[i] = DetailResponse{
			DetailID:    d.DetailID,
			AccountID:   d.AccountID,
			Amount:      d.Amount,
			Debit:       d.IsDebit(),
			ReferenceID: d.ReferenceID,
		}
	}
	return EntryResponse{
		EntryID:      e.EntryID,
		Date:         e.Date,
		DomainID:     e.DomainID,
		CurrencyCode: e.CurrencyCode,
		SubJournalID: e.SubJournalID,
		ReferenceID:  e.ReferenceID,
		Description:  e.Description,
		Opening:      e.Opening,
		Reviewed:     e.Reviewed,
		Locked:       e.Locked,
		Details:      details,
		Revision:     revisionToken,
	}
}

// ListEntriesResponse is a page of entries plus the next-page cursor.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}
