package dto

import (
	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
)

// AccountRequest is the validated message for account operations.
//
// Add requires a code and at least one name and forbids a caller-supplied
// identifier; Update/Delete/Get require an identifier (code or uuid), and
// Update/Delete a revision token. Omitted fields are left unchanged on update.
type AccountRequest struct {
	Ref      EntityRef      `json:"ref,omitempty"` // Identifier for update/delete/get
	Code     *string        `json:"code,omitempty"`
	Parent   *EntityRef     `json:"parent,omitempty"` // Root when unspecified on add
	Category *bool          `json:"category,omitempty"`
	Debit    *bool          `json:"debit,omitempty"`
	Credit   *bool          `json:"credit,omitempty"`
	Closed   *bool          `json:"closed,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
	Names    []NameRequest  `json:"names,omitempty"`
	Revision string         `json:"revision,omitempty"`
}

// Validate checks the request for the given operation, accumulating all
// problems before reporting.
func (r *AccountRequest) Validate(op Operation, opts Options) error {
	v := &apperrors.ValidationErrors{}
	switch op {
	case OpAdd, OpCreate:
		if !r.Ref.IsEmpty() {
			v.Add("account: identifier must not be supplied on add")
		}
		if r.Code == nil || *r.Code == "" {
			v.Add("account: code is required")
		}
		validateNames(v, r.Names, op, "account.names")
	case OpUpdate:
		r.Ref.check(v, "account", true)
		if r.Revision == "" {
			v.Add("account: revision is required for update")
		}
		validateNames(v, r.Names, op, "account.names")
	case OpDelete:
		r.Ref.check(v, "account", true)
		if r.Revision == "" {
			v.Add("account: revision is required for delete")
		}
	case OpGet:
		r.Ref.check(v, "account", true)
	}
	if r.Parent != nil {
		r.Parent.check(v, "account.parent", false)
	}
	if r.Debit != nil && r.Credit != nil && *r.Debit && *r.Credit {
		v.Add("account: can not have both debit and credit flags set")
	}
	return v.ErrOrNil()
}

// AccountQueryRequest filters and paginates accounts.
type AccountQueryRequest struct {
	CodePrefix string     `json:"codePrefix,omitempty" form:"codePrefix"`
	NameLike   string     `json:"nameLike,omitempty" form:"nameLike"`
	Parent     *EntityRef `json:"parent,omitempty"`
	Limit      int        `json:"limit,omitempty" form:"limit"`
	NextToken  *string    `json:"nextToken,omitempty" form:"nextToken"`
}

// Validate checks the query and clamps the page size for API calls.
func (q *AccountQueryRequest) Validate(opts Options, maxPageSize int) error {
	v := &apperrors.ValidationErrors{}
	if q.Limit < 0 {
		v.Add("account query: limit must not be negative")
	}
	if q.Parent != nil {
		q.Parent.check(v, "account query.parent", false)
	}
	if q.Limit == 0 || (opts.IsAPICall && q.Limit > maxPageSize) {
		q.Limit = maxPageSize
	}
	return v.ErrOrNil()
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID string              `json:"accountID"`
	Code      string              `json:"code"`
	ParentID  *string             `json:"parentID,omitempty"`
	Category  bool                `json:"category"`
	Debit     bool                `json:"debit"`
	Credit    bool                `json:"credit"`
	Closed    bool                `json:"closed"`
	Extra     map[string]any      `json:"extra,omitempty"`
	Names     []domain.LedgerName `json:"names,omitempty"`
	Revision  string              `json:"revision"`
}

// ToAccountResponse converts a domain.Account to its response shape.
// The revision token is computed by the service and passed in.
func ToAccountResponse(a *domain.Account, revisionToken string) AccountResponse {
	return AccountResponse{
		AccountID: a.AccountID,
		Code:      a.Code,
		ParentID:  a.ParentID,
		Category:  a.Category,
		Debit:     a.Debit,
		Credit:    a.Credit,
		Closed:    a.Closed,
		Extra:     a.Extra,
		Names:     a.Names,
		Revision:  revisionToken,
	}
}

// ListAccountsResponse is a page of accounts plus the next-page cursor.
type ListAccountsResponse struct {
	Accounts  []AccountResponse `json:"accounts"`
	NextToken *string           `json:"nextToken,omitempty"`
}
