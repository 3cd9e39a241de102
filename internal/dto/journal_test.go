package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/dto"
)

func strPtr(s string) *string { return &s }

func TestDetailRequestSignedAmount(t *testing.T) {
	debit := dto.DetailRequest{Debit: strPtr("12.5")}
	a, err := debit.SignedAmount(2)
	require.NoError(t, err)
	assert.Equal(t, "-12.50", a.StringFixed(2), "debits are negative")

	credit := dto.DetailRequest{Credit: strPtr("12.5")}
	a, err = credit.SignedAmount(2)
	require.NoError(t, err)
	assert.Equal(t, "12.50", a.StringFixed(2), "credits are positive")

	signed := dto.DetailRequest{Amount: strPtr("-7.125")}
	a, err = signed.SignedAmount(2)
	require.NoError(t, err)
	assert.Equal(t, "-7.13", a.StringFixed(2), "signed amounts are rounded to scale")
}

func TestDetailRequestSignedAmountRejections(t *testing.T) {
	_, err := (&dto.DetailRequest{Debit: strPtr("-5")}).SignedAmount(2)
	assert.Error(t, err, "negative debit magnitude")

	_, err = (&dto.DetailRequest{Credit: strPtr("0")}).SignedAmount(2)
	assert.Error(t, err, "zero credit magnitude")

	_, err = (&dto.DetailRequest{Amount: strPtr("abc")}).SignedAmount(2)
	assert.Error(t, err, "unparseable amount")

	// Nonzero as given, but zero once rounded to the currency scale.
	_, err = (&dto.DetailRequest{Amount: strPtr("0.001")}).SignedAmount(2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rounds to zero")
}

func TestEntryRequestValidateAccumulatesProblems(t *testing.T) {
	req := dto.EntryRequest{
		Details: []dto.DetailRequest{
			{},                             // no account, no amount
			{Account: dto.EntityRef{Code: "1100"}, Debit: strPtr("5"), Credit: strPtr("5")}, // both supplied
		},
	}

	err := req.Validate(dto.OpAdd, dto.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	var verr *apperrors.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages, "entry: description is required")
	assert.Contains(t, verr.Messages, "entry.details[0].account: code or uuid is required")
	assert.Contains(t, verr.Messages, "entry.details[0]: amount, debit or credit is required")
	assert.Contains(t, verr.Messages, "entry.details[1]: amount, debit and credit are mutually exclusive")
}

func TestEntryRequestValidateUpdateNeedsIDAndRevision(t *testing.T) {
	err := (&dto.EntryRequest{}).Validate(dto.OpUpdate, dto.Options{})
	require.Error(t, err)

	var verr *apperrors.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages, "entry: identifier is required for update")
	assert.Contains(t, verr.Messages, "entry: revision is required for update")
}

func TestEntryRequestValidateRejectsBadUUIDRef(t *testing.T) {
	id := int64(1)
	req := dto.EntryRequest{
		EntryID:  &id,
		Domain:   &dto.EntityRef{UUID: "not-a-uuid"},
		Revision: "token",
	}

	err := req.Validate(dto.OpUpdate, dto.Options{})
	require.Error(t, err)

	var verr *apperrors.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages, `entry.domain: invalid uuid "not-a-uuid"`)
}

func TestEntryQueryRequestClampsLimit(t *testing.T) {
	q := dto.EntryQueryRequest{}
	require.NoError(t, q.Validate(dto.Options{IsAPICall: true}, 50))
	assert.Equal(t, 50, q.Limit, "zero limit falls back to the page size")

	q = dto.EntryQueryRequest{Limit: 9999}
	require.NoError(t, q.Validate(dto.Options{IsAPICall: true}, 50))
	assert.Equal(t, 50, q.Limit, "API calls are capped at the page size")

	q = dto.EntryQueryRequest{Limit: 9999}
	require.NoError(t, q.Validate(dto.Options{}, 50))
	assert.Equal(t, 9999, q.Limit, "internal callers may exceed the page size")

	q = dto.EntryQueryRequest{Limit: -1}
	assert.Error(t, q.Validate(dto.Options{}, 50))
}

func TestEntryQueryRequestAmountBounds(t *testing.T) {
	q := dto.EntryQueryRequest{MinAmount: strPtr("-1")}
	err := q.Validate(dto.Options{}, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")

	q = dto.EntryQueryRequest{MaxAmount: strPtr("oops")}
	assert.Error(t, q.Validate(dto.Options{}, 50))
}
