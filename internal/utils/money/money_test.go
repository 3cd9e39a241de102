package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/utils/money"
)

func TestParse(t *testing.T) {
	a, err := money.Parse("123.456")
	require.NoError(t, err)
	assert.Equal(t, "123.456", a.String())

	_, err = money.Parse("not-a-number")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNormalizeRoundsToScale(t *testing.T) {
	a := decimal.RequireFromString("10.005")
	assert.Equal(t, "10.01", money.Format(money.Normalize(a, 2), 2))
	assert.Equal(t, "10.005", money.Format(money.Normalize(a, 3), 3))
	assert.Equal(t, "10", money.Normalize(a, 0).String())
}

func TestArithmeticAtScale(t *testing.T) {
	a := decimal.RequireFromString("0.105")
	b := decimal.RequireFromString("0.105")

	assert.Equal(t, "0.21", money.Format(money.Add(a, b, 2), 2))
	assert.Equal(t, "0.00", money.Format(money.Sub(a, b, 2), 2))
	assert.True(t, money.IsZero(money.Sub(a, b, 2), 2))

	three := decimal.NewFromInt(3)
	assert.Equal(t, "0.32", money.Format(money.Mul(a, three, 2), 2))
}

func TestCmpComparesAtScale(t *testing.T) {
	a := decimal.RequireFromString("1.001")
	b := decimal.RequireFromString("1.002")

	// Indistinguishable at two decimals, distinct at three.
	assert.Equal(t, 0, money.Cmp(a, b, 2))
	assert.Equal(t, -1, money.Cmp(a, b, 3))
	assert.Equal(t, 1, money.Cmp(b, a, 3))
}

func TestFormatPadsTrailingZeros(t *testing.T) {
	a := decimal.NewFromInt(5)
	assert.Equal(t, "5.00", money.Format(a, 2))
	assert.Equal(t, "5", money.Format(a, 0))

	neg := decimal.RequireFromString("-0.1")
	assert.Equal(t, "-0.10", money.Format(neg, 2))
}
