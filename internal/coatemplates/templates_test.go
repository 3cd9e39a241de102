package coatemplates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/coatemplates"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"basic", "minimal"}, coatemplates.Names())
}

func TestLoadBasic(t *testing.T) {
	tmpl, err := coatemplates.Load("basic")
	require.NoError(t, err)

	assert.Equal(t, "^[0-9]{4}$", tmpl.CodeFormat)
	assert.Len(t, tmpl.Sections, 5)
	require.NotEmpty(t, tmpl.Accounts)

	byCode := make(map[string]coatemplates.TemplateAccount, len(tmpl.Accounts))
	for _, a := range tmpl.Accounts {
		byCode[a.Code] = a
	}
	assets, ok := byCode["1000"]
	require.True(t, ok)
	assert.True(t, assets.Category)
	assert.True(t, assets.Debit)

	cash, ok := byCode["1100"]
	require.True(t, ok)
	assert.Equal(t, "1000", cash.Parent)
	assert.Equal(t, "Cash", cash.Names["en"])
}

func TestLoadMinimal(t *testing.T) {
	tmpl, err := coatemplates.Load("minimal")
	require.NoError(t, err)

	assert.Empty(t, tmpl.CodeFormat)
	assert.Len(t, tmpl.Accounts, 3)
	for _, a := range tmpl.Accounts {
		assert.Empty(t, a.Parent, "minimal template accounts sit directly under root")
	}
}

func TestLoadUnknownListsAvailable(t *testing.T) {
	_, err := coatemplates.Load("does-not-exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "basic, minimal")
}
