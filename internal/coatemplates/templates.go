package coatemplates

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
)

//go:embed templates/*.json
var templateFS embed.FS

// TemplateAccount is one chart-of-accounts line. Parent refers to another
// template account by code; empty means a direct child of the root.
type TemplateAccount struct {
	Code     string            `json:"code"`
	Parent   string            `json:"parent,omitempty"`
	Category bool              `json:"category,omitempty"`
	Debit    bool              `json:"debit,omitempty"`
	Credit   bool              `json:"credit,omitempty"`
	Names    map[string]string `json:"names"`
}

// Template is a named, embedded chart-of-accounts definition applied at
// ledger bootstrap.
type Template struct {
	CodeFormat string            `json:"codeFormat,omitempty"`
	Sections   []domain.Section  `json:"sections,omitempty"`
	Accounts   []TemplateAccount `json:"accounts"`
}

// Names lists the available template names, sorted.
func Names() []string {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// Load reads a template by name.
func Load(name string) (*Template, error) {
	raw, err := templateFS.ReadFile("templates/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: chart-of-accounts template %q (available: %s)",
			apperrors.ErrNotFound, name, strings.Join(Names(), ", "))
	}
	var t Template
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: template %q is malformed", apperrors.ErrInternal, name)
	}
	return &t, nil
}
