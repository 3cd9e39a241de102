package dto

import (
	"github.com/google/uuid"
	"github.com/openbooks/ledger_engine/internal/apperrors"
)

// EntityRef is a {code, uuid} pair used to look up any top-level entity.
// When both are present the UUID wins and the code must match the resolved
// entity, otherwise the lookup fails with a bad-reference error.
type EntityRef struct {
	Code string `json:"code,omitempty"`
	UUID string `json:"uuid,omitempty"`
}

// IsEmpty reports whether neither code nor uuid is set.
func (r *EntityRef) IsEmpty() bool {
	return r == nil || (r.Code == "" && r.UUID == "")
}

// SetUUID caches a resolved UUID back onto the reference so callers avoid
// re-resolving.
func (r *EntityRef) SetUUID(id string) {
	r.UUID = id
}

// check accumulates structural problems with the reference.
func (r *EntityRef) check(v *apperrors.ValidationErrors, field string, required bool) {
	if r.IsEmpty() {
		if required {
			v.Add("%s: code or uuid is required", field)
		}
		return
	}
	if r.UUID != "" {
		if _, err := uuid.Parse(r.UUID); err != nil {
			v.Add("%s: invalid uuid %q", field, r.UUID)
		}
	}
}
