package domain

import "time"

// AuditFields holds standard audit information for ledger entities.
// RevisedAt is bumped on every successful mutation and feeds the optimistic
// revision token together with LastUpdatedAt.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	RevisedAt     time.Time `json:"revisedAt"`
}

// Touch updates the mutation timestamps to now.
func (a *AuditFields) Touch(now time.Time) {
	a.LastUpdatedAt = now
	a.RevisedAt = now
}
