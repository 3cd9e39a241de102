// Package revision derives opaque optimistic-concurrency tokens from entity
// timestamps. Any persisted-then-reloaded entity yields an identical token
// for identical state; a salt stored with the ledger keeps tokens from being
// portable across ledger instances.
package revision

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/openbooks/ledger_engine/internal/apperrors"
)

// BatchSentinel is accepted once per logical batch step to mean "trust the
// previous step's result", supporting multi-step client-side revision chains
// without a re-fetch between steps.
const BatchSentinel = "&"

// Token derives the revision token for an entity from its revision timestamp,
// its last-updated timestamp and the ledger salt.
func Token(revisedAt, updatedAt time.Time, salt string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d|%d|%s",
		revisedAt.UTC().UnixNano(), updatedAt.UTC().UnixNano(), salt)))
	return hex.EncodeToString(h[:16])
}

// Check compares a caller-supplied token against the current one.
// The batch sentinel always passes; any other mismatch is fatal to the
// operation and the caller must re-fetch and resubmit.
func Check(supplied, current string) error {
	if supplied == BatchSentinel {
		return nil
	}
	if supplied != current {
		return apperrors.ErrBadRevision
	}
	return nil
}
