package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
)

// NewRepositories wires every pgsql repository over one pool.
func NewRepositories(dbPool *pgxpool.Pool) portsrepo.Repositories {
	return portsrepo.Repositories{
		Tx:          NewTxManager(dbPool),
		Accounts:    newPgxAccountRepository(dbPool),
		Names:       newPgxNameRepository(dbPool),
		Currencies:  newPgxCurrencyRepository(dbPool),
		Domains:     newPgxDomainRepository(dbPool),
		SubJournals: newPgxSubJournalRepository(dbPool),
		References:  newPgxReferenceRepository(dbPool),
		Journal:     newPgxJournalRepository(dbPool),
		Balances:    newPgxBalanceRepository(dbPool),
	}
}
