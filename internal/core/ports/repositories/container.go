package repositories

// Repositories bundles every persistence facade plus the transaction manager
// for one storage backend.
type Repositories struct {
	Tx          TxManager
	Accounts    AccountRepositoryFacade
	Names       NameRepositoryFacade
	Currencies  CurrencyRepositoryFacade
	Domains     DomainRepositoryFacade
	SubJournals SubJournalRepositoryFacade
	References  ReferenceRepositoryFacade
	Journal     JournalRepositoryFacade
	Balances    BalanceRepositoryFacade
}
