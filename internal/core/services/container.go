package services

import (
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
)

// Container wires every engine service over one repository bundle.
type Container struct {
	Rules       portssvc.RulesSvcFacade
	Accounts    portssvc.AccountSvcFacade
	Currencies  portssvc.CurrencySvcFacade
	Domains     portssvc.DomainSvcFacade
	SubJournals portssvc.SubJournalSvcFacade
	References  portssvc.ReferenceSvcFacade
	Journal     portssvc.JournalSvcFacade
	Ledger      portssvc.LedgerSvcFacade
}

// NewContainer builds the full service graph.
func NewContainer(repos portsrepo.Repositories) *Container {
	rules := NewRulesService(repos.Accounts)
	resolver := NewResolver(repos.Accounts, repos.Domains, repos.SubJournals, repos.References)

	accounts := NewAccountService(repos.Accounts, repos.Names, repos.Balances, resolver, repos.Tx, rules)
	currencies := NewCurrencyService(repos.Currencies, repos.Domains, repos.Tx, rules)
	domains := NewDomainService(repos.Domains, repos.Currencies, repos.Names, resolver, repos.Tx, rules)
	subJournals := NewSubJournalService(repos.SubJournals, repos.Names, resolver, repos.Tx, rules)
	references := NewReferenceService(repos.References, repos.Domains, resolver, rules)
	journal := NewJournalService(repos.Journal, repos.Balances, repos.Currencies, repos.Domains, resolver, repos.Tx, rules)
	ledger := NewLedgerService(repos.Accounts, repos.Names, repos.Currencies, repos.Domains,
		repos.SubJournals, repos.Journal, repos.Balances, accounts, resolver, repos.Tx, rules)

	return &Container{
		Rules:       rules,
		Accounts:    accounts,
		Currencies:  currencies,
		Domains:     domains,
		SubJournals: subJournals,
		References:  references,
		Journal:     journal,
		Ledger:      ledger,
	}
}
