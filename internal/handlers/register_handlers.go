package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/openbooks/ledger_engine/internal/core/services"
	"github.com/openbooks/ledger_engine/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service facades.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	svcs *services.Container,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, svcs)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the
// per-entity route registrations.
func setupAPIV1Routes(r *gin.Engine, svcs *services.Container) {
	v1 := r.Group("/api/v1")

	registerLedgerRoutes(v1, svcs.Ledger, svcs.Rules)
	registerAccountRoutes(v1, svcs.Accounts, svcs.Rules)
	registerCurrencyRoutes(v1, svcs.Currencies, svcs.Rules)
	registerDomainRoutes(v1, svcs.Domains, svcs.Rules)
	registerSubJournalRoutes(v1, svcs.SubJournals, svcs.Rules)
	registerReferenceRoutes(v1, svcs.References, svcs.Rules)
	registerJournalRoutes(v1, svcs.Journal, svcs.Rules)
}
