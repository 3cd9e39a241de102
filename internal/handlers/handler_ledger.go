package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/middleware"
)

// ledgerHandler handles the one-time bootstrap and the rules endpoints.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	rulesService  portssvc.RulesSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade, rs portssvc.RulesSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
		rulesService:  rs,
	}
}

// registerLedgerRoutes registers the bootstrap and rules routes.
func registerLedgerRoutes(rg *gin.RouterGroup, ls portssvc.LedgerSvcFacade, rs portssvc.RulesSvcFacade) {
	h := newLedgerHandler(ls, rs)

	ledger := rg.Group("/ledger")
	{
		ledger.POST("", h.createLedger)
		ledger.GET("/rules", h.getRules)
		ledger.PATCH("/rules", h.updateRules)
	}
}

func (h *ledgerHandler) createLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	root, err := h.ledgerService.CreateLedger(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Ledger created", slog.String("root_account_id", root.AccountID))
	token := revisionOf(c.Request.Context(), h.rulesService, root.AuditFields)
	c.JSON(http.StatusCreated, dto.ToAccountResponse(root, token))
}

// publicRules strips the revision salt before the rules leave the process.
func publicRules(rules domain.LedgerRules) domain.LedgerRules {
	rules.Salt = ""
	return rules
}

func (h *ledgerHandler) getRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rules, err := h.rulesService.Rules(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, publicRules(rules))
}

func (h *ledgerHandler) updateRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var patch domain.LedgerRulesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, logger, err)
		return
	}

	rules, err := h.rulesService.SetRules(c.Request.Context(), patch)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Ledger rules updated")
	c.JSON(http.StatusOK, publicRules(rules))
}
