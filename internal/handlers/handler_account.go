package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	rulesService   portssvc.RulesSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade, rs portssvc.RulesSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
		rulesService:   rs,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, as portssvc.AccountSvcFacade, rs portssvc.RulesSvcFacade) {
	h := newAccountHandler(as, rs)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.queryAccounts)
		accounts.GET("/:ref", h.getAccount)
		accounts.PUT("/:ref", h.updateAccount)
		accounts.DELETE("/:ref", h.deleteAccount)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	account, err := h.accountService.AddAccount(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	token := revisionOf(c.Request.Context(), h.rulesService, account.AuditFields)
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account, token))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	req := dto.AccountRequest{Ref: refFromParam(c.Param("ref"))}

	account, err := h.accountService.GetAccount(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	token := revisionOf(c.Request.Context(), h.rulesService, account.AuditFields)
	c.JSON(http.StatusOK, dto.ToAccountResponse(account, token))
}

func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	req.Ref = refFromParam(c.Param("ref"))

	account, err := h.accountService.UpdateAccount(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Account updated", slog.String("account_id", account.AccountID))
	token := revisionOf(c.Request.Context(), h.rulesService, account.AuditFields)
	c.JSON(http.StatusOK, dto.ToAccountResponse(account, token))
}

func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	req := dto.AccountRequest{
		Ref:      refFromParam(c.Param("ref")),
		Revision: c.Query("revision"),
	}

	removedIDs, err := h.accountService.DeleteAccount(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Account deleted", slog.Int("removed_count", len(removedIDs)))
	c.JSON(http.StatusOK, gin.H{"removedAccountIDs": removedIDs})
}

func (h *accountHandler) queryAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.AccountQueryRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, logger, err)
		return
	}
	q.Parent = refFromQuery(c, "parent")

	page, err := h.accountService.QueryAccounts(c.Request.Context(), q, apiOpts())
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
