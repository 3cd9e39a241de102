package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/middleware"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
	rulesService    portssvc.RulesSvcFacade
}

func newCurrencyHandler(cs portssvc.CurrencySvcFacade, rs portssvc.RulesSvcFacade) *currencyHandler {
	return &currencyHandler{
		currencyService: cs,
		rulesService:    rs,
	}
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, cs portssvc.CurrencySvcFacade, rs portssvc.RulesSvcFacade) {
	h := newCurrencyHandler(cs, rs)

	currencies := rg.Group("/currencies")
	{
		currencies.POST("", h.createCurrency)
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:code", h.getCurrency)
		currencies.PUT("/:code", h.updateCurrency)
		currencies.DELETE("/:code", h.deleteCurrency)
	}
}

func (h *currencyHandler) createCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	currency, err := h.currencyService.AddCurrency(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Currency created", slog.String("currency_code", currency.Code))
	token := revisionOf(c.Request.Context(), h.rulesService, currency.AuditFields)
	c.JSON(http.StatusCreated, dto.ToCurrencyResponse(currency, token))
}

func (h *currencyHandler) getCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currency, err := h.currencyService.GetCurrency(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, logger, err)
		return
	}

	token := revisionOf(c.Request.Context(), h.rulesService, currency.AuditFields)
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency, token))
}

func (h *currencyHandler) listCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}

	responses := make([]dto.CurrencyResponse, len(currencies))
	for i := range currencies {
		token := revisionOf(c.Request.Context(), h.rulesService, currencies[i].AuditFields)
		responses[i] = dto.ToCurrencyResponse(&currencies[i], token)
	}
	c.JSON(http.StatusOK, responses)
}

func (h *currencyHandler) updateCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	req.Code = c.Param("code")

	currency, err := h.currencyService.UpdateCurrency(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Currency updated", slog.String("currency_code", currency.Code))
	token := revisionOf(c.Request.Context(), h.rulesService, currency.AuditFields)
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency, token))
}

func (h *currencyHandler) deleteCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	req := dto.CurrencyRequest{
		Code:     c.Param("code"),
		Revision: c.Query("revision"),
	}

	if err := h.currencyService.DeleteCurrency(c.Request.Context(), req); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Currency deleted", slog.String("currency_code", req.Code))
	c.Status(http.StatusNoContent)
}
