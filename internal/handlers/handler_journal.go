package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/middleware"

	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
)

// journalHandler handles HTTP requests related to journal entries and
// running balances.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
	rulesService   portssvc.RulesSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade, rs portssvc.RulesSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: js,
		rulesService:   rs,
	}
}

// registerJournalRoutes registers routes related to entries and balances.
func registerJournalRoutes(rg *gin.RouterGroup, js portssvc.JournalSvcFacade, rs portssvc.RulesSvcFacade) {
	h := newJournalHandler(js, rs)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.queryEntries)
		entries.GET("/:id", h.getEntry)
		entries.PUT("/:id", h.updateEntry)
		entries.DELETE("/:id", h.deleteEntry)
		entries.POST("/:id/reviewed", h.setReviewed)
	}

	rg.GET("/balances", h.queryBalances)
}

func (h *journalHandler) entryIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Warn("Invalid entry id", slog.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, dto.NewErrorEnvelope([]string{"entry: invalid numeric identifier"}))
		return 0, false
	}
	return id, true
}

func (h *journalHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	entry, err := h.journalService.AddEntry(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Entry posted", slog.Int64("entry_id", entry.EntryID))
	token := revisionOf(c.Request.Context(), h.rulesService, entry.AuditFields)
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry, token))
}

func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := h.entryIDParam(c)
	if !ok {
		return
	}

	entry, err := h.journalService.GetEntry(c.Request.Context(), id)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	token := revisionOf(c.Request.Context(), h.rulesService, entry.AuditFields)
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry, token))
}

func (h *journalHandler) updateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := h.entryIDParam(c)
	if !ok {
		return
	}
	var req dto.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	req.EntryID = &id

	entry, err := h.journalService.UpdateEntry(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Entry updated", slog.Int64("entry_id", entry.EntryID))
	token := revisionOf(c.Request.Context(), h.rulesService, entry.AuditFields)
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry, token))
}

func (h *journalHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := h.entryIDParam(c)
	if !ok {
		return
	}
	req := dto.EntryRequest{
		EntryID:  &id,
		Revision: c.Query("revision"),
	}

	if err := h.journalService.DeleteEntry(c.Request.Context(), req); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Entry deleted", slog.Int64("entry_id", id))
	c.Status(http.StatusNoContent)
}

// setReviewedRequest toggles the reviewed flag of an entry.
type setReviewedRequest struct {
	Reviewed bool   `json:"reviewed"`
	Revision string `json:"revision" binding:"required"`
}

func (h *journalHandler) setReviewed(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := h.entryIDParam(c)
	if !ok {
		return
	}
	var req setReviewedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	entry, err := h.journalService.SetReviewed(c.Request.Context(), id, req.Reviewed, req.Revision)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Entry review flag set", slog.Int64("entry_id", id), slog.Bool("reviewed", req.Reviewed))
	token := revisionOf(c.Request.Context(), h.rulesService, entry.AuditFields)
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry, token))
}

func (h *journalHandler) queryEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var q dto.EntryQueryRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, logger, err)
		return
	}
	q.Domain = refFromQuery(c, "domain")
	q.Reference = refFromQuery(c, "reference")

	page, err := h.journalService.QueryEntries(c.Request.Context(), q, apiOpts())
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *journalHandler) queryBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	q := dto.BalanceQueryRequest{
		Account:  refFromQuery(c, "account"),
		Domain:   refFromQuery(c, "domain"),
		Currency: c.Query("currency"),
	}

	balances, err := h.journalService.QueryBalances(c.Request.Context(), q, apiOpts())
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceResponses(balances))
}
