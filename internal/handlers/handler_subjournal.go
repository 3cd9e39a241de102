package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/middleware"
)

// subJournalHandler handles HTTP requests related to sub-journals.
type subJournalHandler struct {
	subJournalService portssvc.SubJournalSvcFacade
	rulesService      portssvc.RulesSvcFacade
}

func newSubJournalHandler(ss portssvc.SubJournalSvcFacade, rs portssvc.RulesSvcFacade) *subJournalHandler {
	return &subJournalHandler{
		subJournalService: ss,
		rulesService:      rs,
	}
}

// registerSubJournalRoutes registers routes related to sub-journals.
func registerSubJournalRoutes(rg *gin.RouterGroup, ss portssvc.SubJournalSvcFacade, rs portssvc.RulesSvcFacade) {
	h := newSubJournalHandler(ss, rs)

	subJournals := rg.Group("/subjournals")
	{
		subJournals.POST("", h.createSubJournal)
		subJournals.GET("", h.listSubJournals)
		subJournals.GET("/:ref", h.getSubJournal)
		subJournals.PUT("/:ref", h.updateSubJournal)
		subJournals.DELETE("/:ref", h.deleteSubJournal)
	}
}

func (h *subJournalHandler) createSubJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SubJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	s, err := h.subJournalService.AddSubJournal(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Sub-journal created", slog.String("sub_journal_id", s.SubJournalID), slog.String("code", s.Code))
	token := revisionOf(c.Request.Context(), h.rulesService, s.AuditFields)
	c.JSON(http.StatusCreated, dto.ToSubJournalResponse(s, token))
}

func (h *subJournalHandler) getSubJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	req := dto.SubJournalRequest{Ref: refFromParam(c.Param("ref"))}

	s, err := h.subJournalService.GetSubJournal(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	token := revisionOf(c.Request.Context(), h.rulesService, s.AuditFields)
	c.JSON(http.StatusOK, dto.ToSubJournalResponse(s, token))
}

func (h *subJournalHandler) listSubJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	subJournals, err := h.subJournalService.ListSubJournals(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}

	responses := make([]dto.SubJournalResponse, len(subJournals))
	for i := range subJournals {
		token := revisionOf(c.Request.Context(), h.rulesService, subJournals[i].AuditFields)
		responses[i] = dto.ToSubJournalResponse(&subJournals[i], token)
	}
	c.JSON(http.StatusOK, responses)
}

func (h *subJournalHandler) updateSubJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SubJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	req.Ref = refFromParam(c.Param("ref"))

	s, err := h.subJournalService.UpdateSubJournal(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Sub-journal updated", slog.String("sub_journal_id", s.SubJournalID))
	token := revisionOf(c.Request.Context(), h.rulesService, s.AuditFields)
	c.JSON(http.StatusOK, dto.ToSubJournalResponse(s, token))
}

func (h *subJournalHandler) deleteSubJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	req := dto.SubJournalRequest{
		Ref:      refFromParam(c.Param("ref")),
		Revision: c.Query("revision"),
	}

	if err := h.subJournalService.DeleteSubJournal(c.Request.Context(), req); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Sub-journal deleted")
	c.Status(http.StatusNoContent)
}
