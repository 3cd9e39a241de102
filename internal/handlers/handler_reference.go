package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/middleware"
)

// referenceHandler handles HTTP requests related to journal references.
type referenceHandler struct {
	referenceService portssvc.ReferenceSvcFacade
	rulesService     portssvc.RulesSvcFacade
}

func newReferenceHandler(rs portssvc.ReferenceSvcFacade, rules portssvc.RulesSvcFacade) *referenceHandler {
	return &referenceHandler{
		referenceService: rs,
		rulesService:     rules,
	}
}

// registerReferenceRoutes registers routes related to journal references.
// Reference codes are unique per domain; lookups by code accept domainCode or
// domainUUID query parameters and otherwise use the default domain.
func registerReferenceRoutes(rg *gin.RouterGroup, rs portssvc.ReferenceSvcFacade, rules portssvc.RulesSvcFacade) {
	h := newReferenceHandler(rs, rules)

	references := rg.Group("/references")
	{
		references.POST("", h.createReference)
		references.GET("/:ref", h.getReference)
		references.PUT("/:ref", h.updateReference)
		references.DELETE("/:ref", h.deleteReference)
	}
}

func (h *referenceHandler) createReference(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	ref, err := h.referenceService.AddReference(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Reference created", slog.String("reference_id", ref.ReferenceID), slog.String("code", ref.Code))
	token := revisionOf(c.Request.Context(), h.rulesService, ref.AuditFields)
	c.JSON(http.StatusCreated, dto.ToReferenceResponse(ref, token))
}

func (h *referenceHandler) getReference(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	req := dto.ReferenceRequest{
		Ref:    refFromParam(c.Param("ref")),
		Domain: refFromQuery(c, "domain"),
	}

	ref, err := h.referenceService.GetReference(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	token := revisionOf(c.Request.Context(), h.rulesService, ref.AuditFields)
	c.JSON(http.StatusOK, dto.ToReferenceResponse(ref, token))
}

func (h *referenceHandler) updateReference(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	req.Ref = refFromParam(c.Param("ref"))

	ref, err := h.referenceService.UpdateReference(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Reference updated", slog.String("reference_id", ref.ReferenceID))
	token := revisionOf(c.Request.Context(), h.rulesService, ref.AuditFields)
	c.JSON(http.StatusOK, dto.ToReferenceResponse(ref, token))
}

func (h *referenceHandler) deleteReference(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	req := dto.ReferenceRequest{
		Ref:      refFromParam(c.Param("ref")),
		Domain:   refFromQuery(c, "domain"),
		Revision: c.Query("revision"),
	}

	if err := h.referenceService.DeleteReference(c.Request.Context(), req); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Reference deleted")
	c.Status(http.StatusNoContent)
}
