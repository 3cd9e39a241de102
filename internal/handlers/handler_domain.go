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

// domainHandler handles HTTP requests related to ledger domains.
type domainHandler struct {
	domainService portssvc.DomainSvcFacade
	rulesService  portssvc.RulesSvcFacade
}

func newDomainHandler(ds portssvc.DomainSvcFacade, rs portssvc.RulesSvcFacade) *domainHandler {
	return &domainHandler{
		domainService: ds,
		rulesService:  rs,
	}
}

// registerDomainRoutes registers routes related to domains.
func registerDomainRoutes(rg *gin.RouterGroup, ds portssvc.DomainSvcFacade, rs portssvc.RulesSvcFacade) {
	h := newDomainHandler(ds, rs)

	domains := rg.Group("/domains")
	{
		domains.POST("", h.createDomain)
		domains.GET("", h.listDomains)
		domains.GET("/default", h.getDefaultDomain)
		domains.GET("/:ref", h.getDomain)
		domains.PUT("/:ref", h.updateDomain)
		domains.DELETE("/:ref", h.deleteDomain)
	}
}

// toResponse resolves the ledger-wide default flag before shaping the reply.
func (h *domainHandler) toResponse(c *gin.Context, d *domain.Domain) dto.DomainResponse {
	rules, err := h.rulesService.Rules(c.Request.Context())
	isDefault := err == nil && rules.DefaultDomainCode == d.Code
	token := revisionOf(c.Request.Context(), h.rulesService, d.AuditFields)
	return dto.ToDomainResponse(d, isDefault, token)
}

func (h *domainHandler) createDomain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	d, err := h.domainService.AddDomain(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Domain created", slog.String("domain_id", d.DomainID), slog.String("code", d.Code))
	c.JSON(http.StatusCreated, h.toResponse(c, d))
}

func (h *domainHandler) getDomain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	req := dto.DomainRequest{Ref: refFromParam(c.Param("ref"))}

	d, err := h.domainService.GetDomain(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(c, d))
}

func (h *domainHandler) getDefaultDomain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	d, err := h.domainService.DefaultDomain(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(c, d))
}

func (h *domainHandler) listDomains(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	domains, err := h.domainService.ListDomains(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}

	responses := make([]dto.DomainResponse, len(domains))
	for i := range domains {
		responses[i] = h.toResponse(c, &domains[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *domainHandler) updateDomain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	req.Ref = refFromParam(c.Param("ref"))

	d, err := h.domainService.UpdateDomain(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Domain updated", slog.String("domain_id", d.DomainID))
	c.JSON(http.StatusOK, h.toResponse(c, d))
}

func (h *domainHandler) deleteDomain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	req := dto.DomainRequest{
		Ref:      refFromParam(c.Param("ref")),
		Revision: c.Query("revision"),
	}

	if err := h.domainService.DeleteDomain(c.Request.Context(), req); err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Domain deleted")
	c.Status(http.StatusNoContent)
}
