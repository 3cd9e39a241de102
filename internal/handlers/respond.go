package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/utils/revision"
)

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrBadReference):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrBadRevision),
		errors.Is(err, apperrors.ErrInvalidOperation):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrRuleViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.As(err, &appErr) && appErr.Code != 0:
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// respondError writes the stable error envelope for a failed operation.
// Validation errors keep their full message list so the caller gets one
// complete correction list per round trip.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)

	var messages []string
	var ve *apperrors.ValidationErrors
	if errors.As(err, &ve) {
		messages = ve.Messages
	} else {
		messages = []string{err.Error()}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, dto.NewErrorEnvelope(messages))
}

// respondBindError reports a malformed request body or query string.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.NewErrorEnvelope([]string{"invalid request format: " + err.Error()}))
}

// refFromParam turns a path segment into an entity reference: anything that
// parses as a UUID is treated as one, everything else as a code.
func refFromParam(param string) dto.EntityRef {
	if _, err := uuid.Parse(param); err == nil {
		return dto.EntityRef{UUID: param}
	}
	return dto.EntityRef{Code: param}
}

// refFromQuery assembles an optional entity reference from <name>Code and
// <name>UUID query parameters.
func refFromQuery(c *gin.Context, name string) *dto.EntityRef {
	ref := dto.EntityRef{
		Code: c.Query(name + "Code"),
		UUID: c.Query(name + "UUID"),
	}
	if ref.IsEmpty() {
		return nil
	}
	return &ref
}

// revisionOf computes the current revision token of an entity for responses.
func revisionOf(ctx context.Context, rules portssvc.RulesSvcFacade, audit domain.AuditFields) string {
	return revision.Token(audit.RevisedAt, audit.LastUpdatedAt, rules.Salt(ctx))
}

// apiOpts marks requests arriving over the HTTP surface so page sizes get
// clamped to the ledger rules limit.
func apiOpts() dto.Options {
	return dto.Options{IsAPICall: true}
}
