package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/middleware"
	"stayhub/internal/domain/shared/fault"
	"stayhub/internal/infra/obs"
)

var (
	errInvalidBody = fault.New(fault.ErrInvalidInput, "invalid_input", "invalid request body")
	errInvalidDate = fault.New(fault.ErrInvalidInput, "invalid_date", "dates must be RFC 3339 timestamps or YYYY-MM-DD")
)

// statusFor maps an error kind onto its HTTP status and reason.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, middleware.ErrKeyReused):
		return http.StatusConflict, "idempotency_key_reused"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	switch fault.KindOf(err) {
	case fault.ErrInvalidInput:
		return http.StatusBadRequest, fault.Reason(err, "invalid_input")
	case fault.ErrUnauthenticated:
		return http.StatusUnauthorized, fault.Reason(err, "unauthenticated")
	case fault.ErrForbidden:
		return http.StatusForbidden, fault.Reason(err, "forbidden")
	case fault.ErrNotFound:
		return http.StatusNotFound, fault.Reason(err, "not_found")
	case fault.ErrConflict:
		return http.StatusConflict, fault.Reason(err, "conflict")
	case fault.ErrUpstream:
		return http.StatusBadGateway, fault.Reason(err, "upstream_failure")
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, reason := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(c.Request.Context(), "request failed",
			"route", c.FullPath(),
			"status", status,
			"request_id", obs.RequestIDFromContext(c.Request.Context()),
			"error", err,
		)
		if status == http.StatusInternalServerError {
			message = "internal error"
		}
	}
	c.JSON(status, gin.H{"error": reason, "message": message})
}
