package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/pkg/logger"
	"github.com/gin-gonic/gin"
)

const unavailableMessage = "service temporarily unavailable, please retry"

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain errors to status codes. Anything unclassified is logged
// and answered with a generic 503 so store internals never reach the client.
func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusServiceUnavailable {
		log := logger.FromContext(c.Request.Context())
		ev := log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath())
		if actor, ok := actorFrom(c); ok {
			ev = ev.Int64("user_id", actor.UserID)
		}
		ev.Msg("request failed")
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "you do not have permission to perform this action"
	default:
		return http.StatusServiceUnavailable, unavailableMessage
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg})
}
