package httpserver

import (
	"errors"
	"net/http"

	"callorder/internal/domain"
	"github.com/gin-gonic/gin"
)

// errorStatus maps the domain error taxonomy onto HTTP statuses. All of
// these are recoverable, caller-visible outcomes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrItemUnavailable),
		errors.Is(err, domain.ErrSessionAlreadyActive),
		errors.Is(err, domain.ErrOrderAlreadyPaid),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrPaymentTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}

type callResponse struct {
	domain.CallSession
	DurationSeconds int64 `json:"durationSeconds"`
}

func toCallResponse(s domain.CallSession) callResponse {
	return callResponse{CallSession: s, DurationSeconds: s.DurationSeconds()}
}
