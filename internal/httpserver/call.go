package httpserver

import (
	"net/http"

	callsvc "callorder/internal/service/call"
	"github.com/gin-gonic/gin"
)

type startCallRequest struct {
	ConsumerID string `json:"consumerId" binding:"required"`
	BusinessID string `json:"businessId" binding:"required"`
	// AwaitConnect leaves the session in connecting until the telephony
	// provider posts the connected signal. Without it the call is
	// accepted immediately, the synchronous modeling.
	AwaitConnect bool `json:"awaitConnect"`
}

func startCallHandler(calls *callsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req startCallRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "consumerId and businessId required"})
			return
		}
		s, err := calls.Start(req.ConsumerID, req.BusinessID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !req.AwaitConnect {
			if s, err = calls.Connected(s.ID); err != nil {
				respondError(c, err)
				return
			}
		}
		c.JSON(http.StatusCreated, toCallResponse(s))
	}
}

func getCallHandler(calls *callsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := calls.Get(c.Param("callID"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCallResponse(s))
	}
}

func connectCallHandler(calls *callsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := calls.Connected(c.Param("callID"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCallResponse(s))
	}
}

type redirectCallRequest struct {
	AgentID string `json:"agentId" binding:"required"`
}

func redirectCallHandler(calls *callsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req redirectCallRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "agentId required"})
			return
		}
		s, err := calls.Redirect(c.Param("callID"), req.AgentID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCallResponse(s))
	}
}

func tickCallHandler(calls *callsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := calls.Tick(c.Param("callID"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCallResponse(s))
	}
}

func endCallHandler(calls *callsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := calls.End(c.Param("callID"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCallResponse(s))
	}
}
