package httpserver

import (
	"net/http"

	"callorder/internal/domain"
	checkoutsvc "callorder/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	ConsumerID string `json:"consumerId" binding:"required"`
	BusinessID string `json:"businessId" binding:"required"`
	Method     string `json:"method" binding:"required"`
	OrderID    string `json:"orderId"`
}

func submitCheckoutHandler(coord *checkoutsvc.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "consumerId, businessId and method required"})
			return
		}
		method := domain.PaymentMethod(req.Method)
		if !domain.ValidPaymentMethod(method) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported payment method"})
			return
		}

		res, err := coord.Submit(c.Request.Context(), checkoutsvc.SubmitInput{
			ConsumerID: req.ConsumerID,
			BusinessID: req.BusinessID,
			Method:     method,
			OrderID:    req.OrderID,
		})
		if err != nil {
			// a failed or timed-out attempt still reports the order so
			// the consumer can retry against it
			body := gin.H{"error": err.Error()}
			if res.Order != nil {
				body["order"] = res.Order
			}
			c.JSON(errorStatus(err), body)
			return
		}
		status := http.StatusOK
		if res.Attempt.Result == domain.PaymentResultPending {
			status = http.StatusAccepted
		}
		c.JSON(status, gin.H{"order": res.Order, "attempt": res.Attempt})
	}
}

type resolveRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Result  string `json:"result" binding:"required"`
}

func resolvePaymentHandler(coord *checkoutsvc.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resolveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderId and result required"})
			return
		}
		result := domain.PaymentResult(req.Result)
		if result != domain.PaymentResultSucceeded && result != domain.PaymentResultFailed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "result must be succeeded or failed"})
			return
		}

		o, err := coord.Resolve(c.Request.Context(), c.Param("attemptID"), req.OrderID, result)
		if err != nil {
			body := gin.H{"error": err.Error()}
			if o != nil {
				body["order"] = o
			}
			c.JSON(errorStatus(err), body)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": o})
	}
}
