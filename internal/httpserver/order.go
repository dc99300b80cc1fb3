package httpserver

import (
	"context"
	"net/http"

	agentsvc "callorder/internal/service/agent"
	ordersvc "callorder/internal/service/order"
	"github.com/gin-gonic/gin"
)

func getOrderHandler(orders *ordersvc.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.Get(c.Request.Context(), c.Param("orderID"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func orderHistoryHandler(orders *ordersvc.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		history, err := orders.History(c.Request.Context(), c.Param("orderID"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": history})
	}
}

func listOrdersHandler(orders *ordersvc.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		businessID := c.Query("businessId")
		consumerID := c.Query("consumerId")
		switch {
		case businessID != "":
			result, err := orders.ListByBusiness(c.Request.Context(), businessID)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"orders": result})
		case consumerID != "":
			result, err := orders.ListByConsumer(c.Request.Context(), consumerID)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"orders": result})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "businessId or consumerId query required"})
		}
	}
}

type agentActionRequest struct {
	Note string `json:"note"`
}

type agentOp func(w *agentsvc.Workflow, ctx context.Context, orderID, note string) agentsvc.Outcome

// agentHandler adapts one agent workflow operation. A rejected
// transition comes back as a conflict carrying the order's current
// status, which is all the agent needs to retry sensibly.
func agentHandler(w *agentsvc.Workflow, op agentOp) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req agentActionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
				return
			}
		}
		out := op(w, c.Request.Context(), c.Param("orderID"), req.Note)
		if out.Err != nil {
			body := gin.H{"error": out.Err.Error()}
			if out.Order != nil {
				body["order"] = out.Order
			}
			c.JSON(errorStatus(out.Err), body)
			return
		}
		c.JSON(http.StatusOK, out.Order)
	}
}
