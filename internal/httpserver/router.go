package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	catalogrepo "callorder/internal/repository/catalog"
	agentsvc "callorder/internal/service/agent"
	callsvc "callorder/internal/service/call"
	cartsvc "callorder/internal/service/cart"
	checkoutsvc "callorder/internal/service/checkout"
	ordersvc "callorder/internal/service/order"
)

// Deps carries the services the router exposes.
type Deps struct {
	Catalog  catalogrepo.Repository
	Carts    *cartsvc.Service
	Calls    *callsvc.Manager
	Checkout *checkoutsvc.Coordinator
	Orders   *ordersvc.Tracker
	Agent    *agentsvc.Workflow
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(corsMiddleware(allowedOrigins))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/businesses/:businessID/catalog", listCatalogHandler(deps.Catalog))

	carts := router.Group("/carts/:consumerID/:businessID")
	{
		carts.GET("", getCartHandler(deps.Carts))
		carts.POST("/toggle", toggleCartHandler(deps.Carts))
		carts.POST("/clear", clearCartHandler(deps.Carts))
	}

	calls := router.Group("/calls")
	{
		calls.POST("", startCallHandler(deps.Calls))
		calls.GET("/:callID", getCallHandler(deps.Calls))
		calls.POST("/:callID/connected", connectCallHandler(deps.Calls))
		calls.POST("/:callID/redirect", redirectCallHandler(deps.Calls))
		calls.POST("/:callID/tick", tickCallHandler(deps.Calls))
		calls.POST("/:callID/end", endCallHandler(deps.Calls))
	}

	router.POST("/checkout", submitCheckoutHandler(deps.Checkout))
	router.POST("/payments/:attemptID/resolve", resolvePaymentHandler(deps.Checkout))

	orders := router.Group("/orders")
	{
		orders.GET("", listOrdersHandler(deps.Orders))
		orders.GET("/:orderID", getOrderHandler(deps.Orders))
		orders.GET("/:orderID/history", orderHistoryHandler(deps.Orders))
		orders.POST("/:orderID/confirm", agentHandler(deps.Agent, (*agentsvc.Workflow).Confirm))
		orders.POST("/:orderID/request-payment", agentHandler(deps.Agent, (*agentsvc.Workflow).RequestPayment))
		orders.POST("/:orderID/mark-paid", agentHandler(deps.Agent, (*agentsvc.Workflow).MarkPaid))
		orders.POST("/:orderID/complete", agentHandler(deps.Agent, (*agentsvc.Workflow).Complete))
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}
