package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"callorder/internal/clock"
	"callorder/internal/config"
	"callorder/internal/db"
	"callorder/internal/httpserver"
	"callorder/internal/payment"
	catalogrepo "callorder/internal/repository/catalog"
	orderrepo "callorder/internal/repository/order"
	paymentrepo "callorder/internal/repository/payment"
	agentsvc "callorder/internal/service/agent"
	callsvc "callorder/internal/service/call"
	cartsvc "callorder/internal/service/cart"
	checkoutsvc "callorder/internal/service/checkout"
	ordersvc "callorder/internal/service/order"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	clk := clock.NewSystem()

	catalogRepo := catalogrepo.NewPostgres(dbpool, logger)
	cartService := cartsvc.New(catalogRepo)
	callManager := callsvc.NewManager(clk, cfg.CallTickEvery, logger)
	defer callManager.Close()

	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	orderTracker := ordersvc.NewTracker(orderRepo, clk, logger)
	attemptRepo := paymentrepo.NewPostgres(dbpool, logger)
	gateway := payment.NewSim(0, logger)
	checkout := checkoutsvc.NewCoordinator(cartService, orderTracker, attemptRepo, gateway, clk, cfg.PaymentTimeout, logger)
	agentWorkflow := agentsvc.NewWorkflow(orderTracker)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Catalog:  catalogRepo,
		Carts:    cartService,
		Calls:    callManager,
		Checkout: checkout,
		Orders:   orderTracker,
		Agent:    agentWorkflow,
	}, cfg.AllowedOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
