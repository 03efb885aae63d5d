package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mealmart/mealmart/config"
	"github.com/mealmart/mealmart/internal/auth"
	handler "github.com/mealmart/mealmart/internal/handler/http"
	"github.com/mealmart/mealmart/internal/logger"
	"github.com/mealmart/mealmart/internal/mailer"
	"github.com/mealmart/mealmart/internal/middleware"
	"github.com/mealmart/mealmart/internal/models"
	"github.com/mealmart/mealmart/internal/notifier"
	"github.com/mealmart/mealmart/internal/payment"
	"github.com/mealmart/mealmart/internal/repository"
	"github.com/mealmart/mealmart/internal/repository/postgres"
	"github.com/mealmart/mealmart/internal/service"
	"github.com/mealmart/mealmart/internal/worker"
	"go.uber.org/zap"
)

const authTokenKey = "f53ac685bbceebd75043e6be2e06ee07"

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	tokenKey, err := hex.DecodeString(authTokenKey)
	if err != nil {
		logger.Log.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	// event fanout
	hub := notifier.NewHub()
	var note service.Notifier = hub
	if cfg.NATSURL != "" {
		bridge, err := notifier.NewBridge(cfg.NATSURL)
		if err != nil {
			logger.Log.Fatal("Error connecting notifier bridge", zap.Error(err))
		}
		defer bridge.Close()
		if err := bridge.Subscribe(hub); err != nil {
			logger.Log.Fatal("Error subscribing notifier bridge", zap.Error(err))
		}
		note = notifier.WithBridge(hub, bridge)
	}

	// external collaborators
	mail := mailer.New(cfg.MailerAddr)
	payments := payment.NewClient(cfg.PaymentSystemAddr)

	// dependency injection
	orderRepo := repository.NewOrderRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderService := service.NewOrderService(orderRepo, vendorRepo, customerRepo, note, mail, payments)
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(orderService)
	wsHandler := handler.NewWSHandler(hub, cfg.ClientOrigin)

	// payment settlement worker
	processor := worker.NewPaymentProcessor(orderService, cfg.PaymentPollInterval)
	go processor.ProcessPayments(ctx)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))

	// payment system callbacks
	router.Post("/api/payment/pay/{orderID}", paymentHandler.ConfirmPayment())
	router.Post("/api/payment/refund/{orderID}", paymentHandler.RefundPayment())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))

		group.Get("/ws", wsHandler.Serve())
		group.Get("/api/orders/{orderID}", orderHandler.GetOrder())

		group.Group(func(customer chi.Router) {
			customer.Use(middleware.RequireRole(models.RoleCustomer))
			customer.Post("/api/orders", orderHandler.PlaceOrder())
			customer.Get("/api/orders", orderHandler.ListCustomerOrders())
			customer.Put("/api/orders/{orderID}/cancel", orderHandler.CancelOrder())
		})

		group.Group(func(vendor chi.Router) {
			vendor.Use(middleware.RequireRole(models.RoleVendor))
			vendor.Get("/api/vendor/orders", orderHandler.ListVendorOrders())
			vendor.Put("/api/orders/{orderID}/status", orderHandler.UpdateOrderStatus())
		})
	})

	logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
