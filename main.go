package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/satouyama/pesto-sub001/config"
	"github.com/satouyama/pesto-sub001/database"
	"github.com/satouyama/pesto-sub001/kds"
	"github.com/satouyama/pesto-sub001/router"
	"github.com/satouyama/pesto-sub001/services"
	"github.com/satouyama/pesto-sub001/utils"
	"gorm.io/gorm"
)

func main() {
	utils.InitLogger()
	cfg := config.Load()
	utils.SetJWTSecret(cfg.JWTSecret)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if err := database.SeedSettings(db, database.SeedDefaults{
		BusinessName:         "Restaurant POS",
		Currency:             cfg.Currency,
		DeliveryCharge:       cfg.DefaultDeliveryCharge,
		GuestCheckoutAllowed: cfg.GuestCheckoutAllowed,
	}); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, db)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Server shutdown: %v", err)
	}
}

// application holds the wired HTTP stack.
type application struct {
	Router     *gin.Engine
	Hub        *kds.Hub
	Dispatcher *services.Dispatcher
	publisher  *kds.RedisPublisher
}

// newApplication wires the broadcaster, services and routes on top of an open database.
func newApplication(ctx context.Context, cfg *config.Config, db *gorm.DB) (*application, error) {
	app := &application{Hub: kds.NewHub()}

	// KDS: straight to the hub, or through redis when several instances run
	var broadcaster services.Broadcaster = app.Hub
	if cfg.RedisURL != "" {
		publisher, err := kds.NewRedisPublisher(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		go publisher.Relay(ctx, app.Hub, cfg.BroadcastChannel)
		app.publisher = publisher
		broadcaster = publisher
		utils.InfoLogger.Info("Broadcasting order events through redis")
	}

	app.Dispatcher = services.NewDispatcher(services.NewDBNotifier(db), broadcaster, cfg.BroadcastChannel)

	orders := services.NewOrderService(services.OrderServiceConfig{
		Store:   services.NewOrderStore(db),
		Catalog: services.NewGormCatalog(db),
		Settings: services.NewGormSettings(db, services.BusinessConfig{
			DeliveryCharge:       cfg.DefaultDeliveryCharge,
			GuestCheckoutAllowed: cfg.GuestCheckoutAllowed,
			Currency:             cfg.Currency,
		}),
		Gateways:   services.NewGatewayFactory(services.GatewayOptions{PayPalBaseURL: cfg.PayPalBaseURL}),
		Poller:     services.NewPaymentPoller(cfg.PaymentPollAttempts, cfg.PaymentPollDelay),
		Dispatcher: app.Dispatcher,
		ReturnURL:  cfg.PaymentReturnURL,
		CancelURL:  cfg.PaymentCancelURL,
	})

	app.Router = router.SetupRouter(router.Dependencies{
		DB:             db,
		Orders:         orders,
		Reports:        services.NewReportService(db),
		Hub:            app.Hub,
		Currency:       cfg.Currency,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	return app, nil
}

// Close waits for pending notifications and closes the redis connection.
func (a *application) Close() {
	a.Dispatcher.Wait()
	if a.publisher != nil {
		a.publisher.Close()
	}
}
