package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "cruisebooking/internal/config"
	"cruisebooking/internal/db"
	"cruisebooking/internal/events"
	router "cruisebooking/internal/http"
	h "cruisebooking/internal/http/handlers"
	"cruisebooking/internal/repositories"
	"cruisebooking/internal/services"
	"cruisebooking/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger, err := utils.InitLogger(env.LogLevel, env.LogFormat)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := env.Validate(); err != nil {
		zap.L().Fatal("invalid configuration", zap.Error(err))
	}
	if missing := env.MissingSecrets(); len(missing) > 0 {
		zap.L().Warn("signing secrets not set, operator routes and webhooks are disabled", zap.Strings("missing", missing))
	}

	store, err := openStore(env)
	if err != nil {
		zap.L().Fatal("failed to open store", zap.Error(err))
	}
	defer intconfig.CloseDB()

	publisher := openPublisher(env)
	defer func() { _ = publisher.Close() }()

	svcs := buildServices(env, store, publisher)
	if env.ItinerariesPath != "" {
		n, err := svcs.Itineraries.LoadSeed(context.Background(), env.ItinerariesPath)
		if err != nil {
			zap.L().Fatal("failed to load itineraries", zap.String("path", env.ItinerariesPath), zap.Error(err))
		}
		zap.L().Info("itineraries loaded", zap.Int("count", n))
	}

	// Router (Gin engine)
	r := router.NewRouter(env, svcs)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zap.L().Info("server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zap.L().Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
		return
	}

	zap.L().Info("server stopped")
}

func openStore(env intconfig.Env) (repositories.Store, error) {
	if env.DB.Driver == "" || env.DB.Driver == "memory" {
		zap.L().Info("using in-memory store")
		return repositories.NewMemoryStore(), nil
	}
	conn, err := intconfig.ConnectDB(env.DB)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx, conn); err != nil {
		return nil, err
	}
	return repositories.NewSQLStore(conn), nil
}

// openPublisher falls back to logging events when the broker is not
// configured or cannot be reached.
func openPublisher(env intconfig.Env) events.Publisher {
	if env.RabbitMQURL == "" {
		return events.LogPublisher{}
	}
	p, err := events.DialAMQP(events.AMQPConfig{
		URL:                env.RabbitMQURL,
		Exchange:           env.EventsExchange,
		PromotionsExchange: env.PromotionsExchange,
		SenderID:           env.ServiceID,
		SigningKey:         []byte(env.PaymentSigningKey),
	})
	if err != nil {
		zap.L().Error("rabbitmq unavailable, logging events instead", zap.Error(err))
		return events.LogPublisher{}
	}
	return p
}

func buildServices(env intconfig.Env, store repositories.Store, publisher events.Publisher) h.Services {
	bookings := services.BookingService{
		Store:      store,
		Events:     publisher,
		Locks:      services.NewKeyedMutex(),
		Currency:   env.Currency,
		SigningKey: []byte(env.PaymentSigningKey),
	}
	marketing := services.MarketingService{Store: store, Events: publisher}
	return h.Services{
		Itineraries: services.ItineraryService{Store: store},
		Bookings:    bookings,
		Payments: services.PaymentService{
			Bookings:    bookings,
			Store:       store,
			Gateway:     services.SimulatedGateway{SuccessRate: env.PaymentSuccessRate},
			LinkBaseURL: env.PaymentLinkBaseURL,
			WebhookKey:  []byte(env.WebhookSigningKey),
		},
		Promotions: services.PromotionService{Store: store, Events: publisher, Marketing: marketing},
		Marketing:  marketing,
		Docs:       services.DocsService{Store: store, Currency: env.Currency},
	}
}
