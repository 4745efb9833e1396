package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"space-reservation-backend/config"
	"space-reservation-backend/internal/api"
	"space-reservation-backend/internal/booking"
	"space-reservation-backend/internal/db"
	"space-reservation-backend/internal/model"
	"space-reservation-backend/internal/notification"
	"space-reservation-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "reservad ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	channel, err := model.ParseNotificationType(cfg.Notifications.Channel)
	if err != nil {
		logger.Fatalf("invalid notification channel: %v", err)
	}
	if channel == model.NotificationPush && (cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "") {
		logger.Fatalf("VAPID keys must be configured when notifications.channel is push.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	policy, err := booking.PolicyFromConfig(cfg.Booking)
	if err != nil {
		logger.Fatalf("invalid booking policy: %v", err)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Notifications are stored first, then delivered by the pool; the sweeper
	// retries whatever the pool could not deliver.
	workerPool := notification.NewWorkerPool(
		cfg.Notifications.WorkerPoolSize,
		appStore.Notifications,
		notification.Senders(appStore.Subscriptions, &webpushOptions),
	)
	workerPool.Start(ctx)
	dispatcher := notification.NewDispatcher(appStore.Notifications, workerPool)
	sweeper := notification.NewSweeper(appStore.Notifications, workerPool, cfg.Notifications.SweepInterval)
	go sweeper.Run(ctx)

	bookings := booking.NewService(
		appStore.Reservations,
		appStore.Users,
		appStore.Spaces,
		dispatcher,
		booking.NewNotificationBuilder(channel),
		policy,
	)
	spaces := booking.NewSpaceService(
		appStore.Spaces,
		appStore.Users,
		appStore.Reservations,
		model.NewSpaceTypeSet(cfg.Booking.SpaceTypes),
		policy,
	)
	users := booking.NewUserService(appStore.Users)

	handler := api.NewHandler(bookings, spaces, users, appStore.Subscriptions, appStore.Notifications, &webpushOptions)
	router := api.NewRouter(handler, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}
	cancel()

	logger.Println("Server gracefully stopped")
}
