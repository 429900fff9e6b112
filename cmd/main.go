package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/auxy/roadside-assist/internal/auth"
	"github.com/auxy/roadside-assist/internal/config"
	"github.com/auxy/roadside-assist/internal/db"
	"github.com/auxy/roadside-assist/internal/handlers"
	"github.com/auxy/roadside-assist/internal/middleware"
	"github.com/auxy/roadside-assist/internal/notify"
	"github.com/auxy/roadside-assist/internal/service"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.Load()

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("error disconnecting from MongoDB")
		}
	}()
	log.Info("connected to MongoDB")

	collections := db.NewCollections(client.Database(cfg.MongoDB))

	// Notifications are best effort: if the broker is unreachable we
	// still store them, so a broken MQTT setup never blocks the API.
	mqttClient, err := notify.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID)
	if err != nil {
		log.WithError(err).Warn("MQTT broker unavailable, notifications will be store-only")
		mqttClient = nil
	} else {
		defer mqttClient.Disconnect(250)
	}
	events := notify.NewDispatcher(collections.Notifications, mqttClient, cfg.NotifyTimeout)

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	keyService := auth.NewKeyService(collections.ApiKeys)

	locator := service.NewLocator(collections.Users)
	requests := service.NewRequestService(collections.Requests, collections.Users, events)
	estimator := service.NewEstimator(locator)

	router := &handlers.Router{
		Auth:            handlers.NewAuthHandler(authService, collections.Users, events),
		Requests:        handlers.NewRequestHandler(requests),
		Providers:       handlers.NewProviderHandler(locator),
		Estimates:       handlers.NewEstimateHandler(estimator),
		Admin:           handlers.NewAdminHandler(collections.ApiKeys, keyService, collections.Users, events, cfg.DefaultRateLimit),
		ProviderActions: handlers.NewProviderActionsHandler(requests),
		Notifications:   handlers.NewNotificationHandler(collections.Notifications),

		ApiKeys:   middleware.NewApiKeyMiddleware(keyService),
		Sessions:  middleware.NewAuthMiddleware(authService),
		RateLimit: middleware.NewRateLimitMiddleware(),

		BurstLimit: cfg.BurstLimit,
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.Build(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
