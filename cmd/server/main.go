package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/config"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/credentials"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/es"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/handlers"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/logging"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/metrics"
	authmw "github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/middleware/auth"
	loggingmw "github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/middleware/logging"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/notifier"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/otp"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/provider"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/service"
	httpserver "github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	var otpStore otp.Store
	redisStore, err := otp.NewRedisStore(configuration.REDIS_URL)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	if redisStore != nil {
		otpStore = redisStore
	} else {
		logger.Warn("REDIS_URL not set, using in-memory OTP store")
		otpStore = otp.NewMemoryStore()
	}

	prod := notifier.NewProducer([]string{configuration.KAFKA_ADDRESS}, "notification_events")

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}
	if esClient == nil {
		logger.Warn("ES_URL not set, doctor search disabled")
	}

	m := metrics.New()

	authProvider := &provider.Provider{
		DB:         db,
		OTPs:       otpStore,
		Notifier:   prod,
		SessionTTL: configuration.SESSION_EXPIRES_IN,
		OTPTTL:     configuration.OTP_EXPIRES_IN,
	}

	accessSecret := []byte(configuration.ACCESS_TOKEN_SECRET)
	refreshSecret := []byte(configuration.REFRESH_TOKEN_SECRET)

	authService := &service.AuthService{
		DB:            db,
		Provider:      authProvider,
		Metrics:       m,
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     configuration.ACCESS_TOKEN_EXPIRES_IN,
		RefreshTTL:    configuration.REFRESH_TOKEN_EXPIRES_IN,
	}

	resolver := &credentials.Resolver{Provider: authProvider, AccessSecret: accessSecret}
	guard := &authmw.Guard{Provider: authProvider, AccessSecret: accessSecret, Metrics: m}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	// Cookie-carrying browser clients live on other origins, so the origin is
	// reflected and credentials allowed.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc:  func(origin string) (bool, error) { return true, nil },
		AllowCredentials: true,
	}))

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{
			Service:    authService,
			Resolver:   resolver,
			Production: configuration.IsProduction(),
			AccessTTL:  configuration.ACCESS_TOKEN_EXPIRES_IN,
			RefreshTTL: configuration.REFRESH_TOKEN_EXPIRES_IN,
			SessionTTL: configuration.SESSION_EXPIRES_IN,
		},
		DoctorHandler:    &handlers.DoctorHandler{DB: db, ES: esClient, Index: "doctors"},
		SpecialtyHandler: &handlers.SpecialtyHandler{DB: db},
		Guard:            guard,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
