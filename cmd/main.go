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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"

	"github.com/before-thirty/live-chat/internal/cache"
	"github.com/before-thirty/live-chat/internal/config"
	"github.com/before-thirty/live-chat/internal/domain"
	"github.com/before-thirty/live-chat/internal/handler"
	"github.com/before-thirty/live-chat/internal/hub"
	"github.com/before-thirty/live-chat/internal/membership"
	"github.com/before-thirty/live-chat/internal/metrics"
	"github.com/before-thirty/live-chat/internal/repository"
	"github.com/before-thirty/live-chat/internal/service"
	"github.com/before-thirty/live-chat/pkg/database"
	pkglog "github.com/before-thirty/live-chat/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "live-chat",
	})
	logger := pkglog.L()

	// Connect to database using GORM
	dbConfig := &database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate
	if err := database.AutoMigrate(db,
		&domain.TripModel{},
		&domain.TripUserModel{},
		&domain.UserModel{},
		&domain.GroupModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Initialize repositories
	var tripRepo repository.TripRepository = repository.NewGormTripRepository(db)
	groupRepo := repository.NewGormGroupRepository(db)

	// Trip lookups go through Redis when enabled
	if cfg.Cache.Enabled {
		tripCache, err := cache.NewRedisTripCache(cfg.Redis, cfg.Cache.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer tripCache.Close()
		tripRepo = repository.NewCachedTripRepository(tripRepo, tripCache, cfg.Cache.TTL)
		logger.Info().Str("address", cfg.Redis.Address).Msg("redis trip cache connected")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Realtime core
	wsHub := hub.NewHub(m)
	coordinator := membership.NewCoordinator(wsHub, tripRepo, m)
	wsHandler := handler.NewWSHandler(wsHub, coordinator, cfg.WebSocket, cfg.CORS)

	// REST surface
	httpHandler := handler.NewHandler(
		service.NewGroupService(groupRepo),
		service.NewTripService(tripRepo),
	)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger, "/health", "/metrics"))
	r.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	httpHandler.RegisterRoutes(r)

	mux := http.NewServeMux()
	wsHandler.RegisterRoutes(mux, cfg.WebSocket.Path)
	mux.Handle("/", r)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", server.Addr).Str("driver", cfg.Database.Driver).Str("ws_path", cfg.WebSocket.Path).Msg("live-chat starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Int("connections", wsHub.ConnectionCount()).Msg("shutting down live-chat")

	// Hijacked WebSocket connections are not tracked by Shutdown
	wsHub.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("live-chat stopped")
}
