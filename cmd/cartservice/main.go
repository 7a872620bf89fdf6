package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/cart"
	"github.com/motohub/motohub-cart-service/internal/catalog"
	"github.com/motohub/motohub-cart-service/internal/clients"
	"github.com/motohub/motohub-cart-service/internal/config"
	"github.com/motohub/motohub-cart-service/internal/events"
	"github.com/motohub/motohub-cart-service/internal/feeds"
	"github.com/motohub/motohub-cart-service/internal/handlers"
	"github.com/motohub/motohub-cart-service/internal/request"
	"github.com/motohub/motohub-cart-service/internal/server"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting cart-service", zap.Int("port", cfg.Server.Port))

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	cartStore := cart.NewPostgresStore(db, logger)
	prefillStore := cart.NewRedisPrefillStore(cfg.Redis, logger)
	defer prefillStore.Close()

	snapshot := catalog.NewSnapshot()
	manager := cart.NewManager(cartStore, prefillStore, snapshot, cfg.Pricing.TaxRate, logger)

	feedClient := clients.NewHTTPFeedClient(cfg.ProviderService, logger)
	bookingClient := clients.NewHTTPBookingClient(cfg.BookingService, logger)
	authClient := clients.NewHTTPAuthClient(cfg.AuthService, logger)

	var feedCache *feeds.SnapshotCache
	if cfg.Features.EnableFeedCache {
		feedCache = feeds.NewSnapshotCache(cfg.Redis, logger)
		defer feedCache.Close()
	}

	refresher := feeds.NewRefresher(feedClient, snapshot, manager, feedCache, cfg.Feeds.RefreshInterval, logger)
	refresher.Start(context.Background())

	var submitEvents request.EventPublisher
	if cfg.Features.EnableSubmitEvents {
		eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer eventPublisher.Close()
		submitEvents = eventPublisher
	}

	builder := request.NewBuilder(authClient, bookingClient, submitEvents, logger)

	h := handlers.NewHandlers(manager, builder, snapshot, cfg, logger)

	srv := server.New(h, cfg)

	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Duration("feed_refresh_interval", cfg.Feeds.RefreshInterval),
			zap.Bool("enable_submit_events", cfg.Features.EnableSubmitEvents))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	var prefillConsumer *events.PrefillConsumer
	if cfg.Features.EnablePrefillConsumer {
		prefillConsumer = events.NewPrefillConsumer(cfg.Kafka, prefillStore, logger)
		go func() {
			if err := prefillConsumer.Start(context.Background()); err != nil && err != context.Canceled {
				logger.Error("Prefill consumer failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	refresher.Stop()
	if prefillConsumer != nil {
		prefillConsumer.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name))

	return db, nil
}
