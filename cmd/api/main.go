package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/takes-and-tastes/internal/cache"
	"github.com/fjod/takes-and-tastes/internal/config"
	h "github.com/fjod/takes-and-tastes/internal/http"
	"github.com/fjod/takes-and-tastes/internal/repository"
	"github.com/fjod/takes-and-tastes/internal/service"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.SetupLogging(cfg.LogLevel)

	ctx := context.Background()
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	mongoDB, err := repository.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := repository.CreateIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	log.WithField("database", cfg.MongoDatabase).Info("connected to MongoDB")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("redis ping succeeded")

	restaurantRepo := repository.NewRestaurantRepository(mongoDB)
	restaurants := service.NewRestaurantService(
		restaurantRepo,
		repository.NewMenuRepository(mongoDB),
		cache.NewRedisCache(redisClient, cfg.CacheTTL),
	)
	orders := service.NewOrderService(repository.NewOrderRepository(mongoDB), restaurantRepo)

	router := h.NewRouter(
		h.NewRestaurantHandler(restaurants, cfg.RequestTimeout),
		h.NewOrdersHandler(orders, cfg.RequestTimeout),
		cache.NewRedisSessions(redisClient),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(router, "takes-and-tastes-api"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Warn("mongo disconnect failed")
	}
	log.Info("server exited")
}
