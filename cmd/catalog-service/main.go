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

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/sonuudigital/product-catalog/internal/cache"
	"github.com/sonuudigital/product-catalog/internal/commands"
	"github.com/sonuudigital/product-catalog/internal/config"
	"github.com/sonuudigital/product-catalog/internal/consumers"
	"github.com/sonuudigital/product-catalog/internal/events"
	productHandler "github.com/sonuudigital/product-catalog/internal/handlers/product"
	"github.com/sonuudigital/product-catalog/internal/logs"
	"github.com/sonuudigital/product-catalog/internal/opensearch"
	"github.com/sonuudigital/product-catalog/internal/postgres"
	"github.com/sonuudigital/product-catalog/internal/queries"
	"github.com/sonuudigital/product-catalog/internal/rabbitmq"
	repopg "github.com/sonuudigital/product-catalog/internal/repository/postgres"
	"github.com/sonuudigital/product-catalog/internal/router"
	"github.com/sonuudigital/product-catalog/internal/search"
	"github.com/sonuudigital/product-catalog/internal/web"
)

func main() {
	cfg, dotenvLoaded, err := config.Load()
	logger := logs.NewSlogLogger(cfg.LogLevel)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if dotenvLoaded {
		logger.Info("loaded environment variables from .env file")
	} else {
		logger.Info("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(cfg.PostgresURL); err != nil {
		logger.Error("failed to run database migrations", "error", err)
		os.Exit(1)
	}

	pool, err := postgres.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected successfully")

	rabbitmqClient, err := rabbitmq.NewClient(logger, cfg.RabbitMQURL)
	if err != nil {
		logger.Error("failed to initialize RabbitMQ client", "error", err)
		os.Exit(1)
	}
	defer rabbitmqClient.Close()

	opensearchClient, err := opensearch.NewClient(cfg.OpenSearchAddresses, cfg.OpenSearchUsername, cfg.OpenSearchPassword)
	if err != nil {
		logger.Error("failed to initialize OpenSearch client", "error", err)
		os.Exit(1)
	}

	redisClient, err := initializeRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("redis connected successfully")

	searchGateway, err := search.NewGateway(logger, opensearchClient, cfg.ProductIndex)
	if err != nil {
		logger.Error("failed to create search gateway", "error", err)
		os.Exit(1)
	}

	productCache := cache.NewProductCache(redisClient, cfg.ProductCacheTTL)
	productRepo := repopg.NewProductRepository(pool)
	publisher := events.NewPublisher(rabbitmqClient)

	commandService := commands.NewCommands(logger, productRepo, publisher)
	queryService := queries.NewQueries(logger, searchGateway, productCache)
	projector := consumers.NewProjector(logger, rabbitmqClient, searchGateway, productCache)

	handler, err := productHandler.NewHandler(logger, commandService, queryService, productRepo)
	if err != nil {
		logger.Error("failed to create product handler", "error", err)
		os.Exit(1)
	}

	httpRouter, err := router.New(logger, handler, rabbitmqClient)
	if err != nil {
		logger.Error("failed to create router", "error", err)
		os.Exit(1)
	}

	if err := startServices(ctx, logger, cfg.HTTPPort, projector, httpRouter); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application error", "error", err)
		os.Exit(1)
	}

	logger.Info("application shut down gracefully")
}

func startServices(ctx context.Context, logger logs.Logger, port string, projector *consumers.Projector, handler http.Handler) error {
	g, gCtx := errgroup.WithContext(ctx)

	for _, kind := range events.Kinds() {
		g.Go(func() error {
			return projector.Start(gCtx, kind)
		})
	}

	g.Go(func() error {
		return startHTTPServer(gCtx, logger, port, handler)
	})

	return g.Wait()
}

func startHTTPServer(ctx context.Context, logger logs.Logger, port string, handler http.Handler) error {
	srv, err := web.InitializeServer(port, handler)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shCancel()
		if err := srv.Shutdown(shCtx); err != nil {
			logger.Error("failed to shutdown server", "error", err)
		} else {
			logger.Info("server shutdown complete")
		}
	}()

	logger.Info("starting HTTP server", "port", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

func initializeRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		return nil, fmt.Errorf("could not ping redis: %w", err)
	}

	return client, nil
}
