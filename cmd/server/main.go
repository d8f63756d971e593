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

	"golang.org/x/sync/errgroup"

	"github.com/workhubhq/presence-gateway/config"
	"github.com/workhubhq/presence-gateway/internal/auth"
	httpDelivery "github.com/workhubhq/presence-gateway/internal/delivery/http"
	"github.com/workhubhq/presence-gateway/internal/delivery/kafka/consumer"
	"github.com/workhubhq/presence-gateway/internal/delivery/kafka/producer"
	"github.com/workhubhq/presence-gateway/internal/gateway"
	"github.com/workhubhq/presence-gateway/internal/infra/postgres"
	"github.com/workhubhq/presence-gateway/internal/infra/redis"
	pgRepo "github.com/workhubhq/presence-gateway/internal/repository/postgres"
	redisRepo "github.com/workhubhq/presence-gateway/internal/repository/redis"
	"github.com/workhubhq/presence-gateway/internal/service"
	pkgKafka "github.com/workhubhq/presence-gateway/pkg/kafka"
	pkgLog "github.com/workhubhq/presence-gateway/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	pgPool, err := postgres.Connect(ctx, cfg.Postgres)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Postgres: %v", err)
	}
	defer postgres.Disconnect(pgPool)

	redisCli, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer redis.Disconnect(redisCli)

	msgRepo := pgRepo.NewMessageRepository(pgPool, l)
	userRepo := pgRepo.NewUserRepository(pgPool, l)
	unreadCache := redisRepo.NewUnreadCache(redisCli, l)

	msgSvc := service.NewMessageService(msgRepo, userRepo, unreadCache, l)
	verifier := auth.NewAuthenticator(cfg.JWT)

	// Presence events and workforce notifications travel over Kafka. Both
	// sides are optional so the gateway can run standalone in development.
	var presencePub producer.Producer
	var kafkaCons *consumer.Consumer
	if cfg.Kafka.Enabled {
		kafkaSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			RetryMax:     cfg.Kafka.ProducerRetryMax,
			RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
		}
		defer kafkaSyncProd.Close()

		presencePub = producer.NewProducer(kafkaSyncProd, l)
	}

	gw, err := gateway.Initialize(cfg.Gateway, verifier, msgSvc, presencePub, l)
	if err != nil {
		l.Fatalf(ctx, "Failed to initialize gateway: %v", err)
	}
	defer gw.Close()

	if cfg.Kafka.Enabled {
		kafkaConsGr, err := pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.ConsumerGroupID,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
		}

		kafkaCons = consumer.NewConsumer(kafkaConsGr, gw, l)
		if err := kafkaCons.Start(ctx); err != nil {
			l.Fatalf(ctx, "Failed to start Kafka consumer: %v", err)
		}
		defer kafkaCons.Close()
	}

	h := httpDelivery.NewHandler(msgSvc, gw, l)
	router := httpDelivery.NewRouter(cfg.Gateway, h, gw.HandleWS, verifier, l)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Infof(gCtx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			l.Infof(gCtx, "Received signal: %v, shutting down...", sig)
		case <-gCtx.Done():
		}

		// Stop the consumer loops before the deferred closes run, so
		// Close's wait can complete.
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Errorf(ctx, "Server error: %v", err)
	}

	l.Info(ctx, "Server exited")
}
