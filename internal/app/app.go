// Package app собирает зависимости сервиса заказов и управляет жизненным циклом серверов.
package app

import (
	"context"
	"fmt"
	"net"
	"net/http"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/restaurant-orders/internal/health"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/metrics"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/customer"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/httpapi"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/item"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/order"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/outbox"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/preparation"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/version"
)

// Run поднимает HTTP API, gRPC health, сервер метрик и outbox worker.
// Блокируется до отмены ctx (возвращает ctx.Err()) или до ошибки одного из серверов.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.closeFn(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	producer := initKafkaProducer(cfg.KafkaBrokerList(), logger)
	defer closeKafka(producer, logger)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", deps.storageChecker)

	worker, err := newOutboxWorker(cfg, deps.outboxRepo, producer, logger.WithField("layer", "outbox"))
	if err != nil {
		return err
	}

	items := item.NewUseCase(deps.items, logger.WithField("layer", "item"))
	customers := customer.NewUseCase(deps.customers, logger.WithField("layer", "customer"))
	orders := order.NewUseCase(deps.orders, items, preparationNotifier(worker, deps.outboxRepo),
		logger.WithField("layer", "order"),
		order.WithMetrics(metrics.NewOrderMetrics()),
	)

	router := httpapi.NewRouter(httpapi.Config{
		Customers:      customers,
		Items:          items,
		Orders:         orders,
		Health:         healthHandler,
		Logger:         logger.WithField("layer", "http"),
		Metrics:        metrics.NewHTTPMetrics(),
		RequestTimeout: cfg.RequestTimeout,
	})

	httpLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
	}
	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		_ = httpLis.Close()
		return fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
	}

	httpSrv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	grpcServer, grpcHealth := newGRPCServer(logger)
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serveHTTP(httpSrv, httpLis, logger) })
	g.Go(func() error { return serveGRPC(grpcServer, grpcLis, logger) })
	g.Go(func() error {
		watchStorage(gctx, deps.storageChecker, grpcHealth, logger)
		return nil
	})
	if worker != nil {
		g.Go(func() error { return worker.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("получен сигнал остановки, останавливаем серверы")
		shutdownHTTP(httpSrv, logger)
		stopGRPC(grpcServer, grpcHealth, logger)
		shutdownHTTP(metricsSrv, logger)
		return nil
	})

	err = g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// preparationNotifier возвращает outbox-notifier, только если есть worker, который его разбирает.
// Без worker-а уведомления не пишутся вовсе: иначе outbox растёт без ограничений.
func preparationNotifier(worker *outbox.Worker, repo domain.OutboxRepository) domain.PreparationNotifier {
	if worker == nil {
		return nil
	}
	return outbox.NewNotifier(repo)
}

// newOutboxWorker связывает outbox с сервисом приготовления и, если есть Kafka, с DLQ.
// Без адреса сервиса приготовления worker не создаётся.
func newOutboxWorker(cfg Config, repo domain.OutboxRepository, producer *kafka.Producer, logger *log.Entry) (*outbox.Worker, error) {
	if cfg.PreparationBaseURL == "" {
		logger.Warn("preparation service url is not configured, status notifications are disabled")
		return nil, nil
	}

	client, err := preparation.NewClient(cfg.PreparationBaseURL, cfg.PreparationTimeout)
	if err != nil {
		return nil, fmt.Errorf("create preparation client: %w", err)
	}
	logger.WithField("endpoint", client.Endpoint()).Info("preparation notifications enabled")

	options := []outbox.Option{
		outbox.WithLogger(logger),
		outbox.WithMetrics(metrics.NewOutboxMetrics()),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	}
	if producer != nil {
		dlq := kafka.NewOutboxPublisher(producer, cfg.KafkaDLQTopic)
		logger.WithField("topic", dlq.Topic()).Info("outbox dead letters go to kafka")
		options = append(options, outbox.WithDLQPublisher(dlq))
	}
	return outbox.NewWorker(repo, client, options...), nil
}
