package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreyxaxa/Photo-Transformer/config"
	"github.com/andreyxaxa/Photo-Transformer/internal/controller/restapi"
	"github.com/andreyxaxa/Photo-Transformer/internal/controller/worker/janitor"
	"github.com/andreyxaxa/Photo-Transformer/internal/controller/worker/outbox"
	infrakafka "github.com/andreyxaxa/Photo-Transformer/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Photo-Transformer/internal/infrastructure/processor"
	"github.com/andreyxaxa/Photo-Transformer/internal/infrastructure/provider"
	"github.com/andreyxaxa/Photo-Transformer/internal/repo/inmemory"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase/events"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase/image"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase/imageprocessor"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase/retention"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase/transform"
	"github.com/andreyxaxa/Photo-Transformer/pkg/httpserver"
	"github.com/andreyxaxa/Photo-Transformer/pkg/kafka/producer"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level, logger.File(cfg.Log.File))
	defer func() { _ = l.Sync() }()

	if cfg.Provider.ModelRemapped {
		l.Warn("Invalid OPENROUTER_MODEL '%s' overridden to '%s'", cfg.Provider.RawModel, cfg.Provider.Model)
	}

	// Repository
	jobRepo := inmemory.NewJobRepo()
	blobRepo := inmemory.NewBlobRepo()
	outboxRepo := inmemory.NewOutboxRepo()

	// Use-Case

	// events use-case
	publishEvents := len(cfg.Kafka.Brokers) > 0
	eventsUseCase := events.New(outboxRepo, publishEvents, l)

	// retention scheduler
	retentionScheduler := retention.New(jobRepo, blobRepo, eventsUseCase, l, cfg.JobTTL())

	// image use-case
	imageUseCase := image.New(blobRepo, l)

	// image processor use-case
	imageProcessorUseCase := imageprocessor.New(processor.New(), cfg.Provider.MaxImageDimension)

	// provider
	prompt, err := provider.LoadPrompt(cfg.Transform.PromptFile)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - provider.LoadPrompt: %w", err))
	}

	gateway := provider.New(
		cfg.Provider.APIKey,
		provider.Candidates(cfg.Provider.Model, cfg.Provider.RawModel),
		l,
		provider.BaseURL(cfg.Provider.BaseURL),
		provider.Attribution(cfg.Provider.Referer, cfg.Provider.Title, cfg.Provider.UserAgent),
		provider.AttemptTimeout(cfg.Provider.AttemptTimeout),
		provider.MaxTokens(cfg.Provider.MaxTokens),
		provider.Temperature(cfg.Provider.Temperature),
	)
	if !cfg.Transform.MockEnabled {
		if err = gateway.Ready(); err != nil {
			l.Warn("%s", err.Error())
		}
	}

	// transform use-case
	transformUseCase := transform.New(
		jobRepo,
		blobRepo,
		retentionScheduler,
		eventsUseCase,
		imageProcessorUseCase,
		gateway,
		provider.NewFetcher(cfg.Provider.RemoteFetchTimeout),
		l,
		transform.Settings{
			Mock:                  cfg.Transform.MockEnabled,
			MockStepDelay:         cfg.Transform.MockStepDelay,
			AllowFallbackOriginal: cfg.Transform.FallbackEnabled,
			Prompt:                prompt,
		},
	)

	// Outbox Relay Worker
	var outboxRelayWorker *outbox.OutboxRelay
	if publishEvents {
		kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers,
			producer.ConnAttempts(cfg.Kafka.ConnAttempts),
			producer.ConnTimeout(cfg.Kafka.ConnTimeout),
			producer.Logger(l),
		)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
		}

		outboxRelayWorker = outbox.New(
			eventsUseCase,
			infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.Topic),
			l,
			outbox.Config{
				PollInterval:        cfg.OutboxRelay.PollInterval,
				CleanupInterval:     cfg.OutboxRelay.CleanupInterval,
				ProcessBatchTimeout: cfg.OutboxRelay.ProcessBatchTimeout,
				BatchSize:           cfg.OutboxRelay.BatchSize,
				MaxRetries:          cfg.OutboxRelay.MaxRetries,
			},
		)
	}

	// Orphan upload janitor
	janitorWorker := janitor.New(imageUseCase, l, cfg.Retention.JanitorInterval, cfg.JobTTL())

	// HTTP Server
	if cfg.HTTP.UsePreforkMode {
		l.Warn("app - Run - prefork mode ignored: job state lives in a single process")
	}
	httpServer := httpserver.New(l,
		httpserver.Address(cfg.HTTP.Host, cfg.HTTP.Port),
		httpserver.Prefork(false),
		httpserver.BodyLimit(cfg.HTTP.BodyLimit),
		httpserver.ErrorHandler(restapi.ErrorHandler(l)),
	)
	restapi.NewRouter(httpServer.App, cfg, imageUseCase, transformUseCase, l)

	// Start Components
	if outboxRelayWorker != nil {
		err = outboxRelayWorker.Start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
		}
	}
	err = janitorWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - janitorWorker.Start: %w", err))
	}
	httpServer.Start()

	l.Info("Server started (MOCK_AI=%t, OPENROUTER_MODEL=%s)", cfg.Transform.MockEnabled, cfg.Provider.Model)

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	trShutdownCtx, trShutdownCancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer trShutdownCancel()
	err = transformUseCase.Shutdown(trShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - transformUseCase.Shutdown: %w", err))
	}

	if outboxRelayWorker != nil {
		orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
		defer orlShutdownCancel()
		err = outboxRelayWorker.Shutdown(orlShutdownCtx)
		if err != nil {
			l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
		}
	}

	jShutdownCtx, jShutdownCancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer jShutdownCancel()
	err = janitorWorker.Shutdown(jShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - janitorWorker.Shutdown: %w", err))
	}

	retentionScheduler.Shutdown()
}
