package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/Carlos-Bolano/Pocka/internal/amqp"
	"github.com/Carlos-Bolano/Pocka/internal/backend"
	"github.com/Carlos-Bolano/Pocka/internal/cli"
	"github.com/Carlos-Bolano/Pocka/internal/log"
	"github.com/Carlos-Bolano/Pocka/internal/remote"
	"github.com/Carlos-Bolano/Pocka/internal/store"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentApp)
	logger.Info("Starting pocka-agent")

	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	if err := backendCfg.Validate(); err != nil {
		logger.Error("Backend configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, log.FieldBackend, backendCfg.Type)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	// AMQP fan-out is optional. Without it the agent still serves the
	// local cache, it just does not feed the mirror.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without mirror fan-out", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	opts := []store.Option{}
	if result.Subscriber != nil {
		opts = append(opts, store.WithSubscriber(result.Subscriber))
	}
	st := store.New(result.Identity, result.Store, logger.WithComponent(log.ComponentStore).Logger, opts...)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		st.Reset()
	})

	state, err := st.Initialize(ctx)
	if err != nil {
		logger.Error("Initial load failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Cache initialized",
		log.FieldState, state,
		log.FieldBalance, st.Balance().String())

	if state == store.StateEmpty {
		logger.Info("No authenticated user, cache stays empty until one signs in")
	}

	// Republish change events to AMQP so the mirror worker sees every
	// mutation the cache applies.
	if amqpClient != nil && result.Subscriber != nil && st.User() != nil {
		userID := st.User().ID
		for _, collection := range []remote.Collection{
			remote.CollectionGoals,
			remote.CollectionTransactions,
			remote.CollectionCategories,
		} {
			cancel, err := result.Subscriber.Subscribe(collection, userID, func(ev remote.Event) {
				if err := amqpClient.PublishMutation(ctx, ev); err != nil {
					logger.Error("Failed to publish mutation",
						log.FieldError, err,
						log.FieldCollection, ev.Collection,
						log.FieldRecordID, ev.RecordID)
				}
			})
			if err != nil {
				logger.Error("Failed to subscribe for fan-out", log.FieldError, err, log.FieldCollection, collection)
				os.Exit(1)
			}
			defer cancel()
		}
	}

	// Periodic refetch keeps the cache converged with the remote even if
	// a realtime event is missed.
	ticker := time.NewTicker(cfg.RefetchInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, collection := range []remote.Collection{
					remote.CollectionGoals,
					remote.CollectionTransactions,
					remote.CollectionCategories,
				} {
					if err := st.Refetch(ctx, collection); err != nil {
						if errors.Is(err, store.ErrRefetchInProgress) || errors.Is(err, store.ErrNoUser) {
							continue
						}
						logger.Error("Periodic refetch failed", log.FieldError, err, log.FieldCollection, collection)
					}
				}
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
