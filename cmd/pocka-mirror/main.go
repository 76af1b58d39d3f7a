package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/Carlos-Bolano/Pocka/internal/amqp"
	"github.com/Carlos-Bolano/Pocka/internal/cli"
	"github.com/Carlos-Bolano/Pocka/internal/log"
	"github.com/Carlos-Bolano/Pocka/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting pocka-mirror")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	mirror := cli.InitMirrorStore(logger, cfg.SQLiteDBPath)
	defer mirror.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(mirror, cfg.MirrorBatchSize)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	go func() {
		err := amqpClient.ConsumeMutations(ctx, func(msg *amqp.MutationMessage) error {
			return mirrorWorker.HandleMutation(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Mutation consumption stopped", log.FieldError, err)
			os.Exit(1)
		}
	}()

	logger.Info("Mirror worker running",
		"db_path", cfg.SQLiteDBPath,
		"queue", cfg.AMQPQueue)

	cli.WaitForShutdown(ctx, done)
}
