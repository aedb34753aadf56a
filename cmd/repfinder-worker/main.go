package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/runner"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(apperrors.ExitFailure)
	}
	os.Exit(run(cfg))
}

// run returns the process exit code. A consumer that stops on an unprocessed
// message exits non-zero so the supervisor restarts it and the message is
// redelivered.
func run(cfg *config.Config) int {
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting repfinder worker",
		"brokers", cfg.Kafka.Brokers,
		"support", cfg.Discovery.Support,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
	}

	opts, err := runner.OptionsFromConfig(cfg.Discovery)
	if err != nil {
		slog.Error("invalid discovery config", "error", err)
		return apperrors.ExitCode(err)
	}
	backends, err := runner.OpenBackends(ctx, cfg, m)
	if err != nil {
		slog.Error("failed to open backends", "error", err)
		return apperrors.ExitCode(err)
	}
	defer backends.Close()

	if cfg.Metrics.Enabled {
		checker := health.NewChecker()
		backends.RegisterChecks(checker)
		shutdown := metrics.StartServer(cfg.Metrics.Port, map[string]http.Handler{
			"/health/live":  checker.LiveHandler(),
			"/health/ready": checker.ReadyHandler(),
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	r, err := runner.New(opts, backends.Deps)
	if err != nil {
		slog.Error("failed to create runner", "error", err)
		return apperrors.ExitCode(err)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.Results)
	defer producer.Close()

	retry := resilience.RetryConfig{
		MaxAttempts:  cfg.Kafka.PublishRetry.Attempts,
		InitialDelay: cfg.Kafka.PublishRetry.InitialDelay,
		MaxDelay:     cfg.Kafka.PublishRetry.MaxDelay,
	}
	if m != nil {
		retry.OnRetry = func(int, error) { m.PublishRetries.Inc() }
	}
	handler := runner.HandleJob(r, producer, retry)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.Jobs, handler)

	slog.Info("worker ready, consuming from kafka",
		"topic", cfg.Kafka.Topics.Jobs,
		"results_topic", cfg.Kafka.Topics.Results,
		"group", cfg.Kafka.ConsumerGroup,
	)

	if err := consumer.Start(ctx); err != nil {
		slog.Error("consumer stopped", "error", err)
		return apperrors.ExitFailure
	}

	slog.Info("repfinder worker stopped")
	return apperrors.ExitOK
}
