package main

import (
	"context"

	"github.com/gabapcia/txsentinel/internal/alerting"
	"github.com/gabapcia/txsentinel/internal/config"
	"github.com/gabapcia/txsentinel/internal/engine"
	"github.com/gabapcia/txsentinel/internal/handlers/cli"
	"github.com/gabapcia/txsentinel/internal/infra/chain/ethereum"
	"github.com/gabapcia/txsentinel/internal/infra/notifier/webhook"
	"github.com/gabapcia/txsentinel/internal/infra/storage/redis"
	"github.com/gabapcia/txsentinel/internal/pipeline"
	"github.com/gabapcia/txsentinel/internal/pkg/logger"
	"github.com/gabapcia/txsentinel/internal/pkg/resilience/retry"
	"github.com/gabapcia/txsentinel/internal/pkg/telemetry"
	transporthttp "github.com/gabapcia/txsentinel/internal/pkg/transport/http"
	"github.com/gabapcia/txsentinel/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/txsentinel/internal/pkg/types"
	"github.com/gabapcia/txsentinel/internal/rules"
	"github.com/gabapcia/txsentinel/internal/txstream"
	"github.com/gabapcia/txsentinel/internal/watchlist"
)

// buildRegistry assembles the fixed rule set for this run. The persisted
// watchlist is merged with the configured addresses so operator registrations
// survive restarts; duplicate rule identifiers abort startup.
func buildRegistry(ctx context.Context, cfg config.Config, wl watchlist.Service) (*rules.Registry, error) {
	persisted, err := wl.Addresses(ctx)
	if err != nil {
		return nil, err
	}

	watched := types.NewSet(cfg.WatchlistAddresses...)
	watched.Add(persisted...)

	registry := rules.NewRegistry()
	ruleSet := []rules.Rule{
		rules.NewLargeTransferRule(cfg.LargeTransferThresholdValue()),
		rules.NewSelfCallRule(),
		rules.NewWatchlistRule(watched.ToSlice(), cfg.MaxHopCount),
		rules.NewValueAnomalyRule(cfg.AnomalyWindowSize, cfg.AnomalyZThreshold, cfg.VarianceMode()),
	}
	for _, rule := range ruleSet {
		if err := registry.Register(rule); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.TelemetryEnabled {
		telemetryShutdown, err := telemetry.Init(ctx, cfg.ServiceName)
		if err != nil {
			panic(err)
		}
		defer telemetryShutdown(ctx)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		panic(err)
	}
	defer logger.Sync()

	storage, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to redis", "error", err)
	}
	defer storage.Close()

	wl := watchlist.New(storage)

	registry, err := buildRegistry(ctx, cfg, wl)
	if err != nil {
		logger.Fatal(ctx, "failed to assemble rule registry", "error", err)
	}

	// The JSON-RPC provider client keeps its own short retry budget for
	// transient node hiccups; delivery retries for findings are owned by the
	// dispatcher instead, so the webhook client runs with retries disabled.
	providerClient := jsonrpc.NewClient(
		transporthttp.NewClient().StandardClient(),
		cfg.ProviderEndpoint,
	)

	source := ethereum.NewClient(providerClient)
	stream := txstream.New(source,
		txstream.WithStreamName(cfg.ServiceName),
		txstream.WithCheckpointStorage(storage),
		txstream.WithQueueCapacity(cfg.EventQueueCapacity),
	)

	eng := engine.New(registry)

	sink := webhook.NewNotifier(
		transporthttp.NewClient(transporthttp.WithRetryMax(0)),
		cfg.WebhookURL,
	)
	dispatcher := alerting.New(sink, cfg.AlertChannel,
		alerting.WithRetry(retry.New(
			retry.WithAttempts(cfg.SinkMaxAttempts),
			retry.WithDelay(cfg.SinkInitialBackoff),
			retry.WithMaxDelay(cfg.SinkMaxBackoff),
		)),
		alerting.WithFailureJournal(storage),
	)

	pl := pipeline.New(stream, eng, dispatcher)

	if err := cli.Run(ctx, wl, pl); err != nil {
		logger.Fatal(ctx, "application terminated with an error", "error", err)
	}
}
