// Package config loads and validates the process-wide configuration. The
// snapshot is read once at startup and never mutated afterward: changing a
// threshold requires restarting evaluation with a new snapshot, so a single
// event is never evaluated against two different configurations.
//
// Validation fails closed. A missing or malformed required key aborts the
// process before any event is evaluated, naming the offending key; silently
// substituting defaults for detection thresholds is exactly the
// misconfiguration failure mode this design rejects.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/txsentinel/internal/pkg/types"
	"github.com/gabapcia/txsentinel/internal/pkg/validator"
	"github.com/gabapcia/txsentinel/internal/rules"

	"github.com/kelseyhightower/envconfig"
)

// ErrInvalidConfiguration is the root of every configuration failure. The
// wrapped error names the missing or malformed key.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config is the immutable process-wide configuration snapshot.
type Config struct {
	// Ambient settings
	ServiceName      string `envconfig:"SERVICE_NAME" default:"txsentinel"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`

	// External collaborators
	ProviderEndpoint string `envconfig:"PROVIDER_ENDPOINT"`
	WebhookURL       string `envconfig:"WEBHOOK_URL"`
	AlertChannel     string `envconfig:"ALERT_CHANNEL" default:"webhook"`
	RedisAddr        string `envconfig:"REDIS_ADDR"`
	RedisUsername    string `envconfig:"REDIS_USERNAME"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD"`
	RedisDB          int    `envconfig:"REDIS_DB" default:"0"`

	// Pipeline sizing
	EventQueueCapacity int           `envconfig:"EVENT_QUEUE_CAPACITY" default:"1024" validate:"gt=0"`
	SinkMaxAttempts    uint          `envconfig:"SINK_MAX_ATTEMPTS" default:"5" validate:"gt=0"`
	SinkInitialBackoff time.Duration `envconfig:"SINK_INITIAL_BACKOFF" default:"1s"`
	SinkMaxBackoff     time.Duration `envconfig:"SINK_MAX_BACKOFF" default:"30s"`

	// Detection thresholds. These have no defaults on purpose: every rule's
	// required threshold must be stated explicitly.
	LargeTransferThreshold string   `envconfig:"LARGE_TRANSFER_THRESHOLD" required:"true"`
	AnomalyWindowSize      int      `envconfig:"ANOMALY_WINDOW_SIZE" required:"true" validate:"gt=0"`
	AnomalyZThreshold      float64  `envconfig:"ANOMALY_Z_THRESHOLD" default:"3" validate:"gt=0"`
	AnomalyVarianceMode    string   `envconfig:"ANOMALY_VARIANCE_MODE" default:"population" validate:"oneof=population sample"`
	WatchlistAddresses     []string `envconfig:"WATCHLIST_ADDRESSES"`
	MaxHopCount            int      `envconfig:"MAX_HOP_COUNT" default:"0" validate:"gte=0"`

	// largeTransferThreshold holds the parsed big-integer cutoff.
	largeTransferThreshold types.BigInt
}

// Load reads the configuration from the environment and validates it. Any
// missing or malformed key produces an error wrapping ErrInvalidConfiguration
// that names the key.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	threshold, err := types.BigIntFromString(cfg.LargeTransferThreshold)
	if err != nil {
		return Config{}, fmt.Errorf("%w: key LARGE_TRANSFER_THRESHOLD: %v", ErrInvalidConfiguration, err)
	}
	cfg.largeTransferThreshold = threshold

	return cfg, nil
}

// LargeTransferThresholdValue returns the parsed arbitrary-precision
// threshold for the large transfer rule.
func (c Config) LargeTransferThresholdValue() types.BigInt {
	return c.largeTransferThreshold
}

// VarianceMode returns the configured variance estimator for the anomaly rule.
func (c Config) VarianceMode() rules.VarianceMode {
	return rules.VarianceMode(c.AnomalyVarianceMode)
}
