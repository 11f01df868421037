package observability

import (
	"context"
	"time"

	"github.com/skillsenselab/vaani/logger"
)

// Config configures OpenTelemetry export. A blank Endpoint disables both
// tracing and metrics.
type Config struct {
	ServiceName    string        `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string        `yaml:"service_version" mapstructure:"service_version"`
	Environment    string        `yaml:"environment" mapstructure:"environment"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"` // OTLP HTTP host:port, e.g. "localhost:4318"
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	Interval       time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "vaani"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// Enabled reports whether an OTLP endpoint is configured.
func (c *Config) Enabled() bool { return c.Endpoint != "" }

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(ctx context.Context) error

// Setup initializes tracing and metrics when an endpoint is configured.
// It returns a shutdown function that is always safe to call.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	cfg.ApplyDefaults()

	if !cfg.Enabled() {
		logger.Debug("Observability disabled, no OTLP endpoint configured")
		return func(context.Context) error { return nil }, nil
	}

	tp, err := initTracer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mp, err := initMeter(ctx, cfg)
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
		return nil, err
	}

	logger.Info("Observability initialized", map[string]interface{}{
		"endpoint":    cfg.Endpoint,
		"sample_rate": cfg.SampleRate,
		"interval":    cfg.Interval.String(),
	})

	return func(ctx context.Context) error {
		mpErr := mp.Shutdown(ctx)
		tpErr := tp.Shutdown(ctx)
		if mpErr != nil {
			return mpErr
		}
		return tpErr
	}, nil
}
