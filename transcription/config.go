package transcription

import (
	"fmt"
	"runtime"
	"time"
)

// BatchConfig bounds batch requests.
type BatchConfig struct {
	// MaxFiles caps the number of files per batch request.
	MaxFiles int `yaml:"max_files" mapstructure:"max_files"`
	// Workers is the number of items transcribed concurrently.
	// Defaults to the number of available cores.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// Config controls the engine.
type Config struct {
	// MaxConcurrent bounds concurrent inference dispatch across all
	// requests.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	// MaxWait is how long a request waits for an inference slot.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
	// AttemptTimeout bounds a single backend attempt.
	AttemptTimeout time.Duration `yaml:"attempt_timeout" mapstructure:"attempt_timeout"`
	// DrainTimeout bounds the wait for in-flight work on shutdown.
	DrainTimeout time.Duration `yaml:"drain_timeout" mapstructure:"drain_timeout"`
	// DefaultLanguage is assumed when a request declares none.
	DefaultLanguage string `yaml:"default_language" mapstructure:"default_language"`
	// DefaultDecoding is assumed when a request declares none.
	DefaultDecoding DecodingMode `yaml:"default_decoding" mapstructure:"default_decoding"`
	// CodeMixThreshold is the Latin-token ratio for auto routing.
	CodeMixThreshold float64 `yaml:"code_mix_threshold" mapstructure:"code_mix_threshold"`

	Batch BatchConfig `yaml:"batch" mapstructure:"batch"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 8
	}
	if c.MaxWait == 0 {
		c.MaxWait = 10 * time.Second
	}
	if c.AttemptTimeout == 0 {
		c.AttemptTimeout = 60 * time.Second
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = 30 * time.Second
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = DefaultLanguage
	}
	if c.DefaultDecoding == "" {
		c.DefaultDecoding = DecodingCTC
	}
	if c.CodeMixThreshold == 0 {
		c.CodeMixThreshold = DefaultCodeMixThreshold
	}
	if c.Batch.MaxFiles == 0 {
		c.Batch.MaxFiles = 10
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = runtime.NumCPU()
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("engine.max_concurrent must be >= 1")
	}
	if c.AttemptTimeout <= 0 {
		return fmt.Errorf("engine.attempt_timeout must be positive")
	}
	if !ValidDecoding(c.DefaultDecoding) {
		return fmt.Errorf("engine.default_decoding must be ctc or rnnt (got: %s)", c.DefaultDecoding)
	}
	if !IsSupported(c.DefaultLanguage) || c.DefaultLanguage == LanguageAuto {
		return fmt.Errorf("engine.default_language must be a concrete supported language (got: %s)", c.DefaultLanguage)
	}
	if c.Batch.MaxFiles < 1 {
		return fmt.Errorf("engine.batch.max_files must be >= 1")
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("engine.batch.workers must be >= 1")
	}
	return nil
}
