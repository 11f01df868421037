package main

import (
	"github.com/skillsenselab/vaani/audio"
	"github.com/skillsenselab/vaani/config"
	"github.com/skillsenselab/vaani/observability"
	"github.com/skillsenselab/vaani/server"
	"github.com/skillsenselab/vaani/tempstore"
	"github.com/skillsenselab/vaani/transcription"
	"github.com/skillsenselab/vaani/transcription/conformerhf"
	"github.com/skillsenselab/vaani/transcription/conformeronnx"
	"github.com/skillsenselab/vaani/transcription/whisper"
)

// BackendsConfig groups the sidecar endpoints.
type BackendsConfig struct {
	ConformerONNX conformeronnx.Config `yaml:"conformer_onnx" mapstructure:"conformer_onnx"`
	ConformerHF   conformerhf.Config   `yaml:"conformer_hf" mapstructure:"conformer_hf"`
	Whisper       whisper.Config       `yaml:"whisper" mapstructure:"whisper"`
}

// Config is the composed application configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	HTTP          server.Config        `yaml:"http" mapstructure:"http"`
	Audio         audio.Config         `yaml:"audio" mapstructure:"audio"`
	Engine        transcription.Config `yaml:"engine" mapstructure:"engine"`
	TempStore     tempstore.Config     `yaml:"tempstore" mapstructure:"tempstore"`
	Backends      BackendsConfig       `yaml:"backends" mapstructure:"backends"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies default values across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "vaani"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Audio.ApplyDefaults()
	// The HTTP body limit must admit the largest allowed upload.
	if c.HTTP.MaxBodySize == "" {
		c.HTTP.MaxBodySize = c.Audio.MaxUploadSize
	}
	c.HTTP.ApplyDefaults()
	c.Engine.ApplyDefaults()
	c.TempStore.ApplyDefaults()
	c.Backends.ConformerONNX.ApplyDefaults()
	c.Backends.ConformerHF.ApplyDefaults()
	c.Backends.Whisper.ApplyDefaults()
	c.Observability.ApplyDefaults()

	if c.Observability.ServiceName == "" || c.Observability.ServiceName == "vaani" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.Environment == "development" {
		c.Observability.Environment = c.Environment
	}
}

// Validate validates all configuration sections.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Audio.Validate(); err != nil {
		return err
	}
	return c.Engine.Validate()
}

// loadConfig reads config.yml and environment overrides.
func loadConfig() (*Config, error) {
	var cfg Config
	if err := config.LoadConfig("vaani", &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
