// Package config loads vaani service configuration from YAML files,
// .env files, and environment variables, in that order of precedence
// (environment wins).
//
// Services embed ServiceConfig in their own config struct and load it
// with LoadConfig:
//
//	type Config struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    HTTP server.Config   `mapstructure:"http"`
//	}
//
//	var cfg Config
//	if err := config.LoadConfig("vaani", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
package config
