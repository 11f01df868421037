package config

import (
	"fmt"

	"github.com/skillsenselab/vaani/logger"
	"github.com/skillsenselab/vaani/validation"
)

// Environments a service may declare. Development turns debug on.
var validEnvironments = []string{"development", "staging", "production"}

// ServiceConfig contains the essential configuration fields every service
// needs. Projects extend this by embedding it in their own config structs.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig. When embedded in a larger
// config struct, the promotion makes the embedding struct satisfy the
// loader's Config interface.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Override this in embedding structs and call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	// Propagate service name into logging so Init() uses the right tag.
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
// Override this in embedding structs and call c.ServiceConfig.Validate() first.
func (c *ServiceConfig) Validate() error {
	v := validation.New().
		Required("config.name", c.Name).
		Required("config.environment", c.Environment).
		OneOf("config.environment", c.Environment, validEnvironments)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
