package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kbukum/liquidkit/config"
	"github.com/kbukum/liquidkit/database"
	"github.com/kbukum/liquidkit/observability"
	"github.com/kbukum/liquidkit/protocol"
	"github.com/kbukum/liquidkit/resilience"
	"github.com/kbukum/liquidkit/server"
	"github.com/kbukum/liquidkit/storage"
)

// Operator modes.
const (
	operatorAuto   = "auto"
	operatorPrompt = "prompt"
	operatorHTTP   = "http"
)

// Config is the liquidkit process configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// Protocol is run when none is named on the command line.
	Protocol string `yaml:"protocol" mapstructure:"protocol"`
	// Parameters holds each protocol's parameters, keyed by protocol name.
	Parameters map[string]map[string]any `yaml:"parameters" mapstructure:"parameters"`
	// Labware lists YAML files with extra labware definitions.
	Labware []string `yaml:"labware" mapstructure:"labware"`

	PickLists     storage.Config         `yaml:"picklists" mapstructure:"picklists"`
	Retry         resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
	Journal       JournalConfig          `yaml:"journal" mapstructure:"journal"`
	Operator      OperatorConfig         `yaml:"operator" mapstructure:"operator"`
	Observability observability.Config   `yaml:"observability" mapstructure:"observability"`
}

// JournalConfig selects where runs are journaled.
type JournalConfig struct {
	Enabled         bool `yaml:"enabled" mapstructure:"enabled"`
	database.Config `yaml:",inline" mapstructure:",squash"`
}

// OperatorConfig selects how pauses are resumed and whether the status API
// is served.
type OperatorConfig struct {
	Mode          string `yaml:"mode" mapstructure:"mode"`
	server.Config `yaml:",inline" mapstructure:",squash"`
}

func defaultConfig() *Config {
	return &Config{Journal: JournalConfig{Enabled: true}}
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.PickLists.ApplyDefaults()
	c.Retry.ApplyDefaults()
	c.Journal.Config.ApplyDefaults()
	if c.Operator.Mode == "" {
		c.Operator.Mode = operatorAuto
	}
	if c.Operator.Mode == operatorHTTP {
		c.Operator.Enabled = true
	}
	c.Operator.Config.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.PickLists.Validate(); err != nil {
		return fmt.Errorf("picklists: %w", err)
	}
	if c.Journal.Enabled {
		if err := c.Journal.Config.Validate(); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}
	switch c.Operator.Mode {
	case operatorAuto, operatorPrompt, operatorHTTP:
	default:
		return fmt.Errorf("operator.mode must be auto, prompt or http (got: %s)", c.Operator.Mode)
	}
	if err := c.Operator.Config.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

// decoder decodes the parameters configured for name, with overrides
// from the command line applied on top.
func (c *Config) decoder(name string, overrides map[string]string) protocol.Decoder {
	params := c.Parameters[name]
	return func(into any) error {
		if len(params) == 0 && len(overrides) == 0 {
			return nil
		}
		v := viper.New()
		if err := v.MergeConfigMap(params); err != nil {
			return err
		}
		for k, val := range overrides {
			v.Set(k, val)
		}
		return v.Unmarshal(into)
	}
}
