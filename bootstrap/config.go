package bootstrap

import (
	"github.com/kbukum/liquidkit/config"
)

// Config is the constraint on application configuration types. Any struct
// embedding config.ServiceConfig satisfies it through promoted methods.
//
//	type RunConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Journal database.Config `yaml:"journal" mapstructure:"journal"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
