package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/liquidkit/config"
	"github.com/kbukum/liquidkit/logger"
	"github.com/kbukum/liquidkit/protocol"
	"github.com/kbukum/liquidkit/protocol/cherrypick"
	"github.com/kbukum/liquidkit/protocol/cleanup"
)

const serviceName = "liquidkit"

// cli carries the global flags and the streams the commands write to.
type cli struct {
	configFile string
	envFile    string
	debug      bool

	in  io.Reader
	out io.Writer
	err io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, err: errOut}

	root := &cobra.Command{
		Use:   serviceName,
		Short: "Run pick-list driven liquid-handling protocols",
		Long: `liquidkit runs liquid-handling protocols on a simulated deck.

Protocols read their transfers from CSV pick-lists, journal every completed
transfer and pause for the operator at manual steps (centrifuging, moving a
plate to the heater). Pauses are resumed automatically, from the terminal
or over the operator API.`,
		SilenceUsage: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configFile, "config", "c", "", "config file (default: search ./cmd/liquidkit, ./config, .)")
	pf.StringVar(&c.envFile, "env-file", "", ".env file to load before the environment")
	pf.BoolVar(&c.debug, "debug", false, "log at debug level")

	root.AddCommand(
		c.runCmd(),
		c.protocolsCmd(),
		c.picklistCmd(),
		c.journalCmd(),
		c.labwareCmd(),
		c.versionCmd(),
	)
	return root
}

// loadConfig reads the config file, the .env file and LIQUIDKIT_*
// variables, then applies the flags.
func (c *cli) loadConfig() (*Config, error) {
	cfg := defaultConfig()
	var opts []config.LoaderOption
	if c.configFile != "" {
		opts = append(opts, config.WithConfigFile(c.configFile))
	}
	if c.envFile != "" {
		opts = append(opts, config.WithEnvFile(c.envFile))
	}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if c.debug {
		cfg.Debug = true
	}
	// Logs go to stderr so stdout stays usable for exports.
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
	return cfg, nil
}

// newLogger builds the process logger, sending stderr output to the
// command's error stream.
func (c *cli) newLogger(cfg *Config) *logger.Logger {
	cfg.ServiceConfig.ApplyDefaults()
	if cfg.Logging.Output == "stderr" {
		return logger.NewWithWriter(c.err, &cfg.Logging, serviceName)
	}
	return logger.New(&cfg.Logging, serviceName)
}

// registry returns every protocol this binary can run.
func registry() *protocol.Registry {
	r := protocol.NewRegistry()
	cherrypick.Register(r)
	cleanup.Register(r)
	return r
}
