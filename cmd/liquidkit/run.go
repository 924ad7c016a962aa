package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/liquidkit/bootstrap"
	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware/sim"
	"github.com/kbukum/liquidkit/journal"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/logger"
	"github.com/kbukum/liquidkit/observability"
	"github.com/kbukum/liquidkit/operator"
	"github.com/kbukum/liquidkit/picklist"
	"github.com/kbukum/liquidkit/protocol"
	"github.com/kbukum/liquidkit/server"
	"github.com/kbukum/liquidkit/sse"
	"github.com/kbukum/liquidkit/storage"

	// Pick-list storage backends.
	_ "github.com/kbukum/liquidkit/storage/local"
	_ "github.com/kbukum/liquidkit/storage/s3"
)

type runFlags struct {
	params    []string
	picklists string
	journal   string
	noJournal bool
	operator  string
	port      int
	commands  bool
	quiet     bool
}

func (c *cli) runCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run [protocol]",
		Short: "Run a protocol on the simulated deck",
		Long: `Run a protocol on the simulated deck.

The protocol comes from the argument or the config's "protocol" key. Its
parameters come from the config's parameters.<protocol> section, with
--set overrides applied on top:

  liquidkit run primer-dilution --picklists ./lists
  liquidkit run pcr-cleanup --set samples=48 --set magnet_delay=8m
  liquidkit run pcr-cleanup-8 --operator http --port 8780`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			name := cfg.Protocol
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				return errors.MissingField("protocol")
			}
			overrides, err := parseOverrides(f.params)
			if err != nil {
				return err
			}
			f.apply(cfg)
			return c.run(cmd.Context(), cfg, name, overrides, f)
		},
	}
	fl := cmd.Flags()
	fl.StringArrayVar(&f.params, "set", nil, "override a protocol parameter (key=value, repeatable)")
	fl.StringVar(&f.picklists, "picklists", "", "read pick-lists from this directory")
	fl.StringVar(&f.journal, "journal", "", "journal database file")
	fl.BoolVar(&f.noJournal, "no-journal", false, "do not journal the run")
	fl.StringVar(&f.operator, "operator", "", "how pauses resume: auto, prompt or http")
	fl.IntVar(&f.port, "port", 0, "operator API port")
	fl.BoolVar(&f.commands, "commands", false, "print the simulator command log after the run")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "do not print the startup banner")
	return cmd
}

func (f runFlags) apply(cfg *Config) {
	if f.picklists != "" {
		cfg.PickLists.Provider = storage.ProviderLocal
		cfg.PickLists.BasePath = f.picklists
	}
	if f.journal != "" {
		cfg.Journal.Enabled = true
		cfg.Journal.Path = f.journal
	}
	if f.noJournal {
		cfg.Journal.Enabled = false
	}
	if f.operator != "" {
		cfg.Operator.Mode = f.operator
	}
	if f.port != 0 {
		cfg.Operator.Enabled = true
		cfg.Operator.Port = f.port
	}
}

func parseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errors.InvalidInput("set", fmt.Sprintf("%q is not key=value", p))
		}
		out[k] = v
	}
	return out, nil
}

func (c *cli) run(ctx context.Context, cfg *Config, name string, overrides map[string]string, f runFlags) error {
	log := c.newLogger(cfg)
	logger.SetGlobalLogger(log)
	opts := []bootstrap.Option{bootstrap.WithLogger(log), bootstrap.WithSummaryWriter(c.err)}
	if f.quiet {
		opts = append(opts, bootstrap.Quiet())
	}
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return err
	}

	p, err := registry().New(name, cfg.decoder(name, overrides))
	if err != nil {
		return err
	}
	lw := labware.NewRegistry()
	for _, path := range cfg.Labware {
		n, err := lw.LoadFile(path)
		if err != nil {
			return err
		}
		log.Info("labware definitions loaded", logger.Fields("file", path, "count", n))
	}

	store := storage.NewComponent(cfg.PickLists, log)
	if err := app.RegisterComponent(store); err != nil {
		return err
	}
	var jc *journal.Component
	if cfg.Journal.Enabled {
		jc = journal.NewComponent(cfg.Journal.Config, log)
		if err := app.RegisterComponent(jc); err != nil {
			return err
		}
	}

	tracker := operator.NewTracker()
	var op operator.Operator
	var gate *operator.Gate
	switch cfg.Operator.Mode {
	case operatorPrompt:
		op = operator.NewPrompt(c.in, c.err)
	case operatorHTTP:
		gate = operator.NewGate()
		op = gate
	default:
		op = operator.Auto{Log: log}
	}
	if cfg.Operator.Enabled {
		srv := server.New(cfg.Operator.Config, log)
		srv.RegisterDefaultEndpoints(serviceName, app.Components.HealthAll)
		operator.Register(srv.Engine(), tracker, gate)
		events := sse.NewComponent("/events", log)
		operator.RegisterEvents(srv.Engine(), tracker, events.Hub())
		for _, r := range srv.Engine().Routes() {
			app.Summary.TrackRoute(r.Method, r.Path)
		}
		if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
			return err
		}
		// Registered after the server so open streams close before it drains.
		if err := app.RegisterComponent(events); err != nil {
			return err
		}
	}

	var shutdownTelemetry observability.ShutdownFunc
	app.OnStart(func(ctx context.Context) error {
		shutdown, err := observability.Setup(ctx, serviceName, app.Version, cfg.Environment, cfg.Observability, log)
		shutdownTelemetry = shutdown
		return err
	})
	app.OnStop(func(ctx context.Context) error {
		if shutdownTelemetry == nil {
			return nil
		}
		return shutdownTelemetry(ctx)
	})

	ctrl := sim.New(sim.WithLogger(log))
	var runner *protocol.Runner
	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
		metrics, err := observability.NewMetrics(observability.Meter(serviceName))
		if err != nil {
			return err
		}
		ropts := []protocol.RunnerOption{
			protocol.WithLabware(lw),
			protocol.WithPickLists(picklist.NewStore(store.Storage(), cfg.Retry, log)),
			protocol.WithOperator(op),
			protocol.WithTracker(tracker),
			protocol.WithMetrics(metrics),
			protocol.WithLogger(log),
			protocol.Simulated(true),
		}
		if jc != nil {
			ropts = append(ropts, protocol.WithJournal(jc.Journal()))
		}
		runner = protocol.NewRunner(ctrl, ropts...)
		a.Summary.SetProtocol(p.Name(), layoutDetails(p)...)
		return nil
	})

	return app.RunTask(ctx, func(ctx context.Context) error {
		res, runErr := runner.Run(ctx, p)
		c.report(res, runErr, ctrl)
		if f.commands {
			for _, sc := range ctrl.Commands() {
				fmt.Fprintln(c.out, sc)
			}
		}
		return runErr
	})
}

// layoutDetails describes the deck for the startup banner.
func layoutDetails(p protocol.Protocol) []string {
	l := p.Layout()
	var out []string
	for _, m := range l.Modules {
		out = append(out, fmt.Sprintf("slot %2d  %s (%s)", m.Slot, m.Name, m.Model))
	}
	for _, spec := range l.Labware {
		where := fmt.Sprintf("slot %2d", spec.Slot)
		if spec.Module != "" {
			where = "on " + spec.Module
		}
		out = append(out, fmt.Sprintf("%s  %s (%s)", where, spec.Name, spec.LoadName))
	}
	for _, pip := range l.Pipettes {
		out = append(out, fmt.Sprintf("%-7s  %s (%s)", pip.Mount, pip.Name, pip.Model))
	}
	return out
}

func (c *cli) report(res *protocol.Result, err error, ctrl *sim.Simulator) {
	status := "completed"
	if err != nil {
		status = "failed (" + string(errors.CodeOf(err)) + ")"
	}
	fmt.Fprintf(c.out, "run %s: %s %s\n", res.RunID, res.Protocol, status)
	fmt.Fprintf(c.out, "  phases     %d: %s\n", len(res.Phases), strings.Join(res.Phases, ", "))
	fmt.Fprintf(c.out, "  transfers  %d\n", res.Transfers)
	fmt.Fprintf(c.out, "  deck time  %s (simulated)\n", ctrl.Elapsed().Round(time.Second))

	names := make([]string, 0, len(res.Pipettes))
	for n := range res.Pipettes {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		s := res.Pipettes[n]
		fmt.Fprintf(c.out, "  %-9s  %d tips picked up, %d dropped, %d returned, %.1f µL aspirated\n",
			n, s.PickUps, s.Drops, s.Returns, s.Aspirated)
	}
}
