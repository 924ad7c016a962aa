// Package bootstrap runs a liquidkit process: it owns the configuration,
// the logger and the component registry, starts components in order, runs
// the work and stops everything again.
//
// A protocol run is a finite task:
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	_ = app.RegisterComponent(journalComponent)
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := runner.Run(ctx, p)
//	    return err
//	})
//
// SIGINT and SIGTERM cancel the task's context. The sequencer notices
// between steps, so the deck is never left mid-transfer.
package bootstrap
