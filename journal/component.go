package journal

import (
	"context"
	"fmt"

	"github.com/kbukum/liquidkit/component"
	"github.com/kbukum/liquidkit/database"
	"github.com/kbukum/liquidkit/logger"
)

// Component opens the journal database and migrates it on Start.
type Component struct {
	cfg     database.Config
	log     *logger.Logger
	db      *database.DB
	journal *Journal
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a journal component for use with the component registry.
func NewComponent(cfg database.Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.Nop()
	}
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log}
}

// Journal returns the journal, or nil if not started.
func (c *Component) Journal() *Journal { return c.journal }

// Name returns the component name.
func (c *Component) Name() string { return "journal" }

// Start opens the database and creates the tables.
func (c *Component) Start(ctx context.Context) error {
	db, err := database.Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("journal start: %w", err)
	}
	j := New(db, c.log)
	if err := j.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("journal migrate: %w", err)
	}
	c.db, c.journal = db, j
	return nil
}

// Stop closes an open run as cancelled and closes the database.
func (c *Component) Stop(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	if c.journal.Current() != "" {
		if _, err := c.journal.Finish(ctx, context.Canceled); err != nil {
			c.log.Warn("could not close open run", logger.Fields(logger.FieldError, err.Error()))
		}
	}
	err := c.db.Close()
	c.db, c.journal = nil, nil
	return err
}

// Health pings the database.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "journal not open"}
	}
	if err := c.db.PingContext(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns summary info for the run banner.
func (c *Component) Describe() component.Description {
	return component.Description{Name: "Journal", Type: "journal", Details: c.cfg.Path}
}
