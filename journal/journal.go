package journal

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbukum/liquidkit/database"
	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/logger"
	"github.com/kbukum/liquidkit/sequencer"
)

var _ sequencer.Recorder = (*Journal)(nil)

// Journal writes one run at a time. Reads may address any run.
type Journal struct {
	db  *database.DB
	log *logger.Logger
	now func() time.Time

	mu       sync.Mutex
	run      *Run
	transfer int
	event    int
}

// New returns a Journal over an opened database. The schema must exist;
// Component migrates it on Start.
func New(db *database.DB, log *logger.Logger) *Journal {
	if log == nil {
		log = logger.Nop()
	}
	return &Journal{db: db, log: log.WithComponent("journal"), now: time.Now}
}

// Migrate creates the journal tables.
func (j *Journal) Migrate() error {
	return j.db.AutoMigrate(models()...)
}

// Begin opens a new run and returns its ID. Only one run may be open.
func (j *Journal) Begin(ctx context.Context, protocol string, params any, simulated bool) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.run != nil {
		return "", errors.Conflict(fmt.Sprintf("run %s is still open", j.run.ID))
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", errors.InvalidInput("parameters", err.Error())
	}
	run := &Run{
		ID:         uuid.NewString(),
		Protocol:   protocol,
		Parameters: string(encoded),
		Simulated:  simulated,
		Status:     StatusRunning,
		StartedAt:  j.now().UTC(),
	}
	if err := j.db.WithContext(ctx).Create(run).Error; err != nil {
		return "", database.FromDatabase(err, "begin run", "run", run.ID)
	}
	j.run, j.transfer, j.event = run, 0, 0
	j.log.Info("run started", logger.Fields(logger.FieldRunID, run.ID, logger.FieldProtocol, protocol))
	return run.ID, nil
}

// Current returns the open run's ID, or "".
func (j *Journal) Current() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.run == nil {
		return ""
	}
	return j.run.ID
}

// RecordTransfer appends a completed transfer to the open run.
func (j *Journal) RecordTransfer(ctx context.Context, rec sequencer.TransferRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.run == nil {
		return errors.Conflict("no run is open")
	}
	at := rec.At
	if at.IsZero() {
		at = j.now()
	}
	row := &Transfer{
		RunID:       j.run.ID,
		Seq:         j.transfer + 1,
		Batch:       rec.Batch,
		Row:         rec.Row,
		Pipette:     rec.Pipette,
		Channels:    rec.Channels,
		Source:      rec.Source,
		Destination: rec.Destination,
		VolumeUL:    rec.Volume,
		Tip:         rec.Tip,
		At:          at.UTC(),
	}
	err := j.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return tx.Model(&Run{}).Where("id = ?", j.run.ID).
			Update("transfers", gorm.Expr("transfers + 1")).Error
	})
	if err != nil {
		return database.FromDatabase(err, "record transfer", "run", j.run.ID)
	}
	j.transfer++
	j.run.Transfers++
	return nil
}

// RecordEvent appends an event to the open run.
func (j *Journal) RecordEvent(ctx context.Context, kind EventKind, phase, message string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.run == nil {
		return errors.Conflict("no run is open")
	}
	ev := &Event{
		RunID:   j.run.ID,
		Seq:     j.event + 1,
		Kind:    kind,
		Phase:   phase,
		Message: message,
		At:      j.now().UTC(),
	}
	if err := j.db.WithContext(ctx).Create(ev).Error; err != nil {
		return database.FromDatabase(err, "record event", "run", j.run.ID)
	}
	j.event++
	return nil
}

// Finish closes the open run. A nil cause completes it, a context
// cancellation cancels it and anything else fails it.
func (j *Journal) Finish(ctx context.Context, cause error) (Run, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.run == nil {
		return Run{}, errors.Conflict("no run is open")
	}
	finished := j.now().UTC()
	run := *j.run
	run.FinishedAt = &finished
	switch {
	case cause == nil:
		run.Status = StatusCompleted
	case stderrors.Is(cause, context.Canceled):
		run.Status = StatusCancelled
		run.Error = cause.Error()
	default:
		run.Status = StatusFailed
		run.Error = cause.Error()
		run.ErrorCode = string(errors.CodeOf(cause))
	}

	// The run must be closed even when the caller's context is already done.
	err := j.db.WithContext(context.WithoutCancel(ctx)).Model(&Run{}).Where("id = ?", run.ID).Updates(map[string]any{
		"status":      run.Status,
		"error":       run.Error,
		"error_code":  run.ErrorCode,
		"finished_at": finished,
	}).Error
	if err != nil {
		return Run{}, database.FromDatabase(err, "finish run", "run", run.ID)
	}
	j.run = nil
	j.log.Info("run finished", logger.Fields(
		logger.FieldRunID, run.ID,
		"status", string(run.Status),
		"transfers", run.Transfers,
		logger.FieldDuration, finished.Sub(run.StartedAt).Milliseconds(),
	))
	return run, nil
}

// Run returns the run with the given ID.
func (j *Journal) Run(ctx context.Context, id string) (Run, error) {
	var run Run
	if err := j.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return Run{}, database.FromDatabase(err, "read run", "run", id)
	}
	return run, nil
}

// Latest returns the most recently started run.
func (j *Journal) Latest(ctx context.Context) (Run, error) {
	var run Run
	if err := j.db.WithContext(ctx).Order("started_at DESC").First(&run).Error; err != nil {
		return Run{}, database.FromDatabase(err, "read run", "run", "latest")
	}
	return run, nil
}

// Runs returns up to limit runs, newest first. A limit of zero returns all.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := j.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, database.FromDatabase(err, "list runs", "run", "")
	}
	return runs, nil
}

// Transfers returns the run's transfers in the order they happened.
func (j *Journal) Transfers(ctx context.Context, runID string) ([]Transfer, error) {
	if _, err := j.Run(ctx, runID); err != nil {
		return nil, err
	}
	var out []Transfer
	if err := j.db.WithContext(ctx).Where("run_id = ?", runID).Order("seq").Find(&out).Error; err != nil {
		return nil, database.FromDatabase(err, "list transfers", "run", runID)
	}
	return out, nil
}

// Events returns the run's events in the order they happened.
func (j *Journal) Events(ctx context.Context, runID string) ([]Event, error) {
	if _, err := j.Run(ctx, runID); err != nil {
		return nil, err
	}
	var out []Event
	if err := j.db.WithContext(ctx).Where("run_id = ?", runID).Order("seq").Find(&out).Error; err != nil {
		return nil, database.FromDatabase(err, "list events", "run", runID)
	}
	return out, nil
}
