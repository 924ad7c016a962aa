package journal

import "time"

// Status is the state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is one execution of a protocol.
type Run struct {
	ID       string `gorm:"primaryKey;size:36"`
	Protocol string `gorm:"index"`
	// Parameters is the JSON encoding of the protocol parameters.
	Parameters string
	Simulated  bool
	Status     Status `gorm:"index"`
	Error      string
	ErrorCode  string
	Transfers  int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Transfer is one completed pick-list row.
type Transfer struct {
	ID          uint   `gorm:"primaryKey"`
	RunID       string `gorm:"size:36;index:idx_transfer_run_seq,priority:1"`
	Seq         int    `gorm:"index:idx_transfer_run_seq,priority:2"`
	Batch       string
	Row         int
	Pipette     string
	Channels    int
	Source      string
	Destination string
	VolumeUL    float64
	Tip         string
	At          time.Time
}

// EventKind classifies journal events.
type EventKind string

const (
	EventPhaseStarted  EventKind = "phase_started"
	EventPhaseFinished EventKind = "phase_finished"
	EventPhaseFailed   EventKind = "phase_failed"
	EventPause         EventKind = "pause"
	EventResume        EventKind = "resume"
	EventComment       EventKind = "comment"
)

// Event is a protocol milestone.
type Event struct {
	ID      uint   `gorm:"primaryKey"`
	RunID   string `gorm:"size:36;index:idx_event_run_seq,priority:1"`
	Seq     int    `gorm:"index:idx_event_run_seq,priority:2"`
	Kind    EventKind
	Phase   string
	Message string
	At      time.Time
}

// models lists the tables the journal migrates.
func models() []interface{} {
	return []interface{}{&Run{}, &Transfer{}, &Event{}}
}
