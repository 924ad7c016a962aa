package sequencer

import (
	"context"
	"time"
)

// TransferRecord describes one completed transfer.
type TransferRecord struct {
	Batch       string
	Row         int
	Pipette     string
	Channels    int
	Source      string
	Destination string
	// Volume is per channel, in µL.
	Volume float64
	Tip    string
	At     time.Time
}

// Recorder receives every completed transfer, in order.
type Recorder interface {
	RecordTransfer(ctx context.Context, rec TransferRecord) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, rec TransferRecord) error

// RecordTransfer calls f.
func (f RecorderFunc) RecordTransfer(ctx context.Context, rec TransferRecord) error {
	return f(ctx, rec)
}

// Recorders fans each record out to every non-nil recorder, stopping at the
// first error.
func Recorders(rs ...Recorder) Recorder {
	return RecorderFunc(func(ctx context.Context, rec TransferRecord) error {
		for _, r := range rs {
			if r == nil {
				continue
			}
			if err := r.RecordTransfer(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}
