package journal

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/kbukum/liquidkit/errors"
)

var exportHeader = []string{
	"Seq", "Batch", "Row", "Pipette", "Channels",
	"Source", "Destination", "Volume", "Tip", "Time",
}

// ExportCSV writes the run's transfers as CSV to w.
func (j *Journal) ExportCSV(ctx context.Context, runID string, w io.Writer) error {
	transfers, err := j.Transfers(ctx, runID)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return errors.Journal("export", err)
	}
	for _, t := range transfers {
		rec := []string{
			strconv.Itoa(t.Seq),
			t.Batch,
			strconv.Itoa(t.Row),
			t.Pipette,
			strconv.Itoa(t.Channels),
			t.Source,
			t.Destination,
			strconv.FormatFloat(t.VolumeUL, 'f', -1, 64),
			t.Tip,
			t.At.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Journal("export", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Journal("export", err)
	}
	return nil
}
