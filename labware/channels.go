package labware

import (
	"fmt"

	"github.com/kbukum/liquidkit/errors"
)

// ChannelWells returns the wells reached by each channel of a pipette with
// the given channel count when its first channel is over w.
//
// An 8-channel head spans a full column of a 96-well plate, every other row
// of a 384-well plate (starting at row A or B) and, on a single-row
// reservoir, puts every channel in the same well.
func ChannelWells(w *Well, channels int) ([]*Well, error) {
	if channels <= 1 {
		return []*Well{w}, nil
	}
	lw := w.labware
	rows := lw.def.Rows
	switch {
	case rows == 1:
		out := make([]*Well, channels)
		for i := range out {
			out[i] = w
		}
		return out, nil
	case rows == channels:
		if w.row != 0 {
			return nil, channelError(w, channels)
		}
		return lw.Column(w.column), nil
	case rows == 2*channels:
		if w.row > 1 {
			return nil, channelError(w, channels)
		}
		col := lw.Column(w.column)
		out := make([]*Well, 0, channels)
		for r := w.row; r < rows; r += 2 {
			out = append(out, col[r])
		}
		return out, nil
	}
	return nil, channelError(w, channels)
}

func channelError(w *Well, channels int) error {
	return errors.InvalidInput("well",
		fmt.Sprintf("%d-channel pipette cannot target %s", channels, w))
}
