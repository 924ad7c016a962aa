package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/pipette"
	"github.com/kbukum/liquidkit/protocol"
)

// Tip racks by stage. Returned tips are reused within a stage.
const (
	rackBeads = iota
	rackEthanol
	rackElution
	rackEluate
)

// wasteHeight keeps the tip clear of the waste liquid, in mm.
const wasteHeight = 30

func (b *bench) platePhases() ([]protocol.Phase, error) {
	phases := []protocol.Phase{
		{Name: "prepare", Run: b.prepare},
		{Name: "reagent check", Run: b.reagentCheck},
		{Name: "add beads", Run: b.addBeads},
		{Name: "mix", Run: b.mixBeads},
		{Name: "incubate", Run: b.incubate},
		{Name: "engage", Run: func(ctx context.Context, s *protocol.Session) error {
			return b.engage(ctx, s, b.cfg.MagnetDelay)
		}},
		{Name: "remove supernatant", Run: b.removeSupernatant},
	}
	for i := 0; i < b.cfg.Washes; i++ {
		wash := i
		phases = append(phases, protocol.Phase{
			Name: fmt.Sprintf("ethanol wash %d", i+1),
			Run: func(ctx context.Context, s *protocol.Session) error {
				return b.ethanolWash(ctx, s, wash)
			},
		})
	}
	phases = append(phases,
		protocol.Phase{Name: "dry", Run: b.dry},
		protocol.Phase{Name: "add elution buffer", Run: b.addElution},
		protocol.Phase{Name: "mix elution", Run: b.mixElution},
		protocol.Phase{Name: "incubate elution", Run: b.incubate},
		protocol.Phase{Name: "heat", Run: b.heat},
		protocol.Phase{Name: "engage elution", Run: func(ctx context.Context, s *protocol.Session) error {
			return b.engage(ctx, s, b.cfg.MagnetDelay+2*time.Minute)
		}},
		protocol.Phase{Name: "transfer eluate", Run: b.transferEluate},
		protocol.Phase{Name: "shutdown", Run: b.shutdown},
	)
	return phases, nil
}

func (b *bench) reagentCheck(ctx context.Context, s *protocol.Session) error {
	r := b.cfg.Reagents()
	for _, msg := range []string{
		"Make sure that you have filled more than the volume required for finishing all assays",
		fmt.Sprintf("Magnetic beads: %d ml", r.BeadsML),
		fmt.Sprintf("Ethanol: %d ml", r.EthanolML),
		fmt.Sprintf("Elution buffer: %d ml", r.ElutionML),
	} {
		if err := s.Comment(ctx, msg); err != nil {
			return err
		}
	}
	return s.Pause(ctx, "Press resume if reagent volumes are enough for the assay")
}

// addBeads dispenses beads into every column with one tip, resuspending the
// beads thoroughly before the first column and briefly before the others.
func (b *bench) addBeads(ctx context.Context, s *protocol.Session) error {
	beads, err := b.reagent.WellByName("A1")
	if err != nil {
		return err
	}
	if err := b.startTips(rackBeads); err != nil {
		return err
	}
	rates := pipette.WithFlowRates(200, 200)
	if err := b.p.AcquireTip(ctx); err != nil {
		return err
	}
	for i, target := range b.samples {
		reps := 1
		if i == 0 {
			reps = 10
		}
		if err := b.p.Mix(ctx, reps, beadSuspensionMix, beads.Bottom(5), rates); err != nil {
			return err
		}
		if err := s.Transfer(ctx, b.p, b.vol.Beads, beads.Bottom(5), target.Top(-1), pipette.TransferOptions{}, rates); err != nil {
			return err
		}
	}
	return b.p.ReleaseTip(ctx, pipette.Return)
}

func (b *bench) mixBeads(ctx context.Context, s *protocol.Session) error {
	if err := b.startTips(rackBeads); err != nil {
		return err
	}
	for _, target := range b.samples {
		err := b.p.WithTip(ctx, pipette.Return, func(ctx context.Context) error {
			return b.p.Mix(ctx, 15, b.vol.Mix, target.Bottom(1), pipette.WithFlowRates(100, 100), b.z)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *bench) incubate(ctx context.Context, s *protocol.Session) error {
	if err := s.Comment(ctx, fmt.Sprintf("Incubating for %s", b.cfg.Incubation)); err != nil {
		return err
	}
	return s.Delay(ctx, b.cfg.Incubation)
}

func (b *bench) removeSupernatant(ctx context.Context, s *protocol.Session) error {
	if err := b.startTips(rackBeads); err != nil {
		return err
	}
	waste := b.waste.Bottom(wasteHeight)
	for _, target := range b.samples {
		err := b.p.WithTip(ctx, pipette.Return, func(ctx context.Context) error {
			// 5 µL stays above the pellet.
			err := s.Transfer(ctx, b.p, b.vol.Supernatant-5, target.Bottom(1), waste,
				pipette.TransferOptions{BlowOut: true}, pipette.WithFlowRates(50, 200), b.z)
			if err != nil {
				return err
			}
			return b.p.BlowOut(ctx, b.waste.Top(0))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ethanolWash adds ethanol to every column with one tip, then draws it off
// with a tip per column. Before the second wash the tip is pre-wetted with
// ethanol; the last wash also draws off the residue at the bottom.
func (b *bench) ethanolWash(ctx context.Context, s *protocol.Session, wash int) error {
	last := wash == b.cfg.Washes-1
	if err := b.startTips(rackEthanol); err != nil {
		return err
	}
	rates := pipette.WithFlowRates(100, 100)
	err := b.p.WithTip(ctx, pipette.Return, func(ctx context.Context) error {
		if wash == 1 {
			for i := 0; i < 5; i++ {
				if err := b.p.Transfer(ctx, 200, b.ethanol.Bottom(1), b.waste.Bottom(1), pipette.TransferOptions{AirGap: 10}, rates); err != nil {
					return err
				}
			}
		}
		for _, target := range b.samples {
			if err := s.Transfer(ctx, b.p, ethanolPerWash, b.ethanol.Bottom(4), target.Top(-1), pipette.TransferOptions{}, rates, b.z); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := b.startTips(rackEthanol); err != nil {
		return err
	}
	for _, target := range b.samples {
		err := b.p.WithTip(ctx, pipette.Return, func(ctx context.Context) error {
			if err := b.drawOff(ctx, s, ethanolRemoved, target.Bottom(3), 50); err != nil {
				return err
			}
			if last {
				return b.drawOff(ctx, s, 30, target.Bottom(0.5), 25)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// drawOff moves ul from src to the waste, lets the tip drain and blows it
// out.
func (b *bench) drawOff(ctx context.Context, s *protocol.Session, ul float64, src labware.Location, aspirateRate float64) error {
	err := s.Transfer(ctx, b.p, ul, src, b.waste.Bottom(wasteHeight), pipette.TransferOptions{},
		pipette.WithFlowRates(aspirateRate, 100), b.z)
	if err != nil {
		return err
	}
	if err := s.Delay(ctx, 1200*time.Millisecond); err != nil {
		return err
	}
	return b.p.BlowOut(ctx, b.waste.Top(0))
}

func (b *bench) dry(ctx context.Context, s *protocol.Session) error {
	if err := b.magnet.Disengage(ctx); err != nil {
		return err
	}
	if err := s.Comment(ctx, "Advisable to let it dry at 55 C for more than 3 minutes"); err != nil {
		return err
	}
	return s.Pause(ctx, "Move to the 55 C temperature module for 5 minutes to dry off any residual ethanol, then put it back on the magnetic module")
}

func (b *bench) addElution(ctx context.Context, s *protocol.Session) error {
	buffer, err := b.reagent.WellByName("A3")
	if err != nil {
		return err
	}
	if err := b.startTips(rackElution); err != nil {
		return err
	}
	rates := pipette.WithFlowRates(50, 100)
	return b.p.WithTip(ctx, pipette.Return, func(ctx context.Context) error {
		for _, target := range b.samples {
			if err := s.Transfer(ctx, b.p, b.cfg.ElutionVolume, buffer.Bottom(5), target.Top(-2), pipette.TransferOptions{}, rates, b.z); err != nil {
				return err
			}
			if err := b.p.BlowOut(ctx, target.Top(-2), b.z); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *bench) mixElution(ctx context.Context, s *protocol.Session) error {
	if err := b.startTips(rackElution); err != nil {
		return err
	}
	rates := pipette.WithFlowRates(100, 100)
	for _, target := range b.samples {
		err := b.p.WithTip(ctx, pipette.Return, func(ctx context.Context) error {
			if err := b.p.Mix(ctx, 10, 40, target.Bottom(1), rates, b.z); err != nil {
				return err
			}
			return b.p.Mix(ctx, 10, elutionMix, target.Bottom(0.5), rates, b.z)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *bench) heat(ctx context.Context, s *protocol.Session) error {
	if err := b.heater.SetTemperature(ctx, b.cfg.Temperature); err != nil {
		return err
	}
	return s.Pause(ctx, fmt.Sprintf("Transfer to the heating plate at %.0f C for about 2 minutes, then put it back on the magnetic module", b.cfg.Temperature))
}

func (b *bench) transferEluate(ctx context.Context, s *protocol.Session) error {
	if err := b.startTips(rackEluate); err != nil {
		return err
	}
	rates := pipette.WithFlowRates(50, 50)
	for i, target := range b.samples {
		dest := b.outputs[i]
		err := b.p.WithTip(ctx, pipette.Return, func(ctx context.Context) error {
			if err := s.Transfer(ctx, b.p, b.vol.Eluate, target.Bottom(1), dest.Bottom(5), pipette.TransferOptions{AirGap: 10}, rates, b.z); err != nil {
				return err
			}
			return b.p.BlowOut(ctx, dest.Top(-5), b.z)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
