package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/liquidkit/pipette"
	"github.com/kbukum/liquidkit/protocol"
)

// stripMixRest is how long the bead suspension rests between mixes.
const stripMixRest = 90 * time.Second

func (b *bench) stripPhases() ([]protocol.Phase, error) {
	phases := []protocol.Phase{
		{Name: "prepare", Run: b.prepare},
		{Name: "mix", Run: b.stripMix},
		{Name: "engage", Run: func(ctx context.Context, s *protocol.Session) error {
			return b.engage(ctx, s, b.cfg.MagnetDelay)
		}},
		{Name: "remove supernatant", Run: b.stripSupernatant},
	}
	for i := 0; i < b.cfg.Washes; i++ {
		wash := i
		phases = append(phases, protocol.Phase{
			Name: fmt.Sprintf("ethanol wash %d", i+1),
			Run: func(ctx context.Context, s *protocol.Session) error {
				return b.stripWash(ctx, s, wash == b.cfg.Washes-1)
			},
		})
	}
	phases = append(phases,
		protocol.Phase{Name: "dry", Run: b.stripDry},
		protocol.Phase{Name: "add elution buffer", Run: b.stripElution},
		protocol.Phase{Name: "incubate elution", Run: b.incubate},
		protocol.Phase{Name: "heat", Run: b.heat},
		protocol.Phase{Name: "engage elution", Run: func(ctx context.Context, s *protocol.Session) error {
			return b.engage(ctx, s, b.cfg.MagnetDelay+2*time.Minute)
		}},
		protocol.Phase{Name: "transfer eluate", Run: b.stripEluate},
		protocol.Phase{Name: "shutdown", Run: b.shutdown},
	)
	return phases, nil
}

// stripMix resuspends the beads the operator added. The tip stays on for
// the supernatant removal.
func (b *bench) stripMix(ctx context.Context, s *protocol.Session) error {
	if err := b.p.AcquireTip(ctx); err != nil {
		return err
	}
	if err := s.Comment(ctx, "Mix and incubate"); err != nil {
		return err
	}
	rates := pipette.WithFlowRates(100, 100)
	for _, target := range b.samples {
		for i := 0; i < 2; i++ {
			if err := s.Delay(ctx, stripMixRest); err != nil {
				return err
			}
			if err := b.p.Mix(ctx, 20, b.vol.Mix, target.Bottom(1.5), rates, b.z); err != nil {
				return err
			}
			if err := b.p.MoveTo(ctx, target.Top(10), b.z); err != nil {
				return err
			}
		}
	}
	return s.Delay(ctx, stripMixRest)
}

func (b *bench) stripSupernatant(ctx context.Context, s *protocol.Session) error {
	if b.p.State() == pipette.Empty {
		if err := b.p.AcquireTip(ctx); err != nil {
			return err
		}
	}
	for _, target := range b.samples {
		err := s.Transfer(ctx, b.p, b.vol.Supernatant, target.Bottom(1.5), b.waste.Bottom(wasteHeight),
			pipette.TransferOptions{}, pipette.WithFlowRates(50, 200), b.z)
		if err != nil {
			return err
		}
	}
	return b.p.ReleaseTip(ctx, pipette.Drop)
}

// stripWash adds and removes ethanol with one fresh tip. The last wash
// draws off the residue in two further passes.
func (b *bench) stripWash(ctx context.Context, s *protocol.Session, last bool) error {
	waste := b.waste.Bottom(wasteHeight)
	rates := pipette.WithFlowRates(100, 100)
	return b.p.WithTip(ctx, pipette.Drop, func(ctx context.Context) error {
		for _, target := range b.samples {
			if err := s.Transfer(ctx, b.p, ethanolPerWash, b.ethanol.Bottom(5), target.Top(-1), pipette.TransferOptions{AirGap: 5}, rates, b.z); err != nil {
				return err
			}
			if err := s.Delay(ctx, 30*time.Second); err != nil {
				return err
			}
			if err := s.Transfer(ctx, b.p, ethanolRemoved, target.Bottom(2), waste, pipette.TransferOptions{AirGap: 20}, rates, b.z); err != nil {
				return err
			}
			if err := b.p.BlowOut(ctx, waste, b.z); err != nil {
				return err
			}
			if !last {
				continue
			}
			for _, pass := range []struct {
				ul, height float64
			}{{50, 1.5}, {20, 0.5}} {
				if err := s.Transfer(ctx, b.p, pass.ul, target.Bottom(pass.height), waste, pipette.TransferOptions{AirGap: 20}, rates, b.z); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (b *bench) stripDry(ctx context.Context, s *protocol.Session) error {
	if err := b.magnet.Disengage(ctx); err != nil {
		return err
	}
	if err := s.Comment(ctx, fmt.Sprintf("Let it dry at %.0f C for more than 5 minutes", b.cfg.Temperature)); err != nil {
		return err
	}
	if err := s.Home(ctx); err != nil {
		return err
	}
	return s.Pause(ctx, "Move to the temperature module for 5 minutes to dry off any residual ethanol, then put it back on the magnetic module")
}

// stripElution adds buffer to each column and mixes it in two rounds with a
// rest in between, using a fresh tip per column.
func (b *bench) stripElution(ctx context.Context, s *protocol.Session) error {
	buffer, err := b.reagent.WellByName("A1")
	if err != nil {
		return err
	}
	rates := pipette.WithFlowRates(50, 80)
	for _, target := range b.samples {
		err := b.p.WithTip(ctx, pipette.Drop, func(ctx context.Context) error {
			if err := s.Transfer(ctx, b.p, b.cfg.ElutionVolume, buffer.Bottom(6), target.Bottom(2), pipette.TransferOptions{}, rates, b.z); err != nil {
				return err
			}
			for _, h := range []float64{1.5, 0} {
				if err := b.p.Mix(ctx, 15, 40, target.Bottom(h), rates, b.z); err != nil {
					return err
				}
			}
			if err := b.p.MoveTo(ctx, target.Top(5), b.z); err != nil {
				return err
			}
			if err := s.Delay(ctx, 2*time.Minute); err != nil {
				return err
			}
			for _, h := range []float64{1.5, 1} {
				if err := b.p.Mix(ctx, 10, 40, target.Bottom(h), rates, b.z); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *bench) stripEluate(ctx context.Context, s *protocol.Session) error {
	rates := pipette.WithFlowRates(50, 50)
	for i, target := range b.samples {
		dest := b.outputs[i]
		err := b.p.WithTip(ctx, pipette.Drop, func(ctx context.Context) error {
			if err := s.Transfer(ctx, b.p, b.vol.Eluate, target.Bottom(1), dest.Bottom(5), pipette.TransferOptions{AirGap: 2}, rates, b.z); err != nil {
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
