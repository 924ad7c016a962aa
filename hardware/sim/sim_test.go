package sim

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/labware"
)

func testWell(t *testing.T) *labware.Well {
	t.Helper()
	def, err := labware.NewRegistry().Lookup("agilent_1_reservoir_290ml")
	if err != nil {
		t.Fatal(err)
	}
	w, err := labware.New(def, 8, "Water").WellByName("A1")
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestCommandLog(t *testing.T) {
	ctx := context.Background()
	s := New(WithStepTime(2 * time.Second))
	w := testWell(t)

	steps := []func() error{
		func() error { return s.PickUpTip(ctx, hardware.MountRight, w.Top(0)) },
		func() error {
			return s.Aspirate(ctx, hardware.MountRight, 50, w.Bottom(6), hardware.Motion{FlowRate: 92.86})
		},
		func() error { return s.Dispense(ctx, hardware.MountRight, 50, w.Top(-6), hardware.Motion{ZSpeed: 30}) },
		func() error { return s.DropTip(ctx, hardware.MountRight, labware.Location{}) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	cmds := s.Commands()
	want := []string{CmdPickUpTip, CmdAspirate, CmdDispense, CmdDropTip}
	if len(cmds) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(cmds))
	}
	for i, name := range want {
		if cmds[i].Name != name || cmds[i].Seq != i+1 {
			t.Errorf("command %d: expected %s seq %d, got %s seq %d", i, name, i+1, cmds[i].Name, cmds[i].Seq)
		}
	}
	if cmds[1].Volume != 50 || cmds[2].Motion.ZSpeed != 30 {
		t.Errorf("unexpected command details %+v %+v", cmds[1], cmds[2])
	}
	if cmds[3].Location != "trash" {
		t.Errorf("expected drop in trash, got %q", cmds[3].Location)
	}
	if cmds[2].At != 4*time.Second {
		t.Errorf("expected third command at 4s, got %v", cmds[2].At)
	}
	if s.Elapsed() != 8*time.Second {
		t.Errorf("expected 8s elapsed, got %v", s.Elapsed())
	}
}

func TestDelayAdvancesClockAndIgnoresCancel(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Delay(ctx, 6*time.Minute); err != nil {
		t.Fatalf("Delay should complete on a cancelled context: %v", err)
	}
	if s.Elapsed() != 6*time.Minute {
		t.Errorf("expected 6m elapsed, got %v", s.Elapsed())
	}
	if err := s.Delay(context.Background(), -time.Second); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected invalid input for negative delay, got %v", err)
	}
}

func TestFailOn(t *testing.T) {
	ctx := context.Background()
	s := New()
	w := testWell(t)
	s.FailOn(CmdAspirate, 1, fmt.Errorf("plunger stall"))

	if err := s.Aspirate(ctx, hardware.MountLeft, 10, w.Bottom(1), hardware.Motion{}); err != nil {
		t.Fatalf("first aspirate should pass: %v", err)
	}
	err := s.Aspirate(ctx, hardware.MountLeft, 10, w.Bottom(1), hardware.Motion{})
	if !errors.Is(err, errors.ErrCodeHardware) {
		t.Fatalf("expected hardware error, got %v", err)
	}
	if err := s.Aspirate(ctx, hardware.MountLeft, 10, w.Bottom(1), hardware.Motion{}); err != nil {
		t.Fatalf("failure should fire once: %v", err)
	}
	if s.Count(CmdAspirate) != 2 {
		t.Errorf("failed command should not be logged, got %d aspirates", s.Count(CmdAspirate))
	}
}

func TestLoadConflicts(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.LoadLabware(ctx, "opentrons_96_tiprack_300ul", 2, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadLabware(ctx, "opentrons_96_tiprack_300ul", 2, ""); !errors.Is(err, errors.ErrCodeHardware) {
		t.Errorf("expected slot conflict, got %v", err)
	}
	if err := s.LoadInstrument(ctx, "p300_single_gen2", hardware.MountRight); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadInstrument(ctx, "p20_single_gen2", hardware.MountRight); err == nil {
		t.Error("expected mount conflict")
	}

	s.Reset()
	if len(s.Commands()) != 0 || s.Elapsed() != 0 {
		t.Error("expected empty log after reset")
	}
	if err := s.LoadLabware(ctx, "opentrons_96_tiprack_300ul", 2, ""); err != nil {
		t.Errorf("slot should be free after reset: %v", err)
	}
}

func TestNames(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Comment(ctx, "start")
	_ = s.Home(ctx)
	_ = s.Pause(ctx, "Centrifuge the plate")

	all := s.Names()
	if len(all) != 3 {
		t.Fatalf("expected 3 names, got %v", all)
	}
	only := s.Names(CmdPause)
	if len(only) != 1 || only[0] != CmdPause {
		t.Errorf("expected only pause, got %v", only)
	}
	if cmd := s.Commands()[2]; cmd.Detail != "Centrifuge the plate" {
		t.Errorf("expected pause message in detail, got %q", cmd.Detail)
	}
}
