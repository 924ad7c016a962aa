package protocol_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/liquidkit/deck"
	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware/sim"
	"github.com/kbukum/liquidkit/journal"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/operator"
	"github.com/kbukum/liquidkit/picklist"
	"github.com/kbukum/liquidkit/pipette"
	"github.com/kbukum/liquidkit/protocol"
	"github.com/kbukum/liquidkit/sequencer"
	"github.com/kbukum/liquidkit/testutil"
)

type fakeProtocol struct {
	layout deck.Layout
	phases []protocol.Phase
}

func (f *fakeProtocol) Name() string        { return "fake" }
func (f *fakeProtocol) Layout() deck.Layout { return f.layout }
func (f *fakeProtocol) Parameters() any     { return map[string]int{"rows": 2} }

func (f *fakeProtocol) Plan(*deck.Deck) ([]protocol.Phase, error) { return f.phases, nil }

func newFake(phases ...protocol.Phase) *fakeProtocol {
	return &fakeProtocol{layout: testutil.SingleChannelLayout(), phases: phases}
}

func nop(name string, seen *[]string) protocol.Phase {
	return protocol.Phase{Name: name, Run: func(context.Context, *protocol.Session) error {
		*seen = append(*seen, name)
		return nil
	}}
}

func eventKinds(t *testing.T, j *journal.Journal, runID string) []string {
	t.Helper()
	events, err := j.Events(context.Background(), runID)
	if err != nil {
		t.Fatal(err)
	}
	kinds := make([]string, len(events))
	for i, ev := range events {
		kinds[i] = string(ev.Kind) + ":" + ev.Phase
	}
	return kinds
}

func TestRunPhasesInOrder(t *testing.T) {
	var seen []string
	j := testutil.MemoryJournal(t)
	r := protocol.NewRunner(sim.New(), protocol.WithJournal(j), protocol.Simulated(true))

	res, err := r.Run(context.Background(), newFake(nop("first", &seen), nop("second", &seen)))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(seen, ",") != "first,second" || strings.Join(res.Phases, ",") != "first,second" {
		t.Errorf("unexpected phases: ran %v, result %v", seen, res.Phases)
	}
	if res.RunID == "" || res.Protocol != "fake" {
		t.Errorf("unexpected result %+v", res)
	}
	if _, ok := res.Pipettes["p300"]; !ok {
		t.Errorf("expected pipette stats, got %v", res.Pipettes)
	}

	want := "phase_started:first,phase_finished:first,phase_started:second,phase_finished:second"
	if got := strings.Join(eventKinds(t, j, res.RunID), ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
	run, err := j.Run(context.Background(), res.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != journal.StatusCompleted || !run.Simulated {
		t.Errorf("unexpected run %+v", run)
	}
}

func TestRunRecordsTransfers(t *testing.T) {
	j := testutil.MemoryJournal(t)
	tracker := operator.NewTracker()
	r := protocol.NewRunner(sim.New(), protocol.WithJournal(j), protocol.WithTracker(tracker))

	p := newFake(protocol.Phase{Name: "water", Run: func(ctx context.Context, s *protocol.Session) error {
		water, _ := s.Deck().Labware("water")
		plate, _ := s.Deck().Labware("plate_96")
		p300, _ := s.Deck().Pipette("p300")
		list, err := picklist.New("rows.csv",
			picklist.Instruction{Destination: "A1", Volume: 20},
			picklist.Instruction{Destination: "B1", Volume: 30},
		)
		if err != nil {
			return err
		}
		if err := s.Execute(ctx, list, p300, sequencer.Route{
			Source:      sequencer.FixedEndpoint(water.Wells()[0].Bottom(6)),
			Destination: sequencer.WellEndpoint(plate, labware.Top, -6),
		}, sequencer.Policy{Release: pipette.Drop}); err != nil {
			return err
		}
		c1, _ := plate.WellByName("C1")
		return p300.WithTip(ctx, pipette.Drop, func(ctx context.Context) error {
			return s.Transfer(ctx, p300, 40, water.Wells()[0].Bottom(6), c1.Top(-6), pipette.TransferOptions{})
		})
	}})

	res, err := r.Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if res.Transfers != 3 {
		t.Errorf("expected 3 transfers, got %d", res.Transfers)
	}
	transfers, err := j.Transfers(context.Background(), res.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(transfers) != 3 {
		t.Fatalf("expected 3 journalled transfers, got %d", len(transfers))
	}
	if transfers[2].Batch != "water" || transfers[2].Row != 1 || transfers[2].VolumeUL != 40 {
		t.Errorf("unexpected direct transfer record %+v", transfers[2])
	}
	st := tracker.Status()
	if st.State != operator.StateCompleted || st.Transfers != 3 || st.RunID != res.RunID {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestRunPauseWaitsForOperator(t *testing.T) {
	j := testutil.MemoryJournal(t)
	tracker := operator.NewTracker()
	ctrl := sim.New()
	var asked []string
	op := operator.Func(func(_ context.Context, msg string) error {
		if st := tracker.Status(); st.State != operator.StatePaused || st.Message != msg {
			t.Errorf("expected paused status while waiting, got %+v", st)
		}
		asked = append(asked, msg)
		return nil
	})
	r := protocol.NewRunner(ctrl, protocol.WithJournal(j), protocol.WithTracker(tracker), protocol.WithOperator(op))

	res, err := r.Run(context.Background(), newFake(protocol.Phase{Name: "spin", Run: func(ctx context.Context, s *protocol.Session) error {
		return s.Pause(ctx, "Centrifuge the plate")
	}}))
	if err != nil {
		t.Fatal(err)
	}
	if len(asked) != 1 || asked[0] != "Centrifuge the plate" {
		t.Errorf("unexpected operator prompts %v", asked)
	}
	if ctrl.Count(sim.CmdPause) != 1 {
		t.Errorf("expected one pause on the robot, got %d", ctrl.Count(sim.CmdPause))
	}
	want := "phase_started:spin,pause:spin,resume:spin,phase_finished:spin"
	if got := strings.Join(eventKinds(t, j, res.RunID), ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}

func TestRunResumableOncePaused(t *testing.T) {
	tracker := operator.NewTracker()
	gate := operator.NewGate()
	var resumes []error
	tracker.Subscribe(func(st operator.Status) {
		if st.State == operator.StatePaused {
			resumes = append(resumes, gate.Resume())
		}
	})
	r := protocol.NewRunner(sim.New(), protocol.WithTracker(tracker), protocol.WithOperator(gate))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := r.Run(ctx, newFake(protocol.Phase{Name: "spin", Run: func(ctx context.Context, s *protocol.Session) error {
		return s.Pause(ctx, "Centrifuge the plate")
	}}))
	if err != nil {
		t.Fatal(err)
	}
	if len(resumes) != 1 || resumes[0] != nil {
		t.Errorf("resume while paused = %v, want a single nil", resumes)
	}
	if st := tracker.Status(); st.State != operator.StateCompleted {
		t.Errorf("expected completed run, got %s", st.State)
	}
}

func TestRunOperatorCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	j := testutil.MemoryJournal(t)
	op := operator.Func(func(ctx context.Context, _ string) error {
		cancel()
		return ctx.Err()
	})
	var seen []string
	r := protocol.NewRunner(sim.New(), protocol.WithJournal(j), protocol.WithOperator(op))

	res, err := r.Run(ctx, newFake(
		protocol.Phase{Name: "check", Run: func(ctx context.Context, s *protocol.Session) error {
			return s.Pause(ctx, "ready?")
		}},
		nop("never", &seen),
	))
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(seen) != 0 || len(res.Phases) != 0 {
		t.Errorf("no phase should complete, ran %v", seen)
	}
	run, err := j.Run(context.Background(), res.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != journal.StatusCancelled {
		t.Errorf("expected cancelled run, got %s", run.Status)
	}
}

func TestRunCancelledBetweenPhases(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var seen []string
	tracker := operator.NewTracker()
	r := protocol.NewRunner(sim.New(), protocol.WithTracker(tracker))

	res, err := r.Run(ctx, newFake(
		protocol.Phase{Name: "first", Run: func(context.Context, *protocol.Session) error {
			cancel()
			return nil
		}},
		nop("second", &seen),
	))
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(seen) != 0 || strings.Join(res.Phases, ",") != "first" {
		t.Errorf("expected only the first phase, got %v", res.Phases)
	}
	if tracker.Status().State != operator.StateCancelled {
		t.Errorf("expected cancelled status, got %s", tracker.Status().State)
	}
}

func TestRunStopsAtFailedPhase(t *testing.T) {
	ctrl := sim.New()
	ctrl.FailOn(sim.CmdComment, 0, stderrors.New("serial timeout"))
	j := testutil.MemoryJournal(t)
	var seen []string
	r := protocol.NewRunner(ctrl, protocol.WithJournal(j))

	res, err := r.Run(context.Background(), newFake(
		nop("first", &seen),
		protocol.Phase{Name: "note", Run: func(ctx context.Context, s *protocol.Session) error {
			return s.Comment(ctx, "hello")
		}},
		nop("never", &seen),
	))
	if !errors.Is(err, errors.ErrCodeHardware) {
		t.Fatalf("expected HARDWARE_ERROR, got %v", err)
	}
	if strings.Join(seen, ",") != "first" || strings.Join(res.Phases, ",") != "first" {
		t.Errorf("unexpected phases %v / %v", seen, res.Phases)
	}
	run, err := j.Run(context.Background(), res.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != journal.StatusFailed || run.ErrorCode != string(errors.ErrCodeHardware) {
		t.Errorf("unexpected run %+v", run)
	}
	kinds := eventKinds(t, j, res.RunID)
	if kinds[len(kinds)-1] != "phase_failed:note" {
		t.Errorf("expected the last event to be the failure, got %v", kinds)
	}
}

func TestRunRejectsInvalidLayout(t *testing.T) {
	ctrl := sim.New()
	var seen []string
	p := newFake(nop("never", &seen))
	p.layout.Labware[0].Slot = 12

	_, err := protocol.NewRunner(ctrl).Run(context.Background(), p)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if len(ctrl.Commands()) != 0 || len(seen) != 0 {
		t.Errorf("nothing should run, got %v", ctrl.Names())
	}
}

func TestPickListNeedsStore(t *testing.T) {
	_, err := protocol.NewRunner(sim.New()).Run(context.Background(), newFake(protocol.Phase{
		Name: "load",
		Run: func(ctx context.Context, s *protocol.Session) error {
			_, err := s.PickList(ctx, "list.csv", picklist.Options{})
			return err
		},
	}))
	if !errors.Is(err, errors.ErrCodeConfig) {
		t.Fatalf("expected CONFIG_ERROR, got %v", err)
	}
}

type params struct {
	Volume float64 `yaml:"volume" validate:"gt=0"`
}

func (p *params) ApplyDefaults() {
	if p.Volume == 0 {
		p.Volume = 10
	}
}

func TestRegistry(t *testing.T) {
	reg := protocol.NewRegistry()
	reg.Register("zeta", "last", func(protocol.Decoder) (protocol.Protocol, error) { return newFake(), nil })
	reg.Register("alpha", "first", func(decode protocol.Decoder) (protocol.Protocol, error) {
		var p params
		if err := protocol.Configure(&p, decode); err != nil {
			return nil, err
		}
		return newFake(), nil
	})

	if got := strings.Join(reg.Names(), ","); got != "alpha,zeta" {
		t.Errorf("names = %s", got)
	}
	if reg.Description("zeta") != "last" {
		t.Errorf("unexpected description %q", reg.Description("zeta"))
	}

	tests := []struct {
		name     string
		protocol string
		decode   protocol.Decoder
		wantCode errors.ErrorCode
	}{
		{name: "defaults", protocol: "alpha"},
		{name: "nil decoder", protocol: "alpha", decode: nil},
		{name: "unknown", protocol: "omega", wantCode: errors.ErrCodeLookup},
		{
			name:     "decode failure",
			protocol: "alpha",
			decode:   func(any) error { return stderrors.New("bad yaml") },
			wantCode: errors.ErrCodeConfig,
		},
		{
			name:     "invalid value",
			protocol: "alpha",
			decode:   func(v any) error { v.(*params).Volume = -1; return nil },
			wantCode: errors.ErrCodeInvalidInput,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.New(tc.protocol, tc.decode)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantCode) {
				t.Fatalf("expected %s, got %v", tc.wantCode, err)
			}
		})
	}
}
