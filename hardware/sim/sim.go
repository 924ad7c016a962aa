package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/hardware"
	"github.com/kbukum/liquidkit/labware"
	"github.com/kbukum/liquidkit/logger"
)

// Command names as they appear in the log.
const (
	CmdLoadLabware    = "load_labware"
	CmdLoadModule     = "load_module"
	CmdLoadInstrument = "load_instrument"
	CmdPickUpTip      = "pick_up_tip"
	CmdDropTip        = "drop_tip"
	CmdAspirate       = "aspirate"
	CmdDispense       = "dispense"
	CmdBlowOut        = "blow_out"
	CmdMoveTo         = "move_to"
	CmdDelay          = "delay"
	CmdPause          = "pause"
	CmdComment        = "comment"
	CmdEngage         = "engage_magnet"
	CmdDisengage      = "disengage_magnet"
	CmdSetTemperature = "set_temperature"
	CmdDeactivate     = "deactivate_temperature"
	CmdHome           = "home"
)

// Command is one recorded controller call.
type Command struct {
	Seq      int
	At       time.Duration
	Name     string
	Mount    hardware.Mount
	Volume   float64
	Location string
	Motion   hardware.Motion
	Detail   string
}

func (c Command) String() string {
	s := fmt.Sprintf("%04d %8s %s", c.Seq, c.At.Truncate(time.Second), c.Name)
	if c.Volume > 0 {
		s += fmt.Sprintf(" %.2fuL", c.Volume)
	}
	if c.Location != "" {
		s += " @ " + c.Location
	}
	if c.Detail != "" {
		s += " " + c.Detail
	}
	return s
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger logs every command at debug level.
func WithLogger(log *logger.Logger) Option {
	return func(s *Simulator) { s.log = log.WithComponent("sim") }
}

// WithStepTime sets the virtual time each motion command takes.
func WithStepTime(d time.Duration) Option {
	return func(s *Simulator) { s.step = d }
}

// Simulator implements hardware.Controller in memory.
type Simulator struct {
	mu       sync.Mutex
	log      *logger.Logger
	step     time.Duration
	clock    time.Duration
	commands []Command
	failures map[string]failure
	slots    map[int]string
	mounts   map[hardware.Mount]string
}

type failure struct {
	after int
	err   error
}

// New returns an empty simulator.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		log:      logger.Nop(),
		step:     time.Second,
		failures: make(map[string]failure),
		slots:    make(map[int]string),
		mounts:   make(map[hardware.Mount]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailOn makes the command fail with err once it has succeeded after times.
// FailOn(CmdAspirate, 2, err) lets two aspirates through and fails the third.
func (s *Simulator) FailOn(command string, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[command] = failure{after: after, err: err}
}

// Commands returns a copy of the command log.
func (s *Simulator) Commands() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Command, len(s.commands))
	copy(out, s.commands)
	return out
}

// Names returns the command names in order, optionally keeping only the given ones.
func (s *Simulator) Names(only ...string) []string {
	keep := make(map[string]bool, len(only))
	for _, n := range only {
		keep[n] = true
	}
	var out []string
	for _, c := range s.Commands() {
		if len(keep) == 0 || keep[c.Name] {
			out = append(out, c.Name)
		}
	}
	return out
}

// Count returns how many times a command was issued.
func (s *Simulator) Count(name string) int {
	n := 0
	for _, c := range s.Commands() {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Elapsed returns the virtual run time.
func (s *Simulator) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// Reset clears the command log, the clock and loaded labware.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = nil
	s.clock = 0
	s.slots = make(map[int]string)
	s.mounts = make(map[hardware.Mount]string)
}

func (s *Simulator) record(c Command, advance time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.failures[c.Name]; ok {
		if f.after <= 0 {
			delete(s.failures, c.Name)
			return errors.Hardware(c.Name, f.err)
		}
		f.after--
		s.failures[c.Name] = f
	}

	c.Seq = len(s.commands) + 1
	c.At = s.clock
	s.clock += advance
	s.commands = append(s.commands, c)
	s.log.Debug(c.Name, logger.Fields("seq", c.Seq, "location", c.Location, logger.FieldVolume, c.Volume))
	return nil
}

func (s *Simulator) LoadLabware(_ context.Context, loadName string, slot int, label string) error {
	s.mu.Lock()
	if prev, taken := s.slots[slot]; taken {
		s.mu.Unlock()
		return errors.Hardware(CmdLoadLabware, fmt.Errorf("slot %d already holds %s", slot, prev))
	}
	s.slots[slot] = loadName
	s.mu.Unlock()
	return s.record(Command{Name: CmdLoadLabware, Location: fmt.Sprintf("slot %d", slot), Detail: loadName + " " + label}, 0)
}

// LoadModule loads a module. Labware is later loaded onto it in the same slot.
func (s *Simulator) LoadModule(_ context.Context, model string, slot int) error {
	return s.record(Command{Name: CmdLoadModule, Location: fmt.Sprintf("slot %d", slot), Detail: model}, 0)
}

func (s *Simulator) LoadInstrument(_ context.Context, model string, mount hardware.Mount) error {
	s.mu.Lock()
	if prev, taken := s.mounts[mount]; taken {
		s.mu.Unlock()
		return errors.Hardware(CmdLoadInstrument, fmt.Errorf("%s mount already holds %s", mount, prev))
	}
	s.mounts[mount] = model
	s.mu.Unlock()
	return s.record(Command{Name: CmdLoadInstrument, Mount: mount, Detail: model}, 0)
}

func (s *Simulator) PickUpTip(_ context.Context, mount hardware.Mount, tip labware.Location) error {
	return s.record(Command{Name: CmdPickUpTip, Mount: mount, Location: tip.String()}, s.step)
}

func (s *Simulator) DropTip(_ context.Context, mount hardware.Mount, loc labware.Location) error {
	return s.record(Command{Name: CmdDropTip, Mount: mount, Location: loc.String()}, s.step)
}

func (s *Simulator) Aspirate(_ context.Context, mount hardware.Mount, volume float64, loc labware.Location, m hardware.Motion) error {
	return s.record(Command{Name: CmdAspirate, Mount: mount, Volume: volume, Location: loc.String(), Motion: m}, s.step)
}

func (s *Simulator) Dispense(_ context.Context, mount hardware.Mount, volume float64, loc labware.Location, m hardware.Motion) error {
	return s.record(Command{Name: CmdDispense, Mount: mount, Volume: volume, Location: loc.String(), Motion: m}, s.step)
}

func (s *Simulator) BlowOut(_ context.Context, mount hardware.Mount, loc labware.Location, m hardware.Motion) error {
	return s.record(Command{Name: CmdBlowOut, Mount: mount, Location: loc.String(), Motion: m}, s.step)
}

func (s *Simulator) MoveTo(_ context.Context, mount hardware.Mount, loc labware.Location, m hardware.Motion) error {
	return s.record(Command{Name: CmdMoveTo, Mount: mount, Location: loc.String(), Motion: m}, s.step)
}

// Delay advances the virtual clock by d. It ignores ctx: a delay always
// runs to completion.
func (s *Simulator) Delay(_ context.Context, d time.Duration) error {
	if d < 0 {
		return errors.InvalidInput("delay", "duration must not be negative")
	}
	return s.record(Command{Name: CmdDelay, Detail: d.String()}, d)
}

func (s *Simulator) Pause(_ context.Context, message string) error {
	return s.record(Command{Name: CmdPause, Detail: message}, 0)
}

func (s *Simulator) Comment(_ context.Context, message string) error {
	return s.record(Command{Name: CmdComment, Detail: message}, 0)
}

func (s *Simulator) EngageMagnet(_ context.Context, slot int) error {
	return s.record(Command{Name: CmdEngage, Location: fmt.Sprintf("slot %d", slot)}, s.step)
}

func (s *Simulator) DisengageMagnet(_ context.Context, slot int) error {
	return s.record(Command{Name: CmdDisengage, Location: fmt.Sprintf("slot %d", slot)}, s.step)
}

func (s *Simulator) SetTemperature(_ context.Context, slot int, celsius float64) error {
	return s.record(Command{Name: CmdSetTemperature, Location: fmt.Sprintf("slot %d", slot), Detail: fmt.Sprintf("%.1fC", celsius)}, s.step)
}

func (s *Simulator) DeactivateTemperature(_ context.Context, slot int) error {
	return s.record(Command{Name: CmdDeactivate, Location: fmt.Sprintf("slot %d", slot)}, s.step)
}

func (s *Simulator) Home(_ context.Context) error {
	return s.record(Command{Name: CmdHome}, s.step)
}

var _ hardware.Controller = (*Simulator)(nil)
