package hardware

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/liquidkit/component"
	"github.com/kbukum/liquidkit/errors"
)

// MagneticModule is a magnetic module in a deck slot.
type MagneticModule struct {
	name    string
	slot    int
	ctrl    Controller
	mu      sync.Mutex
	engaged bool
}

// NewMagneticModule returns the module in slot, driven through ctrl.
func NewMagneticModule(name string, slot int, ctrl Controller) *MagneticModule {
	return &MagneticModule{name: name, slot: slot, ctrl: ctrl}
}

// Slot returns the module's deck slot.
func (m *MagneticModule) Slot() int { return m.slot }

// Engaged reports whether the magnets are raised.
func (m *MagneticModule) Engaged() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engaged
}

// Engage raises the magnets to the labware's default height.
func (m *MagneticModule) Engage(ctx context.Context) error {
	if err := m.ctrl.EngageMagnet(ctx, m.slot); err != nil {
		return errors.Hardware("engage magnet", err)
	}
	m.mu.Lock()
	m.engaged = true
	m.mu.Unlock()
	return nil
}

// Disengage lowers the magnets.
func (m *MagneticModule) Disengage(ctx context.Context) error {
	if err := m.ctrl.DisengageMagnet(ctx, m.slot); err != nil {
		return errors.Hardware("disengage magnet", err)
	}
	m.mu.Lock()
	m.engaged = false
	m.mu.Unlock()
	return nil
}

func (m *MagneticModule) Name() string { return m.name }

// Start lowers the magnets so the run begins from a known state.
func (m *MagneticModule) Start(ctx context.Context) error { return m.Disengage(ctx) }

// Stop lowers the magnets if they are up.
func (m *MagneticModule) Stop(ctx context.Context) error {
	if !m.Engaged() {
		return nil
	}
	return m.Disengage(ctx)
}

func (m *MagneticModule) Health(_ context.Context) component.Health {
	msg := "disengaged"
	if m.Engaged() {
		msg = "engaged"
	}
	return component.Health{Name: m.name, Status: component.StatusHealthy, Message: msg}
}

func (m *MagneticModule) Describe() component.Description {
	return component.Description{Name: m.name, Type: "magnetic module", Details: fmt.Sprintf("slot %d", m.slot)}
}

// TemperatureModule is a temperature module in a deck slot.
type TemperatureModule struct {
	name   string
	slot   int
	ctrl   Controller
	mu     sync.Mutex
	target float64
	active bool
}

// NewTemperatureModule returns the module in slot, driven through ctrl.
func NewTemperatureModule(name string, slot int, ctrl Controller) *TemperatureModule {
	return &TemperatureModule{name: name, slot: slot, ctrl: ctrl}
}

// Slot returns the module's deck slot.
func (t *TemperatureModule) Slot() int { return t.slot }

// Target returns the target temperature and whether the module is holding it.
func (t *TemperatureModule) Target() (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.target, t.active
}

// SetTemperature sets and waits for the target temperature. The module
// accepts 4 to 95 °C.
func (t *TemperatureModule) SetTemperature(ctx context.Context, celsius float64) error {
	if celsius < 4 || celsius > 95 {
		return errors.InvalidInput("temperature", fmt.Sprintf("%.1f °C is outside 4-95 °C", celsius))
	}
	if err := t.ctrl.SetTemperature(ctx, t.slot, celsius); err != nil {
		return errors.Hardware("set temperature", err)
	}
	t.mu.Lock()
	t.target, t.active = celsius, true
	t.mu.Unlock()
	return nil
}

// Deactivate turns off heating and cooling.
func (t *TemperatureModule) Deactivate(ctx context.Context) error {
	if err := t.ctrl.DeactivateTemperature(ctx, t.slot); err != nil {
		return errors.Hardware("deactivate temperature", err)
	}
	t.mu.Lock()
	t.target, t.active = 0, false
	t.mu.Unlock()
	return nil
}

func (t *TemperatureModule) Name() string { return t.name }

func (t *TemperatureModule) Start(_ context.Context) error { return nil }

// Stop deactivates the module if it is holding a temperature.
func (t *TemperatureModule) Stop(ctx context.Context) error {
	if _, active := t.Target(); !active {
		return nil
	}
	return t.Deactivate(ctx)
}

func (t *TemperatureModule) Health(_ context.Context) component.Health {
	msg := "idle"
	if target, active := t.Target(); active {
		msg = fmt.Sprintf("holding %.1f °C", target)
	}
	return component.Health{Name: t.name, Status: component.StatusHealthy, Message: msg}
}

func (t *TemperatureModule) Describe() component.Description {
	return component.Description{Name: t.name, Type: "temperature module", Details: fmt.Sprintf("slot %d", t.slot)}
}

var (
	_ component.Component   = (*MagneticModule)(nil)
	_ component.Component   = (*TemperatureModule)(nil)
	_ component.Describable = (*MagneticModule)(nil)
)
