package hardware

import (
	"context"
	"time"

	"github.com/kbukum/liquidkit/labware"
)

// Mount is the pipette mount on the gantry.
type Mount string

const (
	MountLeft  Mount = "left"
	MountRight Mount = "right"
)

// Module models.
const (
	MagneticModuleGen2    = "magneticModuleV2"
	TemperatureModuleGen2 = "temperatureModuleV2"
)

// Motion carries the per-command speed settings. Zero fields mean the
// robot's default.
type Motion struct {
	// FlowRate is the plunger rate in µL/s.
	FlowRate float64
	// ZSpeed caps the vertical gantry speed in mm/s for this command only.
	ZSpeed float64
	// Speed caps the gantry speed in mm/s for this command only.
	Speed float64
}

// Controller is the robot command surface. Locations with no well
// (labware.Location{}) address the fixed trash.
type Controller interface {
	LoadLabware(ctx context.Context, loadName string, slot int, label string) error
	LoadModule(ctx context.Context, model string, slot int) error
	LoadInstrument(ctx context.Context, model string, mount Mount) error

	PickUpTip(ctx context.Context, mount Mount, tip labware.Location) error
	// DropTip drops the held tip at loc: the trash, or back in its rack.
	DropTip(ctx context.Context, mount Mount, loc labware.Location) error
	Aspirate(ctx context.Context, mount Mount, volume float64, loc labware.Location, m Motion) error
	Dispense(ctx context.Context, mount Mount, volume float64, loc labware.Location, m Motion) error
	BlowOut(ctx context.Context, mount Mount, loc labware.Location, m Motion) error
	MoveTo(ctx context.Context, mount Mount, loc labware.Location, m Motion) error

	// Delay blocks for d. It is not interrupted by ctx.
	Delay(ctx context.Context, d time.Duration) error
	// Pause marks an operator checkpoint in the robot's run log.
	Pause(ctx context.Context, message string) error
	Comment(ctx context.Context, message string) error

	EngageMagnet(ctx context.Context, slot int) error
	DisengageMagnet(ctx context.Context, slot int) error
	SetTemperature(ctx context.Context, slot int, celsius float64) error
	DeactivateTemperature(ctx context.Context, slot int) error
	Home(ctx context.Context) error
}
