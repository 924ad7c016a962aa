package pipette

import "github.com/kbukum/liquidkit/hardware"

// Settings are the speed settings in force for one operation.
type Settings struct {
	AspirateRate float64 `yaml:"aspirate_rate" mapstructure:"aspirate_rate" validate:"gte=0"` // µL/s
	DispenseRate float64 `yaml:"dispense_rate" mapstructure:"dispense_rate" validate:"gte=0"` // µL/s
	BlowOutRate  float64 `yaml:"blow_out_rate" mapstructure:"blow_out_rate" validate:"gte=0"` // µL/s
	ZSpeed       float64 `yaml:"z_speed" mapstructure:"z_speed" validate:"gte=0"`             // mm/s, 0 for the robot default
	Speed        float64 `yaml:"speed" mapstructure:"speed" validate:"gte=0"`                 // mm/s, 0 for the robot default
}

// Option adjusts the settings of a single operation.
type Option func(*Settings)

// WithFlowRates sets the aspirate and dispense rates.
func WithFlowRates(aspirate, dispense float64) Option {
	return func(s *Settings) {
		s.AspirateRate = aspirate
		s.DispenseRate = dispense
	}
}

// WithAspirateRate sets the aspirate rate.
func WithAspirateRate(ul float64) Option {
	return func(s *Settings) { s.AspirateRate = ul }
}

// WithDispenseRate sets the dispense rate.
func WithDispenseRate(ul float64) Option {
	return func(s *Settings) { s.DispenseRate = ul }
}

// WithZSpeed caps vertical speed, e.g. to keep beads from splashing.
func WithZSpeed(mmPerSec float64) Option {
	return func(s *Settings) { s.ZSpeed = mmPerSec }
}

// WithSpeed caps gantry speed.
func WithSpeed(mmPerSec float64) Option {
	return func(s *Settings) { s.Speed = mmPerSec }
}

// WithSettings copies every non-zero field of o.
func WithSettings(o Settings) Option {
	return func(s *Settings) {
		if o.AspirateRate > 0 {
			s.AspirateRate = o.AspirateRate
		}
		if o.DispenseRate > 0 {
			s.DispenseRate = o.DispenseRate
		}
		if o.BlowOutRate > 0 {
			s.BlowOutRate = o.BlowOutRate
		}
		if o.ZSpeed > 0 {
			s.ZSpeed = o.ZSpeed
		}
		if o.Speed > 0 {
			s.Speed = o.Speed
		}
	}
}

func (p *Pipette) settings(opts []Option) Settings {
	s := p.defaults
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s Settings) aspirate() hardware.Motion {
	return hardware.Motion{FlowRate: s.AspirateRate, ZSpeed: s.ZSpeed, Speed: s.Speed}
}

func (s Settings) dispense() hardware.Motion {
	return hardware.Motion{FlowRate: s.DispenseRate, ZSpeed: s.ZSpeed, Speed: s.Speed}
}

func (s Settings) blowOut() hardware.Motion {
	return hardware.Motion{FlowRate: s.BlowOutRate, ZSpeed: s.ZSpeed, Speed: s.Speed}
}

func (s Settings) move() hardware.Motion {
	return hardware.Motion{ZSpeed: s.ZSpeed, Speed: s.Speed}
}
