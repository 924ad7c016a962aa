package pipette

import (
	"sort"

	"github.com/kbukum/liquidkit/errors"
)

// Model describes a pipette type.
type Model struct {
	Name      string
	Channels  int
	MinVolume float64
	MaxVolume float64
	// Default flow rates in µL/s.
	AspirateRate float64
	DispenseRate float64
	BlowOutRate  float64
}

var models = map[string]Model{
	"p20_single_gen2":   {Name: "p20_single_gen2", Channels: 1, MinVolume: 1, MaxVolume: 20, AspirateRate: 7.56, DispenseRate: 7.56, BlowOutRate: 7.56},
	"p300_single_gen2":  {Name: "p300_single_gen2", Channels: 1, MinVolume: 20, MaxVolume: 300, AspirateRate: 92.86, DispenseRate: 92.86, BlowOutRate: 92.86},
	"p300_multi_gen2":   {Name: "p300_multi_gen2", Channels: 8, MinVolume: 20, MaxVolume: 300, AspirateRate: 94, DispenseRate: 94, BlowOutRate: 94},
	"p1000_single_gen2": {Name: "p1000_single_gen2", Channels: 1, MinVolume: 100, MaxVolume: 1000, AspirateRate: 274.7, DispenseRate: 274.7, BlowOutRate: 274.7},
}

// LookupModel returns the named model or a LookupError.
func LookupModel(name string) (Model, error) {
	m, ok := models[name]
	if !ok {
		return Model{}, errors.Lookup("pipette model", name, "known models")
	}
	return m, nil
}

// ModelNames returns the known model names, sorted.
func ModelNames() []string {
	names := make([]string, 0, len(models))
	for n := range models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
