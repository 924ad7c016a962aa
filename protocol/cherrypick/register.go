package cherrypick

import "github.com/kbukum/liquidkit/protocol"

// Protocol names.
const (
	OligoDilutionName  = "oligo-dilution"
	PrimerDilutionName = "primer-dilution"
)

// Register adds the cherrypick protocols to r.
func Register(r *protocol.Registry) {
	r.Register(OligoDilutionName, "dilute oligos with water following one pick-list per plate",
		func(decode protocol.Decoder) (protocol.Protocol, error) {
			var cfg OligoConfig
			if err := protocol.Configure(&cfg, decode); err != nil {
				return nil, err
			}
			return NewOligoDilution(cfg), nil
		})
	r.Register(PrimerDilutionName, "add water, pause for centrifugation, then add primer to a 384-well plate",
		func(decode protocol.Decoder) (protocol.Protocol, error) {
			var cfg PrimerConfig
			if err := protocol.Configure(&cfg, decode); err != nil {
				return nil, err
			}
			return NewPrimerDilution(cfg), nil
		})
}
