package features

import (
	"github.com/lunchact/Waves/chainconfig"
	"github.com/lunchact/Waves/state"
)

// Gate answers whether a protocol feature is active at a height. It is a
// pure function of the height, the pre-activation table in the network
// params and the activation heights recorded in chain state; it never
// mutates anything.
type Gate struct {
	params *chainconfig.Params
	reader state.Reader
}

// New builds a gate over the given params and chain-state reader.
func New(params *chainconfig.Params, reader state.Reader) *Gate {
	return &Gate{params: params, reader: reader}
}

// IsActive reports whether the feature is active at the given height. A
// pre-activated feature takes precedence over anything chain state
// recorded for it.
func (g *Gate) IsActive(id chainconfig.FeatureID, height uint64) (bool, error) {
	if activationHeight, ok := g.params.PreactivatedFeatures[id]; ok {
		return height >= activationHeight, nil
	}
	activationHeight, ok, err := g.reader.FeatureActivationHeight(id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return height >= activationHeight, nil
}
