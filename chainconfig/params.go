package chainconfig

import (
	"github.com/lunchact/Waves/wire"
)

// FeatureID identifies a protocol feature that activates at a height.
type FeatureID uint16

// Protocol features gated by activation height.
const (
	// FeatureNG enables the split of block fees between the current
	// block's signer and the next block's signer.
	FeatureNG FeatureID = 2

	// FeatureMassTransfer enables the mass-transfer transaction kind.
	FeatureMassTransfer FeatureID = 3

	// FeatureSmartAccounts enables account scripts and with them
	// multi-proof entities.
	FeatureSmartAccounts FeatureID = 4

	// FeatureSmartAssets enables asset scripts.
	FeatureSmartAssets FeatureID = 9
)

// String returns a human-readable name for the feature.
func (id FeatureID) String() string {
	switch id {
	case FeatureNG:
		return "NG"
	case FeatureMassTransfer:
		return "MassTransfer"
	case FeatureSmartAccounts:
		return "SmartAccounts"
	case FeatureSmartAssets:
		return "SmartAssets"
	default:
		return "Unknown"
	}
}

// Params defines a network by its functionality settings. These parameters
// are loaded once at startup and never mutated; every component that needs
// them receives them explicitly.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// AddressScheme is the network byte baked into account addresses,
	// separating addresses of one network from those of another.
	AddressScheme byte

	// GenesisTimestamp is the timestamp of the genesis block, in
	// milliseconds.
	GenesisTimestamp int64

	// PreactivatedFeatures maps a feature to the height it activates at,
	// bypassing on-chain voting. Features absent from this map activate
	// at the height recorded by the voting mechanics in chain state, if
	// any.
	PreactivatedFeatures map[FeatureID]uint64

	// TxKindEnableTimestamps gates transaction kinds by time: a kind
	// listed here is rejected while the transaction timestamp is below
	// the threshold. Kinds not listed are enabled from genesis.
	TxKindEnableTimestamps map[wire.TxKind]int64

	// MaxBlockComplexity is the default resource budget for validating a
	// single block.
	MaxBlockComplexity int64
}

// MainnetParams defines the network parameters for the main network.
var MainnetParams = Params{
	Name:                 "mainnet",
	AddressScheme:        'W',
	GenesisTimestamp:     1460678400000,
	PreactivatedFeatures: map[FeatureID]uint64{},
	TxKindEnableTimestamps: map[wire.TxKind]int64{
		wire.KindLease:        1460678400000,
		wire.KindLeaseCancel:  1460678400000,
		wire.KindExchange:     1461168000000,
		wire.KindBurn:         1530920400000,
		wire.KindMassTransfer: 1530920400000,
	},
	MaxBlockComplexity: 1_000_000,
}

// TestnetParams defines the network parameters for the test network.
var TestnetParams = Params{
	Name:             "testnet",
	AddressScheme:    'T',
	GenesisTimestamp: 1460678400000,
	PreactivatedFeatures: map[FeatureID]uint64{
		FeatureNG:            1,
		FeatureMassTransfer:  1,
		FeatureSmartAccounts: 1,
		FeatureSmartAssets:   1,
	},
	TxKindEnableTimestamps: map[wire.TxKind]int64{},
	MaxBlockComplexity:     1_000_000,
}

// SimnetParams defines the network parameters for the simulation network,
// used by tests that need full control over feature activation.
var SimnetParams = Params{
	Name:                   "simnet",
	AddressScheme:          'S',
	GenesisTimestamp:       0,
	PreactivatedFeatures:   map[FeatureID]uint64{},
	TxKindEnableTimestamps: map[wire.TxKind]int64{},
	MaxBlockComplexity:     1_000_000,
}
