package blockdiff

import (
	"github.com/pkg/errors"

	"github.com/lunchact/Waves/chainconfig"
	"github.com/lunchact/Waves/features"
	"github.com/lunchact/Waves/wire"
)

// KindRule describes when a transaction kind is admissible.
type KindRule struct {
	// EnableTimestamp rejects transactions whose timestamp is below the
	// threshold. Zero means enabled from genesis.
	EnableTimestamp int64

	// RequiredFeature, if set, gates the kind on a protocol feature being
	// active at the block's height.
	RequiredFeature chainconfig.FeatureID
	HasFeature      bool

	// BootstrapOnly restricts the kind to the first block.
	BootstrapOnly bool
}

// KindRegistry is the immutable set of admissibility rules, keyed by
// transaction kind. A kind with no entry is rejected outright, so adding
// a transaction kind requires an explicit registration here.
type KindRegistry struct {
	rules map[wire.TxKind]KindRule
}

// NewKindRegistry builds a registry from an explicit rule set.
func NewKindRegistry(rules map[wire.TxKind]KindRule) *KindRegistry {
	copied := make(map[wire.TxKind]KindRule, len(rules))
	for kind, rule := range rules {
		copied[kind] = rule
	}
	return &KindRegistry{rules: copied}
}

// DefaultKindRegistry builds the standard rule set for the given network:
// every known kind registered, timestamp thresholds from the params, and
// mass transfers gated on their feature.
func DefaultKindRegistry(params *chainconfig.Params) *KindRegistry {
	rules := map[wire.TxKind]KindRule{
		wire.KindGenesis:     {BootstrapOnly: true},
		wire.KindPayment:     {},
		wire.KindIssue:       {},
		wire.KindTransfer:    {},
		wire.KindReissue:     {},
		wire.KindBurn:        {},
		wire.KindExchange:    {},
		wire.KindLease:       {},
		wire.KindLeaseCancel: {},
		wire.KindMassTransfer: {
			RequiredFeature: chainconfig.FeatureMassTransfer,
			HasFeature:      true,
		},
	}
	for kind, timestamp := range params.TxKindEnableTimestamps {
		rule := rules[kind]
		rule.EnableTimestamp = timestamp
		rules[kind] = rule
	}
	return NewKindRegistry(rules)
}

// checkAdmissible rejects a transaction whose kind is unknown, not yet
// enabled at the transaction's timestamp, gated on an inactive feature,
// or restricted to the bootstrap block.
func (r *KindRegistry) checkAdmissible(gate *features.Gate, height uint64, tx wire.Transaction) error {
	rule, ok := r.rules[tx.Kind()]
	if !ok {
		return ruleError(ErrUnknownTransactionKind,
			errors.Errorf("transaction kind %s has no admissibility rule", tx.Kind()))
	}
	if rule.BootstrapOnly && height != 1 {
		return ruleError(ErrGenesisOutsideBootstrap,
			errors.Errorf("%s transaction at height %d", tx.Kind(), height))
	}
	if rule.EnableTimestamp != 0 && tx.GetTimestamp() < rule.EnableTimestamp {
		return ruleError(ErrTransactionNotAllowedYet,
			errors.Errorf("%s transactions are enabled from timestamp %d, got %d",
				tx.Kind(), rule.EnableTimestamp, tx.GetTimestamp()))
	}
	if rule.HasFeature {
		active, err := gate.IsActive(rule.RequiredFeature, height)
		if err != nil {
			return err
		}
		if !active {
			return ruleError(ErrTransactionNotAllowedYet,
				errors.Errorf("%s transactions require the %s feature, inactive at height %d",
					tx.Kind(), rule.RequiredFeature, height))
		}
	}
	return nil
}
