package features

import (
	"testing"

	"github.com/lunchact/Waves/chainconfig"
	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/script"
	"github.com/lunchact/Waves/state"
	"github.com/lunchact/Waves/statediff"
)

// stubReader serves recorded feature activations and nothing else.
type stubReader struct {
	activations map[chainconfig.FeatureID]uint64
}

func (r *stubReader) Height() (uint64, error) { return 100, nil }

func (r *stubReader) Portfolio(addr crypto.Address) (statediff.Portfolio, error) {
	return statediff.Portfolio{}, nil
}

func (r *stubReader) AccountScript(addr crypto.Address) (*script.Script, error) {
	return nil, nil
}

func (r *stubReader) AssetDescription(asset crypto.Hash) (*state.AssetDescription, error) {
	return nil, nil
}

func (r *stubReader) LeaseDetails(leaseID crypto.Hash) (*state.LeaseDetails, error) {
	return nil, nil
}

func (r *stubReader) OrderFill(orderID crypto.Hash) (statediff.OrderFill, error) {
	return statediff.OrderFill{}, nil
}

func (r *stubReader) FeatureActivationHeight(id chainconfig.FeatureID) (uint64, bool, error) {
	height, ok := r.activations[id]
	return height, ok, nil
}

func TestGateRecordedActivation(t *testing.T) {
	params := chainconfig.SimnetParams
	reader := &stubReader{activations: map[chainconfig.FeatureID]uint64{
		chainconfig.FeatureNG: 50,
	}}
	gate := New(&params, reader)

	tests := []struct {
		height uint64
		want   bool
	}{
		{1, false},
		{49, false},
		{50, true},
		{51, true},
	}
	for _, test := range tests {
		got, err := gate.IsActive(chainconfig.FeatureNG, test.height)
		if err != nil {
			t.Fatalf("IsActive at %d: %s", test.height, err)
		}
		if got != test.want {
			t.Fatalf("IsActive at %d = %t, want %t", test.height, got, test.want)
		}
	}
}

func TestGateUnknownFeatureInactive(t *testing.T) {
	params := chainconfig.SimnetParams
	gate := New(&params, &stubReader{})
	got, err := gate.IsActive(chainconfig.FeatureSmartAssets, 1_000_000)
	if err != nil {
		t.Fatalf("IsActive: %s", err)
	}
	if got {
		t.Fatalf("feature with no activation record reported active")
	}
}

func TestGatePreactivationTakesPrecedence(t *testing.T) {
	params := chainconfig.SimnetParams
	params.PreactivatedFeatures = map[chainconfig.FeatureID]uint64{
		chainconfig.FeatureNG: 10,
	}
	// The recorded on-chain height must lose against the preactivation.
	reader := &stubReader{activations: map[chainconfig.FeatureID]uint64{
		chainconfig.FeatureNG: 99,
	}}
	gate := New(&params, reader)

	got, err := gate.IsActive(chainconfig.FeatureNG, 10)
	if err != nil {
		t.Fatalf("IsActive: %s", err)
	}
	if !got {
		t.Fatalf("preactivated feature inactive at its activation height")
	}
}

func TestGateTestnetPreactivations(t *testing.T) {
	gate := New(&chainconfig.TestnetParams, &stubReader{})
	for _, id := range []chainconfig.FeatureID{
		chainconfig.FeatureNG,
		chainconfig.FeatureMassTransfer,
		chainconfig.FeatureSmartAccounts,
		chainconfig.FeatureSmartAssets,
	} {
		got, err := gate.IsActive(id, 1)
		if err != nil {
			t.Fatalf("IsActive(%s): %s", id, err)
		}
		if !got {
			t.Fatalf("feature %s inactive on testnet", id)
		}
	}
}
