package state

import (
	"github.com/lunchact/Waves/chainconfig"
	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/script"
	"github.com/lunchact/Waves/statediff"
)

// AssetDescription is everything chain state knows about an issued asset.
type AssetDescription struct {
	Issuer        crypto.PublicKey
	Name          []byte
	Description   []byte
	Decimals      uint8
	Reissuable    bool
	TotalQuantity int64
	Script        *script.Script
}

// LeaseDetails is the recorded state of a lease.
type LeaseDetails struct {
	Active    bool
	Sender    crypto.Address
	Recipient crypto.Address
	Amount    int64
}

// Reader is read-only access to chain state. Diff computation never needs
// more than this; committing diffs goes through the Store. A Reader
// obtained from a snapshot stays consistent for its whole lifetime, which
// is what lets independent callers validate blocks concurrently.
type Reader interface {
	// Height returns the current chain height: the number of appended
	// blocks.
	Height() (uint64, error)

	// Portfolio returns the absolute holdings of the given account. An
	// account never seen before has an empty portfolio, not an error.
	Portfolio(addr crypto.Address) (statediff.Portfolio, error)

	// AccountScript returns the script attached to the account, or nil.
	AccountScript(addr crypto.Address) (*script.Script, error)

	// AssetDescription returns the description of the asset, or nil if
	// the asset is unknown.
	AssetDescription(asset crypto.Hash) (*AssetDescription, error)

	// LeaseDetails returns the recorded lease, or nil if unknown.
	LeaseDetails(leaseID crypto.Hash) (*LeaseDetails, error)

	// OrderFill returns the cumulative recorded fill of the given order.
	// An order never filled before has a zero fill, not an error.
	OrderFill(orderID crypto.Hash) (statediff.OrderFill, error)

	// FeatureActivationHeight returns the height the feature activated
	// at, if it ever did.
	FeatureActivationHeight(id chainconfig.FeatureID) (uint64, bool, error)
}
