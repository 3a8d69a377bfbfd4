package statediff

import (
	"github.com/pkg/errors"

	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/wire"
)

// Portfolio is the per-account delta a diff applies: base-currency balance,
// lease effects and per-asset balances. A Portfolio inside a Diff is a
// delta; a Portfolio returned by chain state is an absolute holding. Both
// combine the same way.
type Portfolio struct {
	Balance  int64
	LeaseIn  int64
	LeaseOut int64
	Assets   map[crypto.Hash]int64
}

// SpendableBalance returns the base-currency amount the account may spend:
// its balance minus everything leased out.
func (p Portfolio) SpendableBalance() int64 {
	return p.Balance - p.LeaseOut
}

// AssetBalance returns the held amount of the given asset.
func (p Portfolio) AssetBalance(asset crypto.Hash) int64 {
	return p.Assets[asset]
}

func (p Portfolio) combine(other Portfolio) (Portfolio, error) {
	combined := Portfolio{}
	var err error
	if combined.Balance, err = addChecked(p.Balance, other.Balance); err != nil {
		return Portfolio{}, errors.Wrap(err, "balance")
	}
	if combined.LeaseIn, err = addChecked(p.LeaseIn, other.LeaseIn); err != nil {
		return Portfolio{}, errors.Wrap(err, "lease-in")
	}
	if combined.LeaseOut, err = addChecked(p.LeaseOut, other.LeaseOut); err != nil {
		return Portfolio{}, errors.Wrap(err, "lease-out")
	}
	if len(p.Assets) > 0 || len(other.Assets) > 0 {
		combined.Assets = make(map[crypto.Hash]int64, len(p.Assets)+len(other.Assets))
		for asset, amount := range p.Assets {
			combined.Assets[asset] = amount
		}
		for asset, amount := range other.Assets {
			sum, err := addChecked(combined.Assets[asset], amount)
			if err != nil {
				return Portfolio{}, errors.Wrapf(err, "asset %s", asset)
			}
			combined.Assets[asset] = sum
		}
	}
	return combined, nil
}

// TxMeta is the auxiliary record a diff keeps per applied transaction.
type TxMeta struct {
	Kind      wire.TxKind
	Timestamp int64
}

// OrderFill is the cumulative fill update an exchange produces for one
// order: executed volume and matcher fee paid so far.
type OrderFill struct {
	VolumeExecuted int64
	FeePaid        int64
}

// AssetInfo is the static description recorded when an asset is issued.
type AssetInfo struct {
	Issuer      crypto.PublicKey
	Name        []byte
	Description []byte
	Decimals    uint8
}

// AssetVolumeChange tracks quantity changes of an existing asset. Delta is
// additive; Reissuable only ever flips from true to false, so combining
// takes the conjunction.
type AssetVolumeChange struct {
	Delta      int64
	Reissuable bool
}

// LeaseChange records creation or cancellation of a lease.
type LeaseChange struct {
	Active    bool
	Sender    crypto.Address
	Recipient crypto.Address
	Amount    int64
}

// Diff is the computable effect of applying one transaction or one block:
// portfolio deltas per account plus auxiliary records. Diffs combine
// associatively; combining is additive per account and a union for
// disjoint keys.
type Diff struct {
	Portfolios   map[crypto.Address]Portfolio
	Transactions map[crypto.Hash]TxMeta
	OrderFills   map[crypto.Hash]OrderFill
	IssuedAssets map[crypto.Hash]AssetInfo
	AssetVolumes map[crypto.Hash]AssetVolumeChange
	Leases       map[crypto.Hash]LeaseChange
}

// New returns an empty diff.
func New() *Diff {
	return &Diff{
		Portfolios:   make(map[crypto.Address]Portfolio),
		Transactions: make(map[crypto.Hash]TxMeta),
		OrderFills:   make(map[crypto.Hash]OrderFill),
		IssuedAssets: make(map[crypto.Hash]AssetInfo),
		AssetVolumes: make(map[crypto.Hash]AssetVolumeChange),
		Leases:       make(map[crypto.Hash]LeaseChange),
	}
}

// AddBalance accumulates a base-currency delta for the given account.
func (d *Diff) AddBalance(addr crypto.Address, delta int64) error {
	portfolio := d.Portfolios[addr]
	sum, err := addChecked(portfolio.Balance, delta)
	if err != nil {
		return errors.Wrapf(err, "balance of %s", addr)
	}
	portfolio.Balance = sum
	d.Portfolios[addr] = portfolio
	return nil
}

// AddAssetBalance accumulates an asset-balance delta for the given account.
func (d *Diff) AddAssetBalance(addr crypto.Address, asset crypto.Hash, delta int64) error {
	portfolio := d.Portfolios[addr]
	if portfolio.Assets == nil {
		portfolio.Assets = make(map[crypto.Hash]int64)
	}
	sum, err := addChecked(portfolio.Assets[asset], delta)
	if err != nil {
		return errors.Wrapf(err, "asset %s balance of %s", asset, addr)
	}
	portfolio.Assets[asset] = sum
	d.Portfolios[addr] = portfolio
	return nil
}

// AddLease accumulates lease-out for the lessor and lease-in for the
// lessee. Negative amounts undo a lease.
func (d *Diff) AddLease(sender crypto.Address, recipient crypto.Address, amount int64) error {
	senderPortfolio := d.Portfolios[sender]
	sum, err := addChecked(senderPortfolio.LeaseOut, amount)
	if err != nil {
		return errors.Wrapf(err, "lease-out of %s", sender)
	}
	senderPortfolio.LeaseOut = sum
	d.Portfolios[sender] = senderPortfolio

	recipientPortfolio := d.Portfolios[recipient]
	sum, err = addChecked(recipientPortfolio.LeaseIn, amount)
	if err != nil {
		return errors.Wrapf(err, "lease-in of %s", recipient)
	}
	recipientPortfolio.LeaseIn = sum
	d.Portfolios[recipient] = recipientPortfolio
	return nil
}

// Combine folds other into d. Portfolio deltas for the same account are
// summed; auxiliary records are unioned, with same-key records combined
// additively where that is meaningful.
func (d *Diff) Combine(other *Diff) error {
	for addr, portfolio := range other.Portfolios {
		combined, err := d.Portfolios[addr].combine(portfolio)
		if err != nil {
			return err
		}
		d.Portfolios[addr] = combined
	}
	for id, meta := range other.Transactions {
		d.Transactions[id] = meta
	}
	for id, fill := range other.OrderFills {
		existing := d.OrderFills[id]
		volume, err := addChecked(existing.VolumeExecuted, fill.VolumeExecuted)
		if err != nil {
			return errors.Wrapf(err, "fill volume of order %s", id)
		}
		fee, err := addChecked(existing.FeePaid, fill.FeePaid)
		if err != nil {
			return errors.Wrapf(err, "fill fee of order %s", id)
		}
		d.OrderFills[id] = OrderFill{VolumeExecuted: volume, FeePaid: fee}
	}
	for id, info := range other.IssuedAssets {
		d.IssuedAssets[id] = info
	}
	for id, change := range other.AssetVolumes {
		existing, ok := d.AssetVolumes[id]
		if !ok {
			d.AssetVolumes[id] = change
			continue
		}
		delta, err := addChecked(existing.Delta, change.Delta)
		if err != nil {
			return errors.Wrapf(err, "volume of asset %s", id)
		}
		d.AssetVolumes[id] = AssetVolumeChange{
			Delta:      delta,
			Reissuable: existing.Reissuable && change.Reissuable,
		}
	}
	for id, change := range other.Leases {
		existing, ok := d.Leases[id]
		if !ok {
			d.Leases[id] = change
			continue
		}
		// A cancel landing on a lease created earlier in the same fold
		// keeps the lease parameters and only flips the status.
		existing.Active = change.Active
		d.Leases[id] = existing
	}
	return nil
}

func addChecked(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, errors.Errorf("int64 overflow adding %d and %d", a, b)
	}
	return sum, nil
}
