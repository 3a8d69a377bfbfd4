package txdiffer

import (
	"bytes"
	"math/big"

	"github.com/pkg/errors"

	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/state"
	"github.com/lunchact/Waves/statediff"
	"github.com/lunchact/Waves/wire"
)

// PriceConstant scales order prices: a price of PriceConstant means one
// unit of the price asset per unit of the amount asset.
const PriceConstant = 100_000_000

// Differ computes the state effect of a single transaction of any kind.
// Effects are validated against the chain state the block builds on; the
// engine combines them into the block diff.
type Differ struct {
	reader state.Reader
	scheme byte
}

// New builds a differ over the given chain-state reader for the network
// identified by scheme.
func New(reader state.Reader, scheme byte) *Differ {
	return &Differ{reader: reader, scheme: scheme}
}

// CreateDiff computes the diff of one transaction. The returned diff
// covers only this transaction's own effect; fees are debited from the
// sender here but credited to the block signer by the fee-split rule, not
// here.
func (d *Differ) CreateDiff(tx wire.Transaction) (*statediff.Diff, error) {
	diff := statediff.New()
	var err error
	switch concrete := tx.(type) {
	case *wire.GenesisTx:
		err = d.genesisDiff(diff, concrete)
	case *wire.PaymentTx:
		err = d.paymentDiff(diff, concrete)
	case *wire.IssueTx:
		err = d.issueDiff(diff, concrete)
	case *wire.TransferTx:
		err = d.transferDiff(diff, concrete)
	case *wire.ReissueTx:
		err = d.reissueDiff(diff, concrete)
	case *wire.BurnTx:
		err = d.burnDiff(diff, concrete)
	case *wire.ExchangeTx:
		err = d.exchangeDiff(diff, concrete)
	case *wire.LeaseTx:
		err = d.leaseDiff(diff, concrete)
	case *wire.LeaseCancelTx:
		err = d.leaseCancelDiff(diff, concrete)
	case *wire.MassTransferTx:
		err = d.massTransferDiff(diff, concrete)
	default:
		return nil, errors.Errorf("no diff rule for transaction kind %s", tx.Kind())
	}
	if err != nil {
		return nil, err
	}
	diff.Transactions[tx.GetID()] = statediff.TxMeta{
		Kind:      tx.Kind(),
		Timestamp: tx.GetTimestamp(),
	}
	return diff, nil
}

func (d *Differ) senderAddress(tx wire.Transaction) crypto.Address {
	return crypto.NewAddressFromPublicKey(d.scheme, tx.GetSenderKey())
}

// checkSpendable verifies the account can afford spending amount of base
// currency on top of the pre-block state.
func (d *Differ) checkSpendable(addr crypto.Address, amount int64) error {
	portfolio, err := d.reader.Portfolio(addr)
	if err != nil {
		return err
	}
	if portfolio.SpendableBalance() < amount {
		return errors.Errorf("account %s has spendable balance %d, needs %d",
			addr, portfolio.SpendableBalance(), amount)
	}
	return nil
}

func (d *Differ) checkAssetBalance(addr crypto.Address, asset crypto.Hash, amount int64) error {
	portfolio, err := d.reader.Portfolio(addr)
	if err != nil {
		return err
	}
	if portfolio.AssetBalance(asset) < amount {
		return errors.Errorf("account %s holds %d of asset %s, needs %d",
			addr, portfolio.AssetBalance(asset), asset, amount)
	}
	return nil
}

func checkPositive(name string, amount int64) error {
	if amount <= 0 {
		return errors.Errorf("%s must be positive, got %d", name, amount)
	}
	return nil
}

func checkFee(fee int64) error {
	return checkPositive("fee", fee)
}

func (d *Differ) genesisDiff(diff *statediff.Diff, tx *wire.GenesisTx) error {
	if err := checkPositive("genesis amount", tx.Amount); err != nil {
		return err
	}
	return diff.AddBalance(tx.Recipient, tx.Amount)
}

func (d *Differ) paymentDiff(diff *statediff.Diff, tx *wire.PaymentTx) error {
	if err := checkPositive("payment amount", tx.Amount); err != nil {
		return err
	}
	if err := checkFee(tx.Fee); err != nil {
		return err
	}
	sender := d.senderAddress(tx)
	if err := d.checkSpendable(sender, tx.Amount+tx.Fee); err != nil {
		return err
	}
	if err := diff.AddBalance(sender, -(tx.Amount + tx.Fee)); err != nil {
		return err
	}
	return diff.AddBalance(tx.Recipient, tx.Amount)
}

func (d *Differ) issueDiff(diff *statediff.Diff, tx *wire.IssueTx) error {
	if err := checkPositive("issued quantity", tx.Quantity); err != nil {
		return err
	}
	if tx.Decimals > 8 {
		return errors.Errorf("asset decimals %d exceed maximum 8", tx.Decimals)
	}
	if err := checkFee(tx.Fee); err != nil {
		return err
	}
	sender := d.senderAddress(tx)
	if err := d.checkSpendable(sender, tx.Fee); err != nil {
		return err
	}
	if err := diff.AddBalance(sender, -tx.Fee); err != nil {
		return err
	}
	assetID := tx.GetID()
	if err := diff.AddAssetBalance(sender, assetID, tx.Quantity); err != nil {
		return err
	}
	diff.IssuedAssets[assetID] = statediff.AssetInfo{
		Issuer:      tx.SenderKey,
		Name:        tx.Name,
		Description: tx.Description,
		Decimals:    tx.Decimals,
	}
	diff.AssetVolumes[assetID] = statediff.AssetVolumeChange{
		Delta:      tx.Quantity,
		Reissuable: tx.Reissuable,
	}
	return nil
}

func (d *Differ) transferDiff(diff *statediff.Diff, tx *wire.TransferTx) error {
	if err := checkPositive("transfer amount", tx.Amount); err != nil {
		return err
	}
	if err := checkFee(tx.Fee); err != nil {
		return err
	}
	sender := d.senderAddress(tx)
	if tx.Asset == nil {
		if err := d.checkSpendable(sender, tx.Amount+tx.Fee); err != nil {
			return err
		}
		if err := diff.AddBalance(sender, -(tx.Amount + tx.Fee)); err != nil {
			return err
		}
		return diff.AddBalance(tx.Recipient, tx.Amount)
	}
	if err := d.checkKnownAsset(*tx.Asset); err != nil {
		return err
	}
	if err := d.checkSpendable(sender, tx.Fee); err != nil {
		return err
	}
	if err := d.checkAssetBalance(sender, *tx.Asset, tx.Amount); err != nil {
		return err
	}
	if err := diff.AddBalance(sender, -tx.Fee); err != nil {
		return err
	}
	if err := diff.AddAssetBalance(sender, *tx.Asset, -tx.Amount); err != nil {
		return err
	}
	return diff.AddAssetBalance(tx.Recipient, *tx.Asset, tx.Amount)
}

func (d *Differ) checkKnownAsset(asset crypto.Hash) error {
	description, err := d.reader.AssetDescription(asset)
	if err != nil {
		return err
	}
	if description == nil {
		return errors.Errorf("unknown asset %s", asset)
	}
	return nil
}

func (d *Differ) reissueDiff(diff *statediff.Diff, tx *wire.ReissueTx) error {
	if err := checkPositive("reissued quantity", tx.Quantity); err != nil {
		return err
	}
	if err := checkFee(tx.Fee); err != nil {
		return err
	}
	description, err := d.reader.AssetDescription(tx.Asset)
	if err != nil {
		return err
	}
	if description == nil {
		return errors.Errorf("unknown asset %s", tx.Asset)
	}
	if description.Issuer != tx.SenderKey {
		return errors.Errorf("asset %s can only be reissued by its issuer", tx.Asset)
	}
	if !description.Reissuable {
		return errors.Errorf("asset %s is not reissuable", tx.Asset)
	}
	sender := d.senderAddress(tx)
	if err := d.checkSpendable(sender, tx.Fee); err != nil {
		return err
	}
	if err := diff.AddBalance(sender, -tx.Fee); err != nil {
		return err
	}
	if err := diff.AddAssetBalance(sender, tx.Asset, tx.Quantity); err != nil {
		return err
	}
	diff.AssetVolumes[tx.Asset] = statediff.AssetVolumeChange{
		Delta:      tx.Quantity,
		Reissuable: tx.Reissuable,
	}
	return nil
}

func (d *Differ) burnDiff(diff *statediff.Diff, tx *wire.BurnTx) error {
	if err := checkPositive("burned amount", tx.Amount); err != nil {
		return err
	}
	if err := checkFee(tx.Fee); err != nil {
		return err
	}
	if err := d.checkKnownAsset(tx.Asset); err != nil {
		return err
	}
	sender := d.senderAddress(tx)
	if err := d.checkSpendable(sender, tx.Fee); err != nil {
		return err
	}
	if err := d.checkAssetBalance(sender, tx.Asset, tx.Amount); err != nil {
		return err
	}
	if err := diff.AddBalance(sender, -tx.Fee); err != nil {
		return err
	}
	if err := diff.AddAssetBalance(sender, tx.Asset, -tx.Amount); err != nil {
		return err
	}
	diff.AssetVolumes[tx.Asset] = statediff.AssetVolumeChange{
		Delta:      -tx.Amount,
		Reissuable: true, // burning never flips reissuability
	}
	return nil
}

func (d *Differ) leaseDiff(diff *statediff.Diff, tx *wire.LeaseTx) error {
	if err := checkPositive("leased amount", tx.Amount); err != nil {
		return err
	}
	if err := checkFee(tx.Fee); err != nil {
		return err
	}
	sender := d.senderAddress(tx)
	if tx.Recipient == sender {
		return errors.New("cannot lease to self")
	}
	if err := d.checkSpendable(sender, tx.Amount+tx.Fee); err != nil {
		return err
	}
	if err := diff.AddBalance(sender, -tx.Fee); err != nil {
		return err
	}
	if err := diff.AddLease(sender, tx.Recipient, tx.Amount); err != nil {
		return err
	}
	diff.Leases[tx.GetID()] = statediff.LeaseChange{
		Active:    true,
		Sender:    sender,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
	}
	return nil
}

func (d *Differ) leaseCancelDiff(diff *statediff.Diff, tx *wire.LeaseCancelTx) error {
	if err := checkFee(tx.Fee); err != nil {
		return err
	}
	lease, err := d.reader.LeaseDetails(tx.LeaseID)
	if err != nil {
		return err
	}
	if lease == nil {
		return errors.Errorf("unknown lease %s", tx.LeaseID)
	}
	if !lease.Active {
		return errors.Errorf("lease %s is already canceled", tx.LeaseID)
	}
	sender := d.senderAddress(tx)
	if lease.Sender != sender {
		return errors.Errorf("lease %s can only be canceled by its sender", tx.LeaseID)
	}
	if err := d.checkSpendable(sender, tx.Fee); err != nil {
		return err
	}
	if err := diff.AddBalance(sender, -tx.Fee); err != nil {
		return err
	}
	if err := diff.AddLease(lease.Sender, lease.Recipient, -lease.Amount); err != nil {
		return err
	}
	diff.Leases[tx.LeaseID] = statediff.LeaseChange{
		Active:    false,
		Sender:    lease.Sender,
		Recipient: lease.Recipient,
		Amount:    lease.Amount,
	}
	return nil
}

func (d *Differ) massTransferDiff(diff *statediff.Diff, tx *wire.MassTransferTx) error {
	if len(tx.Transfers) == 0 {
		return errors.New("mass-transfer carries no recipients")
	}
	if err := checkFee(tx.Fee); err != nil {
		return err
	}
	for _, entry := range tx.Transfers {
		if err := checkPositive("mass-transfer amount", entry.Amount); err != nil {
			return err
		}
	}
	total, err := tx.TotalAmount()
	if err != nil {
		return err
	}
	sender := d.senderAddress(tx)
	if tx.Asset == nil {
		if err := d.checkSpendable(sender, total+tx.Fee); err != nil {
			return err
		}
		if err := diff.AddBalance(sender, -(total + tx.Fee)); err != nil {
			return err
		}
		for _, entry := range tx.Transfers {
			if err := diff.AddBalance(entry.Recipient, entry.Amount); err != nil {
				return err
			}
		}
		return nil
	}
	if err := d.checkKnownAsset(*tx.Asset); err != nil {
		return err
	}
	if err := d.checkSpendable(sender, tx.Fee); err != nil {
		return err
	}
	if err := d.checkAssetBalance(sender, *tx.Asset, total); err != nil {
		return err
	}
	if err := diff.AddBalance(sender, -tx.Fee); err != nil {
		return err
	}
	if err := diff.AddAssetBalance(sender, *tx.Asset, -total); err != nil {
		return err
	}
	for _, entry := range tx.Transfers {
		if err := diff.AddAssetBalance(entry.Recipient, *tx.Asset, entry.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (d *Differ) exchangeDiff(diff *statediff.Diff, tx *wire.ExchangeTx) error {
	buy, sell := tx.BuyOrder, tx.SellOrder
	if err := d.checkOrderPair(tx); err != nil {
		return err
	}
	if err := checkPositive("executed amount", tx.Amount); err != nil {
		return err
	}
	if err := checkPositive("executed price", tx.Price); err != nil {
		return err
	}
	if err := checkFee(tx.Fee); err != nil {
		return err
	}
	if tx.BuyMatcherFee < 0 || tx.SellMatcherFee < 0 {
		return errors.New("matcher fees must not be negative")
	}
	if tx.Price > buy.Price {
		return errors.Errorf("executed price %d exceeds buy order price %d", tx.Price, buy.Price)
	}
	if tx.Price < sell.Price {
		return errors.Errorf("executed price %d is below sell order price %d", tx.Price, sell.Price)
	}
	if err := d.checkOrderCapacity(buy, tx.Amount); err != nil {
		return err
	}
	if err := d.checkOrderCapacity(sell, tx.Amount); err != nil {
		return err
	}

	priceAmount, err := priceVolume(tx.Amount, tx.Price)
	if err != nil {
		return err
	}

	buyer := crypto.NewAddressFromPublicKey(d.scheme, buy.SenderKey)
	seller := crypto.NewAddressFromPublicKey(d.scheme, sell.SenderKey)
	matcher := d.senderAddress(tx)

	// Buyer receives the amount asset and pays in the price asset;
	// seller the other way around. Both pay their matcher fee in base
	// currency; the matcher collects the fees and pays the tx fee.
	if err := d.moveAsset(diff, buy.Pair.AmountAsset, seller, buyer, tx.Amount); err != nil {
		return err
	}
	if err := d.moveAsset(diff, buy.Pair.PriceAsset, buyer, seller, priceAmount); err != nil {
		return err
	}
	if err := diff.AddBalance(buyer, -tx.BuyMatcherFee); err != nil {
		return err
	}
	if err := diff.AddBalance(seller, -tx.SellMatcherFee); err != nil {
		return err
	}
	if err := diff.AddBalance(matcher, tx.BuyMatcherFee+tx.SellMatcherFee-tx.Fee); err != nil {
		return err
	}

	diff.OrderFills[buy.GetID()] = statediff.OrderFill{
		VolumeExecuted: tx.Amount,
		FeePaid:        tx.BuyMatcherFee,
	}
	diff.OrderFills[sell.GetID()] = statediff.OrderFill{
		VolumeExecuted: tx.Amount,
		FeePaid:        tx.SellMatcherFee,
	}
	return nil
}

func (d *Differ) checkOrderPair(tx *wire.ExchangeTx) error {
	buy, sell := tx.BuyOrder, tx.SellOrder
	if buy.Side != wire.SideBuy {
		return errors.New("buy order has sell side")
	}
	if sell.Side != wire.SideSell {
		return errors.New("sell order has buy side")
	}
	if !hashPtrEqual(buy.Pair.AmountAsset, sell.Pair.AmountAsset) ||
		!hashPtrEqual(buy.Pair.PriceAsset, sell.Pair.PriceAsset) {
		return errors.New("orders trade different asset pairs")
	}
	if buy.MatcherKey != tx.SenderKey || sell.MatcherKey != tx.SenderKey {
		return errors.New("orders are addressed to a different matcher")
	}
	return nil
}

// checkOrderCapacity verifies the executed amount fits into what is left
// of the order after previously recorded fills.
func (d *Differ) checkOrderCapacity(order *wire.Order, amount int64) error {
	fill, err := d.reader.OrderFill(order.GetID())
	if err != nil {
		return err
	}
	if fill.VolumeExecuted+amount > order.Amount {
		return errors.Errorf("order %s has %d of %d filled, cannot execute %d more",
			order.GetID(), fill.VolumeExecuted, order.Amount, amount)
	}
	return nil
}

// moveAsset debits from and credits to in the given asset, where nil means
// base currency. The debtor's balance is checked against pre-block state.
func (d *Differ) moveAsset(diff *statediff.Diff, asset *crypto.Hash, from, to crypto.Address, amount int64) error {
	if asset == nil {
		if err := d.checkSpendable(from, amount); err != nil {
			return err
		}
		if err := diff.AddBalance(from, -amount); err != nil {
			return err
		}
		return diff.AddBalance(to, amount)
	}
	if err := d.checkAssetBalance(from, *asset, amount); err != nil {
		return err
	}
	if err := diff.AddAssetBalance(from, *asset, -amount); err != nil {
		return err
	}
	return diff.AddAssetBalance(to, *asset, amount)
}

// priceVolume computes amount*price/PriceConstant in 128-bit arithmetic
// and fails if the result does not fit int64.
func priceVolume(amount, price int64) (int64, error) {
	product := new(big.Int).Mul(big.NewInt(amount), big.NewInt(price))
	product.Div(product, big.NewInt(PriceConstant))
	if !product.IsInt64() {
		return 0, errors.Errorf("price volume of %d at price %d overflows int64", amount, price)
	}
	volume := product.Int64()
	if volume <= 0 {
		return 0, errors.Errorf("price volume of %d at price %d rounds to nothing", amount, price)
	}
	return volume, nil
}

func hashPtrEqual(a, b *crypto.Hash) bool {
	if a == nil || b == nil {
		return a == b
	}
	return bytes.Equal(a[:], b[:])
}
