package txdiffer

import (
	"testing"

	"github.com/lunchact/Waves/chainconfig"
	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/script"
	"github.com/lunchact/Waves/state"
	"github.com/lunchact/Waves/statediff"
	"github.com/lunchact/Waves/wire"
)

const testScheme = byte('S')

// stubReader is a mutable in-memory chain state for differ tests.
type stubReader struct {
	portfolios map[crypto.Address]statediff.Portfolio
	assets     map[crypto.Hash]*state.AssetDescription
	leases     map[crypto.Hash]*state.LeaseDetails
	fills      map[crypto.Hash]statediff.OrderFill
}

func newStubReader() *stubReader {
	return &stubReader{
		portfolios: make(map[crypto.Address]statediff.Portfolio),
		assets:     make(map[crypto.Hash]*state.AssetDescription),
		leases:     make(map[crypto.Hash]*state.LeaseDetails),
		fills:      make(map[crypto.Hash]statediff.OrderFill),
	}
}

func (r *stubReader) Height() (uint64, error) { return 1, nil }

func (r *stubReader) Portfolio(addr crypto.Address) (statediff.Portfolio, error) {
	return r.portfolios[addr], nil
}

func (r *stubReader) AccountScript(addr crypto.Address) (*script.Script, error) {
	return nil, nil
}

func (r *stubReader) AssetDescription(asset crypto.Hash) (*state.AssetDescription, error) {
	return r.assets[asset], nil
}

func (r *stubReader) LeaseDetails(leaseID crypto.Hash) (*state.LeaseDetails, error) {
	return r.leases[leaseID], nil
}

func (r *stubReader) OrderFill(orderID crypto.Hash) (statediff.OrderFill, error) {
	return r.fills[orderID], nil
}

func (r *stubReader) FeatureActivationHeight(id chainconfig.FeatureID) (uint64, bool, error) {
	return 0, false, nil
}

func publicKey(fill byte) crypto.PublicKey {
	var pk crypto.PublicKey
	for i := range pk {
		pk[i] = fill
	}
	return pk
}

func address(pk crypto.PublicKey) crypto.Address {
	return crypto.NewAddressFromPublicKey(testScheme, pk)
}

func TestPaymentDiff(t *testing.T) {
	sender := publicKey(1)
	senderAddr := address(sender)
	recipient := address(publicKey(2))

	reader := newStubReader()
	reader.portfolios[senderAddr] = statediff.Portfolio{Balance: 1000}
	differ := New(reader, testScheme)

	tx := &wire.PaymentTx{
		TxCommon:  wire.TxCommon{SenderKey: sender, Fee: 10, Timestamp: 1},
		Recipient: recipient,
		Amount:    100,
	}
	diff, err := differ.CreateDiff(tx)
	if err != nil {
		t.Fatalf("CreateDiff: %s", err)
	}
	if got := diff.Portfolios[senderAddr].Balance; got != -110 {
		t.Fatalf("sender delta = %d, want -110", got)
	}
	if got := diff.Portfolios[recipient].Balance; got != 100 {
		t.Fatalf("recipient delta = %d, want 100", got)
	}
	if _, ok := diff.Transactions[tx.GetID()]; !ok {
		t.Fatalf("diff lacks the transaction record")
	}
}

func TestPaymentDiffInsufficientFunds(t *testing.T) {
	sender := publicKey(1)
	reader := newStubReader()
	reader.portfolios[address(sender)] = statediff.Portfolio{Balance: 50}
	differ := New(reader, testScheme)

	tx := &wire.PaymentTx{
		TxCommon:  wire.TxCommon{SenderKey: sender, Fee: 10, Timestamp: 1},
		Recipient: address(publicKey(2)),
		Amount:    100,
	}
	if _, err := differ.CreateDiff(tx); err == nil {
		t.Fatalf("underfunded payment produced a diff")
	}
}

func TestLeasedOutFundsAreNotSpendable(t *testing.T) {
	sender := publicKey(1)
	reader := newStubReader()
	reader.portfolios[address(sender)] = statediff.Portfolio{Balance: 200, LeaseOut: 150}
	differ := New(reader, testScheme)

	tx := &wire.PaymentTx{
		TxCommon:  wire.TxCommon{SenderKey: sender, Fee: 10, Timestamp: 1},
		Recipient: address(publicKey(2)),
		Amount:    100,
	}
	if _, err := differ.CreateDiff(tx); err == nil {
		t.Fatalf("payment spent leased-out funds")
	}
}

func TestIssueDiff(t *testing.T) {
	sender := publicKey(1)
	senderAddr := address(sender)
	reader := newStubReader()
	reader.portfolios[senderAddr] = statediff.Portfolio{Balance: 1000}
	differ := New(reader, testScheme)

	tx := &wire.IssueTx{
		TxCommon:   wire.TxCommon{SenderKey: sender, Fee: 100, Timestamp: 1},
		Name:       []byte("token"),
		Quantity:   5000,
		Decimals:   2,
		Reissuable: true,
	}
	diff, err := differ.CreateDiff(tx)
	if err != nil {
		t.Fatalf("CreateDiff: %s", err)
	}

	assetID := tx.GetID()
	if got := diff.Portfolios[senderAddr].AssetBalance(assetID); got != 5000 {
		t.Fatalf("issuer asset delta = %d, want 5000", got)
	}
	info, ok := diff.IssuedAssets[assetID]
	if !ok {
		t.Fatalf("diff lacks the issued asset record")
	}
	if info.Issuer != sender || string(info.Name) != "token" {
		t.Fatalf("issued asset record = %+v", info)
	}
	volume := diff.AssetVolumes[assetID]
	if volume.Delta != 5000 || !volume.Reissuable {
		t.Fatalf("asset volume record = %+v", volume)
	}
}

func TestReissueRestrictedToIssuer(t *testing.T) {
	issuer := publicKey(1)
	imposter := publicKey(2)
	asset := crypto.HashData([]byte("asset"))

	reader := newStubReader()
	reader.assets[asset] = &state.AssetDescription{Issuer: issuer, Reissuable: true}
	reader.portfolios[address(issuer)] = statediff.Portfolio{Balance: 1000}
	reader.portfolios[address(imposter)] = statediff.Portfolio{Balance: 1000}
	differ := New(reader, testScheme)

	good := &wire.ReissueTx{
		TxCommon:   wire.TxCommon{SenderKey: issuer, Fee: 10, Timestamp: 1},
		Asset:      asset,
		Quantity:   100,
		Reissuable: false,
	}
	diff, err := differ.CreateDiff(good)
	if err != nil {
		t.Fatalf("CreateDiff: %s", err)
	}
	if diff.AssetVolumes[asset].Reissuable {
		t.Fatalf("reissue did not revoke reissuability")
	}

	bad := &wire.ReissueTx{
		TxCommon: wire.TxCommon{SenderKey: imposter, Fee: 10, Timestamp: 1},
		Asset:    asset,
		Quantity: 100,
	}
	if _, err := differ.CreateDiff(bad); err == nil {
		t.Fatalf("non-issuer reissued the asset")
	}
}

func TestReissueOfFinalizedAsset(t *testing.T) {
	issuer := publicKey(1)
	asset := crypto.HashData([]byte("asset"))
	reader := newStubReader()
	reader.assets[asset] = &state.AssetDescription{Issuer: issuer, Reissuable: false}
	reader.portfolios[address(issuer)] = statediff.Portfolio{Balance: 1000}
	differ := New(reader, testScheme)

	tx := &wire.ReissueTx{
		TxCommon: wire.TxCommon{SenderKey: issuer, Fee: 10, Timestamp: 1},
		Asset:    asset,
		Quantity: 100,
	}
	if _, err := differ.CreateDiff(tx); err == nil {
		t.Fatalf("non-reissuable asset was reissued")
	}
}

func TestBurnDiff(t *testing.T) {
	sender := publicKey(1)
	senderAddr := address(sender)
	asset := crypto.HashData([]byte("asset"))

	reader := newStubReader()
	reader.assets[asset] = &state.AssetDescription{Issuer: sender, Reissuable: true}
	reader.portfolios[senderAddr] = statediff.Portfolio{
		Balance: 1000,
		Assets:  map[crypto.Hash]int64{asset: 500},
	}
	differ := New(reader, testScheme)

	tx := &wire.BurnTx{
		TxCommon: wire.TxCommon{SenderKey: sender, Fee: 10, Timestamp: 1},
		Asset:    asset,
		Amount:   200,
	}
	diff, err := differ.CreateDiff(tx)
	if err != nil {
		t.Fatalf("CreateDiff: %s", err)
	}
	if got := diff.Portfolios[senderAddr].AssetBalance(asset); got != -200 {
		t.Fatalf("burned delta = %d, want -200", got)
	}
	if diff.AssetVolumes[asset].Delta != -200 {
		t.Fatalf("volume delta = %d, want -200", diff.AssetVolumes[asset].Delta)
	}

	over := &wire.BurnTx{
		TxCommon: wire.TxCommon{SenderKey: sender, Fee: 10, Timestamp: 1},
		Asset:    asset,
		Amount:   600,
	}
	if _, err := differ.CreateDiff(over); err == nil {
		t.Fatalf("burned more than held")
	}
}

func TestLeaseAndCancel(t *testing.T) {
	sender := publicKey(1)
	senderAddr := address(sender)
	recipient := address(publicKey(2))

	reader := newStubReader()
	reader.portfolios[senderAddr] = statediff.Portfolio{Balance: 1000}
	differ := New(reader, testScheme)

	lease := &wire.LeaseTx{
		TxCommon:  wire.TxCommon{SenderKey: sender, Fee: 10, Timestamp: 1},
		Recipient: recipient,
		Amount:    500,
	}
	diff, err := differ.CreateDiff(lease)
	if err != nil {
		t.Fatalf("CreateDiff: %s", err)
	}
	if got := diff.Portfolios[senderAddr].LeaseOut; got != 500 {
		t.Fatalf("lease-out delta = %d, want 500", got)
	}
	if got := diff.Portfolios[recipient].LeaseIn; got != 500 {
		t.Fatalf("lease-in delta = %d, want 500", got)
	}
	change := diff.Leases[lease.GetID()]
	if !change.Active || change.Amount != 500 {
		t.Fatalf("lease record = %+v", change)
	}

	// Cancel against the recorded lease.
	reader.leases[lease.GetID()] = &state.LeaseDetails{
		Active:    true,
		Sender:    senderAddr,
		Recipient: recipient,
		Amount:    500,
	}
	cancel := &wire.LeaseCancelTx{
		TxCommon: wire.TxCommon{SenderKey: sender, Fee: 10, Timestamp: 2},
		LeaseID:  lease.GetID(),
	}
	cancelDiff, err := differ.CreateDiff(cancel)
	if err != nil {
		t.Fatalf("CreateDiff: %s", err)
	}
	if got := cancelDiff.Portfolios[senderAddr].LeaseOut; got != -500 {
		t.Fatalf("cancel lease-out delta = %d, want -500", got)
	}
	if cancelDiff.Leases[lease.GetID()].Active {
		t.Fatalf("canceled lease still active")
	}

	// Only the lease sender may cancel.
	stranger := &wire.LeaseCancelTx{
		TxCommon: wire.TxCommon{SenderKey: publicKey(3), Fee: 10, Timestamp: 3},
		LeaseID:  lease.GetID(),
	}
	reader.portfolios[address(publicKey(3))] = statediff.Portfolio{Balance: 1000}
	if _, err := differ.CreateDiff(stranger); err == nil {
		t.Fatalf("stranger canceled someone else's lease")
	}
}

func TestSelfLeaseRejected(t *testing.T) {
	sender := publicKey(1)
	reader := newStubReader()
	reader.portfolios[address(sender)] = statediff.Portfolio{Balance: 1000}
	differ := New(reader, testScheme)

	tx := &wire.LeaseTx{
		TxCommon:  wire.TxCommon{SenderKey: sender, Fee: 10, Timestamp: 1},
		Recipient: address(sender),
		Amount:    100,
	}
	if _, err := differ.CreateDiff(tx); err == nil {
		t.Fatalf("self-lease produced a diff")
	}
}

func TestMassTransferDiff(t *testing.T) {
	sender := publicKey(1)
	senderAddr := address(sender)
	first := address(publicKey(2))
	second := address(publicKey(3))

	reader := newStubReader()
	reader.portfolios[senderAddr] = statediff.Portfolio{Balance: 1000}
	differ := New(reader, testScheme)

	tx := &wire.MassTransferTx{
		TxCommon: wire.TxCommon{SenderKey: sender, Fee: 20, Timestamp: 1},
		Transfers: []wire.MassTransferEntry{
			{Recipient: first, Amount: 100},
			{Recipient: second, Amount: 200},
		},
	}
	diff, err := differ.CreateDiff(tx)
	if err != nil {
		t.Fatalf("CreateDiff: %s", err)
	}
	if got := diff.Portfolios[senderAddr].Balance; got != -320 {
		t.Fatalf("sender delta = %d, want -320", got)
	}
	if diff.Portfolios[first].Balance != 100 || diff.Portfolios[second].Balance != 200 {
		t.Fatalf("recipient deltas = %d and %d",
			diff.Portfolios[first].Balance, diff.Portfolios[second].Balance)
	}
}

func exchangeFixture(reader *stubReader) *wire.ExchangeTx {
	buyerKey := publicKey(1)
	sellerKey := publicKey(2)
	matcherKey := publicKey(3)
	asset := crypto.HashData([]byte("traded asset"))

	reader.assets[asset] = &state.AssetDescription{Issuer: sellerKey, Reissuable: true}
	reader.portfolios[crypto.NewAddressFromPublicKey(testScheme, buyerKey)] = statediff.Portfolio{
		Balance: 10_000,
	}
	reader.portfolios[crypto.NewAddressFromPublicKey(testScheme, sellerKey)] = statediff.Portfolio{
		Balance: 10_000,
		Assets:  map[crypto.Hash]int64{asset: 1_000},
	}

	pair := wire.AssetPair{AmountAsset: &asset}
	buy := &wire.Order{
		SenderKey:  buyerKey,
		MatcherKey: matcherKey,
		Pair:       pair,
		Side:       wire.SideBuy,
		Price:      2 * PriceConstant,
		Amount:     500,
		Timestamp:  1,
		Expiration: 100,
		MatcherFee: 30,
	}
	sell := &wire.Order{
		SenderKey:  sellerKey,
		MatcherKey: matcherKey,
		Pair:       pair,
		Side:       wire.SideSell,
		Price:      1 * PriceConstant,
		Amount:     500,
		Timestamp:  2,
		Expiration: 100,
		MatcherFee: 30,
	}
	return &wire.ExchangeTx{
		TxCommon:       wire.TxCommon{SenderKey: matcherKey, Fee: 10, Timestamp: 3},
		BuyOrder:       buy,
		SellOrder:      sell,
		Price:          2 * PriceConstant,
		Amount:         400,
		BuyMatcherFee:  15,
		SellMatcherFee: 15,
	}
}

func TestExchangeDiff(t *testing.T) {
	reader := newStubReader()
	differ := New(reader, testScheme)
	tx := exchangeFixture(reader)

	diff, err := differ.CreateDiff(tx)
	if err != nil {
		t.Fatalf("CreateDiff: %s", err)
	}

	asset := *tx.BuyOrder.Pair.AmountAsset
	buyer := crypto.NewAddressFromPublicKey(testScheme, tx.BuyOrder.SenderKey)
	seller := crypto.NewAddressFromPublicKey(testScheme, tx.SellOrder.SenderKey)
	matcher := crypto.NewAddressFromPublicKey(testScheme, tx.SenderKey)

	// 400 units at price 2 in base currency, fees on top.
	if got := diff.Portfolios[buyer].AssetBalance(asset); got != 400 {
		t.Fatalf("buyer asset delta = %d, want 400", got)
	}
	if got := diff.Portfolios[seller].AssetBalance(asset); got != -400 {
		t.Fatalf("seller asset delta = %d, want -400", got)
	}
	if got := diff.Portfolios[buyer].Balance; got != -800-15 {
		t.Fatalf("buyer balance delta = %d, want -815", got)
	}
	if got := diff.Portfolios[seller].Balance; got != 800-15 {
		t.Fatalf("seller balance delta = %d, want 785", got)
	}
	if got := diff.Portfolios[matcher].Balance; got != 15+15-10 {
		t.Fatalf("matcher balance delta = %d, want 20", got)
	}

	buyFill := diff.OrderFills[tx.BuyOrder.GetID()]
	if buyFill.VolumeExecuted != 400 || buyFill.FeePaid != 15 {
		t.Fatalf("buy order fill = %+v", buyFill)
	}
}

func TestExchangePriceBounds(t *testing.T) {
	reader := newStubReader()
	differ := New(reader, testScheme)

	tooHigh := exchangeFixture(reader)
	tooHigh.Price = tooHigh.BuyOrder.Price + 1
	if _, err := differ.CreateDiff(tooHigh); err == nil {
		t.Fatalf("price above the buy order bound accepted")
	}

	tooLow := exchangeFixture(reader)
	tooLow.Price = tooLow.SellOrder.Price - 1
	if _, err := differ.CreateDiff(tooLow); err == nil {
		t.Fatalf("price below the sell order bound accepted")
	}
}

func TestExchangeRespectsRecordedFills(t *testing.T) {
	reader := newStubReader()
	differ := New(reader, testScheme)
	tx := exchangeFixture(reader)

	// 200 of 500 already executed; another 400 exceeds the order amount.
	reader.fills[tx.BuyOrder.GetID()] = statediff.OrderFill{VolumeExecuted: 200}
	if _, err := differ.CreateDiff(tx); err == nil {
		t.Fatalf("overfilled order accepted")
	}

	tx.Amount = 300
	if _, err := differ.CreateDiff(tx); err != nil {
		t.Fatalf("fill within the remaining amount rejected: %s", err)
	}
}

func TestExchangeMatcherMismatch(t *testing.T) {
	reader := newStubReader()
	differ := New(reader, testScheme)
	tx := exchangeFixture(reader)
	tx.SenderKey = publicKey(9)
	if _, err := differ.CreateDiff(tx); err == nil {
		t.Fatalf("exchange by a matcher the orders never addressed accepted")
	}
}
