package wire

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/lunchact/Waves/crypto"
)

func testPublicKey(fill byte) crypto.PublicKey {
	var pk crypto.PublicKey
	for i := range pk {
		pk[i] = fill
	}
	return pk
}

func testAddress(fill byte) crypto.Address {
	var addr crypto.Address
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func testSignature(fill byte) crypto.Signature {
	var sig crypto.Signature
	for i := range sig {
		sig[i] = fill
	}
	return sig
}

func roundTrip(t *testing.T, tx Transaction) Transaction {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := tx.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %s", err)
	}
	decoded, err := DeserializeTransaction(buf)
	if err != nil {
		t.Fatalf("DeserializeTransaction: %s", err)
	}
	if decoded.Kind() != tx.Kind() {
		t.Fatalf("kind changed in flight: %s vs %s", decoded.Kind(), tx.Kind())
	}
	if decoded.GetID() != tx.GetID() {
		t.Fatalf("id changed in flight for %s:\noriginal %s\ndecoded %s",
			tx.Kind(), spew.Sdump(tx), spew.Sdump(decoded))
	}
	if !reflect.DeepEqual(decoded.GetProofs(), tx.GetProofs()) {
		t.Fatalf("proofs changed in flight for %s", tx.Kind())
	}
	return decoded
}

func TestTransactionRoundTrips(t *testing.T) {
	asset := crypto.HashData([]byte("asset"))

	transfer := &TransferTx{
		TxCommon: TxCommon{
			SenderKey: testPublicKey(1),
			Fee:       100_000,
			Timestamp: 1526,
			Proofs:    []crypto.Signature{testSignature(7)},
		},
		Recipient:  testAddress(2),
		Amount:     42,
		Asset:      &asset,
		Attachment: []byte("note"),
	}
	decodedTransfer := roundTrip(t, transfer).(*TransferTx)
	if decodedTransfer.Asset == nil || *decodedTransfer.Asset != asset {
		t.Fatalf("transferred asset changed in flight")
	}
	if !bytes.Equal(decodedTransfer.Attachment, transfer.Attachment) {
		t.Fatalf("attachment changed in flight")
	}

	// Base-currency transfer: the optional asset stays nil.
	baseTransfer := &TransferTx{
		TxCommon: TxCommon{
			SenderKey: testPublicKey(1),
			Fee:       1,
			Timestamp: 2,
			Proofs:    []crypto.Signature{testSignature(8)},
		},
		Recipient: testAddress(3),
		Amount:    1,
	}
	if decoded := roundTrip(t, baseTransfer).(*TransferTx); decoded.Asset != nil {
		t.Fatalf("nil asset became %s in flight", decoded.Asset)
	}

	roundTrip(t, &GenesisTx{
		TxCommon:  TxCommon{Timestamp: 1},
		Recipient: testAddress(9),
		Amount:    1_000_000,
	})

	roundTrip(t, &IssueTx{
		TxCommon: TxCommon{
			SenderKey: testPublicKey(4),
			Fee:       100_000_000,
			Timestamp: 3,
			Proofs:    []crypto.Signature{testSignature(9)},
		},
		Name:        []byte("token"),
		Description: []byte("a token"),
		Quantity:    10_000,
		Decimals:    8,
		Reissuable:  true,
	})

	roundTrip(t, &LeaseCancelTx{
		TxCommon: TxCommon{
			SenderKey: testPublicKey(5),
			Fee:       100_000,
			Timestamp: 4,
			Proofs:    []crypto.Signature{testSignature(10)},
		},
		LeaseID: crypto.HashData([]byte("lease")),
	})

	roundTrip(t, &MassTransferTx{
		TxCommon: TxCommon{
			SenderKey: testPublicKey(6),
			Fee:       200_000,
			Timestamp: 5,
			Proofs:    []crypto.Signature{testSignature(11)},
		},
		Transfers: []MassTransferEntry{
			{Recipient: testAddress(1), Amount: 10},
			{Recipient: testAddress(2), Amount: 20},
		},
		Attachment: []byte("payout"),
	})
}

func TestExchangeRoundTrip(t *testing.T) {
	asset := crypto.HashData([]byte("amount asset"))
	matcherKey := testPublicKey(3)
	buildOrder := func(side OrderSide, senderFill byte, price int64) *Order {
		return &Order{
			SenderKey:  testPublicKey(senderFill),
			MatcherKey: matcherKey,
			Pair:       AssetPair{AmountAsset: &asset},
			Side:       side,
			Price:      price,
			Amount:     1000,
			Timestamp:  10,
			Expiration: 20,
			MatcherFee: 300_000,
			Proofs:     []crypto.Signature{testSignature(senderFill)},
		}
	}

	tx := &ExchangeTx{
		TxCommon: TxCommon{
			SenderKey: matcherKey,
			Fee:       300_000,
			Timestamp: 11,
			Proofs:    []crypto.Signature{testSignature(12)},
		},
		BuyOrder:       buildOrder(SideBuy, 1, 110),
		SellOrder:      buildOrder(SideSell, 2, 90),
		Price:          100,
		Amount:         500,
		BuyMatcherFee:  150_000,
		SellMatcherFee: 150_000,
	}
	decoded := roundTrip(t, tx).(*ExchangeTx)
	if decoded.BuyOrder.GetID() != tx.BuyOrder.GetID() {
		t.Fatalf("buy order id changed in flight")
	}
	if decoded.SellOrder.GetID() != tx.SellOrder.GetID() {
		t.Fatalf("sell order id changed in flight")
	}
	if decoded.Price != tx.Price || decoded.Amount != tx.Amount {
		t.Fatalf("trade parameters changed in flight")
	}
}

func TestTransactionIDIgnoresProofs(t *testing.T) {
	build := func(proofFill byte) *PaymentTx {
		return &PaymentTx{
			TxCommon: TxCommon{
				SenderKey: testPublicKey(1),
				Fee:       5,
				Timestamp: 6,
				Proofs:    []crypto.Signature{testSignature(proofFill)},
			},
			Recipient: testAddress(2),
			Amount:    7,
		}
	}
	if build(1).GetID() != build(2).GetID() {
		t.Fatalf("transaction id depends on proofs")
	}
}

func TestDeserializeTransactionRejectsUnknownKind(t *testing.T) {
	if _, err := DeserializeTransaction(bytes.NewReader([]byte{0xee})); err == nil {
		t.Fatalf("unknown kind byte deserialized without error")
	}
	if _, err := DeserializeTransaction(bytes.NewReader(nil)); err == nil {
		t.Fatalf("empty input deserialized without error")
	}
}

func TestOrderRoundTripAndSideValidation(t *testing.T) {
	priceAsset := crypto.HashData([]byte("price asset"))
	order := &Order{
		SenderKey:  testPublicKey(1),
		MatcherKey: testPublicKey(2),
		Pair:       AssetPair{PriceAsset: &priceAsset},
		Side:       SideSell,
		Price:      100,
		Amount:     200,
		Timestamp:  300,
		Expiration: 400,
		MatcherFee: 500,
		Proofs:     []crypto.Signature{testSignature(1)},
	}
	buf := &bytes.Buffer{}
	if err := order.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %s", err)
	}
	decoded, err := DeserializeOrder(buf)
	if err != nil {
		t.Fatalf("DeserializeOrder: %s", err)
	}
	if decoded.GetID() != order.GetID() {
		t.Fatalf("order id changed in flight")
	}
	if decoded.Pair.AmountAsset != nil || *decoded.Pair.PriceAsset != priceAsset {
		t.Fatalf("asset pair changed in flight")
	}

	// An out-of-range side byte must fail. Use a base-currency pair so the
	// side byte sits right after the two keys and two presence flags.
	plain := &Order{
		SenderKey:  testPublicKey(1),
		MatcherKey: testPublicKey(2),
		Side:       SideBuy,
		Proofs:     []crypto.Signature{testSignature(1)},
	}
	buf.Reset()
	if err := plain.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %s", err)
	}
	raw := buf.Bytes()
	raw[2*crypto.PublicKeySize+2] = 0x07
	if _, err := DeserializeOrder(bytes.NewReader(raw)); err == nil {
		t.Fatalf("invalid side byte deserialized without error")
	}
}

func TestMassTransferTotalAmountOverflow(t *testing.T) {
	tx := &MassTransferTx{
		Transfers: []MassTransferEntry{
			{Recipient: testAddress(1), Amount: int64(^uint64(0) >> 1)},
			{Recipient: testAddress(2), Amount: 1},
		},
	}
	if _, err := tx.TotalAmount(); err == nil {
		t.Fatalf("overflowing total computed without error")
	}
}
