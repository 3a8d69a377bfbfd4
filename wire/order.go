package wire

import (
	"io"

	"github.com/pkg/errors"

	"github.com/lunchact/Waves/crypto"
)

// OrderSide tells whether an order buys or sells the amount asset.
type OrderSide uint8

// Order sides.
const (
	SideBuy  OrderSide = 0
	SideSell OrderSide = 1
)

// String returns a human-readable name for the order side.
func (s OrderSide) String() string {
	if s == SideBuy {
		return "buy"
	}
	return "sell"
}

// AssetPair is the traded pair. A nil asset id stands for the base
// currency.
type AssetPair struct {
	AmountAsset *crypto.Hash
	PriceAsset  *crypto.Hash
}

// Order is a signed intent to trade an asset pair at a price and amount,
// authored by a trader and addressed to a matcher. It satisfies the same
// authorization contract as a transaction.
type Order struct {
	SenderKey  crypto.PublicKey
	MatcherKey crypto.PublicKey
	Pair       AssetPair
	Side       OrderSide
	Price      int64
	Amount     int64
	Timestamp  int64
	Expiration int64
	MatcherFee int64
	Proofs     []crypto.Signature

	id          crypto.Hash
	idSet       bool
	sigVerified bool
}

// GetSenderKey returns the public key of the trader who authored the order.
func (o *Order) GetSenderKey() crypto.PublicKey {
	return o.SenderKey
}

// GetProofs returns the proofs attached to the order.
func (o *Order) GetProofs() []crypto.Signature {
	return o.Proofs
}

// SignatureVerified reports whether the signature was already checked.
func (o *Order) SignatureVerified() bool {
	return o.sigVerified
}

// MarkSignatureVerified records a successful signature check.
func (o *Order) MarkSignatureVerified() {
	o.sigVerified = true
}

// GetID returns the order id, the blake2b-256 digest of the canonical
// bytes. Computed once and cached.
func (o *Order) GetID() crypto.Hash {
	if !o.idSet {
		o.id = crypto.HashData(o.CanonicalBytes())
		o.idSet = true
	}
	return o.id
}

// CanonicalBytes returns the deterministic encoding the order's proofs are
// computed over.
func (o *Order) CanonicalBytes() []byte {
	return canonicalBytes(o.writeCanonical)
}

func (o *Order) writeCanonical(w io.Writer) error {
	if err := writePublicKey(w, o.SenderKey); err != nil {
		return err
	}
	if err := writePublicKey(w, o.MatcherKey); err != nil {
		return err
	}
	if err := writeOptionalHash(w, o.Pair.AmountAsset); err != nil {
		return err
	}
	if err := writeOptionalHash(w, o.Pair.PriceAsset); err != nil {
		return err
	}
	if err := writeUint8(w, uint8(o.Side)); err != nil {
		return err
	}
	if err := writeInt64(w, o.Price); err != nil {
		return err
	}
	if err := writeInt64(w, o.Amount); err != nil {
		return err
	}
	if err := writeInt64(w, o.Timestamp); err != nil {
		return err
	}
	if err := writeInt64(w, o.Expiration); err != nil {
		return err
	}
	return writeInt64(w, o.MatcherFee)
}

// Serialize encodes the order, proofs included, to w.
func (o *Order) Serialize(w io.Writer) error {
	if err := o.writeCanonical(w); err != nil {
		return err
	}
	return writeProofs(w, o.Proofs)
}

// DeserializeOrder reads one order from r.
func DeserializeOrder(r io.Reader) (*Order, error) {
	o := &Order{}
	var err error
	if o.SenderKey, err = readPublicKey(r); err != nil {
		return nil, err
	}
	if o.MatcherKey, err = readPublicKey(r); err != nil {
		return nil, err
	}
	if o.Pair.AmountAsset, err = readOptionalHash(r); err != nil {
		return nil, err
	}
	if o.Pair.PriceAsset, err = readOptionalHash(r); err != nil {
		return nil, err
	}
	sideByte, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	if sideByte > uint8(SideSell) {
		return nil, errors.Errorf("invalid order side byte 0x%x", sideByte)
	}
	o.Side = OrderSide(sideByte)
	if o.Price, err = readInt64(r); err != nil {
		return nil, err
	}
	if o.Amount, err = readInt64(r); err != nil {
		return nil, err
	}
	if o.Timestamp, err = readInt64(r); err != nil {
		return nil, err
	}
	if o.Expiration, err = readInt64(r); err != nil {
		return nil, err
	}
	if o.MatcherFee, err = readInt64(r); err != nil {
		return nil, err
	}
	if o.Proofs, err = readProofs(r); err != nil {
		return nil, err
	}
	return o, nil
}
