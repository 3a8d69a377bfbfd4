package wire

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/lunchact/Waves/crypto"
)

// TxKind identifies a transaction kind. The set of kinds is closed: a kind
// byte outside this list fails deserialization, and the block diff engine
// treats an unregistered kind as a hard validation error.
type TxKind uint8

// Transaction kinds.
const (
	KindGenesis      TxKind = 1
	KindPayment      TxKind = 2
	KindIssue        TxKind = 3
	KindTransfer     TxKind = 4
	KindReissue      TxKind = 5
	KindBurn         TxKind = 6
	KindExchange     TxKind = 7
	KindLease        TxKind = 8
	KindLeaseCancel  TxKind = 9
	KindMassTransfer TxKind = 11
)

// String returns a human-readable name for the transaction kind.
func (k TxKind) String() string {
	switch k {
	case KindGenesis:
		return "genesis"
	case KindPayment:
		return "payment"
	case KindIssue:
		return "issue"
	case KindTransfer:
		return "transfer"
	case KindReissue:
		return "reissue"
	case KindBurn:
		return "burn"
	case KindExchange:
		return "exchange"
	case KindLease:
		return "lease"
	case KindLeaseCancel:
		return "lease-cancel"
	case KindMassTransfer:
		return "mass-transfer"
	default:
		return "unknown"
	}
}

// Signable is the capability contract shared by transactions and orders: a
// canonical byte encoding to sign over, the signer's public key, and the
// attached proofs. The authorization verifier operates exclusively through
// this interface.
type Signable interface {
	// CanonicalBytes returns the deterministic byte encoding the entity's
	// proofs are computed over. Proofs themselves are never part of it.
	CanonicalBytes() []byte

	// GetSenderKey returns the public key of the entity's author.
	GetSenderKey() crypto.PublicKey

	// GetProofs returns the proofs attached to the entity.
	GetProofs() []crypto.Signature

	// SignatureVerified reports whether a previous validation pass already
	// checked this entity's signature against its canonical bytes.
	SignatureVerified() bool

	// MarkSignatureVerified records a successful signature check so later
	// passes can skip re-hashing.
	MarkSignatureVerified()
}

// Transaction is the closed union of all transaction kinds.
type Transaction interface {
	Signable

	// Kind returns the transaction kind tag.
	Kind() TxKind

	// GetID returns the transaction id, the blake2b-256 digest of the
	// canonical bytes. Computed once and cached.
	GetID() crypto.Hash

	// GetFee returns the transaction fee in base-currency units.
	GetFee() int64

	// GetTimestamp returns the transaction timestamp in milliseconds.
	GetTimestamp() int64

	// AssetRef returns the asset this transaction moves, if any. Kinds
	// that reference an asset are subject to that asset's script.
	AssetRef() (crypto.Hash, bool)

	// Serialize encodes the transaction, proofs included, to w.
	Serialize(w io.Writer) error
}

// TxCommon carries the attributes every non-genesis transaction kind
// shares. Concrete kinds embed it.
type TxCommon struct {
	SenderKey crypto.PublicKey
	Fee       int64
	Timestamp int64
	Proofs    []crypto.Signature

	id          crypto.Hash
	idSet       bool
	sigVerified bool
}

// GetSenderKey returns the public key of the transaction sender.
func (c *TxCommon) GetSenderKey() crypto.PublicKey {
	return c.SenderKey
}

// GetFee returns the transaction fee in base-currency units.
func (c *TxCommon) GetFee() int64 {
	return c.Fee
}

// GetTimestamp returns the transaction timestamp in milliseconds.
func (c *TxCommon) GetTimestamp() int64 {
	return c.Timestamp
}

// GetProofs returns the proofs attached to the transaction.
func (c *TxCommon) GetProofs() []crypto.Signature {
	return c.Proofs
}

// SignatureVerified reports whether the signature was already checked.
func (c *TxCommon) SignatureVerified() bool {
	return c.sigVerified
}

// MarkSignatureVerified records a successful signature check.
func (c *TxCommon) MarkSignatureVerified() {
	c.sigVerified = true
}

// ensureID returns the cached transaction id, computing it on first use.
// Not safe for concurrent use; validation of a single entity is
// single-threaded.
func (c *TxCommon) ensureID(s Signable) crypto.Hash {
	if !c.idSet {
		c.id = crypto.HashData(s.CanonicalBytes())
		c.idSet = true
	}
	return c.id
}

func (c *TxCommon) writeCanonicalCommon(w io.Writer, kind TxKind) error {
	if err := writeUint8(w, uint8(kind)); err != nil {
		return err
	}
	if err := writePublicKey(w, c.SenderKey); err != nil {
		return err
	}
	if err := writeInt64(w, c.Fee); err != nil {
		return err
	}
	return writeInt64(w, c.Timestamp)
}

func (c *TxCommon) readCanonicalCommon(r io.Reader) error {
	var err error
	if c.SenderKey, err = readPublicKey(r); err != nil {
		return err
	}
	if c.Fee, err = readInt64(r); err != nil {
		return err
	}
	c.Timestamp, err = readInt64(r)
	return err
}

// canonicalBytes renders a canonical encoding into a fresh buffer. Write
// errors are impossible on a bytes.Buffer, so they are ignored.
func canonicalBytes(writeCanonical func(w io.Writer) error) []byte {
	buf := &bytes.Buffer{}
	_ = writeCanonical(buf)
	return buf.Bytes()
}

// DeserializeTransaction reads one transaction of any kind from r.
func DeserializeTransaction(r io.Reader) (Transaction, error) {
	kindByte, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	kind := TxKind(kindByte)
	switch kind {
	case KindGenesis:
		return readGenesisTx(r)
	case KindPayment:
		return readPaymentTx(r)
	case KindIssue:
		return readIssueTx(r)
	case KindTransfer:
		return readTransferTx(r)
	case KindReissue:
		return readReissueTx(r)
	case KindBurn:
		return readBurnTx(r)
	case KindExchange:
		return readExchangeTx(r)
	case KindLease:
		return readLeaseTx(r)
	case KindLeaseCancel:
		return readLeaseCancelTx(r)
	case KindMassTransfer:
		return readMassTransferTx(r)
	default:
		return nil, errors.Errorf("unknown transaction kind byte 0x%x", kindByte)
	}
}
