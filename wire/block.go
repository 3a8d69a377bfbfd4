package wire

import (
	"io"

	"github.com/pkg/errors"

	"github.com/lunchact/Waves/crypto"
)

// BlockHeader identifies a block, its parent and its signer.
type BlockHeader struct {
	// Version of the block format.
	Version int32

	// ParentID is the id of the block this block extends.
	ParentID crypto.Hash

	// Timestamp of block creation, in milliseconds.
	Timestamp int64

	// SignerKey is the public key of the account that forged the block
	// and collects its fee reward.
	SignerKey crypto.PublicKey
}

// Block is a signed list of transactions extending a parent block.
type Block struct {
	Header       BlockHeader
	Transactions []Transaction
	Signature    crypto.Signature

	id    crypto.Hash
	idSet bool
}

// ID returns the block id, the blake2b-256 digest of the serialized
// header. Computed once and cached.
func (b *Block) ID() crypto.Hash {
	if !b.idSet {
		b.id = crypto.HashData(canonicalBytes(b.Header.serialize))
		b.idSet = true
	}
	return b.id
}

// SignerAddress returns the address of the block signer on the network
// identified by scheme.
func (b *Block) SignerAddress(scheme byte) crypto.Address {
	return crypto.NewAddressFromPublicKey(scheme, b.Header.SignerKey)
}

// TotalFees sums the fees of all transactions in the block. The fee-split
// rule derives the carried amount for the next block from this sum rather
// than from persisted state.
func (b *Block) TotalFees() (int64, error) {
	total := int64(0)
	for _, tx := range b.Transactions {
		fee := tx.GetFee()
		if fee < 0 {
			return 0, errors.Errorf("transaction %s carries negative fee %d", tx.GetID(), fee)
		}
		next := total + fee
		if next < total {
			return 0, errors.New("block fee sum overflows int64")
		}
		total = next
	}
	return total, nil
}

func (h *BlockHeader) serialize(w io.Writer) error {
	if err := writeUint32(w, uint32(h.Version)); err != nil {
		return err
	}
	if err := writeHash(w, h.ParentID); err != nil {
		return err
	}
	if err := writeInt64(w, h.Timestamp); err != nil {
		return err
	}
	return writePublicKey(w, h.SignerKey)
}

func (h *BlockHeader) deserialize(r io.Reader) error {
	version, err := readUint32(r)
	if err != nil {
		return err
	}
	h.Version = int32(version)
	if h.ParentID, err = readHash(r); err != nil {
		return err
	}
	if h.Timestamp, err = readInt64(r); err != nil {
		return err
	}
	h.SignerKey, err = readPublicKey(r)
	return err
}

// Serialize encodes the block to w.
func (b *Block) Serialize(w io.Writer) error {
	if err := b.Header.serialize(w); err != nil {
		return err
	}
	if err := writeUint16(w, uint16(len(b.Transactions))); err != nil {
		return err
	}
	for _, tx := range b.Transactions {
		if err := tx.Serialize(w); err != nil {
			return err
		}
	}
	_, err := w.Write(b.Signature[:])
	return errors.WithStack(err)
}

// DeserializeBlock reads one block from r.
func DeserializeBlock(r io.Reader) (*Block, error) {
	b := &Block{}
	if err := b.Header.deserialize(r); err != nil {
		return nil, err
	}
	count, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	b.Transactions = make([]Transaction, count)
	for i := range b.Transactions {
		if b.Transactions[i], err = DeserializeTransaction(r); err != nil {
			return nil, errors.Wrapf(err, "failed to deserialize transaction %d", i)
		}
	}
	if _, err := io.ReadFull(r, b.Signature[:]); err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}
