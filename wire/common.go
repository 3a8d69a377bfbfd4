package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/lunchact/Waves/crypto"
)

// Maximum lengths enforced while decoding. These bound memory allocation
// for untrusted input.
const (
	// MaxAttachmentSize is the maximum length in bytes of a transfer
	// attachment.
	MaxAttachmentSize = 140

	// MaxMassTransferEntries is the maximum number of recipients in a
	// single mass-transfer transaction.
	MaxMassTransferEntries = 100

	// MaxAssetNameSize and MaxAssetDescriptionSize bound issue
	// transaction metadata.
	MaxAssetNameSize        = 16
	MaxAssetDescriptionSize = 1000

	// MaxTransactionsPerBlock is the maximum number of transactions a
	// block may carry.
	MaxTransactionsPerBlock = 65535

	// MaxProofs is the maximum number of proofs a signable entity may
	// carry.
	MaxProofs = 8
)

var byteOrder = binary.LittleEndian

func writeUint8(w io.Writer, val uint8) error {
	_, err := w.Write([]byte{val})
	return errors.WithStack(err)
}

func writeUint16(w io.Writer, val uint16) error {
	var buf [2]byte
	byteOrder.PutUint16(buf[:], val)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

func writeUint32(w io.Writer, val uint32) error {
	var buf [4]byte
	byteOrder.PutUint32(buf[:], val)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

func writeInt64(w io.Writer, val int64) error {
	var buf [8]byte
	byteOrder.PutUint64(buf[:], uint64(val))
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

func writeBool(w io.Writer, val bool) error {
	if val {
		return writeUint8(w, 1)
	}
	return writeUint8(w, 0)
}

// writeVarBytes writes a length-prefixed byte slice. Lengths are uint16 so
// a malformed prefix can never demand more than 64 KB.
func writeVarBytes(w io.Writer, buf []byte) error {
	if err := writeUint16(w, uint16(len(buf))); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return errors.WithStack(err)
}

func writeHash(w io.Writer, hash crypto.Hash) error {
	_, err := w.Write(hash[:])
	return errors.WithStack(err)
}

// writeOptionalHash writes a presence flag followed by the hash when
// present. Used for asset references where absence means the base currency.
func writeOptionalHash(w io.Writer, hash *crypto.Hash) error {
	if hash == nil {
		return writeBool(w, false)
	}
	if err := writeBool(w, true); err != nil {
		return err
	}
	return writeHash(w, *hash)
}

func writePublicKey(w io.Writer, pubKey crypto.PublicKey) error {
	_, err := w.Write(pubKey[:])
	return errors.WithStack(err)
}

func writeAddress(w io.Writer, addr crypto.Address) error {
	_, err := w.Write(addr[:])
	return errors.WithStack(err)
}

func writeProofs(w io.Writer, proofs []crypto.Signature) error {
	if err := writeUint8(w, uint8(len(proofs))); err != nil {
		return err
	}
	for _, proof := range proofs {
		if _, err := w.Write(proof[:]); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func readUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.WithStack(err)
	}
	return buf[0], nil
}

func readUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.WithStack(err)
	}
	return byteOrder.Uint16(buf[:]), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.WithStack(err)
	}
	return byteOrder.Uint32(buf[:]), nil
}

func readInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.WithStack(err)
	}
	return int64(byteOrder.Uint64(buf[:])), nil
}

func readBool(r io.Reader) (bool, error) {
	val, err := readUint8(r)
	if err != nil {
		return false, err
	}
	switch val {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Errorf("invalid bool byte 0x%x", val)
	}
}

func readVarBytes(r io.Reader, maxLength int, fieldName string) ([]byte, error) {
	length, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	if int(length) > maxLength {
		return nil, errors.Errorf("%s length %d exceeds maximum %d", fieldName, length, maxLength)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf, nil
}

func readHash(r io.Reader) (crypto.Hash, error) {
	var hash crypto.Hash
	if _, err := io.ReadFull(r, hash[:]); err != nil {
		return crypto.Hash{}, errors.WithStack(err)
	}
	return hash, nil
}

func readOptionalHash(r io.Reader) (*crypto.Hash, error) {
	present, err := readBool(r)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	hash, err := readHash(r)
	if err != nil {
		return nil, err
	}
	return &hash, nil
}

func readPublicKey(r io.Reader) (crypto.PublicKey, error) {
	var pubKey crypto.PublicKey
	if _, err := io.ReadFull(r, pubKey[:]); err != nil {
		return crypto.PublicKey{}, errors.WithStack(err)
	}
	return pubKey, nil
}

func readAddress(r io.Reader) (crypto.Address, error) {
	var addr crypto.Address
	if _, err := io.ReadFull(r, addr[:]); err != nil {
		return crypto.Address{}, errors.WithStack(err)
	}
	return addr, nil
}

func readProofs(r io.Reader) ([]crypto.Signature, error) {
	count, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	if int(count) > MaxProofs {
		return nil, errors.Errorf("proof count %d exceeds maximum %d", count, MaxProofs)
	}
	proofs := make([]crypto.Signature, count)
	for i := range proofs {
		if _, err := io.ReadFull(r, proofs[i][:]); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return proofs, nil
}
