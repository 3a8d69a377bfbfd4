package crypto

import (
	"encoding/hex"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// HashSize is the length in bytes of a Hash.
const HashSize = blake2b.Size256

// Hash is a blake2b-256 digest. Transaction ids, order ids, asset ids and
// lease ids are all values of this type.
type Hash [HashSize]byte

// HashData hashes the given byte slice with blake2b-256.
func HashData(buf []byte) Hash {
	return blake2b.Sum256(buf)
}

// String returns the Hash in its canonical base58 form.
func (h Hash) String() string {
	return base58.Encode(h[:])
}

// IsZero returns true if the hash equals the zero-value hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// NewHashFromStr parses a base58-encoded hash string.
func NewHashFromStr(s string) (Hash, error) {
	decoded := base58.Decode(s)
	if len(decoded) != HashSize {
		return Hash{}, errors.Errorf("invalid hash length: got %d, want %d", len(decoded), HashSize)
	}
	var h Hash
	copy(h[:], decoded)
	return h, nil
}

// NewHashFromBytes builds a Hash from a raw 32-byte slice.
func NewHashFromBytes(buf []byte) (Hash, error) {
	if len(buf) != HashSize {
		return Hash{}, errors.Errorf("invalid hash length: got %d, want %d (%s)",
			len(buf), HashSize, hex.EncodeToString(buf))
	}
	var h Hash
	copy(h[:], buf)
	return h, nil
}
