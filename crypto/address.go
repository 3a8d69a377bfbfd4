package crypto

import (
	"bytes"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
)

const (
	addressVersion = 0x01

	addressHashSize     = 20
	addressChecksumSize = 4

	// AddressSize is the length in bytes of a raw address:
	// version || scheme || public key hash || checksum.
	AddressSize = 2 + addressHashSize + addressChecksumSize
)

// Address is an account identifier derived from a public key and a network
// scheme byte.
type Address [AddressSize]byte

// NewAddressFromPublicKey derives the address of the account owning pubKey
// on the network identified by scheme.
func NewAddressFromPublicKey(scheme byte, pubKey PublicKey) Address {
	var a Address
	a[0] = addressVersion
	a[1] = scheme
	pubKeyHash := HashData(pubKey[:])
	copy(a[2:2+addressHashSize], pubKeyHash[:addressHashSize])
	checksum := addressChecksum(a[:2+addressHashSize])
	copy(a[2+addressHashSize:], checksum)
	return a
}

// String returns the address in its canonical base58 form.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// DecodeAddress parses a base58-encoded address and validates its version
// and checksum. The scheme byte is not validated here since the decoder has
// no network context.
func DecodeAddress(s string) (Address, error) {
	decoded := base58.Decode(s)
	if len(decoded) != AddressSize {
		return Address{}, errors.Errorf("invalid address length: got %d, want %d", len(decoded), AddressSize)
	}
	if decoded[0] != addressVersion {
		return Address{}, errors.Errorf("invalid address version %d", decoded[0])
	}
	checksum := addressChecksum(decoded[:2+addressHashSize])
	if !bytes.Equal(checksum, decoded[2+addressHashSize:]) {
		return Address{}, errors.New("invalid address checksum")
	}
	var a Address
	copy(a[:], decoded)
	return a, nil
}

func addressChecksum(body []byte) []byte {
	hash := HashData(body)
	return hash[:addressChecksumSize]
}
