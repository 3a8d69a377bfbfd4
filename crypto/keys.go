package crypto

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

const (
	// PublicKeySize is the length in bytes of a serialized schnorr public key.
	PublicKeySize = 32

	// SignatureSize is the length in bytes of a serialized schnorr signature.
	SignatureSize = 64
)

// PublicKey is a serialized schnorr public key identifying the sender of a
// transaction or order.
type PublicKey [PublicKeySize]byte

// Signature is a serialized schnorr signature over the canonical byte
// encoding of a transaction or order.
type Signature [SignatureSize]byte

// String returns the public key in its canonical base58 form.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// String returns the signature in its canonical base58 form.
func (sig Signature) String() string {
	return base58.Encode(sig[:])
}

// NewPublicKeyFromBytes builds a PublicKey from a raw 32-byte slice.
func NewPublicKeyFromBytes(buf []byte) (PublicKey, error) {
	if len(buf) != PublicKeySize {
		return PublicKey{}, errors.Errorf("invalid public key length: got %d, want %d", len(buf), PublicKeySize)
	}
	var pk PublicKey
	copy(pk[:], buf)
	return pk, nil
}

// KeyPair couples a schnorr private key with its serialized public key.
type KeyPair struct {
	privateKey *secp256k1.SchnorrKeyPair
	publicKey  PublicKey
}

// GenerateKeyPair generates a new random key pair.
func GenerateKeyPair() (*KeyPair, error) {
	privateKey, err := secp256k1.GenerateSchnorrKeyPair()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate private key")
	}
	return newKeyPair(privateKey)
}

// NewKeyPairFromSeed derives a key pair deterministically from an arbitrary
// seed. The seed is hashed repeatedly until it lands inside the valid
// private key range.
func NewKeyPairFromSeed(seed []byte) (*KeyPair, error) {
	candidate := HashData(seed)
	for {
		privateKey, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(candidate[:])
		if err == nil {
			return newKeyPair(privateKey)
		}
		candidate = HashData(candidate[:])
	}
}

func newKeyPair(privateKey *secp256k1.SchnorrKeyPair) (*KeyPair, error) {
	publicKey, err := privateKey.SchnorrPublicKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive public key")
	}
	serialized, err := publicKey.Serialize()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize public key")
	}
	var pk PublicKey
	copy(pk[:], serialized[:])
	return &KeyPair{privateKey: privateKey, publicKey: pk}, nil
}

// Public returns the serialized public key of this key pair.
func (k *KeyPair) Public() PublicKey {
	return k.publicKey
}

// Sign produces a schnorr signature over blake2b-256 of the given message.
func (k *KeyPair) Sign(message []byte) (Signature, error) {
	hash := secp256k1.Hash(HashData(message))
	signature, err := k.privateKey.SchnorrSign(&hash)
	if err != nil {
		return Signature{}, errors.Wrap(err, "failed to sign message")
	}
	var sig Signature
	copy(sig[:], signature.Serialize()[:])
	return sig, nil
}

// VerifySignature reports whether signature is a valid schnorr signature by
// pubKey over blake2b-256 of the given message. Malformed keys or signatures
// simply verify as false.
func VerifySignature(pubKey PublicKey, signature Signature, message []byte) bool {
	deserializedKey, err := secp256k1.DeserializeSchnorrPubKey(pubKey[:])
	if err != nil {
		return false
	}
	deserializedSignature, err := secp256k1.DeserializeSchnorrSignatureFromSlice(signature[:])
	if err != nil {
		return false
	}
	hash := secp256k1.Hash(HashData(message))
	return deserializedKey.SchnorrVerify(&hash, deserializedSignature)
}
