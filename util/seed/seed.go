// Package seed derives signing keys from BIP-39 mnemonics, the way wallet
// tools and test fixtures build their accounts.
package seed

import (
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"

	"github.com/lunchact/Waves/crypto"
)

// CreateMnemonic generates a fresh 24-word mnemonic.
func CreateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate entropy")
	}
	return bip39.NewMnemonic(entropy)
}

// KeyPairFromMnemonic derives a deterministic key pair from a mnemonic and
// an optional passphrase. The same inputs always yield the same keys.
func KeyPairFromMnemonic(mnemonic string, passphrase string) (*crypto.KeyPair, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	return crypto.NewKeyPairFromSeed(seed)
}
