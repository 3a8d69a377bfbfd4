package seed

import (
	"strings"
	"testing"
)

func TestCreateMnemonic(t *testing.T) {
	mnemonic, err := CreateMnemonic()
	if err != nil {
		t.Fatalf("CreateMnemonic: %s", err)
	}
	if got := len(strings.Fields(mnemonic)); got != 24 {
		t.Fatalf("mnemonic has %d words, want 24", got)
	}
	if _, err := KeyPairFromMnemonic(mnemonic, ""); err != nil {
		t.Fatalf("KeyPairFromMnemonic: %s", err)
	}
}

func TestKeyPairFromMnemonicIsDeterministic(t *testing.T) {
	const mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon " +
		"abandon abandon abandon abandon abandon abandon abandon abandon " +
		"abandon abandon abandon abandon abandon abandon abandon art"

	first, err := KeyPairFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("KeyPairFromMnemonic: %s", err)
	}
	second, err := KeyPairFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("KeyPairFromMnemonic: %s", err)
	}
	if first.Public() != second.Public() {
		t.Fatalf("same mnemonic derived different keys")
	}

	withPassphrase, err := KeyPairFromMnemonic(mnemonic, "secret")
	if err != nil {
		t.Fatalf("KeyPairFromMnemonic: %s", err)
	}
	if withPassphrase.Public() == first.Public() {
		t.Fatalf("passphrase did not change the derived key")
	}
}

func TestKeyPairFromMnemonicRejectsGarbage(t *testing.T) {
	if _, err := KeyPairFromMnemonic("definitely not a mnemonic", ""); err == nil {
		t.Fatalf("invalid mnemonic accepted")
	}
}
