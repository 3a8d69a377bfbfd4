package main

import (
	"fmt"
	"os"

	"github.com/lunchact/Waves/chainconfig"
	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/util/seed"
)

func main() {
	mnemonic, err := seed.CreateMnemonic()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate mnemonic: %s\n", err)
		os.Exit(1)
	}

	keyPair, err := seed.KeyPairFromMnemonic(mnemonic, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to derive key pair: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("This is your seed phrase, granting access to all account funds. Keep it safe.")
	fmt.Printf("Seed phrase:\t%s\n\n", mnemonic)

	fmt.Printf("Public key:\t%s\n\n", keyPair.Public())

	fmt.Println("These are your addresses for each network, where money is to be sent.")
	for _, params := range []*chainconfig.Params{
		&chainconfig.MainnetParams, &chainconfig.TestnetParams, &chainconfig.SimnetParams,
	} {
		addr := crypto.NewAddressFromPublicKey(params.AddressScheme, keyPair.Public())
		fmt.Printf("Address (%s):\t%s\n", params.Name, addr)
	}
}
