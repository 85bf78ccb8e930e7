// derive_address.go prints the pubkey and address for a wallet mnemonic.
// Usage: go run scripts/derive_address.go "<mnemonic>" [account-index]
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/NARAProtocol/nara-simple-ui/internal/wallet"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_address \"<mnemonic>\" [account-index]")
		os.Exit(1)
	}
	index := uint64(0)
	if len(os.Args) > 2 {
		var err error
		index, err = strconv.ParseUint(os.Args[2], 10, 32)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid account index:", err)
			os.Exit(1)
		}
	}

	seed, err := wallet.SeedFromMnemonic(os.Args[1], "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	master, err := wallet.NewMasterKey(seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	key, err := master.DeriveAccount(uint32(index))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("pubkey=%s\n", hex.EncodeToString(key.PublicKeyBytes()))
	fmt.Printf("address=%s\n", key.Address())
}
