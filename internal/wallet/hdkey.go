package wallet

import (
	"fmt"

	"github.com/NARAProtocol/nara-simple-ui/pkg/crypto"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
	"github.com/tyler-smith/go-bip32"
)

// BIP-44 path constants. Accounts derive at m/44'/1994'/account'/0/0:
// one address per account, no change chain (the ledger is
// account-based, not UTXO-based).
const (
	PurposeBIP44 = bip32.FirstHardenedChild + 44
	CoinTypeNara = bip32.FirstHardenedChild + 1994
)

// HDKey wraps a BIP-32 node.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates the master node from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DeriveChild derives one child. Add bip32.FirstHardenedChild for
// hardened derivation.
func (k *HDKey) DeriveChild(index uint32) (*HDKey, error) {
	child, err := k.key.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("derive child %d: %w", index, err)
	}
	return &HDKey{key: child}, nil
}

// DerivePath walks a sequence of child indices.
func (k *HDKey) DerivePath(indices ...uint32) (*HDKey, error) {
	current := k
	for _, idx := range indices {
		child, err := current.DeriveChild(idx)
		if err != nil {
			return nil, err
		}
		current = child
	}
	return current, nil
}

// DeriveAccount derives the signing key at m/44'/1994'/account'/0/0.
func (k *HDKey) DeriveAccount(account uint32) (*HDKey, error) {
	return k.DerivePath(
		PurposeBIP44,
		CoinTypeNara,
		bip32.FirstHardenedChild+account,
		0,
		0,
	)
}

// PrivateKeyBytes returns the raw 32-byte private key, or nil for a
// public-only node.
func (k *HDKey) PrivateKeyBytes() []byte {
	if !k.key.IsPrivate {
		return nil
	}
	// bip32 stores private keys as 33 bytes with a zero prefix.
	raw := k.key.Key
	if len(raw) == 33 && raw[0] == 0 {
		return raw[1:]
	}
	return raw
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *HDKey) PublicKeyBytes() []byte {
	return k.key.PublicKey().Key
}

// Signer turns this node's private key into a transaction signer.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	priv := k.PrivateKeyBytes()
	if priv == nil {
		return nil, fmt.Errorf("cannot create signer from public key")
	}
	return crypto.PrivateKeyFromBytes(priv)
}

// Address is the first 20 bytes of BLAKE3 over the compressed pubkey.
func (k *HDKey) Address() types.Address {
	return crypto.AddressFromPubKey(k.PublicKeyBytes())
}

// IsPrivate reports whether this node carries a private key.
func (k *HDKey) IsPrivate() bool {
	return k.key.IsPrivate
}
