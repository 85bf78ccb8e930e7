package wallet

import (
	"context"
	"fmt"

	"github.com/NARAProtocol/nara-simple-ui/internal/log"
	"github.com/NARAProtocol/nara-simple-ui/internal/submit"
	"github.com/NARAProtocol/nara-simple-ui/pkg/crypto"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// ApprovalFunc asks the user whether to sign a transaction. Returning
// false declines without error.
type ApprovalFunc func(ctx context.Context, tx *submit.Tx) bool

// Account is an unlocked signing account. It satisfies the submitter's
// Authorizer: every write goes through the approval hook before the key
// touches it.
type Account struct {
	Name    string
	Index   uint32
	Address types.Address

	signer  *crypto.PrivateKey
	approve ApprovalFunc
}

// Unlock decrypts a wallet and derives the signing account at index.
func Unlock(ks *Keystore, name string, password []byte, index uint32) (*Account, error) {
	seed, err := ks.Load(name, password)
	if err != nil {
		return nil, err
	}
	master, err := NewMasterKey(seed)
	zero(seed)
	if err != nil {
		return nil, err
	}
	key, err := master.DeriveAccount(index)
	if err != nil {
		return nil, fmt.Errorf("derive account %d: %w", index, err)
	}
	signer, err := key.Signer()
	if err != nil {
		return nil, err
	}
	return &Account{
		Name:    name,
		Index:   index,
		Address: key.Address(),
		signer:  signer,
	}, nil
}

// SetApproval installs the user-approval hook. Without one, every
// request is signed; installing one is mandatory for UI use.
func (a *Account) SetApproval(fn ApprovalFunc) { a.approve = fn }

// Authorize implements submit.Authorizer: run the approval hook, then
// sign the transaction's signing hash.
func (a *Account) Authorize(ctx context.Context, tx *submit.Tx) ([]byte, []byte, error) {
	if a.approve != nil && !a.approve(ctx, tx) {
		log.Wallet.Debug().Str("method", tx.Method).Msg("signature declined")
		return nil, nil, submit.ErrDeclined
	}
	hash, err := tx.SigningHash()
	if err != nil {
		return nil, nil, err
	}
	sig, err := a.signer.Sign(hash[:])
	if err != nil {
		return nil, nil, fmt.Errorf("sign tx: %w", err)
	}
	return a.signer.PublicKey(), sig, nil
}

// Lock zeroes the private key. The account is unusable afterwards.
func (a *Account) Lock() {
	if a.signer != nil {
		a.signer.Zero()
	}
}
