package main

import (
	"errors"
	"fmt"

	"github.com/NARAProtocol/nara-simple-ui/internal/wallet"
)

// WalletService exposes wallet management to the frontend. Keys live in
// encrypted keystore files under the data dir; passwords arrive per
// call and are never stored.
type WalletService struct {
	app *App
}

// WalletInfo is returned after wallet creation or import. Mnemonic is
// only set on creation so the frontend can show it once for backup.
type WalletInfo struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Mnemonic string `json:"mnemonic,omitempty"`
}

// SessionInfo describes the connected session.
type SessionInfo struct {
	Wallet  string `json:"wallet"`
	Address string `json:"address"`
}

// GenerateMnemonic creates a fresh 24-word mnemonic for the creation flow.
func (w *WalletService) GenerateMnemonic() (string, error) {
	return wallet.GenerateMnemonic()
}

// ValidateMnemonic checks a user-entered mnemonic.
func (w *WalletService) ValidateMnemonic(mnemonic string) bool {
	return wallet.ValidateMnemonic(mnemonic)
}

func (w *WalletService) keystore() (*wallet.Keystore, error) {
	return wallet.NewKeystore(w.app.cfg().KeystorePath())
}

// CreateWallet generates a mnemonic and writes a new encrypted wallet.
func (w *WalletService) CreateWallet(name, password string) (*WalletInfo, error) {
	if name == "" {
		return nil, errors.New("wallet name required")
	}
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		return nil, err
	}
	info, err := w.importMnemonic(name, password, mnemonic)
	if err != nil {
		return nil, err
	}
	info.Mnemonic = mnemonic
	return info, nil
}

// ImportWallet restores a wallet from an existing mnemonic.
func (w *WalletService) ImportWallet(name, password, mnemonic string) (*WalletInfo, error) {
	if name == "" {
		return nil, errors.New("wallet name required")
	}
	if !wallet.ValidateMnemonic(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	return w.importMnemonic(name, password, mnemonic)
}

func (w *WalletService) importMnemonic(name, password, mnemonic string) (*WalletInfo, error) {
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, err
	}
	ks, err := w.keystore()
	if err != nil {
		return nil, err
	}
	addr, err := ks.Create(name, seed, []byte(password), wallet.DefaultParams())
	if err != nil {
		return nil, err
	}
	return &WalletInfo{Name: name, Address: addr.String()}, nil
}

// ListWallets returns the wallet names in the keystore.
func (w *WalletService) ListWallets() ([]string, error) {
	ks, err := w.keystore()
	if err != nil {
		return nil, err
	}
	return ks.List()
}

// DeleteWallet removes a wallet file. The active session is torn down
// first if it belongs to this wallet.
func (w *WalletService) DeleteWallet(name string) error {
	if w.app.activeWallet == name {
		w.app.disconnect()
	}
	ks, err := w.keystore()
	if err != nil {
		return err
	}
	return ks.Delete(name)
}

// Connect unlocks a wallet and starts its mining session.
func (w *WalletService) Connect(name, password string) (*SessionInfo, error) {
	addr, err := w.app.connect(name, []byte(password))
	if err != nil {
		return nil, fmt.Errorf("connect wallet: %w", err)
	}
	return &SessionInfo{Wallet: name, Address: addr.String()}, nil
}

// Disconnect tears the active session down.
func (w *WalletService) Disconnect() {
	w.app.disconnect()
}

// ActiveSession returns the connected wallet, or nil when disconnected.
func (w *WalletService) ActiveSession() *SessionInfo {
	sess := w.app.session()
	if sess == nil {
		return nil
	}
	return &SessionInfo{
		Wallet:  w.app.activeWallet,
		Address: sess.account.Address.String(),
	}
}
