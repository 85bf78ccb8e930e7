package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/NARAProtocol/nara-simple-ui/config"
	"github.com/NARAProtocol/nara-simple-ui/internal/epoch"
	"github.com/NARAProtocol/nara-simple-ui/internal/history"
	"github.com/NARAProtocol/nara-simple-ui/internal/ledger"
	"github.com/NARAProtocol/nara-simple-ui/internal/log"
	"github.com/NARAProtocol/nara-simple-ui/internal/mining"
	"github.com/NARAProtocol/nara-simple-ui/internal/storage"
	"github.com/NARAProtocol/nara-simple-ui/internal/submit"
	"github.com/NARAProtocol/nara-simple-ui/internal/wallet"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// uiSettings is the persistent configuration written to ui-settings.json.
type uiSettings struct {
	Endpoints    []string `json:"endpoints,omitempty"`
	DataDir      string   `json:"data_dir"`
	Network      string   `json:"network"`
	ActiveWallet string   `json:"active_wallet"`
}

// session is the state tied to one connected wallet. Torn down as a
// unit; its context cancels every background read the session issued.
type session struct {
	cancel     context.CancelFunc
	account    *wallet.Account
	client     *ledger.Client
	controller *mining.Controller
	store      *history.Store
	db         storage.DB
}

// App manages application lifecycle, settings, and the active session.
type App struct {
	ctx          context.Context
	dataDir      string
	networkName  string
	endpoints    []string // empty = network defaults
	activeWallet string

	mu   sync.Mutex
	sess *session

	wallet *WalletService
	mining *MiningService
	faucet *FaucetService
}

// NewApp creates the application with default settings.
func NewApp() *App {
	app := &App{
		dataDir:     config.DefaultDataDir(),
		networkName: string(config.Mainnet),
	}
	app.wallet = &WalletService{app: app}
	app.mining = &MiningService{app: app}
	app.faucet = &FaucetService{app: app}
	app.loadSettings()
	return app
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	if err := log.Init("info", false, ""); err != nil {
		fmt.Fprintln(os.Stderr, "log init:", err)
	}
}

func (a *App) shutdown(_ context.Context) {
	a.disconnect()
}

// cfg assembles the runtime config from the persisted settings.
func (a *App) cfg() *config.Config {
	c := config.Default(config.NetworkType(a.networkName))
	c.DataDir = a.dataDir
	if len(a.endpoints) > 0 {
		c.Endpoints = a.endpoints
	}
	return c
}

// session returns the active session, or nil when disconnected.
func (a *App) session() *session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sess
}

// connect unlocks a wallet and starts the mining session for it.
func (a *App) connect(walletName string, password []byte) (types.Address, error) {
	a.disconnect()

	cfg := a.cfg()
	if err := config.Validate(cfg); err != nil {
		return types.Address{}, err
	}

	ks, err := wallet.NewKeystore(cfg.KeystorePath())
	if err != nil {
		return types.Address{}, err
	}
	acct, err := wallet.Unlock(ks, walletName, password, 0)
	if err != nil {
		return types.Address{}, err
	}
	acct.SetApproval(a.approveTx)

	client, err := ledger.New(cfg.Endpoints)
	if err != nil {
		acct.Lock()
		return types.Address{}, err
	}

	var db storage.DB
	db, err = storage.NewBadger(cfg.StorePath())
	if err != nil {
		// A second instance may hold the store lock; run without
		// persisted history rather than refusing to start.
		log.Store.Warn().Err(err).Msg("falling back to in-memory store")
		db = storage.NewMemory()
	}
	store := history.NewStore(db, cfg.LedgerID())
	if err := store.EnsureLedger(); err != nil {
		log.Store.Warn().Err(err).Msg("ledger identity check failed")
	}

	submitter := submit.New(client, acct, acct.Address, cfg.LedgerContract)
	ctrl := mining.New(client, submitter, epoch.New(config.EpochDuration), acct.Address)
	ctrl.SetRecorder(store.ForAccount(acct.Address))
	ctrl.SetPhaseListener(func(op string, p mining.Phase) {
		runtime.EventsEmit(a.ctx, "mining:phase", map[string]string{
			"op": op, "phase": string(p),
		})
	})

	sessCtx, cancel := context.WithCancel(context.Background())
	go ctrl.Run(sessCtx)

	a.mu.Lock()
	a.sess = &session{
		cancel:     cancel,
		account:    acct,
		client:     client,
		controller: ctrl,
		store:      store,
		db:         db,
	}
	a.mu.Unlock()

	a.activeWallet = walletName
	a.saveSettings()
	log.Logger.Info().Str("wallet", walletName).
		Str("address", acct.Address.Short()).Msg("session connected")
	return acct.Address, nil
}

// disconnect tears the active session down. Safe to call when idle.
func (a *App) disconnect() {
	a.mu.Lock()
	sess := a.sess
	a.sess = nil
	a.mu.Unlock()
	if sess == nil {
		return
	}
	sess.cancel()
	sess.account.Lock()
	if err := sess.db.Close(); err != nil {
		log.Store.Warn().Err(err).Msg("store close failed")
	}
	log.Logger.Info().Msg("session disconnected")
}

// approveTx asks the user to confirm a signature with a native dialog.
func (a *App) approveTx(_ context.Context, tx *submit.Tx) bool {
	msg := fmt.Sprintf("Sign %s?", tx.Method)
	if tx.Value != nil && tx.Value.Sign() > 0 {
		msg = fmt.Sprintf("Sign %s for %s NARA?", tx.Method, types.FormatNara(tx.Value))
	}
	choice, err := runtime.MessageDialog(a.ctx, runtime.MessageDialogOptions{
		Type:          runtime.QuestionDialog,
		Title:         "Authorize transaction",
		Message:       msg,
		Buttons:       []string{"Sign", "Cancel"},
		DefaultButton: "Sign",
		CancelButton:  "Cancel",
	})
	return err == nil && choice == "Sign"
}

func (a *App) settingsPath() string {
	return filepath.Join(a.dataDir, "ui-settings.json")
}

func (a *App) loadSettings() {
	data, err := os.ReadFile(a.settingsPath())
	if err != nil {
		return // first launch, keep defaults
	}
	var s uiSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return
	}
	if s.DataDir != "" {
		a.dataDir = s.DataDir
	}
	if s.Network != "" {
		a.networkName = s.Network
	}
	a.endpoints = s.Endpoints
	a.activeWallet = s.ActiveWallet
}

func (a *App) saveSettings() {
	s := uiSettings{
		Endpoints:    a.endpoints,
		DataDir:      a.dataDir,
		Network:      a.networkName,
		ActiveWallet: a.activeWallet,
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(a.settingsPath()), 0700)
	_ = os.WriteFile(a.settingsPath(), data, 0600)
}

// ── Settings surface (each setter persists) ──────────────────────────

// GetNetwork returns the active network name.
func (a *App) GetNetwork() string {
	return a.networkName
}

// SetNetwork switches networks. Any active session is torn down since
// the ledger identity changes.
func (a *App) SetNetwork(network string) {
	a.disconnect()
	a.networkName = network
	a.saveSettings()
}

// GetEndpoints returns the configured read endpoints.
func (a *App) GetEndpoints() []string {
	return a.cfg().Endpoints
}

// SetEndpoints overrides the read endpoint list. An empty list restores
// the network defaults.
func (a *App) SetEndpoints(endpoints []string) {
	a.endpoints = endpoints
	a.saveSettings()
}

// GetDataDir returns the data directory.
func (a *App) GetDataDir() string {
	return a.dataDir
}

// SetDataDir updates the data directory.
func (a *App) SetDataDir(dir string) {
	a.dataDir = dir
	a.saveSettings()
}

// GetActiveWallet returns the last connected wallet name.
func (a *App) GetActiveWallet() string {
	return a.activeWallet
}

// TestConnection checks whether a read endpoint answers.
func (a *App) TestConnection() (bool, error) {
	client, err := ledger.New(a.cfg().Endpoints)
	if err != nil {
		return false, err
	}
	if _, err := client.PoolBalances(a.ctx); err != nil {
		return false, err
	}
	return true, nil
}
