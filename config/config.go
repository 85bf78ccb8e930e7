// Package config handles client configuration.
//
// Configuration is split into two categories:
//   - Protocol constants: fixed by the deployed NARA mining contract,
//     identical for every client
//   - Client settings: runtime configuration, can vary per installation
package config

import (
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// =============================================================================
// Protocol constants (fixed by the deployed mining contract)
// =============================================================================

const (
	// EpochDuration is the fixed mining window length. Used-capacity
	// counters reset at every boundary.
	EpochDuration = 180 * time.Second

	// CountdownTick is the epoch countdown resolution.
	CountdownTick = time.Second

	// PollInterval is how often the dashboard and pending counters are
	// refreshed from the ledger.
	PollInterval = 30 * time.Second

	// ReceiptPollInterval is how often a submitted transaction's receipt
	// is polled while confirming.
	ReceiptPollInterval = 2 * time.Second

	// MaxClaimEpochs bounds a single claimable-epochs read.
	MaxClaimEpochs = 32

	// MaxClaimHistory bounds the locally persisted claim history per address.
	MaxClaimHistory = 25

	// MaxReadRetries bounds per-call read retries; each retry rotates to
	// the next endpoint first.
	MaxReadRetries = 3

	// FaucetCooldown is the minimum wait between testnet faucet drips
	// for one address.
	FaucetCooldown = 24 * time.Hour
)

// Gas budgeting for write calls: limit = base + perUnit × count.
// Claim iterates epoch records and is markedly more expensive per unit
// than finalize.
const (
	GasBaseMine     = 120_000
	GasPerMine      = 25_000
	GasBaseFinalize = 90_000
	GasPerFinalize  = 30_000
	GasBaseClaim    = 120_000
	GasPerClaim     = 60_000
)

// ticketPriceWei is the fixed per-ticket mine price: 0.002 NARA.
const ticketPriceWei = "2000000000000000"

// TicketPrice returns the per-ticket mine price in wei.
func TicketPrice() *big.Int {
	v, _ := new(big.Int).SetString(ticketPriceWei, 10)
	return v
}

// =============================================================================
// Client configuration (runtime, per-installation settings)
// =============================================================================

// Config holds client runtime configuration.
type Config struct {
	Network NetworkType
	DataDir string

	// Endpoints is the ordered list of equivalent read endpoints. The
	// ledger client rotates through them on failure.
	Endpoints []string

	// LedgerContract is the deployed mining contract. It doubles as the
	// ledger identity that scopes locally persisted state.
	LedgerContract types.Address

	Log LogConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
	JSON  bool
	File  string
}

// LedgerID returns the identity string that scopes persisted local state.
// Switching deployed contracts invalidates prior history.
func (c *Config) LedgerID() string {
	return string(c.Network) + ":" + c.LedgerContract.String()
}

// StorePath returns the local store directory for the active network.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, string(c.Network), "store")
}

// KeystorePath returns the wallet keystore directory.
func (c *Config) KeystorePath() string {
	return filepath.Join(c.DataDir, string(c.Network), "keystore")
}

// DefaultDataDir returns the platform-specific default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nara"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Nara")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Nara")
		}
		return filepath.Join(home, "AppData", "Roaming", "Nara")
	default:
		return filepath.Join(home, ".nara")
	}
}
