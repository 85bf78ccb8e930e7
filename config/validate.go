package config

import (
	"fmt"
	"net/url"
)

// Validate checks client config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if len(cfg.Endpoints) == 0 {
		return fmt.Errorf("at least one read endpoint is required")
	}
	for i, ep := range cfg.Endpoints {
		u, err := url.Parse(ep)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("endpoint %d (%q) is not a valid URL", i, ep)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("endpoint %d (%q): scheme must be http or https", i, ep)
		}
	}
	if cfg.LedgerContract.IsZero() {
		return fmt.Errorf("ledger contract address is required")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	return nil
}
