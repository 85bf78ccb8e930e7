package config

import "github.com/NARAProtocol/nara-simple-ui/pkg/types"

// Deployed mining contract addresses per network.
const (
	mainnetContract = "0x5a91e3a46529e6a1e44ec54b1da1f830886ac7d2"
	testnetContract = "0x1b2d77b7a1c2ef6b3827f8a932baf0ce4a6ed1f0"
)

// DefaultMainnet returns the default client configuration for mainnet.
func DefaultMainnet() *Config {
	contract, _ := types.ParseAddress(mainnetContract)
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		// Equivalent public read endpoints; order matters for rotation.
		Endpoints: []string{
			"https://rpc.naraprotocol.io",
			"https://rpc2.naraprotocol.io",
			"https://nara.publicnode.dev",
		},
		LedgerContract: contract,
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default client configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Endpoints = []string{
		"https://testnet-rpc.naraprotocol.io",
		"https://testnet-rpc2.naraprotocol.io",
	}
	contract, _ := types.ParseAddress(testnetContract)
	cfg.LedgerContract = contract
	return cfg
}

// Default returns the default client configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
