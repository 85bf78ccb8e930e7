package main

import (
	"errors"
	"time"

	"github.com/NARAProtocol/nara-simple-ui/config"
	"github.com/NARAProtocol/nara-simple-ui/internal/log"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// FaucetService exposes the testnet faucet with a per-address cooldown.
// The cooldown record is advisory; the faucet endpoint enforces its own.
type FaucetService struct {
	app *App
}

// FaucetStatus reports whether the faucet can be used now.
type FaucetStatus struct {
	Available     bool   `json:"available"`
	NextAvailable string `json:"next_available,omitempty"`
}

// FaucetResult is returned after a successful drip.
type FaucetResult struct {
	TxRef string `json:"tx_ref"`
}

// Status reports the cooldown state for the connected address.
func (f *FaucetService) Status() (*FaucetStatus, error) {
	sess := f.app.session()
	if sess == nil {
		return nil, errors.New("no wallet connected")
	}
	if f.app.networkName != string(config.Testnet) {
		return &FaucetStatus{Available: false}, nil
	}
	last, err := sess.store.LastFaucetClaim(sess.account.Address)
	if err != nil {
		return nil, err
	}
	next := last.Add(config.FaucetCooldown)
	if last.IsZero() || time.Now().After(next) {
		return &FaucetStatus{Available: true}, nil
	}
	return &FaucetStatus{
		Available:     false,
		NextAvailable: next.UTC().Format(time.RFC3339),
	}, nil
}

// Request asks the faucet endpoint for testnet funds.
func (f *FaucetService) Request() (*FaucetResult, error) {
	sess := f.app.session()
	if sess == nil {
		return nil, errors.New("no wallet connected")
	}
	if f.app.networkName != string(config.Testnet) {
		return nil, errors.New("faucet is testnet only")
	}

	status, err := f.Status()
	if err != nil {
		return nil, err
	}
	if !status.Available {
		return nil, errors.New("faucet cooldown active, try again later")
	}

	var result struct {
		Ref types.TxRef `json:"ref"`
	}
	params := map[string]types.Address{"address": sess.account.Address}
	if err := sess.client.Call(f.app.ctx, "nara_requestFaucet", params, &result); err != nil {
		return nil, errors.New("faucet request failed, try again later")
	}

	if err := sess.store.MarkFaucetClaim(sess.account.Address, time.Now()); err != nil {
		log.Faucet.Warn().Err(err).Msg("cooldown record write failed")
	}
	log.Faucet.Info().Str("address", sess.account.Address.Short()).Msg("faucet drip requested")
	return &FaucetResult{TxRef: result.Ref.String()}, nil
}
