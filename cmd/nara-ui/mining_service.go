package main

import (
	"context"
	"errors"
	"time"

	"github.com/NARAProtocol/nara-simple-ui/config"
	"github.com/NARAProtocol/nara-simple-ui/pkg/errs"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// MiningService exposes the mining lifecycle to the frontend.
type MiningService struct {
	app *App
}

// DashboardView is the frontend's rendering of the merged mining state.
// Big amounts travel as decimal NARA strings.
type DashboardView struct {
	Epoch             uint64 `json:"epoch"`
	SecondsRemaining  uint64 `json:"seconds_remaining"`
	PendingMines      uint64 `json:"pending_mines"`
	UsedTickets       uint64 `json:"used_tickets"`
	EffectiveCap      uint64 `json:"effective_cap"`
	HardCap           uint64 `json:"hard_cap"`
	CanMine           bool   `json:"can_mine"`
	RemainingCapacity uint64 `json:"remaining_capacity"`
	RewardPool        string `json:"reward_pool"`
	ContractBalance   string `json:"contract_balance"`
	TicketPrice       string `json:"ticket_price"`
}

// OpResult is the outcome of a mine/finalize/claim call. Cancelled is
// set when the user declined or another operation was already running;
// those never carry an error message.
type OpResult struct {
	TxRef     string   `json:"tx_ref,omitempty"`
	Cancelled bool     `json:"cancelled,omitempty"`
	Finalized uint64   `json:"finalized,omitempty"`
	Requested uint64   `json:"requested,omitempty"`
	Epochs    []uint64 `json:"epochs,omitempty"`
	Amount    string   `json:"amount,omitempty"`
}

// HistoryEntry is one persisted claim shown in the history panel.
type HistoryEntry struct {
	Epochs    []uint64 `json:"epochs"`
	Amount    string   `json:"amount"`
	Timestamp string   `json:"timestamp"`
	TxRef     string   `json:"tx_ref"`
}

// uiError converts a lifecycle error to sanitized frontend text. Silent
// outcomes (declined signature, operation already running) map to nil.
func uiError(err error) error {
	if err == nil || errs.Silent(err) {
		return nil
	}
	return errors.New(errs.UserMessage(err))
}

// GetDashboard returns the current merged snapshot, fetching one if no
// poll has completed yet.
func (m *MiningService) GetDashboard() (*DashboardView, error) {
	sess := m.app.session()
	if sess == nil {
		return nil, errors.New("no wallet connected")
	}
	snap := sess.controller.Snapshot()
	if snap == nil {
		ctx, cancel := context.WithTimeout(m.app.ctx, 15*time.Second)
		defer cancel()
		if err := sess.controller.Refresh(ctx); err != nil {
			return nil, uiError(err)
		}
		snap = sess.controller.Snapshot()
	}
	return &DashboardView{
		Epoch:             snap.Epoch,
		SecondsRemaining:  snap.SecondsRemaining,
		PendingMines:      snap.PendingMines,
		UsedTickets:       snap.UsedTickets,
		EffectiveCap:      snap.EffectiveCap,
		HardCap:           snap.HardCap,
		CanMine:           snap.CanMine,
		RemainingCapacity: snap.RemainingCapacity,
		RewardPool:        types.FormatNara(snap.RewardPool),
		ContractBalance:   types.FormatNara(snap.ContractBalance),
		TicketPrice:       types.FormatNara(config.TicketPrice()),
	}, nil
}

// Mine requests the given number of tickets.
func (m *MiningService) Mine(tickets uint64) (*OpResult, error) {
	sess := m.app.session()
	if sess == nil {
		return nil, errors.New("no wallet connected")
	}
	ref, err := sess.controller.Mine(m.app.ctx, tickets)
	if err != nil {
		return &OpResult{Cancelled: errs.Silent(err)}, uiError(err)
	}
	return &OpResult{TxRef: ref.String()}, nil
}

// Finalize converts pending mines into used tickets, as many as fit.
func (m *MiningService) Finalize() (*OpResult, error) {
	sess := m.app.session()
	if sess == nil {
		return nil, errors.New("no wallet connected")
	}
	res, err := sess.controller.Finalize(m.app.ctx)
	if err != nil {
		return &OpResult{Cancelled: errs.Silent(err)}, uiError(err)
	}
	return &OpResult{
		TxRef:     res.Ref.String(),
		Finalized: res.Finalized,
		Requested: res.Requested,
	}, nil
}

// Claim collects every claimable epoch reward that fits the pool budget.
func (m *MiningService) Claim() (*OpResult, error) {
	sess := m.app.session()
	if sess == nil {
		return nil, errors.New("no wallet connected")
	}
	res, err := sess.controller.Claim(m.app.ctx)
	if err != nil {
		return &OpResult{Cancelled: errs.Silent(err)}, uiError(err)
	}
	return &OpResult{
		TxRef:  res.Ref.String(),
		Epochs: res.Epochs,
		Amount: types.FormatNara(res.Amount),
	}, nil
}

// GetClaimHistory returns the persisted claims, newest first.
func (m *MiningService) GetClaimHistory() ([]HistoryEntry, error) {
	sess := m.app.session()
	if sess == nil {
		return nil, errors.New("no wallet connected")
	}
	records, err := sess.store.Claims(sess.account.Address)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, len(records))
	for i, rec := range records {
		entries[i] = HistoryEntry{
			Epochs:    rec.Epochs,
			Amount:    formatWeiString(rec.Amount),
			Timestamp: rec.Timestamp.Format(time.RFC3339),
			TxRef:     rec.Ref.String(),
		}
	}
	return entries, nil
}

// GetBonusWins returns recorded bonus awards, newest first.
func (m *MiningService) GetBonusWins() ([]HistoryEntry, error) {
	sess := m.app.session()
	if sess == nil {
		return nil, errors.New("no wallet connected")
	}
	wins, err := sess.store.BonusWins(sess.account.Address)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, len(wins))
	for i, win := range wins {
		entries[i] = HistoryEntry{
			Epochs:    []uint64{win.Epoch},
			Amount:    formatWeiString(win.Amount),
			Timestamp: win.Timestamp.Format(time.RFC3339),
		}
	}
	return entries, nil
}
