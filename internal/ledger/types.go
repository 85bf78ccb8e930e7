// Package ledger provides the read client for the remote NARA mining
// ledger. Reads go through an ordered list of equivalent JSON-RPC
// endpoints; a failed endpoint is rotated away, never silently served
// from cache.
package ledger

import (
	"fmt"
	"math/big"

	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// Dashboard is one consistent snapshot of the caller's mining state.
// Immutable once returned; superseded by the next successful read or by
// an optimistic patch in the lifecycle controller.
type Dashboard struct {
	Epoch                 uint64
	EpochSecondsRemaining uint64
	// UsedTickets counts tickets already finalized into the current
	// epoch's quota.
	UsedTickets  uint64
	EffectiveCap uint64 // hard cap plus any bonus capacity
	HardCap      uint64
	CanMine      bool
	// Pool balances are wei-scale and arbitrary precision.
	RewardPool      *big.Int
	ContractBalance *big.Int
}

// ClaimableEpoch is one epoch with an unclaimed reward amount.
type ClaimableEpoch struct {
	Epoch  uint64
	Amount *big.Int
}

// ClaimableSet is the ordered list of claimable epochs as returned by the
// ledger. Order is the server's and must be preserved.
type ClaimableSet struct {
	Entries []ClaimableEpoch
	Total   *big.Int
}

// PoolBalances holds the two independent claim-budget bounds: the
// contract's internal reward-pool counter and its actual token balance.
// Neither alone bounds a claim.
type PoolBalances struct {
	RewardPool      *big.Int
	ContractBalance *big.Int
}

// Receipt reports the outcome of a submitted transaction.
type Receipt struct {
	Ref       types.TxRef
	Confirmed bool
	Failed    bool
	Reason    string // revert reason when Failed
}

// ── Wire formats ─────────────────────────────────────────────────────

// Big values travel as base-10 strings; the endpoints are plain JSON-RPC.

type addressParam struct {
	Address types.Address `json:"address"`
}

type claimableParam struct {
	Address   types.Address `json:"address"`
	MaxEpochs int           `json:"max_epochs"`
}

type dashboardResult struct {
	Epoch            uint64 `json:"epoch"`
	SecondsRemaining uint64 `json:"epoch_seconds_remaining"`
	UsedTickets      uint64 `json:"pending_tickets"`
	EffectiveCap     uint64 `json:"effective_cap"`
	HardCap          uint64 `json:"hard_cap"`
	CanMine          bool   `json:"user_can_mine"`
	RewardPool       string `json:"reward_pool"`
	ContractBalance  string `json:"contract_balance"`
}

type pendingResult struct {
	Requested uint64 `json:"requested"`
	Claimed   uint64 `json:"claimed"`
}

type claimableResult struct {
	Epochs  []uint64 `json:"epochs"`
	Amounts []string `json:"amounts"`
}

type poolResult struct {
	RewardPool      string `json:"reward_pool"`
	ContractBalance string `json:"contract_balance"`
}

type receiptParam struct {
	Ref types.TxRef `json:"ref"`
}

type receiptResult struct {
	Status string `json:"status"` // "pending", "confirmed", "failed"
	Reason string `json:"reason,omitempty"`
}

func (r *dashboardResult) toDashboard() (*Dashboard, error) {
	pool, err := types.ParseWei(r.RewardPool)
	if err != nil {
		return nil, fmt.Errorf("reward pool: %w", err)
	}
	balance, err := types.ParseWei(r.ContractBalance)
	if err != nil {
		return nil, fmt.Errorf("contract balance: %w", err)
	}
	return &Dashboard{
		Epoch:                 r.Epoch,
		EpochSecondsRemaining: r.SecondsRemaining,
		UsedTickets:           r.UsedTickets,
		EffectiveCap:          r.EffectiveCap,
		HardCap:               r.HardCap,
		CanMine:               r.CanMine,
		RewardPool:            pool,
		ContractBalance:       balance,
	}, nil
}

func (r *claimableResult) toSet() (*ClaimableSet, error) {
	if len(r.Epochs) != len(r.Amounts) {
		return nil, fmt.Errorf("claimable arrays disagree: %d epochs, %d amounts", len(r.Epochs), len(r.Amounts))
	}
	set := &ClaimableSet{
		Entries: make([]ClaimableEpoch, 0, len(r.Epochs)),
		Total:   new(big.Int),
	}
	for i, epoch := range r.Epochs {
		amount, err := types.ParseWei(r.Amounts[i])
		if err != nil {
			return nil, fmt.Errorf("epoch %d amount: %w", epoch, err)
		}
		set.Entries = append(set.Entries, ClaimableEpoch{Epoch: epoch, Amount: amount})
		set.Total.Add(set.Total, amount)
	}
	return set, nil
}
