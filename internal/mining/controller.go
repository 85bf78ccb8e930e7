// Package mining implements the mining-operation lifecycle: optimistic
// counter tracking, capacity accounting, reconciliation of stale remote
// reads, claim batching, and the request/finalize/claim commit protocol
// against the remote ledger.
package mining

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NARAProtocol/nara-simple-ui/config"
	"github.com/NARAProtocol/nara-simple-ui/internal/epoch"
	"github.com/NARAProtocol/nara-simple-ui/internal/ledger"
	"github.com/NARAProtocol/nara-simple-ui/internal/log"
	"github.com/NARAProtocol/nara-simple-ui/internal/submit"
	"github.com/NARAProtocol/nara-simple-ui/pkg/errs"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// Phase is the step an in-flight operation is at. Surfaced to the UI
// through the phase listener.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhasePreparing         Phase = "preparing"
	PhaseAwaitingSignature Phase = "awaiting_signature"
	PhaseSubmitted         Phase = "submitted"
	PhaseConfirming        Phase = "confirming"
	PhaseConfirmed         Phase = "confirmed"
	PhaseFailed            Phase = "failed"
)

// ReadClient is the slice of the ledger read path the controller needs.
// *ledger.Client satisfies it.
type ReadClient interface {
	Dashboard(ctx context.Context, addr types.Address) (*ledger.Dashboard, error)
	PendingMines(ctx context.Context, addr types.Address) (uint64, error)
	Claimable(ctx context.Context, addr types.Address, maxEpochs int) (*ledger.ClaimableSet, error)
	PoolBalances(ctx context.Context) (*ledger.PoolBalances, error)
}

// Writer drives one write call through its steps. *submit.Submitter
// satisfies it.
type Writer interface {
	Prepare(ctx context.Context, method string, args []uint64, count int, value *big.Int) (*submit.Tx, error)
	Authorize(ctx context.Context, tx *submit.Tx) (*submit.SignedTx, error)
	Send(ctx context.Context, signed *submit.SignedTx) (types.TxRef, error)
	Await(ctx context.Context, method string, ref types.TxRef) error
}

// Recorder persists a confirmed claim. Optional.
type Recorder interface {
	RecordClaim(epochs []uint64, amount *big.Int, ref types.TxRef) error
}

// baseline is the pre-operation counter value recorded at optimistic
// update time, kept until a poll moves past it.
type baseline struct {
	pre uint64
	dir Direction
}

// Snapshot is the merged view the UI renders: the latest dashboard with
// the optimistic pending counter folded in.
type Snapshot struct {
	Epoch             uint64
	SecondsRemaining  uint64
	PendingMines      uint64
	UsedTickets       uint64
	EffectiveCap      uint64
	HardCap           uint64
	CanMine           bool
	RemainingCapacity uint64
	RewardPool        *big.Int
	ContractBalance   *big.Int
}

// FinalizeResult reports a partial finalize: Finalized of Requested
// pending mines fit under the epoch cap.
type FinalizeResult struct {
	Finalized uint64
	Requested uint64
	Ref       types.TxRef
}

// ClaimResult reports a confirmed claim batch.
type ClaimResult struct {
	Epochs []uint64
	Amount *big.Int
	Ref    types.TxRef
}

// Controller owns the optimistic counters and the latest dashboard and
// drives the mine/finalize/claim protocols. One instance per connected
// wallet session.
type Controller struct {
	client   ReadClient
	writer   Writer
	clock    *epoch.Clock
	addr     types.Address
	recorder Recorder
	onPhase  func(op string, p Phase)

	// inFlight guards the write path: at most one submission at a time,
	// set before any blocking step and cleared on terminal transition.
	inFlight atomic.Bool

	mu          sync.Mutex
	dash        *ledger.Dashboard
	pending     uint64
	pendingBase *baseline
	usedBase    *baseline
}

// New creates a controller for one wallet address.
func New(client ReadClient, writer Writer, clock *epoch.Clock, addr types.Address) *Controller {
	return &Controller{
		client: client,
		writer: writer,
		clock:  clock,
		addr:   addr,
	}
}

// SetRecorder installs the claim-history sink.
func (c *Controller) SetRecorder(r Recorder) { c.recorder = r }

// SetPhaseListener installs the operation-phase callback. Called
// synchronously; keep it cheap.
func (c *Controller) SetPhaseListener(fn func(op string, p Phase)) { c.onPhase = fn }

func (c *Controller) setPhase(op string, p Phase) {
	if c.onPhase != nil {
		c.onPhase(op, p)
	}
}

// Run polls the dashboard every poll interval and drives the epoch
// countdown until ctx is cancelled. Epoch boundaries force an
// authoritative refresh since the boundary invalidates cap and used
// figures.
func (c *Controller) Run(ctx context.Context) {
	go c.clock.Run(ctx, func() {
		log.Mining.Debug().Msg("epoch boundary, forcing refresh")
		if err := c.Refresh(ctx); err != nil {
			log.Mining.Warn().Err(err).Msg("boundary refresh failed")
		}
	})

	if err := c.Refresh(ctx); err != nil {
		log.Mining.Warn().Err(err).Msg("initial refresh failed")
	}

	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.poll(ctx); err != nil {
				log.Mining.Warn().Err(err).Msg("poll failed")
			}
		}
	}
}

// Refresh fetches fresh dashboard and pending figures and adopts them
// as authoritative, discarding any reconciliation baselines. Used on
// connect, on epoch boundaries, and after a failed write.
func (c *Controller) Refresh(ctx context.Context) error {
	dash, pending, err := c.read(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.dash = dash
	c.pending = pending
	c.pendingBase = nil
	c.usedBase = nil
	c.mu.Unlock()

	c.clock.SetRemaining(dash.EpochSecondsRemaining)
	return nil
}

// poll fetches fresh figures and merges them with the optimistic state,
// keeping the optimistic value wherever the read clearly lags a
// just-confirmed write.
func (c *Controller) poll(ctx context.Context) error {
	dash, pending, err := c.read(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.pendingBase != nil {
		merged, adopted := Merge(c.pendingBase.dir, c.pendingBase.pre, c.pending, pending)
		c.pending = merged
		if adopted {
			c.pendingBase = nil
		}
	} else {
		c.pending = pending
	}

	if c.usedBase != nil && c.dash != nil {
		merged, adopted := Merge(c.usedBase.dir, c.usedBase.pre, c.dash.UsedTickets, dash.UsedTickets)
		dash.UsedTickets = merged
		if adopted {
			c.usedBase = nil
		}
	}
	c.dash = dash
	c.mu.Unlock()

	c.clock.SetRemaining(dash.EpochSecondsRemaining)
	return nil
}

// read fetches both snapshots, discarding results once the session
// context is dead.
func (c *Controller) read(ctx context.Context) (*ledger.Dashboard, uint64, error) {
	dash, err := c.client.Dashboard(ctx, c.addr)
	if err != nil {
		return nil, 0, err
	}
	pending, err := c.client.PendingMines(ctx, c.addr)
	if err != nil {
		return nil, 0, err
	}
	if ctx.Err() != nil {
		return nil, 0, ctx.Err()
	}
	return dash, pending, nil
}

// Snapshot returns the current merged view, or nil before the first
// successful read.
func (c *Controller) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dash == nil {
		return nil
	}
	return &Snapshot{
		Epoch:             c.dash.Epoch,
		SecondsRemaining:  c.clock.Remaining(),
		PendingMines:      c.pending,
		UsedTickets:       c.dash.UsedTickets,
		EffectiveCap:      c.dash.EffectiveCap,
		HardCap:           c.dash.HardCap,
		CanMine:           c.dash.CanMine,
		RemainingCapacity: Remaining(c.dash.EffectiveCap, c.dash.UsedTickets, c.pending),
		RewardPool:        c.dash.RewardPool,
		ContractBalance:   c.dash.ContractBalance,
	}
}

// Mine submits a paid mine request for the given ticket count.
func (c *Controller) Mine(ctx context.Context, tickets uint64) (types.TxRef, error) {
	const op = "mine"
	if !c.inFlight.CompareAndSwap(false, true) {
		return types.TxRef{}, errs.New(errs.CodeBusy, op)
	}
	defer c.inFlight.Store(false)

	c.setPhase(op, PhasePreparing)
	if tickets == 0 {
		c.fail(op)
		return types.TxRef{}, fmt.Errorf("mine: ticket count must be positive")
	}
	if err := c.ensureDashboard(ctx); err != nil {
		c.fail(op)
		return types.TxRef{}, err
	}

	c.mu.Lock()
	dash := c.dash
	remaining := Remaining(dash.EffectiveCap, dash.UsedTickets, c.pending)
	c.mu.Unlock()

	if !dash.CanMine {
		c.fail(op)
		return types.TxRef{}, errs.New(errs.CodeNotEligible, op)
	}
	if tickets > remaining {
		c.fail(op)
		return types.TxRef{}, errs.New(errs.CodeCapacityExceeded, op)
	}

	value := new(big.Int).Mul(config.TicketPrice(), new(big.Int).SetUint64(tickets))
	tx, err := c.writer.Prepare(ctx, submit.MethodRequestMine, []uint64{tickets}, int(tickets), value)
	if err != nil {
		c.fail(op)
		return types.TxRef{}, err
	}

	c.setPhase(op, PhaseAwaitingSignature)
	signed, err := c.writer.Authorize(ctx, tx)
	if err != nil {
		c.fail(op)
		return types.TxRef{}, err
	}

	ref, err := c.writer.Send(ctx, signed)
	if err != nil {
		c.fail(op)
		return types.TxRef{}, err
	}
	c.setPhase(op, PhaseSubmitted)

	c.mu.Lock()
	c.pendingBase = &baseline{pre: c.pending, dir: Increase}
	c.pending += tickets
	c.mu.Unlock()
	c.setPhase(op, PhaseConfirming)

	if err := c.writer.Await(ctx, submit.MethodRequestMine, ref); err != nil {
		c.rollback(ctx, op)
		return types.TxRef{}, err
	}

	log.Mining.Info().Uint64("tickets", tickets).Str("ref", ref.String()).Msg("mine confirmed")
	c.confirm(ctx, op)
	return ref, nil
}

// Finalize converts as many pending mines as the epoch cap allows into
// used tickets. Reports how many of the pending total fit.
func (c *Controller) Finalize(ctx context.Context) (*FinalizeResult, error) {
	const op = "finalize"
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, errs.New(errs.CodeBusy, op)
	}
	defer c.inFlight.Store(false)

	c.setPhase(op, PhasePreparing)
	if err := c.ensureDashboard(ctx); err != nil {
		c.fail(op)
		return nil, err
	}

	c.mu.Lock()
	dash := c.dash
	pending := c.pending
	count := Finalizable(pending, dash.EffectiveCap, dash.UsedTickets)
	c.mu.Unlock()

	if pending == 0 {
		c.fail(op)
		return nil, errs.New(errs.CodeNothingPending, op)
	}
	if count == 0 {
		// Pending mines exist but the epoch is full. Never submit a
		// zero-count write.
		c.fail(op)
		return nil, errs.New(errs.CodeCapacityExceeded, op)
	}

	tx, err := c.writer.Prepare(ctx, submit.MethodFinalizeMines, []uint64{count}, int(count), nil)
	if err != nil {
		c.fail(op)
		return nil, err
	}

	c.setPhase(op, PhaseAwaitingSignature)
	signed, err := c.writer.Authorize(ctx, tx)
	if err != nil {
		c.fail(op)
		return nil, err
	}

	ref, err := c.writer.Send(ctx, signed)
	if err != nil {
		c.fail(op)
		return nil, err
	}
	c.setPhase(op, PhaseSubmitted)

	c.mu.Lock()
	c.pendingBase = &baseline{pre: c.pending, dir: Decrease}
	c.pending -= count
	if c.dash != nil {
		patched := *c.dash
		c.usedBase = &baseline{pre: patched.UsedTickets, dir: Increase}
		patched.UsedTickets += count
		c.dash = &patched
	}
	c.mu.Unlock()
	c.setPhase(op, PhaseConfirming)

	if err := c.writer.Await(ctx, submit.MethodFinalizeMines, ref); err != nil {
		c.rollback(ctx, op)
		return nil, err
	}

	log.Mining.Info().Uint64("count", count).Uint64("pending", pending).Msg("finalize confirmed")
	c.confirm(ctx, op)
	return &FinalizeResult{Finalized: count, Requested: pending, Ref: ref}, nil
}

// Claim submits a claim for every claimable epoch reward that fits the
// pool budget, preserving the ledger's epoch ordering.
func (c *Controller) Claim(ctx context.Context) (*ClaimResult, error) {
	const op = "claim"
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, errs.New(errs.CodeBusy, op)
	}
	defer c.inFlight.Store(false)

	c.setPhase(op, PhasePreparing)
	set, err := c.client.Claimable(ctx, c.addr, config.MaxClaimEpochs)
	if err != nil {
		c.fail(op)
		return nil, err
	}
	pools, err := c.client.PoolBalances(ctx)
	if err != nil {
		c.fail(op)
		return nil, err
	}

	batch := SelectClaimBatch(set, pools.RewardPool, pools.ContractBalance)
	if len(batch.Epochs) == 0 {
		c.fail(op)
		return nil, errs.New(errs.CodeNothingClaimable, op)
	}

	tx, err := c.writer.Prepare(ctx, submit.MethodClaimBatch, batch.Epochs, len(batch.Epochs), nil)
	if err != nil {
		c.fail(op)
		return nil, err
	}

	c.setPhase(op, PhaseAwaitingSignature)
	signed, err := c.writer.Authorize(ctx, tx)
	if err != nil {
		c.fail(op)
		return nil, err
	}

	ref, err := c.writer.Send(ctx, signed)
	if err != nil {
		c.fail(op)
		return nil, err
	}
	c.setPhase(op, PhaseSubmitted)
	c.setPhase(op, PhaseConfirming)

	if err := c.writer.Await(ctx, submit.MethodClaimBatch, ref); err != nil {
		c.rollback(ctx, op)
		return nil, err
	}

	if c.recorder != nil {
		if err := c.recorder.RecordClaim(batch.Epochs, batch.Total, ref); err != nil {
			log.Mining.Warn().Err(err).Msg("claim history write failed")
		}
	}

	log.Mining.Info().Int("epochs", len(batch.Epochs)).
		Str("amount", batch.Total.String()).Str("ref", ref.String()).
		Msg("claim confirmed")
	c.confirm(ctx, op)
	return &ClaimResult{Epochs: batch.Epochs, Amount: batch.Total, Ref: ref}, nil
}

// ensureDashboard guarantees a snapshot exists before pre-flight checks.
func (c *Controller) ensureDashboard(ctx context.Context) error {
	c.mu.Lock()
	have := c.dash != nil
	c.mu.Unlock()
	if have {
		return nil
	}
	return c.Refresh(ctx)
}

// confirm finishes a successful operation: fresh read reconciled
// against the recorded baselines, then back to idle.
func (c *Controller) confirm(ctx context.Context, op string) {
	c.setPhase(op, PhaseConfirmed)
	if err := c.poll(ctx); err != nil {
		log.Mining.Warn().Err(err).Str("op", op).Msg("post-confirm poll failed")
	}
	c.setPhase(op, PhaseIdle)
}

// rollback finishes a failed operation: the optimistic counters are
// replaced by a forced authoritative read, never by a stale cache.
func (c *Controller) rollback(ctx context.Context, op string) {
	c.setPhase(op, PhaseFailed)
	if err := c.Refresh(ctx); err != nil {
		log.Mining.Warn().Err(err).Str("op", op).Msg("rollback refresh failed")
	}
	c.setPhase(op, PhaseIdle)
}

func (c *Controller) fail(op string) {
	c.setPhase(op, PhaseFailed)
	c.setPhase(op, PhaseIdle)
}
