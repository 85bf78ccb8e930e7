package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/NARAProtocol/nara-simple-ui/internal/log"
	"github.com/NARAProtocol/nara-simple-ui/pkg/errs"
	"github.com/NARAProtocol/nara-simple-ui/pkg/retry"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

const defaultTimeout = 10 * time.Second

// Client reads the remote mining ledger through an ordered list of
// equivalent endpoints. The rotation index only ever advances (mod the
// endpoint count); it is never reset while the process lives.
type Client struct {
	endpoints []string
	rotation  atomic.Uint64
	http      *http.Client
	retry     *retry.Config
}

// New creates a read client over the given ordered endpoint list.
func New(endpoints []string) (*Client, error) {
	return NewWithTimeout(endpoints, defaultTimeout)
}

// NewWithTimeout creates a read client with a custom HTTP timeout.
func NewWithTimeout(endpoints []string, timeout time.Duration) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("at least one endpoint is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	eps := make([]string, len(endpoints))
	copy(eps, endpoints)
	return &Client{
		endpoints: eps,
		http:      &http.Client{Timeout: timeout},
		retry:     retry.ReadConfig(),
	}, nil
}

// Endpoint returns the currently selected endpoint.
func (c *Client) Endpoint() string {
	return c.endpoints[c.rotation.Load()%uint64(len(c.endpoints))]
}

// Rotations returns how many times the client has rotated endpoints.
func (c *Client) Rotations() uint64 {
	return c.rotation.Load()
}

// rotate advances to the next endpoint. Concurrent callers share the
// selection; the index only moves forward.
func (c *Client) rotate() {
	n := c.rotation.Add(1)
	log.Ledger.Warn().
		Str("endpoint", c.endpoints[n%uint64(len(c.endpoints))]).
		Uint64("rotation", n).
		Msg("rotated read endpoint")
}

// Call invokes a JSON-RPC method with bounded retries. A transport
// failure rotates to the next endpoint before the retry; a JSON-RPC
// error response is returned as-is (the endpoint answered, so the error
// is the ledger's, not the transport's).
func (c *Client) Call(ctx context.Context, method string, params, result interface{}) error {
	return retry.Do(ctx, c.retry, func() error {
		err := c.callOnce(ctx, c.Endpoint(), method, params, result)
		if err == nil {
			return nil
		}
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		c.rotate()
		return errs.Wrap(errs.CodeTransientNetwork, method, err)
	})
}

// Dashboard fetches the caller's mining dashboard snapshot.
func (c *Client) Dashboard(ctx context.Context, addr types.Address) (*Dashboard, error) {
	var result dashboardResult
	if err := c.Call(ctx, "nara_getDashboard", addressParam{Address: addr}, &result); err != nil {
		return nil, err
	}
	return result.toDashboard()
}

// PendingMines fetches the authoritative pending-mine count, derived
// remotely as requested minus claimed.
func (c *Client) PendingMines(ctx context.Context, addr types.Address) (uint64, error) {
	var result pendingResult
	if err := c.Call(ctx, "nara_getPendingMines", addressParam{Address: addr}, &result); err != nil {
		return 0, err
	}
	if result.Claimed > result.Requested {
		return 0, fmt.Errorf("ledger reports claimed %d > requested %d", result.Claimed, result.Requested)
	}
	return result.Requested - result.Claimed, nil
}

// Claimable fetches up to maxEpochs claimable epochs in the server's order.
func (c *Client) Claimable(ctx context.Context, addr types.Address, maxEpochs int) (*ClaimableSet, error) {
	var result claimableResult
	if err := c.Call(ctx, "nara_getClaimableEpochs", claimableParam{Address: addr, MaxEpochs: maxEpochs}, &result); err != nil {
		return nil, err
	}
	return result.toSet()
}

// PoolBalances fetches the two claim-budget bounds.
func (c *Client) PoolBalances(ctx context.Context) (*PoolBalances, error) {
	var result poolResult
	if err := c.Call(ctx, "nara_getPoolBalances", nil, &result); err != nil {
		return nil, err
	}
	pool, err := types.ParseWei(result.RewardPool)
	if err != nil {
		return nil, fmt.Errorf("reward pool: %w", err)
	}
	balance, err := types.ParseWei(result.ContractBalance)
	if err != nil {
		return nil, fmt.Errorf("contract balance: %w", err)
	}
	return &PoolBalances{RewardPool: pool, ContractBalance: balance}, nil
}

// Simulate dry-runs a write call against the ledger, surfacing the revert
// reason without spending gas. The raw payload is produced by the
// transaction submitter.
func (c *Client) Simulate(ctx context.Context, payload interface{}) error {
	return c.Call(ctx, "nara_simulate", payload, nil)
}

// SendTransaction submits a signed transaction. Fire-and-forget: a nil
// error only means the network accepted the payload.
func (c *Client) SendTransaction(ctx context.Context, payload interface{}) (types.TxRef, error) {
	var result struct {
		Ref types.TxRef `json:"ref"`
	}
	if err := c.Call(ctx, "nara_sendTransaction", payload, &result); err != nil {
		return types.TxRef{}, err
	}
	return result.Ref, nil
}

// Receipt polls the confirmation status of a submitted transaction.
func (c *Client) Receipt(ctx context.Context, ref types.TxRef) (*Receipt, error) {
	var result receiptResult
	if err := c.Call(ctx, "nara_getReceipt", receiptParam{Ref: ref}, &result); err != nil {
		return nil, err
	}
	return &Receipt{
		Ref:       ref,
		Confirmed: result.Status == "confirmed",
		Failed:    result.Status == "failed",
		Reason:    result.Reason,
	}, nil
}
