package submit

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/NARAProtocol/nara-simple-ui/config"
	"github.com/NARAProtocol/nara-simple-ui/internal/ledger"
	"github.com/NARAProtocol/nara-simple-ui/internal/log"
	"github.com/NARAProtocol/nara-simple-ui/pkg/errs"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// ErrDeclined is returned by an Authorizer when the user rejects the
// signature request. Callers treat it as a silent outcome.
var ErrDeclined = errors.New("authorization declined")

// Authorizer obtains the user's approval and signature for a transaction.
// Implemented by the wallet; the UI collaborator drives the approval.
type Authorizer interface {
	// Authorize signs the transaction's signing hash, returning the
	// compressed public key and signature, or ErrDeclined.
	Authorize(ctx context.Context, tx *Tx) (pubKey, signature []byte, err error)
}

// Ledger is the slice of the read client the submitter needs.
// *ledger.Client satisfies it.
type Ledger interface {
	Call(ctx context.Context, method string, params, result interface{}) error
	Simulate(ctx context.Context, payload interface{}) error
	SendTransaction(ctx context.Context, payload interface{}) (types.TxRef, error)
	Receipt(ctx context.Context, ref types.TxRef) (*ledger.Receipt, error)
}

// Submitter drives a single write call through simulate → authorize →
// send → confirm.
type Submitter struct {
	client       Ledger
	auth         Authorizer
	from         types.Address
	contract     types.Address
	receiptEvery time.Duration
}

// New creates a submitter for the given account against the deployed
// contract.
func New(client Ledger, auth Authorizer, from, contract types.Address) *Submitter {
	return &Submitter{
		client:       client,
		auth:         auth,
		from:         from,
		contract:     contract,
		receiptEvery: config.ReceiptPollInterval,
	}
}

// Prepare builds the transaction and dry-runs it against the ledger.
// Simulation failures are classified and never reach the send step.
// count scales the gas budget (tickets, finalize count, or batch size).
func (s *Submitter) Prepare(ctx context.Context, method string, args []uint64, count int, value *big.Int) (*Tx, error) {
	gas, err := GasLimit(method, count)
	if err != nil {
		return nil, err
	}

	var nonce struct {
		Nonce uint64 `json:"nonce"`
	}
	if err := s.client.Call(ctx, "nara_getNonce", map[string]types.Address{"address": s.from}, &nonce); err != nil {
		return nil, fmt.Errorf("fetch nonce: %w", err)
	}

	if value == nil {
		value = new(big.Int)
	}
	tx := &Tx{
		From:     s.from,
		Contract: s.contract,
		Nonce:    nonce.Nonce,
		Method:   method,
		Args:     args,
		Value:    value,
		GasLimit: gas,
	}

	if err := s.client.Simulate(ctx, tx); err != nil {
		return nil, classify(method, err)
	}
	return tx, nil
}

// Authorize requests the user's signature. A declined request comes back
// as a silent errs.CodeUserDeclined.
func (s *Submitter) Authorize(ctx context.Context, tx *Tx) (*SignedTx, error) {
	pubKey, sig, err := s.auth.Authorize(ctx, tx)
	if err != nil {
		if errors.Is(err, ErrDeclined) {
			return nil, errs.Wrap(errs.CodeUserDeclined, tx.Method, err)
		}
		return nil, fmt.Errorf("authorize: %w", err)
	}
	return NewSignedTx(tx, pubKey, sig), nil
}

// Send submits the signed transaction to the network.
func (s *Submitter) Send(ctx context.Context, signed *SignedTx) (types.TxRef, error) {
	ref, err := s.client.SendTransaction(ctx, signed)
	if err != nil {
		return types.TxRef{}, classify(signed.Tx.Method, err)
	}
	log.Submit.Info().
		Str("method", signed.Tx.Method).
		Str("ref", ref.String()).
		Msg("transaction submitted")
	return ref, nil
}

// Await polls the receipt until the transaction confirms, fails, or ctx
// is cancelled. A failed receipt is classified from its revert reason.
func (s *Submitter) Await(ctx context.Context, method string, ref types.TxRef) error {
	ticker := time.NewTicker(s.receiptEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			receipt, err := s.client.Receipt(ctx, ref)
			if err != nil {
				// Receipt reads ride the rotating read path; a
				// transient failure here just means poll again.
				if errs.Is(err, errs.CodeTransientNetwork) {
					continue
				}
				return err
			}
			switch {
			case receipt.Confirmed:
				return nil
			case receipt.Failed:
				return classifyReason(method, receipt.Reason)
			}
		}
	}
}

// classify maps a ledger rejection to the error taxonomy. Transport
// failures keep their transient classification.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errs.Is(err, errs.CodeTransientNetwork) {
		return err
	}
	var rpcErr *ledger.RPCError
	if errors.As(err, &rpcErr) {
		return errs.Wrap(classifyReasonCode(rpcErr.Message), op, err)
	}
	return errs.Wrap(errs.CodeUnknownRevert, op, err)
}

func classifyReason(op, reason string) error {
	return errs.New(classifyReasonCode(reason), op)
}

// classifyReasonCode maps a raw revert reason onto the taxonomy. The raw
// text never reaches the user.
func classifyReasonCode(reason string) errs.Code {
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "insufficient"):
		return errs.CodeInsufficientFunds
	case strings.Contains(r, "not eligible"), strings.Contains(r, "ineligible"):
		return errs.CodeNotEligible
	case strings.Contains(r, "cap"):
		return errs.CodeCapacityExceeded
	case strings.Contains(r, "nothing pending"), strings.Contains(r, "no pending"):
		return errs.CodeNothingPending
	case strings.Contains(r, "nothing claimable"), strings.Contains(r, "no claimable"):
		return errs.CodeNothingClaimable
	default:
		return errs.CodeUnknownRevert
	}
}
