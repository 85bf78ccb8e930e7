// Package submit wraps the ledger's fire-and-forget write interface:
// pre-flight simulation, signature authorization, submission, and
// confirmation wait.
package submit

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/NARAProtocol/nara-simple-ui/config"
	"github.com/NARAProtocol/nara-simple-ui/pkg/crypto"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// Write methods exposed by the mining contract.
const (
	MethodRequestMine   = "requestMine"
	MethodFinalizeMines = "finalizeMines"
	MethodClaimBatch    = "claimBatch"
)

// Tx is an unsigned ledger write call.
type Tx struct {
	From     types.Address `json:"from"`
	Contract types.Address `json:"contract"`
	Nonce    uint64        `json:"nonce"`
	Method   string        `json:"method"`
	Args     []uint64      `json:"args"`
	Value    *big.Int      `json:"value"`
	GasLimit uint64        `json:"gas_limit"`
}

// SignedTx pairs a transaction with its authorization.
type SignedTx struct {
	Tx        *Tx    `json:"tx"`
	PubKey    string `json:"pubkey"`
	Signature string `json:"signature"`
}

// SigningHash returns the BLAKE3 hash the wallet signs: the canonical
// JSON encoding of the transaction. The same hash doubles as the local
// transaction reference.
func (tx *Tx) SigningHash() (types.Hash, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return types.Hash{}, fmt.Errorf("encode tx: %w", err)
	}
	return crypto.Hash(data), nil
}

// NewSignedTx assembles the wire form of an authorized transaction.
func NewSignedTx(tx *Tx, pubKey, signature []byte) *SignedTx {
	return &SignedTx{
		Tx:        tx,
		PubKey:    hex.EncodeToString(pubKey),
		Signature: hex.EncodeToString(signature),
	}
}

// GasLimit computes the resource budget for a write: base + perUnit×count,
// with distinct constants per method.
func GasLimit(method string, count int) (uint64, error) {
	if count < 0 {
		return 0, fmt.Errorf("negative unit count %d", count)
	}
	n := uint64(count)
	switch method {
	case MethodRequestMine:
		return config.GasBaseMine + config.GasPerMine*n, nil
	case MethodFinalizeMines:
		return config.GasBaseFinalize + config.GasPerFinalize*n, nil
	case MethodClaimBatch:
		return config.GasBaseClaim + config.GasPerClaim*n, nil
	default:
		return 0, fmt.Errorf("unknown method %q", method)
	}
}
