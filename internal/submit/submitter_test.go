package submit

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/NARAProtocol/nara-simple-ui/config"
	"github.com/NARAProtocol/nara-simple-ui/internal/ledger"
	"github.com/NARAProtocol/nara-simple-ui/pkg/errs"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// fakeLedger scripts the write path for tests.
type fakeLedger struct {
	nonce       uint64
	simulateErr error
	sendErr     error
	sent        []*SignedTx
	receipts    []*ledger.Receipt
	receiptIdx  int
}

func (f *fakeLedger) Call(_ context.Context, method string, _, result interface{}) error {
	if method == "nara_getNonce" {
		*(result.(*struct {
			Nonce uint64 `json:"nonce"`
		})) = struct {
			Nonce uint64 `json:"nonce"`
		}{Nonce: f.nonce}
	}
	return nil
}

func (f *fakeLedger) Simulate(_ context.Context, _ interface{}) error {
	return f.simulateErr
}

func (f *fakeLedger) SendTransaction(_ context.Context, payload interface{}) (types.TxRef, error) {
	if f.sendErr != nil {
		return types.TxRef{}, f.sendErr
	}
	f.sent = append(f.sent, payload.(*SignedTx))
	return types.TxRef{0xAB}, nil
}

func (f *fakeLedger) Receipt(_ context.Context, ref types.TxRef) (*ledger.Receipt, error) {
	if f.receiptIdx >= len(f.receipts) {
		return &ledger.Receipt{Ref: ref}, nil // still pending
	}
	r := f.receipts[f.receiptIdx]
	f.receiptIdx++
	return r, nil
}

// approveAll signs everything; declineAll rejects everything.
type approveAll struct{}

func (approveAll) Authorize(_ context.Context, tx *Tx) ([]byte, []byte, error) {
	return []byte{0x02, 0x01}, []byte{0x99}, nil
}

type declineAll struct{}

func (declineAll) Authorize(_ context.Context, _ *Tx) ([]byte, []byte, error) {
	return nil, nil, ErrDeclined
}

func testSubmitter(l Ledger, a Authorizer) *Submitter {
	from, _ := types.ParseAddress("0x00112233445566778899aabbccddeeff00112233")
	contract, _ := types.ParseAddress("0x1b2d77b7a1c2ef6b3827f8a932baf0ce4a6ed1f0")
	s := New(l, a, from, contract)
	s.receiptEvery = time.Millisecond
	return s
}

func TestGasLimit(t *testing.T) {
	tests := []struct {
		method string
		count  int
		want   uint64
	}{
		{MethodRequestMine, 3, config.GasBaseMine + 3*config.GasPerMine},
		{MethodFinalizeMines, 5, config.GasBaseFinalize + 5*config.GasPerFinalize},
		{MethodClaimBatch, 2, config.GasBaseClaim + 2*config.GasPerClaim},
		{MethodClaimBatch, 0, config.GasBaseClaim},
	}
	for _, tt := range tests {
		got, err := GasLimit(tt.method, tt.count)
		if err != nil {
			t.Fatalf("GasLimit(%s, %d): %v", tt.method, tt.count, err)
		}
		if got != tt.want {
			t.Errorf("GasLimit(%s, %d) = %d, want %d", tt.method, tt.count, got, tt.want)
		}
	}

	if _, err := GasLimit("burnEverything", 1); err == nil {
		t.Error("expected error for unknown method")
	}
	if _, err := GasLimit(MethodRequestMine, -1); err == nil {
		t.Error("expected error for negative count")
	}
}

func TestPrepare_BuildsAndSimulates(t *testing.T) {
	l := &fakeLedger{nonce: 7}
	s := testSubmitter(l, approveAll{})

	tx, err := s.Prepare(context.Background(), MethodRequestMine, []uint64{3}, 3, big.NewInt(6000))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if tx.Nonce != 7 {
		t.Errorf("Nonce = %d, want 7", tx.Nonce)
	}
	if tx.GasLimit != config.GasBaseMine+3*config.GasPerMine {
		t.Errorf("GasLimit = %d", tx.GasLimit)
	}
	if tx.Value.Int64() != 6000 {
		t.Errorf("Value = %s", tx.Value)
	}
}

func TestPrepare_SimulationRevertClassified(t *testing.T) {
	l := &fakeLedger{
		simulateErr: &ledger.RPCError{Code: -32000, Message: "execution reverted: epoch cap exceeded"},
	}
	s := testSubmitter(l, approveAll{})

	_, err := s.Prepare(context.Background(), MethodRequestMine, []uint64{1}, 1, nil)
	if !errs.Is(err, errs.CodeCapacityExceeded) {
		t.Errorf("err = %v, want capacity exceeded", err)
	}
}

func TestAuthorize_Declined(t *testing.T) {
	s := testSubmitter(&fakeLedger{}, declineAll{})
	tx := &Tx{Method: MethodFinalizeMines, Value: new(big.Int)}

	_, err := s.Authorize(context.Background(), tx)
	if !errs.Is(err, errs.CodeUserDeclined) {
		t.Fatalf("err = %v, want user declined", err)
	}
	if !errs.Silent(err) {
		t.Error("declined authorization must be silent")
	}
}

func TestSend_DeliversSignedTx(t *testing.T) {
	l := &fakeLedger{}
	s := testSubmitter(l, approveAll{})
	tx := &Tx{Method: MethodRequestMine, Value: new(big.Int)}

	signed, err := s.Authorize(context.Background(), tx)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	ref, err := s.Send(context.Background(), signed)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if ref.IsZero() {
		t.Error("expected non-zero tx ref")
	}
	if len(l.sent) != 1 {
		t.Fatalf("sent %d transactions, want 1", len(l.sent))
	}
	if l.sent[0].Signature == "" || l.sent[0].PubKey == "" {
		t.Error("signed tx must carry pubkey and signature")
	}
}

func TestAwait_Confirms(t *testing.T) {
	l := &fakeLedger{receipts: []*ledger.Receipt{
		{},                  // pending
		{Confirmed: true},   // then confirmed
	}}
	s := testSubmitter(l, approveAll{})

	if err := s.Await(context.Background(), MethodFinalizeMines, types.TxRef{0x01}); err != nil {
		t.Fatalf("Await: %v", err)
	}
}

func TestAwait_FailureClassified(t *testing.T) {
	l := &fakeLedger{receipts: []*ledger.Receipt{
		{Failed: true, Reason: "no pending mines"},
	}}
	s := testSubmitter(l, approveAll{})

	err := s.Await(context.Background(), MethodFinalizeMines, types.TxRef{0x01})
	if !errs.Is(err, errs.CodeNothingPending) {
		t.Errorf("err = %v, want nothing pending", err)
	}
}

func TestAwait_ContextCancelled(t *testing.T) {
	l := &fakeLedger{} // receipts stay pending forever
	s := testSubmitter(l, approveAll{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Await(ctx, MethodClaimBatch, types.TxRef{0x01}); err == nil {
		t.Error("expected error when context expires")
	}
}

func TestSigningHash_Deterministic(t *testing.T) {
	tx := &Tx{Method: MethodRequestMine, Args: []uint64{2}, Value: big.NewInt(1), Nonce: 9}
	a, err := tx.SigningHash()
	if err != nil {
		t.Fatalf("SigningHash: %v", err)
	}
	b, _ := tx.SigningHash()
	if a != b {
		t.Error("same tx must hash identically")
	}

	tx.Nonce = 10
	c, _ := tx.SigningHash()
	if a == c {
		t.Error("different nonce must change the hash")
	}
}

func TestClassifyReasonCode(t *testing.T) {
	tests := []struct {
		reason string
		want   errs.Code
	}{
		{"insufficient balance", errs.CodeInsufficientFunds},
		{"account not eligible", errs.CodeNotEligible},
		{"epoch cap exceeded", errs.CodeCapacityExceeded},
		{"no pending mines", errs.CodeNothingPending},
		{"nothing claimable", errs.CodeNothingClaimable},
		{"0xdeadbeef", errs.CodeUnknownRevert},
	}
	for _, tt := range tests {
		if got := classifyReasonCode(tt.reason); got != tt.want {
			t.Errorf("classifyReasonCode(%q) = %q, want %q", tt.reason, got, tt.want)
		}
	}
}
