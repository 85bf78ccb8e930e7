package history

import (
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/NARAProtocol/nara-simple-ui/config"
	"github.com/NARAProtocol/nara-simple-ui/internal/storage"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

func testAddr(t *testing.T) types.Address {
	t.Helper()
	addr, err := types.ParseAddress("0x00112233445566778899aabbccddeeff00112233")
	if err != nil {
		t.Fatal(err)
	}
	return addr
}

func TestClaimsEmptyForNewAddress(t *testing.T) {
	s := NewStore(storage.NewMemory(), "testnet:0xabc")
	records, err := s.Claims(testAddr(t))
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want none", len(records))
	}
}

func TestAppendClaimNewestFirst(t *testing.T) {
	s := NewStore(storage.NewMemory(), "testnet:0xabc")
	addr := testAddr(t)

	for i := 1; i <= 3; i++ {
		rec := ClaimRecord{
			Epochs:    []uint64{uint64(i)},
			Amount:    fmt.Sprintf("%d000", i),
			Timestamp: time.Now().UTC(),
		}
		if err := s.AppendClaim(addr, rec); err != nil {
			t.Fatalf("AppendClaim: %v", err)
		}
	}

	records, err := s.Claims(addr)
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].Epochs[0] != 3 || records[2].Epochs[0] != 1 {
		t.Errorf("records not newest first: %+v", records)
	}
}

func TestClaimHistoryBounded(t *testing.T) {
	s := NewStore(storage.NewMemory(), "testnet:0xabc")
	addr := testAddr(t)

	for i := 0; i < config.MaxClaimHistory+10; i++ {
		rec := ClaimRecord{Epochs: []uint64{uint64(i)}, Amount: "1"}
		if err := s.AppendClaim(addr, rec); err != nil {
			t.Fatalf("AppendClaim: %v", err)
		}
	}

	records, err := s.Claims(addr)
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if len(records) != config.MaxClaimHistory {
		t.Fatalf("got %d records, want %d", len(records), config.MaxClaimHistory)
	}
	// The oldest entries fell off the end.
	if records[0].Epochs[0] != uint64(config.MaxClaimHistory+9) {
		t.Errorf("newest record epoch = %d", records[0].Epochs[0])
	}
}

func TestEnsureLedgerInvalidatesOnSwitch(t *testing.T) {
	db := storage.NewMemory()
	addr := testAddr(t)

	s1 := NewStore(db, "testnet:0xabc")
	if err := s1.EnsureLedger(); err != nil {
		t.Fatalf("EnsureLedger: %v", err)
	}
	if err := s1.AppendClaim(addr, ClaimRecord{Epochs: []uint64{1}, Amount: "10"}); err != nil {
		t.Fatalf("AppendClaim: %v", err)
	}
	if err := s1.MarkFaucetClaim(addr, time.Now()); err != nil {
		t.Fatalf("MarkFaucetClaim: %v", err)
	}

	// Same identity again: records survive.
	if err := NewStore(db, "testnet:0xabc").EnsureLedger(); err != nil {
		t.Fatalf("EnsureLedger: %v", err)
	}
	records, _ := s1.Claims(addr)
	if len(records) != 1 {
		t.Fatalf("records wiped on identical ledger identity")
	}

	// New identity: everything from the old one goes.
	s2 := NewStore(db, "mainnet:0xdef")
	if err := s2.EnsureLedger(); err != nil {
		t.Fatalf("EnsureLedger: %v", err)
	}
	records, _ = s1.Claims(addr)
	if len(records) != 0 {
		t.Errorf("old ledger claims survived the switch: %+v", records)
	}
	last, err := s1.LastFaucetClaim(addr)
	if err != nil {
		t.Fatalf("LastFaucetClaim: %v", err)
	}
	if !last.IsZero() {
		t.Error("old ledger faucet record survived the switch")
	}
}

func TestFaucetCooldownRoundTrip(t *testing.T) {
	s := NewStore(storage.NewMemory(), "testnet:0xabc")
	addr := testAddr(t)

	last, err := s.LastFaucetClaim(addr)
	if err != nil {
		t.Fatalf("LastFaucetClaim: %v", err)
	}
	if !last.IsZero() {
		t.Fatal("expected zero time before first claim")
	}

	at := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	if err := s.MarkFaucetClaim(addr, at); err != nil {
		t.Fatalf("MarkFaucetClaim: %v", err)
	}
	last, err = s.LastFaucetClaim(addr)
	if err != nil {
		t.Fatalf("LastFaucetClaim: %v", err)
	}
	if !last.Equal(at) {
		t.Errorf("last = %v, want %v", last, at)
	}
}

func TestBonusWins(t *testing.T) {
	s := NewStore(storage.NewMemory(), "testnet:0xabc")
	addr := testAddr(t)

	if err := s.AddBonusWin(addr, BonusWin{Epoch: 7, Amount: "500"}); err != nil {
		t.Fatalf("AddBonusWin: %v", err)
	}
	wins, err := s.BonusWins(addr)
	if err != nil {
		t.Fatalf("BonusWins: %v", err)
	}
	if len(wins) != 1 || wins[0].Epoch != 7 {
		t.Errorf("wins = %+v", wins)
	}
}

func TestAccountRecorder(t *testing.T) {
	s := NewStore(storage.NewMemory(), "testnet:0xabc")
	addr := testAddr(t)

	rec := s.ForAccount(addr)
	if err := rec.RecordClaim([]uint64{3, 4}, big.NewInt(2500), types.TxRef{0x11}); err != nil {
		t.Fatalf("RecordClaim: %v", err)
	}

	records, err := s.Claims(addr)
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Amount != "2500" || len(records[0].Epochs) != 2 {
		t.Errorf("record = %+v", records[0])
	}
}
