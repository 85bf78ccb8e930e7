package wallet

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/NARAProtocol/nara-simple-ui/internal/submit"
	"github.com/NARAProtocol/nara-simple-ui/pkg/crypto"
)

const testMnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"

func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(testMnemonic, "")
	if err != nil {
		t.Fatal(err)
	}
	return seed
}

func TestKeystoreCreateLoad(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystore: %v", err)
	}
	seed := testSeed(t)

	addr, err := ks.Create("main", seed, []byte("pw"), testParams())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if addr.IsZero() {
		t.Fatal("created wallet has zero address")
	}

	loaded, err := ks.Load("main", []byte("pw"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(loaded, seed) {
		t.Error("loaded seed differs from stored seed")
	}

	if _, err := ks.Load("main", []byte("bad")); err == nil {
		t.Error("expected failure with wrong password")
	}
	if _, err := ks.Create("main", seed, []byte("pw"), testParams()); err == nil {
		t.Error("expected failure creating duplicate wallet")
	}
}

func TestKeystoreListDelete(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	seed := testSeed(t)

	if _, err := ks.Create("alpha", seed, []byte("pw"), testParams()); err != nil {
		t.Fatal(err)
	}
	if _, err := ks.Create("beta", seed, []byte("pw"), testParams()); err != nil {
		t.Fatal(err)
	}

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("listed %v, want 2 wallets", names)
	}

	if err := ks.Delete("alpha"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	names, _ = ks.List()
	if len(names) != 1 || names[0] != "beta" {
		t.Errorf("listed %v after delete, want [beta]", names)
	}
	if err := ks.Delete("alpha"); err == nil {
		t.Error("expected error deleting missing wallet")
	}
}

func TestKeystoreAccounts(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ks.Create("main", testSeed(t), []byte("pw"), testParams()); err != nil {
		t.Fatal(err)
	}

	accounts, err := ks.ListAccounts("main")
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Index != 0 {
		t.Fatalf("accounts = %+v, want one at index 0", accounts)
	}

	entry := AccountEntry{Index: 1, Name: "second", Address: "0x1111111111111111111111111111111111111111"}
	if err := ks.AddAccount("main", entry); err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	// Same entry again is a no-op.
	if err := ks.AddAccount("main", entry); err != nil {
		t.Fatalf("idempotent AddAccount: %v", err)
	}
	// Same index with a different address is a conflict.
	entry.Address = "0x2222222222222222222222222222222222222222"
	if err := ks.AddAccount("main", entry); err == nil {
		t.Error("expected conflict on index reuse")
	}

	accounts, _ = ks.ListAccounts("main")
	if len(accounts) != 2 {
		t.Errorf("have %d accounts, want 2", len(accounts))
	}
}

func TestUnlockAndAuthorize(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	created, err := ks.Create("main", testSeed(t), []byte("pw"), testParams())
	if err != nil {
		t.Fatal(err)
	}

	acct, err := Unlock(ks, "main", []byte("pw"), 0)
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	defer acct.Lock()
	if acct.Address != created {
		t.Fatalf("unlocked address %s, created %s", acct.Address, created)
	}

	tx := &submit.Tx{Method: submit.MethodRequestMine, Args: []uint64{2}, Value: big.NewInt(1), Nonce: 3}
	pub, sig, err := acct.Authorize(context.Background(), tx)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	hash, err := tx.SigningHash()
	if err != nil {
		t.Fatal(err)
	}
	if !crypto.VerifySignature(hash[:], sig, pub) {
		t.Error("signature does not verify against the signing hash")
	}
	if crypto.AddressFromPubKey(pub) != acct.Address {
		t.Error("signing pubkey does not match the account address")
	}
}

func TestAuthorizeDeclined(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ks.Create("main", testSeed(t), []byte("pw"), testParams()); err != nil {
		t.Fatal(err)
	}
	acct, err := Unlock(ks, "main", []byte("pw"), 0)
	if err != nil {
		t.Fatal(err)
	}
	acct.SetApproval(func(context.Context, *submit.Tx) bool { return false })

	_, _, err = acct.Authorize(context.Background(), &submit.Tx{Method: submit.MethodClaimBatch, Value: big.NewInt(0)})
	if err != submit.ErrDeclined {
		t.Errorf("err = %v, want ErrDeclined", err)
	}
}

func TestUnlockWrongPassword(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ks.Create("main", testSeed(t), []byte("pw"), testParams()); err != nil {
		t.Fatal(err)
	}
	if _, err := Unlock(ks, "main", []byte("nope"), 0); err == nil {
		t.Error("expected unlock failure with wrong password")
	}
}
