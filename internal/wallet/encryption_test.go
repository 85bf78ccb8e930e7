package wallet

import (
	"bytes"
	"testing"
)

// Low-cost parameters so the tests stay fast.
func testParams() EncryptionParams {
	return EncryptionParams{Memory: 64, Iterations: 1, Parallelism: 1}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	data := []byte("the seed material")
	password := []byte("correct horse")

	encrypted, err := Encrypt(data, password, testParams())
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Contains(encrypted, data) {
		t.Fatal("plaintext visible in ciphertext")
	}

	decrypted, err := Decrypt(encrypted, password)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(decrypted, data) {
		t.Errorf("decrypted %q, want %q", decrypted, data)
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret"), []byte("right"), testParams())
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt(encrypted, []byte("wrong")); err == nil {
		t.Error("expected decryption failure with wrong password")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret"), []byte("pw"), testParams())
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	encrypted[len(encrypted)-1] ^= 0x01
	if _, err := Decrypt(encrypted, []byte("pw")); err == nil {
		t.Error("expected failure on tampered ciphertext")
	}
}

func TestDecryptTooShort(t *testing.T) {
	if _, err := Decrypt([]byte("short"), []byte("pw")); err == nil {
		t.Error("expected failure on truncated input")
	}
}

func TestEncryptUniquePerCall(t *testing.T) {
	data := []byte("same input")
	a, err := Encrypt(data, []byte("pw"), testParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encrypt(data, []byte("pw"), testParams())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("salt/nonce reuse: identical ciphertexts for identical input")
	}
}
