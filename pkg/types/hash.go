// Package types defines core primitive types for the NARA mining client.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashSize is the length of a hash in bytes.
const HashSize = 32

// Hash represents a 256-bit hash value.
type Hash [HashSize]byte

// TxRef identifies a submitted ledger transaction.
type TxRef Hash

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the 0x-prefixed hex-encoded hash.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// MarshalJSON encodes the hash as a 0x-prefixed hex string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a hex string into a hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = Hash{}
		return nil
	}
	parsed, err := ParseHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash converts a hex string (with or without 0x prefix) to a Hash.
func ParseHash(s string) (Hash, error) {
	b, err := hex.DecodeString(strip0x(s))
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// String returns the 0x-prefixed hex-encoded transaction reference.
func (r TxRef) String() string {
	return Hash(r).String()
}

// IsZero returns true if the transaction reference is all zeros.
func (r TxRef) IsZero() bool {
	return Hash(r).IsZero()
}

// MarshalJSON encodes the reference as a 0x-prefixed hex string.
func (r TxRef) MarshalJSON() ([]byte, error) {
	return Hash(r).MarshalJSON()
}

// UnmarshalJSON decodes a hex string into a transaction reference.
func (r *TxRef) UnmarshalJSON(data []byte) error {
	return (*Hash)(r).UnmarshalJSON(data)
}

// ParseTxRef converts a hex string to a TxRef.
func ParseTxRef(s string) (TxRef, error) {
	h, err := ParseHash(s)
	return TxRef(h), err
}

func strip0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
