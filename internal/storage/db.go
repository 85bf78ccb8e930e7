// Package storage provides the key-value store backing locally persisted
// client state (claim history, bonus wins, faucet cooldowns).
package storage

import "errors"

// ErrNotFound is returned by Get when the key does not exist. Callers
// test for it with errors.Is.
var ErrNotFound = errors.New("storage: key not found")

// DB is the interface for key-value storage.
type DB interface {
	// Get returns the value for key, or an error wrapping ErrNotFound.
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix. The callback
	// receives copies of the key and value. Return a non-nil error from
	// fn to stop iteration early; the error is passed through. fn must
	// not mutate the store.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}
