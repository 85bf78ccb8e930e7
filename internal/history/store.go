// Package history persists advisory client-side records: claim history,
// bonus wins, and faucet cooldowns. Records are keyed by the composite
// (ledger identity, address), so switching to a different deployed
// ledger invalidates everything recorded against the old one. The
// remote ledger stays the source of truth; nothing here overrides a
// fresh read.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/NARAProtocol/nara-simple-ui/config"
	"github.com/NARAProtocol/nara-simple-ui/internal/log"
	"github.com/NARAProtocol/nara-simple-ui/internal/storage"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

const (
	metaLedgerKey = "meta/ledger"
	claimPrefix   = "claims/"
	bonusPrefix   = "bonus/"
	faucetPrefix  = "faucet/"
)

// ClaimRecord is one confirmed claim. Amounts are wei-scale base-10
// strings to keep the JSON encoding exact.
type ClaimRecord struct {
	Epochs    []uint64    `json:"epochs"`
	Amount    string      `json:"amount"`
	Timestamp time.Time   `json:"timestamp"`
	Ref       types.TxRef `json:"ref"`
}

// BonusWin records an out-of-band bonus award.
type BonusWin struct {
	Epoch     uint64    `json:"epoch"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Store reads and writes the persisted records for one ledger identity.
type Store struct {
	db       storage.DB
	ledgerID string
}

// NewStore binds a store to the active ledger identity
// (network + contract address).
func NewStore(db storage.DB, ledgerID string) *Store {
	return &Store{db: db, ledgerID: ledgerID}
}

// EnsureLedger wipes records left over from a different ledger identity
// and stamps the current one. Call once on startup.
func (s *Store) EnsureLedger() error {
	stored, err := s.db.Get([]byte(metaLedgerKey))
	if err == nil && string(stored) == s.ledgerID {
		return nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("read ledger stamp: %w", err)
	}

	var stale [][]byte
	for _, prefix := range []string{claimPrefix, bonusPrefix, faucetPrefix} {
		err := s.db.ForEach([]byte(prefix), func(key, _ []byte) error {
			k := make([]byte, len(key))
			copy(k, key)
			stale = append(stale, k)
			return nil
		})
		if err != nil {
			return fmt.Errorf("scan %s: %w", prefix, err)
		}
	}
	for _, key := range stale {
		if err := s.db.Delete(key); err != nil {
			return fmt.Errorf("wipe stale record: %w", err)
		}
	}
	if len(stale) > 0 {
		log.Store.Info().Int("records", len(stale)).
			Str("ledger", s.ledgerID).Msg("invalidated prior ledger history")
	}
	return s.db.Put([]byte(metaLedgerKey), []byte(s.ledgerID))
}

func (s *Store) key(prefix string, addr types.Address) []byte {
	return []byte(prefix + s.ledgerID + "/" + addr.String())
}

// AppendClaim prepends a claim record, keeping the newest
// config.MaxClaimHistory entries.
func (s *Store) AppendClaim(addr types.Address, rec ClaimRecord) error {
	records, err := s.Claims(addr)
	if err != nil {
		return err
	}
	records = append([]ClaimRecord{rec}, records...)
	if len(records) > config.MaxClaimHistory {
		records = records[:config.MaxClaimHistory]
	}
	return s.putJSON(s.key(claimPrefix, addr), records)
}

// Claims returns the stored claim records, newest first. An address with
// no history yields an empty slice.
func (s *Store) Claims(addr types.Address) ([]ClaimRecord, error) {
	var records []ClaimRecord
	if err := s.getJSON(s.key(claimPrefix, addr), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AddBonusWin appends a bonus award record.
func (s *Store) AddBonusWin(addr types.Address, win BonusWin) error {
	wins, err := s.BonusWins(addr)
	if err != nil {
		return err
	}
	wins = append([]BonusWin{win}, wins...)
	if len(wins) > config.MaxClaimHistory {
		wins = wins[:config.MaxClaimHistory]
	}
	return s.putJSON(s.key(bonusPrefix, addr), wins)
}

// BonusWins returns the stored bonus awards, newest first.
func (s *Store) BonusWins(addr types.Address) ([]BonusWin, error) {
	var wins []BonusWin
	if err := s.getJSON(s.key(bonusPrefix, addr), &wins); err != nil {
		return nil, err
	}
	return wins, nil
}

// MarkFaucetClaim records when the address last used the faucet.
func (s *Store) MarkFaucetClaim(addr types.Address, at time.Time) error {
	return s.db.Put(s.key(faucetPrefix, addr), []byte(at.UTC().Format(time.RFC3339)))
}

// LastFaucetClaim returns the address's last faucet use, or the zero
// time when it has never claimed.
func (s *Store) LastFaucetClaim(addr types.Address) (time.Time, error) {
	raw, err := s.db.Get(s.key(faucetPrefix, addr))
	if errors.Is(err, storage.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339, string(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt faucet record: %w", err)
	}
	return at, nil
}

func (s *Store) putJSON(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return s.db.Put(key, data)
}

// getJSON unmarshals the value at key, leaving v untouched when the key
// does not exist.
func (s *Store) getJSON(key []byte, v interface{}) error {
	data, err := s.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// AccountRecorder binds the store to one address, serving as the
// lifecycle controller's claim sink.
type AccountRecorder struct {
	store *Store
	addr  types.Address
}

// ForAccount returns the claim sink for one address.
func (s *Store) ForAccount(addr types.Address) *AccountRecorder {
	return &AccountRecorder{store: s, addr: addr}
}

// RecordClaim persists a confirmed claim batch.
func (r *AccountRecorder) RecordClaim(epochs []uint64, amount *big.Int, ref types.TxRef) error {
	return r.store.AppendClaim(r.addr, ClaimRecord{
		Epochs:    epochs,
		Amount:    amount.String(),
		Timestamp: time.Now().UTC(),
		Ref:       ref,
	})
}
