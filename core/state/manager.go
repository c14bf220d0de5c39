package state

import (
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"degenerus/storage"
)

// Manager is the durable ledger shared by every engine. All reads and writes
// go through an in-memory overlay: a public operation either Commits every
// write it made or Discards all of them, so no partial state is ever
// observable between invocations.
type Manager struct {
	db      storage.Database
	writes  map[string][]byte
	deletes map[string]struct{}
}

// NewManager wraps a raw key-value database.
func NewManager(db storage.Database) *Manager {
	return &Manager{
		db:      db,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

// Commit flushes the overlay to the underlying database.
func (m *Manager) Commit() error {
	for key := range m.deletes {
		if err := m.db.Delete([]byte(key)); err != nil {
			return fmt.Errorf("state commit: %w", err)
		}
	}
	for key, value := range m.writes {
		if err := m.db.Put([]byte(key), value); err != nil {
			return fmt.Errorf("state commit: %w", err)
		}
	}
	m.reset()
	return nil
}

// Discard drops every pending write.
func (m *Manager) Discard() {
	m.reset()
}

func (m *Manager) reset() {
	m.writes = make(map[string][]byte)
	m.deletes = make(map[string]struct{})
}

func (m *Manager) get(key []byte) ([]byte, error) {
	if value, ok := m.writes[string(key)]; ok {
		out := make([]byte, len(value))
		copy(out, value)
		return out, nil
	}
	if _, ok := m.deletes[string(key)]; ok {
		return nil, storage.ErrNotFound
	}
	return m.db.Get(key)
}

func (m *Manager) put(key, value []byte) {
	delete(m.deletes, string(key))
	buf := make([]byte, len(value))
	copy(buf, value)
	m.writes[string(key)] = buf
}

func (m *Manager) delete(key []byte) {
	delete(m.writes, string(key))
	m.deletes[string(key)] = struct{}{}
}

// getRLP decodes the record at key into out. Returns (false, nil) when the
// key is absent.
func (m *Manager) getRLP(key []byte, out interface{}) (bool, error) {
	raw, err := m.get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, fmt.Errorf("state decode: %w", err)
	}
	return true, nil
}

func (m *Manager) putRLP(key []byte, value interface{}) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state encode: %w", err)
	}
	m.put(key, raw)
	return nil
}

// storageKey hashes prefix‖id into the fixed-width ledger key space.
func storageKey(prefix string, id []byte) []byte {
	buf := make([]byte, len(prefix)+len(id))
	copy(buf, prefix)
	copy(buf[len(prefix):], id)
	return ethcrypto.Keccak256(buf)
}
