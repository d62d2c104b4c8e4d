// Package session holds in-flight receptions between user steps. Storage
// is process-local: a reception belongs to one user in one session, and
// discarding it is the only way back.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dagudeloc/almacen/internal/reception"
)

type Store struct {
	mu      sync.Mutex
	ledgers map[uuid.UUID]*reception.Ledger
}

func New() *Store {
	return &Store{ledgers: make(map[uuid.UUID]*reception.Ledger)}
}

func (s *Store) Put(id uuid.UUID, ledger *reception.Ledger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledgers[id] = ledger
}

func (s *Store) Get(id uuid.UUID) (*reception.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.ledgers[id]
	if !ok {
		return nil, reception.ErrNotFound
	}

	return ledger, nil
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ledgers, id)
}
