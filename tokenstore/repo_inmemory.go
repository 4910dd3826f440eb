package tokenstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-session-gateway/internal/errors"
)

// InMemoryRepo is an in-memory implementation of Repo. Records are swapped
// wholesale under the write lock, which gives the atomic replace guarantee.
type InMemoryRepo struct {
	mu        sync.RWMutex
	records   map[string]TokenRecord
	keySecret string
}

// NewInMemoryRepo creates a new in-memory token store. keySecret keys the
// session-ID hashing and may be empty.
func NewInMemoryRepo(keySecret string) *InMemoryRepo {
	return &InMemoryRepo{
		records:   make(map[string]TokenRecord),
		keySecret: keySecret,
	}
}

func (r *InMemoryRepo) Get(_ context.Context, sessionID string) (TokenRecord, error) {
	if sessionID == "" {
		return TokenRecord{}, errors.ErrSessionNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[storeKey(r.keySecret, sessionID)]
	if !ok {
		return TokenRecord{}, errors.ErrSessionNotFound
	}
	return record, nil
}

// Put replaces the current record for the session. Replace, not merge.
func (r *InMemoryRepo) Put(_ context.Context, sessionID string, record TokenRecord) error {
	if sessionID == "" {
		return errors.ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[storeKey(r.keySecret, sessionID)] = record
	return nil
}

// Delete removes the record. Deleting an absent session is a no-op.
func (r *InMemoryRepo) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, storeKey(r.keySecret, sessionID))
	return nil
}

var _ Repo = (*InMemoryRepo)(nil)
