// README: In-memory ride store; CAS semantics match the Postgres store.
package ride

import (
	"context"
	"sync"
	"time"

	"swiftcab/internal/types"
)

type MemoryStore struct {
	mu     sync.RWMutex
	rides  map[types.ID]*Ride
	events []Event
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rides: make(map[types.ID]*Ride)}
}

func (m *MemoryStore) Create(_ context.Context, r *Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rides[r.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int, captainID *types.ID, reason *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return false, ErrNotFound
	}
	if r.Status != from || r.StatusVersion != version {
		return false, nil
	}
	r.Status = to
	r.StatusVersion++
	if captainID != nil {
		cp := *captainID
		r.CaptainID = &cp
	}
	if reason != nil {
		cp := *reason
		r.CancelReason = &cp
	}
	now := time.Now()
	switch to {
	case StatusAccepted:
		r.AcceptedAt = &now
	case StatusStarted:
		r.StartedAt = &now
	case StatusCompleted:
		r.CompletedAt = &now
	case StatusCancelled, StatusRejected:
		r.CancelledAt = &now
	}
	return true, nil
}

func (m *MemoryStore) FindActiveByCaptain(_ context.Context, captainID types.ID) (*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.CaptainID != nil && *r.CaptainID == captainID &&
			(r.Status == StatusAccepted || r.Status == StatusStarted) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListByRider(_ context.Context, riderID types.ID) ([]*Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Ride
	for _, r := range m.rides {
		if r.RiderID == riderID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) AppendEvent(_ context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *e
	cp.ID = m.nextID
	m.events = append(m.events, cp)
	return nil
}

// Events returns a snapshot of the audit log, for tests.
func (m *MemoryStore) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
