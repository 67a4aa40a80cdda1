// README: In-memory identity store for dev wiring and tests.
package account

import (
	"context"
	"sync"

	"swiftcab/internal/types"
)

type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[types.ID]*Account
	byEmail  map[string]types.ID
	byPhone  map[string]types.ID
	byConnID map[string]types.ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[types.ID]*Account),
		byEmail:  make(map[string]types.ID),
		byPhone:  make(map[string]types.ID),
		byConnID: make(map[string]types.ID),
	}
}

func (m *MemoryStore) Create(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[a.Email]; ok {
		return ErrDuplicateEmail
	}
	if _, ok := m.byPhone[a.Phone]; ok {
		return ErrDuplicatePhone
	}
	cp := *a
	m.byID[a.ID] = &cp
	m.byEmail[a.Email] = a.ID
	m.byPhone[a.Phone] = a.ID
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id types.ID) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) GetByEmail(_ context.Context, email string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *MemoryStore) GetByPhone(_ context.Context, phone string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byPhone[phone]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *MemoryStore) MarkVerified(_ context.Context, id types.ID, ch OTPChannel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	switch ch {
	case OTPEmail:
		a.EmailVerified = true
		a.EmailOTP = ""
	case OTPMobile:
		a.MobileVerified = true
		a.MobileOTP = ""
	}
	return nil
}

func (m *MemoryStore) SetConnection(_ context.Context, id types.ID, connectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	if a.ConnectionID != "" {
		delete(m.byConnID, a.ConnectionID)
	}
	a.ConnectionID = connectionID
	if connectionID != "" {
		m.byConnID[connectionID] = id
	}
	return nil
}

func (m *MemoryStore) ClearConnection(_ context.Context, connectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byConnID[connectionID]
	if !ok {
		return nil
	}
	delete(m.byConnID, connectionID)
	if a, ok := m.byID[id]; ok && a.ConnectionID == connectionID {
		a.ConnectionID = ""
	}
	return nil
}

func (m *MemoryStore) SetLocation(_ context.Context, id types.ID, p types.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.LiveLocation = p
	return nil
}
