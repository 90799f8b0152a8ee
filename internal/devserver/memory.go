package devserver

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ecoruta/portal/internal/core/ports"
)

// MemoryUsers is an in-process UserRepository.
type MemoryUsers struct {
	mu     sync.RWMutex
	byID   map[int64]ports.StoredUser
	nextID int64
}

var _ ports.UserRepository = (*MemoryUsers)(nil)

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byID: make(map[int64]ports.StoredUser)}
}

func (m *MemoryUsers) Create(_ context.Context, user *ports.StoredUser) (*ports.StoredUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTaken(user.Email, 0) {
		return nil, ports.ErrUserExists
	}
	m.nextID++
	u := *user
	u.ID = m.nextID
	m.byID[u.ID] = u
	return &u, nil
}

func (m *MemoryUsers) Update(_ context.Context, user *ports.StoredUser) (*ports.StoredUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[user.ID]; !ok {
		return nil, ports.ErrUserNotFound
	}
	if m.emailTaken(user.Email, user.ID) {
		return nil, ports.ErrUserExists
	}
	u := *user
	m.byID[u.ID] = u
	return &u, nil
}

func (m *MemoryUsers) FindByEmail(_ context.Context, email string) (*ports.StoredUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ports.ErrUserNotFound
}

func (m *MemoryUsers) FindByID(_ context.Context, id int64) (*ports.StoredUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, ports.ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryUsers) List(_ context.Context) ([]ports.StoredUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ports.StoredUser, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryUsers) emailTaken(email string, except int64) bool {
	for id, u := range m.byID {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// MemoryRevocations is an in-process RevocationList. Entries are dropped
// once the token they revoke has expired anyway.
type MemoryRevocations struct {
	mu      sync.Mutex
	entries map[string]int64
	now     func() time.Time
}

var _ ports.RevocationList = (*MemoryRevocations)(nil)

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{entries: make(map[string]int64), now: time.Now}
}

func (m *MemoryRevocations) Revoke(_ context.Context, tokenID string, until int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[tokenID] = until
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.entries[tokenID]
	if !ok {
		return false, nil
	}
	if until <= m.now().Unix() {
		delete(m.entries, tokenID)
		return false, nil
	}
	return true, nil
}
