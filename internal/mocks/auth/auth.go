package auth

// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sort"
	"sync"

	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Storage       = (*MemoryStorage)(nil)
	_ ports.Navigator     = (*RecordingNavigator)(nil)
	_ ports.LoginProvider = (*StubLoginProvider)(nil)
)

// MemoryStorage is an in-memory client storage for unit tests. Safe for concurrent use.
type MemoryStorage struct {
	mu      sync.Mutex
	data    map[string]string
	GetErr  error
	Deletes int
}

// NewMemoryStorage creates a MemoryStorage seeded with the given pairs.
func NewMemoryStorage(seed map[string]string) *MemoryStorage {
	data := make(map[string]string, len(seed))
	for k, v := range seed {
		data[k] = v
	}
	return &MemoryStorage{data: data}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New("storage key cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStorage) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RecordingNavigator tracks the current location and every effective navigation.
type RecordingNavigator struct {
	mu       sync.Mutex
	location string
	history  []string
}

// NewRecordingNavigator starts at location.
func NewRecordingNavigator(location string) *RecordingNavigator {
	return &RecordingNavigator{location: location}
}

func (n *RecordingNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *RecordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if path == n.location {
		return
	}
	n.location = path
	n.history = append(n.history, path)
}

// History returns the effective navigations in order.
func (n *RecordingNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}

// StubLoginProvider returns fixed credentials for any email/password.
type StubLoginProvider struct {
	Token       string
	RawIdentity domainauth.RawIdentity
	Err         error
}

func (s *StubLoginProvider) Authenticate(_ context.Context, _ ports.LoginInput) (ports.LoginResult, error) {
	if s.Err != nil {
		return ports.LoginResult{}, s.Err
	}
	return ports.LoginResult{Token: s.Token, RawIdentity: s.RawIdentity}, nil
}
