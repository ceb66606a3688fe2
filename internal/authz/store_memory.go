package authz

import (
	"context"
	"sync"
	"time"

	"torq/internal/secrets"
)

type memCred struct {
	Credential
	secret string
}

// MemStore — хранилище issuer'а без БД. Те же гарантии, что у gorm-версии:
// constant-time секрет, атомарное сжигание кода под мьютексом.
type MemStore struct {
	mu    sync.Mutex
	creds map[string]memCred
	codes map[string]*Code
	used  map[string]bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		creds: make(map[string]memCred),
		codes: make(map[string]*Code),
		used:  make(map[string]bool),
	}
}

// Seed добавляет учётку (bootstrap / тесты).
func (m *MemStore) Seed(c Credential, clientSecret string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[c.ClientID] = memCred{Credential: c, secret: clientSecret}
}

func (m *MemStore) VerifyCredentials(_ context.Context, clientID, clientSecret string) (*Credential, error) {
	m.mu.Lock()
	mc, ok := m.creds[clientID]
	m.mu.Unlock()
	if !ok {
		secrets.VerifySecret("", clientSecret)
		return nil, ErrUnknownClient
	}
	if !secrets.VerifySecret(mc.secret, clientSecret) {
		return nil, ErrUnknownClient
	}
	cred := mc.Credential
	return &cred, nil
}

func (m *MemStore) SaveCode(_ context.Context, c Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cc := c
	m.codes[c.Code] = &cc
	return nil
}

func (m *MemStore) ConsumeCode(_ context.Context, code, clientID string, now time.Time) (*Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[code]
	if !ok || c.ClientID != clientID || m.used[code] || !c.ExpiresAt.After(now) {
		return nil, ErrCodeInvalid
	}
	m.used[code] = true
	cc := *c
	return &cc, nil
}

func (m *MemStore) TouchAuthorized(_ context.Context, clientID string) error {
	return nil // без БД фиксировать нечего
}
