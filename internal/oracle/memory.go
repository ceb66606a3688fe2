package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// MemClient — локальная замена ledger для запуска без блокчейна и для
// тестов. Поведение повторяет контракт: одноразовые nonce, проверка hash
// по (address, filename, version). «Подпись» здесь не криптографическая —
// допускается любой клиент, чей address разрешён для endpoint.
type MemClient struct {
	mu         sync.Mutex
	usedNonces map[string]struct{}
	access     map[string]map[string]struct{} // address → endpoints
	hashes     map[string]string              // address|filename|version → digest
	down       bool
}

func NewMemClient() *MemClient {
	return &MemClient{
		usedNonces: make(map[string]struct{}),
		access:     make(map[string]map[string]struct{}),
		hashes:     make(map[string]string),
	}
}

// Allow открывает address доступ к endpoint.
func (m *MemClient) Allow(address, endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.access[address] == nil {
		m.access[address] = make(map[string]struct{})
	}
	m.access[address][endpoint] = struct{}{}
}

// SetDown имитирует недоступность ledger.
func (m *MemClient) SetDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

// SignerOf — детерминированная «подпись» mem-режима: первые 20 байт
// sha256(signature) как псевдо-address.
func SignerOf(signature string) string {
	h := sha256.Sum256([]byte(signature))
	return "0x" + hex.EncodeToString(h[:20])
}

func (m *MemClient) ValidateAccess(_ context.Context, nonce, signature, endpoint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return false, ErrUnavailable
	}
	if nonce == "" || signature == "" {
		return false, nil
	}
	if _, used := m.usedNonces[nonce]; used {
		return false, nil
	}
	eps, ok := m.access[SignerOf(signature)]
	if !ok {
		return false, nil
	}
	if _, ok := eps[endpoint]; !ok {
		return false, nil
	}
	// nonce сгорает только на успешной проверке
	m.usedNonces[nonce] = struct{}{}
	return true, nil
}

func (m *MemClient) VerifyFileHash(_ context.Context, address, filename, digest string, version uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return false, ErrUnavailable
	}
	want, ok := m.hashes[hashKey(address, filename, version)]
	return ok && want == digest, nil
}

func (m *MemClient) StoreFileHash(_ context.Context, address, filename, digest string, version uint) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return "", ErrUnavailable
	}
	m.hashes[hashKey(address, filename, version)] = digest
	h := sha256.Sum256([]byte(hashKey(address, filename, version) + digest))
	return "0x" + hex.EncodeToString(h[:]), nil
}

func hashKey(address, filename string, version uint) string {
	return fmt.Sprintf("%s|%s|%d", address, filename, version)
}
