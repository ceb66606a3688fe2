package resource

import (
	"context"
	"errors"
	"sync"
)

var ErrBadCredentials = errors.New("unknown car or bad secret")

// CredentialChecker — проверка (car_id, secret) для upload/download
// телеметрии. Реализация обязана сравнивать за постоянное время и быть
// привязанной к конкретной машине — никаких заглушек «всегда да».
type CredentialChecker interface {
	Check(ctx context.Context, carID, secret string) error
}

// UploadIndex хранит принадлежность загруженных файлов машинам.
type UploadIndex interface {
	Save(ctx context.Context, carID, filename string) error
	Owned(ctx context.Context, carID, filename string) (bool, error)
}

// Registration — запись о зарегистрированном в ledger файле.
type Registration struct {
	OwnerAddress string `json:"owner_address"`
	ClientID     string `json:"client_id"`
	Filename     string `json:"filename"`
	Version      uint   `json:"version"`
	Digest       string `json:"digest"`
	TxHash       string `json:"tx_hash"`
}

// FileRegistry — локальный учёт регистраций (истина остаётся в ledger).
type FileRegistry interface {
	SaveRegistration(ctx context.Context, rec Registration) error
}

/* ───── in-memory реализации (режим без БД) ───── */

type memUploads struct {
	mu    sync.Mutex
	owned map[string]string // filename → carID
}

func NewMemUploads() UploadIndex {
	return &memUploads{owned: make(map[string]string)}
}

func (m *memUploads) Save(_ context.Context, carID, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owned[filename] = carID
	return nil
}

func (m *memUploads) Owned(_ context.Context, carID, filename string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owned[filename] == carID, nil
}

type memRegistry struct {
	mu   sync.Mutex
	recs []Registration
}

func NewMemRegistry() FileRegistry { return &memRegistry{} }

func (m *memRegistry) SaveRegistration(_ context.Context, rec Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}
