package authz

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnknownClient = errors.New("unknown client or bad secret")
	ErrCodeInvalid   = errors.New("invalid or expired code")
)

// Credential — минимум, который нужен issuer'у от хранилища учёток.
type Credential struct {
	ClientID string
	VIN      string
	Model    string
	Year     int
	Scopes   string // space-separated
}

// Code — авторизационный код в рамках issuer'а.
type Code struct {
	Code      string
	ClientID  string
	VIN       string
	Scope     string
	ExpiresAt time.Time
	IPAddress string
}

// Store — контракт issuer'а. Реализации: in-memory (без БД) и адаптер
// поверх repo.CarStore/repo.CodeStore (server/adapters.go).
type Store interface {
	// VerifyCredentials — обязана сравнивать секрет за постоянное время
	// и не различать «нет клиента» и «не тот секрет».
	VerifyCredentials(ctx context.Context, clientID, clientSecret string) (*Credential, error)

	SaveCode(ctx context.Context, c Code) error

	// ConsumeCode — атомарный unused→used; второй вызов на том же коде
	// обязан вернуть ErrCodeInvalid даже при гонке.
	ConsumeCode(ctx context.Context, code, clientID string, now time.Time) (*Code, error)

	TouchAuthorized(ctx context.Context, clientID string) error
}
