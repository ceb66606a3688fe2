package oracle

import (
	"context"
	"errors"
)

// ErrUnavailable — ledger недоступен (таймаут, сеть, 5xx шлюза).
// Отличается от отказа в доступе: клиенту имеет смысл повторить запрос.
var ErrUnavailable = errors.New("policy oracle unavailable")

// Client — контракт внешнего policy oracle (tamper-evident ledger).
// Ядро не дублирует его логику: восстановление подписанта из подписи,
// проверку прав на endpoint и отсечение повторно использованных nonce
// делает только ledger. Локального кэша решений нет — кэш вернул бы
// replay-окно.
type Client interface {
	// ValidateAccess — решение по тройке (nonce, signature, endpoint).
	// false без error — однозначный отказ.
	ValidateAccess(ctx context.Context, nonce, signature, endpoint string) (bool, error)

	// VerifyFileHash — совпадает ли digest с записанным в ledger для
	// (address, filename, version).
	VerifyFileHash(ctx context.Context, address, filename, digest string, version uint) (bool, error)

	// StoreFileHash — административная запись digest в ledger.
	// Возвращает хэш транзакции.
	StoreFileHash(ctx context.Context, address, filename, digest string, version uint) (string, error)
}
