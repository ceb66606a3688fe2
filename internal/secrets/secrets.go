package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// NewAuthCode — одноразовый authorization code: 32 случайных байта,
// base64url без паддинга (совместимо с форматом token_urlsafe).
func NewAuthCode() string {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		panic("secrets: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(raw[:])
}

// NewNonce — challenge для подписи клиентом: 32 байта, hex (64 символа).
// Состояние nonce сервер не хранит, replay отсекает ledger.
func NewNonce() string {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		panic("secrets: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(raw[:])
}

// VerifySecret — сравнение секретов за постоянное время. Хэшируем обе
// стороны перед сравнением, чтобы не зависеть от длины кандидата.
func VerifySecret(expected, candidate string) bool {
	eh := sha256.Sum256([]byte(expected))
	ch := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(eh[:], ch[:]) == 1
}
