package authz

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenType = "car_access"
	KeyID     = "car-auth-key-1"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrMissingClaim   = errors.New("missing required claim")
)

// TokenClaims — полезная нагрузка access-токена автомобиля.
type TokenClaims struct {
	ClientID  string `json:"client_id"`
	VIN       string `json:"vin"`
	Scope     string `json:"scope"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Signer минтит access-токены. Ключ процесс-глобальный, read-only после
// старта, в логи не попадает.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{secret: secret, ttl: ttl}
}

func (s *Signer) TTL() time.Duration { return s.ttl }

// Mint — подписанный HS256-токен с kid в заголовке. Scope токена — это
// scope сожжённого кода, не весь набор credential.
func (s *Signer) Mint(clientID, vin, scope string) (string, error) {
	now := time.Now().UTC()
	claims := TokenClaims{
		ClientID:  clientID,
		VIN:       vin,
		Scope:     scope,
		TokenType: TokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = KeyID
	return tok.SignedString(s.secret)
}

// VerifyToken разбирает и валидирует bearer-токен: только HS256, живой
// exp, верный token_type и все обязательные claims. Валидность выводится
// заново при каждом вызове — серверного состояния у токена нет.
func VerifyToken(secret []byte, raw string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrTokenMalformed
	}
	if claims.TokenType != TokenType {
		return nil, ErrTokenMalformed
	}
	if claims.ClientID == "" || claims.VIN == "" || claims.Scope == "" {
		return nil, ErrMissingClaim
	}
	return claims, nil
}
