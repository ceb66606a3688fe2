package resource

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"torq/internal/authz"
	"torq/internal/logs"
	"torq/internal/models"
	"torq/internal/oracle"
)

type ctxKey string

const claimsKey ctxKey = "token-claims"

// RequireToken — bearer-guard: без валидного access-токена дальше
// не пропускаем. Различаем «истёк», «кривой» и «нет обязательного claim»,
// но подробности алгоритма/подписи наружу не отдаём.
func RequireToken(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const p = "Bearer "
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, p) {
				models.WriteError(w, http.StatusUnauthorized, models.CodeTokenMalformed, "missing or invalid Authorization header")
				return
			}
			claims, err := authz.VerifyToken(secret, strings.TrimPrefix(auth, p))
			if err != nil {
				code := models.CodeTokenMalformed
				switch {
				case errors.Is(err, authz.ErrTokenExpired):
					code = models.CodeTokenExpired
				case errors.Is(err, authz.ErrMissingClaim):
					code = models.CodeMissingClaim
				}
				models.WriteError(w, http.StatusUnauthorized, code, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom — claims провалидированного токена из контекста запроса.
func ClaimsFrom(r *http.Request) *authz.TokenClaims {
	c, _ := r.Context().Value(claimsKey).(*authz.TokenClaims)
	return c
}

// SignatureGuard — challenge-response поверх bearer-токена: клиент
// подписывает выданный nonce, решение принимает ledger по тройке
// (nonce, signature, endpoint). Никакого локального кэша решений —
// кэш открыл бы окно для replay. Отказ отдаётся одной непрозрачной
// ошибкой: чем он вызван (подписант, endpoint, повтор nonce) наружу
// не сообщаем.
func SignatureGuard(oc oracle.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nonce := r.Header.Get("X-Nonce")
			signature := r.Header.Get("X-Signature")
			if nonce == "" || signature == "" {
				models.WriteError(w, http.StatusBadRequest, models.CodeAccessDenied, "missing nonce or signature")
				return
			}

			ok, err := oc.ValidateAccess(r.Context(), nonce, signature, r.URL.Path)
			if err != nil {
				if errors.Is(err, oracle.ErrUnavailable) {
					models.WriteError(w, http.StatusServiceUnavailable, models.CodePolicyUnavailable, "policy ledger unavailable, retry later")
					return
				}
				logs.Logger.Errorf("validate access %s: %v", r.URL.Path, err)
				models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
				return
			}
			if !ok {
				models.WriteError(w, http.StatusForbidden, models.CodeAccessDenied, "access denied by policy")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuth — общий секрет для административного контура
// (Authorization: Bearer <secret>).
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const p = "Bearer "
			auth := r.Header.Get("Authorization")
			if secret == "" || !strings.HasPrefix(auth, p) || strings.TrimPrefix(auth, p) != secret {
				models.WriteError(w, http.StatusUnauthorized, models.CodeInvalidCredential, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
