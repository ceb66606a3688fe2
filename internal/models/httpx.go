package models

import (
	"encoding/json"
	"net/http"
)

// Машиночитаемые коды ошибок протокола. Коды стабильны: клиентская логика
// (retry, удаление скачанного файла и т.д.) завязана на них, не на текст.
const (
	CodeInvalidCredential    = "invalid_credential"
	CodeInvalidScope         = "invalid_scope"
	CodeInvalidOrExpiredCode = "invalid_or_expired_code"
	CodeTokenExpired         = "token_expired"
	CodeTokenMalformed       = "token_malformed"
	CodeMissingClaim         = "missing_required_claim"
	CodeAccessDenied         = "access_denied"
	CodeIntegrityMismatch    = "integrity_mismatch"
	CodeNotFound             = "not_found"
	CodePolicyUnavailable    = "policy_unavailable"
	CodeInternal             = "internal_error"
)

// Problem представляет ответ об ошибке в стиле RFC 7807.
type Problem struct {
	Type     string      `json:"type,omitempty"`   // URL с описанием типа проблемы (можно оставить пустым)
	Title    string      `json:"title"`            // краткое название
	Status   int         `json:"status"`           // HTTP код
	Detail   string      `json:"detail,omitempty"` // подробности
	Code     string      `json:"code,omitempty"`   // машиночитаемый код из таксономии выше
	Instance string      `json:"instance,omitempty"`
	Extra    interface{} `json:"extra,omitempty"` // произвольные поля (map/struct)
}

func WriteProblem(w http.ResponseWriter, status int, title, detail string, extra any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Title:  title,
		Status: status,
		Detail: detail,
		Extra:  extra,
	})
}

// WriteError — основной путь отдачи ошибок протокола: problem+json с кодом.
// Detail намеренно общий для credential-ошибок (никакой разницы между
// «неизвестный клиент» и «неверный секрет»).
func WriteError(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Code:   code,
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
