package authz

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"torq/internal/logs"
	"torq/internal/models"
	"torq/internal/scopes"
	"torq/internal/secrets"
)

// один текст на все credential-ошибки, без различения причин
const credDetail = "invalid car credentials"

type Handler struct {
	store   Store
	signer  *Signer
	codeTTL time.Duration
}

func NewHandler(store Store, signer *Signer, codeTTL time.Duration) *Handler {
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	return &Handler{store: store, signer: signer, codeTTL: codeTTL}
}

// POST /authorize  {client_id, client_secret, scope}
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req AuthorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, models.CodeInvalidCredential, credDetail)
		return
	}

	cred, err := h.store.VerifyCredentials(r.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		h.credentialFailure(w, err)
		return
	}

	if err := scopes.Validate(req.Scope, cred.Scopes); err != nil {
		models.WriteError(w, http.StatusBadRequest, models.CodeInvalidScope, "invalid scope for this vehicle")
		return
	}

	code := Code{
		Code:      secrets.NewAuthCode(),
		ClientID:  cred.ClientID,
		VIN:       cred.VIN,
		Scope:     req.Scope,
		ExpiresAt: time.Now().UTC().Add(h.codeTTL),
		IPAddress: clientIP(r),
	}
	if err := h.store.SaveCode(r.Context(), code); err != nil {
		logs.Logger.Errorf("authorize: save code: %v", err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
		return
	}

	logs.Logger.Infof("auth code issued client_id=%s scope=%q ip=%s", cred.ClientID, req.Scope, code.IPAddress)
	models.WriteJSON(w, http.StatusOK, AuthorizeResponse{
		Code:      code.Code,
		ExpiresIn: int(h.codeTTL.Seconds()),
	})
}

// POST /token  (form: grant-совместимый обмен кода на токен)
func (h *Handler) Exchange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		models.WriteError(w, http.StatusBadRequest, models.CodeInvalidOrExpiredCode, "bad form")
		return
	}
	code := r.FormValue("code")
	clientID := r.FormValue("client_id")
	clientSecret := r.FormValue("client_secret")

	cred, err := h.store.VerifyCredentials(r.Context(), clientID, clientSecret)
	if err != nil {
		h.credentialFailure(w, err)
		return
	}

	consumed, err := h.store.ConsumeCode(r.Context(), code, clientID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrCodeInvalid) {
			models.WriteError(w, http.StatusBadRequest, models.CodeInvalidOrExpiredCode, "invalid or expired code")
			return
		}
		logs.Logger.Errorf("token: consume code: %v", err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
		return
	}

	if err := h.store.TouchAuthorized(r.Context(), clientID); err != nil {
		// не фатально для обмена, но след в логе нужен
		logs.Logger.Warnf("token: touch last_authorized: %v", err)
	}

	token, err := h.signer.Mint(cred.ClientID, cred.VIN, consumed.Scope)
	if err != nil {
		logs.Logger.Errorf("token: mint: %v", err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
		return
	}

	logs.Logger.Infof("access token minted client_id=%s vin=%s scope=%q", cred.ClientID, cred.VIN, consumed.Scope)
	models.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.signer.TTL().Seconds()),
		Scope:       consumed.Scope,
		VehicleInfo: VehicleInfo{VIN: cred.VIN, Model: cred.Model, Year: cred.Year},
	})
}

func (h *Handler) credentialFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnknownClient) {
		models.WriteError(w, http.StatusUnauthorized, models.CodeInvalidCredential, credDetail)
		return
	}
	logs.Logger.Errorf("credential lookup: %v", err)
	models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
