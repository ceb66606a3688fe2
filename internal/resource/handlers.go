package resource

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"torq/internal/logs"
	"torq/internal/models"
	"torq/internal/oracle"
	"torq/internal/secrets"
	"torq/internal/telemetry"
)

type Handler struct {
	ts        telemetry.Store
	oc        oracle.Client
	filesRoot string
	creds     CredentialChecker
	uploads   UploadIndex
	registry  FileRegistry
}

func NewHandler(ts telemetry.Store, oc oracle.Client, filesRoot string,
	creds CredentialChecker, uploads UploadIndex, registry FileRegistry) *Handler {
	return &Handler{
		ts:        ts,
		oc:        oc,
		filesRoot: filesRoot,
		creds:     creds,
		uploads:   uploads,
		registry:  registry,
	}
}

// GET /get-nonce — свежий challenge. Состояние не храним: потреблён nonce
// или нет, знает только ledger.
func (h *Handler) GetNonce(w http.ResponseWriter, _ *http.Request) {
	models.WriteJSON(w, http.StatusOK, map[string]string{"nonce": secrets.NewNonce()})
}

// GET /car/v1/telemetry/{clientId} — за bearer- и signature-guard'ами.
func (h *Handler) Telemetry(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientId"]
	snap, err := h.ts.Get(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, telemetry.ErrNoData) {
			models.WriteError(w, http.StatusNotFound, models.CodeNotFound, "no data available for this client")
			return
		}
		logs.Logger.Errorf("telemetry get %s: %v", clientID, err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
		return
	}
	models.WriteJSON(w, http.StatusOK, snap)
}

// GET /car/v1/files/{clientId}/{filename} — выдача файла с проверкой
// целостности по ledger. Digest считается первым проходом по диску,
// сверяется с ledger, и только после этого байты уходят клиенту.
// X-File-Hash и X-File-Version ставятся и при отказе integrity_mismatch:
// клиент может зафиксировать расхождение без повторной загрузки.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clientID, filename := vars["clientId"], vars["filename"]
	if !safeName(clientID) || !safeName(filename) {
		models.WriteError(w, http.StatusNotFound, models.CodeNotFound, "file not found")
		return
	}

	version := uint(1)
	if v := r.Header.Get("X-Version"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			models.WriteError(w, http.StatusBadRequest, models.CodeNotFound, "bad version")
			return
		}
		version = uint(n)
	}
	address := r.Header.Get("X-Client-Address")
	if address == "" {
		models.WriteError(w, http.StatusBadRequest, models.CodeAccessDenied, "missing client address")
		return
	}

	path := filepath.Join(h.filesRoot, clientID, filename)
	if _, err := os.Stat(path); err != nil {
		models.WriteError(w, http.StatusNotFound, models.CodeNotFound, "file not found")
		return
	}

	digest, err := digestFile(path)
	if err != nil {
		logs.Logger.Errorf("digest %s: %v", path, err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
		return
	}

	// метаданные ставим до вердикта — они нужны клиенту в обоих исходах
	w.Header().Set("X-File-Hash", digest)
	w.Header().Set("X-File-Version", strconv.FormatUint(uint64(version), 10))

	ok, err := h.oc.VerifyFileHash(r.Context(), address, filename, digest, version)
	if err != nil {
		if errors.Is(err, oracle.ErrUnavailable) {
			models.WriteError(w, http.StatusServiceUnavailable, models.CodePolicyUnavailable, "policy ledger unavailable, retry later")
			return
		}
		logs.Logger.Errorf("verify file hash %s: %v", filename, err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
		return
	}
	if !ok {
		logs.Logger.Warnf("integrity mismatch file=%s version=%d digest=%s", filename, version, digest)
		models.WriteError(w, http.StatusBadRequest, models.CodeIntegrityMismatch,
			fmt.Sprintf("file digest %s does not match ledger record", digest))
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	http.ServeFile(w, r, path)
}

// safeName отсекает попытки выйти из каталога файлов.
func safeName(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	if strings.ContainsAny(s, "/\\") {
		return false
	}
	return filepath.Base(s) == s
}
