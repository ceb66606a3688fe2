package resource

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"torq/internal/logs"
	"torq/internal/models"
	"torq/internal/oracle"
)

type registerFileRequest struct {
	ClientID string `json:"client_id"`
	Filename string `json:"filename"`
	Version  uint   `json:"version"`
	Address  string `json:"address"` // ledger-адрес владельца
}

// POST /admin/v1/files/register — административная регистрация хэша:
// считаем digest файла на диске, пишем его в ledger и фиксируем запись
// локально. Не горячий путь, за AdminAuth.
func (h *Handler) RegisterFileHash(w http.ResponseWriter, r *http.Request) {
	var req registerFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.ClientID == "" || req.Filename == "" || req.Address == "" {
		models.WriteError(w, http.StatusBadRequest, models.CodeInternal, "missing parameters")
		return
	}
	if req.Version == 0 {
		req.Version = 1
	}
	if !safeName(req.ClientID) || !safeName(req.Filename) {
		models.WriteError(w, http.StatusNotFound, models.CodeNotFound, "file not found")
		return
	}

	path := filepath.Join(h.filesRoot, req.ClientID, req.Filename)
	if _, err := os.Stat(path); err != nil {
		models.WriteError(w, http.StatusNotFound, models.CodeNotFound, "file not found")
		return
	}

	digest, err := digestFile(path)
	if err != nil {
		logs.Logger.Errorf("register digest %s: %v", path, err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
		return
	}

	txHash, err := h.oc.StoreFileHash(r.Context(), req.Address, req.Filename, digest, req.Version)
	if err != nil {
		if errors.Is(err, oracle.ErrUnavailable) {
			models.WriteError(w, http.StatusServiceUnavailable, models.CodePolicyUnavailable, "policy ledger unavailable, retry later")
			return
		}
		logs.Logger.Errorf("store file hash %s: %v", req.Filename, err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
		return
	}

	rec := Registration{
		OwnerAddress: req.Address,
		ClientID:     req.ClientID,
		Filename:     req.Filename,
		Version:      req.Version,
		Digest:       digest,
		TxHash:       txHash,
	}
	if err := h.registry.SaveRegistration(r.Context(), rec); err != nil {
		// ledger уже принял запись — локальный сбой учёта не повод отдавать 5xx
		logs.Logger.Warnf("save registration %s: %v", req.Filename, err)
	}

	logs.Logger.Infof("file hash registered file=%s version=%d digest=%s tx=%s",
		req.Filename, req.Version, digest, txHash)
	models.WriteJSON(w, http.StatusCreated, rec)
}
