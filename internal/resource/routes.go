package resource

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes — ресурсный контур.
//
//	/get-nonce                          — открытый, выдача challenge
//	/car/v1/telemetry/{clientId}        — bearer + подпись nonce
//	/car/v1/files/{clientId}/{filename} — bearer + подпись nonce
//	/uplink/upload-text, /uplink/download/{filename} — учётка машины
//	/admin/v1/files/register            — админский shared secret
func RegisterRoutes(r *mux.Router, h *Handler, tokenSecret []byte, adminSecret string) {
	r.HandleFunc("/get-nonce", h.GetNonce).Methods(http.MethodGet)

	guarded := r.PathPrefix("/car/v1").Subrouter()
	guarded.Use(RequireToken(tokenSecret), SignatureGuard(h.oc))
	guarded.HandleFunc("/telemetry/{clientId}", h.Telemetry).Methods(http.MethodGet)
	guarded.HandleFunc("/files/{clientId}/{filename}", h.ServeFile).Methods(http.MethodGet)

	// upload/download проверяют учётку машины сами (car_id + X-Car-Secret)
	uplink := r.PathPrefix("/uplink").Subrouter()
	uplink.HandleFunc("/upload-text", h.UploadText).Methods(http.MethodPost)
	uplink.HandleFunc("/download/{filename}", h.Download).Methods(http.MethodGet)

	admin := r.PathPrefix("/admin/v1").Subrouter()
	admin.Use(AdminAuth(adminSecret))
	admin.HandleFunc("/files/register", h.RegisterFileHash).Methods(http.MethodPost)
}
