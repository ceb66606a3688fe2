package authz

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes — issuer живёт на корне: /authorize и /token,
// как их знает клиентская сторона.
func RegisterRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/authorize", h.Authorize).Methods(http.MethodPost)
	r.HandleFunc("/token", h.Exchange).Methods(http.MethodPost)
}
