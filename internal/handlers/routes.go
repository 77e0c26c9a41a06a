package handlers

import (
	"net/http"

	"absence-instances/internal/middleware"

	"go.uber.org/zap"
)

// NewMux registers the report routes. The health check stays unauthenticated.
func NewMux(h *APIHandler, reportUser, passwordHash string, log *zap.Logger) *http.ServeMux {
	logged := middleware.RequestLogger(log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", logged(h.Health))
	mux.HandleFunc("/api/absences", logged(middleware.RequireBasicAuth(h.GetAbsences, reportUser, passwordHash)))
	return mux
}
