package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"rhel-assessment-service/internal/app"
)

// APIHandler serves the read-only REST view of sessions and the archive.
type APIHandler struct {
	service *app.AssessmentService
	logger  *zap.Logger
}

func NewAPIHandler(service *app.AssessmentService, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{service: service, logger: logger}
}

// Register mounts the handlers on r.
func (h *APIHandler) Register(r *mux.Router) {
	r.HandleFunc("/topics", h.topics).Methods(http.MethodGet)
	r.HandleFunc("/results", h.listResults).Methods(http.MethodGet)
	r.HandleFunc("/results", h.clearResults).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{id}", h.session).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/report", h.report).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/notification", h.notification).Methods(http.MethodGet)
}

func (h *APIHandler) topics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]string{"topics": h.service.Topics()})
}

func (h *APIHandler) listResults(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Results(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *APIHandler) clearResults(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearResults(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) session(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Snapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) report(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *APIHandler) notification(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Notification(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, n)
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	code, status := classify(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("api request failed", zap.Error(err))
	}
	h.writeJSON(w, status, errorPayload{Code: code, Message: err.Error()})
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("encode response", zap.Error(err))
	}
}
