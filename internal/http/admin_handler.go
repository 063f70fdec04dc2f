package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"homesentry-data/internal/service"
)

// AdminHandler owns retention and storage management. Everything here
// requires the write tier; cleanup deletes data.
type AdminHandler struct {
	admin  service.AdminService
	gate   *APIKeyGate
	logger *zap.Logger
}

func NewAdminHandler(admin service.AdminService, gate *APIKeyGate, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		gate:   gate,
		logger: logger,
	}
}

func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.gate.requireWrite(w, r) {
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/admin/") {
	case "retention":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.retention(w, r)
	case "cleanup":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.cleanup(w, r)
	case "stats":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.stats(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AdminHandler) retention(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.admin.RetentionSettings())
}

func (h *AdminHandler) cleanup(w http.ResponseWriter, r *http.Request) {
	res, err := h.admin.Cleanup(r.Context())
	if err != nil {
		h.logger.Error("Cleanup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	settings := h.admin.RetentionSettings()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"deleted":            res.Deleted,
		"total_deleted":      res.Total,
		"retention_settings": settings["retention_settings"],
	})
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.StorageStats(r.Context())
	if err != nil {
		h.logger.Error("StorageStats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
