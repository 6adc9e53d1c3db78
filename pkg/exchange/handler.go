package exchange

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service}
}

func (h *Handler) ExportBills(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path, err := h.service.Export(r.Context())
	if err != nil {
		writeExchangeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"path": path}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ImportBills(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	result, err := h.service.Import(r.Context())
	if err != nil {
		writeExchangeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	response := struct {
		Imported int      `json:"imported"`
		Skipped  int      `json:"skipped"`
		Sources  []string `json:"sources"`
	}{result.Imported, result.Skipped, result.Sources}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) BackupBills(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path, err := h.service.Backup(r.Context())
	if err != nil {
		writeExchangeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]string{"path": path}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeExchangeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoImportFile):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrPermission):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		log.Errorf("exchange operation failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
