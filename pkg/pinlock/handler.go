package pinlock

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

func (h *Handler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Verify(body.PIN)
	if err != nil {
		writePINError(w, err)
		return
	}

	response := struct {
		Token           string `json:"token"`
		DefaultPINInUse bool   `json:"defaultPinInUse"`
	}{result.Token, result.DefaultPINInUse}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ChangePIN(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Current string `json:"current"`
		New     string `json:"new"`
		Confirm string `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.ChangePIN(body.Current, body.New, body.Confirm); err != nil {
		writePINError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writePINError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLockedOut):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, ErrWrongPIN):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, ErrPINFormat), errors.Is(err, ErrPINMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("PIN operation failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
