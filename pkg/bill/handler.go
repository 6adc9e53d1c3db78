package bill

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type BillDTO struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Due       string  `json:"due"`
	Paid      bool    `json:"paid"`
	Category  string  `json:"category"`
	Frequency string  `json:"frequency"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	bills := h.service.List(r.Context())
	dtos := make([]BillDTO, 0, len(bills))
	for _, b := range bills {
		dtos = append(dtos, BillToDTO(b))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) AddBill(w http.ResponseWriter, r *http.Request) {
	log.Debug("Adding new bill")
	w.Header().Set("Content-Type", "application/json")

	var dto BillDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Add(r.Context(), dtoToDraft(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(BillToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	var dto BillDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.Edit(r.Context(), id, dtoToDraft(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(BillToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TogglePaid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	toggled, successor, err := h.service.TogglePaid(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := struct {
		Bill      BillDTO  `json:"bill"`
		Successor *BillDTO `json:"successor,omitempty"`
	}{Bill: BillToDTO(toggled)}
	if successor != nil {
		dto := BillToDTO(*successor)
		response.Successor = &dto
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "Bill not found", http.StatusNotFound)
	case errors.Is(err, ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func BillToDTO(b Bill) BillDTO {
	return BillDTO{
		ID:        b.ID,
		Name:      b.Name,
		Amount:    b.Amount,
		Due:       b.Due.String(),
		Paid:      b.Paid,
		Category:  string(b.Category),
		Frequency: string(b.Frequency),
	}
}

func dtoToDraft(dto BillDTO) Draft {
	return Draft{
		Name:      dto.Name,
		Amount:    dto.Amount,
		Due:       dto.Due,
		Category:  dto.Category,
		Frequency: dto.Frequency,
	}
}
