package view

import (
	"encoding/json"
	"net/http"

	"github.com/billfold/billfold/internal/utils"
	"github.com/billfold/billfold/pkg/bill"
	"github.com/gorilla/mux"
)

type RowDTO struct {
	Kind     string        `json:"kind"`
	Month    string        `json:"month,omitempty"`
	Expanded *bool         `json:"expanded,omitempty"`
	Total    *float64      `json:"total,omitempty"`
	Bill     *bill.BillDTO `json:"bill,omitempty"`
	Status   string        `json:"status,omitempty"`
}

type ProjectionDTO struct {
	Rows      []RowDTO `json:"rows"`
	Remaining float64  `json:"remaining"`
}

type SummaryDTO struct {
	TotalPaid      float64 `json:"totalPaid"`
	TotalRemaining float64 `json:"totalRemaining"`
	Overdue        float64 `json:"overdue"`
}

type Handler struct {
	bills   bill.Service
	session *Session
	clock   utils.Clock
}

func NewHandler(bills bill.Service, session *Session, clock utils.Clock) *Handler {
	return &Handler{bills: bills, session: session, clock: clock}
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	query := r.URL.Query().Get("search")
	projection := Project(
		h.bills.List(r.Context()),
		query,
		h.session.SortKey(),
		h.session.Expanded(),
		h.clock.Now(),
	)

	dto := ProjectionDTO{Rows: make([]RowDTO, 0, len(projection.Rows)), Remaining: projection.Remaining}
	for _, row := range projection.Rows {
		dto.Rows = append(dto.Rows, rowToDTO(row))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SetSortKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	key, ok := ParseSortKey(body.Key)
	if !ok {
		http.Error(w, "sort key must be one of name, amount, due", http.StatusBadRequest)
		return
	}
	h.session.SetSortKey(key)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleMonth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	month := mux.Vars(r)["month"]

	expanded := h.session.ToggleMonth(month)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]bool{"expanded": expanded}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	summary := Summarize(h.bills.List(r.Context()), h.clock.Now())
	dto := SummaryDTO{
		TotalPaid:      summary.TotalPaid,
		TotalRemaining: summary.TotalRemaining,
		Overdue:        summary.Overdue,
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func rowToDTO(row Row) RowDTO {
	dto := RowDTO{Kind: string(row.Kind), Month: row.Month}
	if row.Kind == RowHeader {
		expanded := row.Expanded
		dto.Expanded = &expanded
		if expanded {
			total := row.Total
			dto.Total = &total
		}
		return dto
	}
	billDTO := bill.BillToDTO(*row.Bill)
	dto.Bill = &billDTO
	dto.Status = string(row.Status)
	return dto
}
