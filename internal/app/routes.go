package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// PIN
	r.HandleFunc("/api/auth/pin", deps.PINHandler.VerifyPIN).Methods("POST")
	r.HandleFunc("/api/auth/pin", deps.PINHandler.ChangePIN).Methods("PUT")

	// Bills
	r.HandleFunc("/api/bill", deps.BillHandler.ListBills).Methods("GET")
	r.HandleFunc("/api/bill", deps.BillHandler.AddBill).Methods("POST")
	r.HandleFunc("/api/bill/{id}", deps.BillHandler.UpdateBill).Methods("PUT")
	r.HandleFunc("/api/bill/{id}", deps.BillHandler.DeleteBill).Methods("DELETE")
	r.HandleFunc("/api/bill/{id}/paid", deps.BillHandler.TogglePaid).Methods("POST")

	// View projection
	r.HandleFunc("/api/view", deps.ViewHandler.GetView).Methods("GET")
	r.HandleFunc("/api/view/sort", deps.ViewHandler.SetSortKey).Methods("PUT")
	r.HandleFunc("/api/view/month/{month}/toggle", deps.ViewHandler.ToggleMonth).Methods("POST")
	r.HandleFunc("/api/summary", deps.ViewHandler.GetSummary).Methods("GET")

	// Import/export/backup
	r.HandleFunc("/api/exchange/export", deps.ExchangeHandler.ExportBills).Methods("POST")
	r.HandleFunc("/api/exchange/import", deps.ExchangeHandler.ImportBills).Methods("POST")
	r.HandleFunc("/api/exchange/backup", deps.ExchangeHandler.BackupBills).Methods("POST")
}
