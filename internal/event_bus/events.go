package event_bus

import "time"

// BillsChangedType is published after every bill store mutation, once the
// collection has been persisted.
const BillsChangedType EventType = "bills.changed"

// BillSnapshot carries the fields dependents need without importing pkg/bill.
type BillSnapshot struct {
	ID     string
	Name   string
	Amount float64
	Due    time.Time
	Paid   bool
}

// BillsChanged is the payload of BillsChangedType: the full collection after
// the mutation. Subscribers rebuild their derived state from it.
type BillsChanged struct {
	Bills []BillSnapshot
}
