package bill

import (
	"encoding/json"
	"fmt"

	"github.com/billfold/billfold/internal/storage"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const billsKey = "bills"

// Repository persists the full bill collection.
type Repository interface {
	// Load reads the persisted collection, discarding malformed records
	// individually rather than failing the whole load.
	Load() ([]Bill, error)
	// Save replaces the persisted collection with bills.
	Save(bills []Bill) error
}

// billRecord is the wire shape of one bill inside the persisted document.
type billRecord struct {
	ID        string   `json:"id,omitempty"`
	Name      *string  `json:"name"`
	Amount    *float64 `json:"amount"`
	Due       *string  `json:"due"`
	Paid      *bool    `json:"paid"`
	Category  *string  `json:"category"`
	Frequency string   `json:"frequency,omitempty"`
}

type billsDocument struct {
	Data []json.RawMessage `json:"data"`
}

type RepositoryImpl struct {
	store *storage.DocumentStore
}

func NewRepository(store *storage.DocumentStore) *RepositoryImpl {
	return &RepositoryImpl{store: store}
}

func (r *RepositoryImpl) Load() ([]Bill, error) {
	raw, ok := r.store.Get(billsKey)
	if !ok {
		return nil, nil
	}

	var doc billsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		// The document itself was readable but this key is not; treat the
		// collection as lost rather than leaving the store unusable.
		log.Warnf("bills entry is corrupt (%v), discarding it", err)
		if err := r.store.Delete(billsKey); err != nil {
			return nil, fmt.Errorf("failed to discard corrupt bills entry: %w", err)
		}
		return nil, nil
	}

	bills := make([]Bill, 0, len(doc.Data))
	for _, rawRecord := range doc.Data {
		b, err := decodeRecord(rawRecord)
		if err != nil {
			log.Warnf("discarded invalid bill record: %v", err)
			continue
		}
		bills = append(bills, b)
	}
	return bills, nil
}

func (r *RepositoryImpl) Save(bills []Bill) error {
	records := make([]json.RawMessage, 0, len(bills))
	for _, b := range bills {
		name, amount, due, paid, category := b.Name, b.Amount, b.Due.String(), b.Paid, string(b.Category)
		raw, err := json.Marshal(billRecord{
			ID:        b.ID,
			Name:      &name,
			Amount:    &amount,
			Due:       &due,
			Paid:      &paid,
			Category:  &category,
			Frequency: string(b.Frequency),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal bill %q: %w", b.Name, err)
		}
		records = append(records, raw)
	}
	if err := r.store.Put(billsKey, billsDocument{Data: records}); err != nil {
		return fmt.Errorf("failed to save bills: %w", err)
	}
	return nil
}

// decodeRecord validates one persisted record: every required field present,
// the amount numeric, the due date a strict DD/MM/YYYY real date.
func decodeRecord(raw json.RawMessage) (Bill, error) {
	var rec billRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Bill{}, fmt.Errorf("malformed record: %w", err)
	}
	if rec.Name == nil || rec.Amount == nil || rec.Due == nil || rec.Paid == nil || rec.Category == nil {
		return Bill{}, fmt.Errorf("record %q is missing required fields", recordName(rec))
	}

	due, err := ParseDate(*rec.Due)
	if err != nil {
		return Bill{}, fmt.Errorf("record %q: %w", recordName(rec), err)
	}

	frequency := Custom
	if rec.Frequency != "" {
		frequency, err = ParseFrequency(rec.Frequency)
		if err != nil {
			return Bill{}, fmt.Errorf("record %q: %w", recordName(rec), err)
		}
	}

	b := Bill{
		ID:        rec.ID,
		Name:      *rec.Name,
		Amount:    *rec.Amount,
		Due:       due,
		Paid:      *rec.Paid,
		Category:  NormalizeCategory(*rec.Category),
		Frequency: frequency,
	}
	if b.ID == "" {
		// Records written before stable identifiers existed get one now.
		b.ID = uuid.NewString()
	}
	if err := b.Validate(); err != nil {
		return Bill{}, fmt.Errorf("record %q: %w", recordName(rec), err)
	}
	return b, nil
}

func recordName(rec billRecord) string {
	if rec.Name != nil {
		return *rec.Name
	}
	return "Unknown"
}
