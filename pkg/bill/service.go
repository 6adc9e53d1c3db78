package bill

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/billfold/billfold/internal/event_bus"
	"github.com/billfold/billfold/internal/utils"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Recurrence computes successor due dates. Implemented by recurrence.Engine.
type Recurrence interface {
	// NextDue returns the adjusted due date one recurrence step after anchor.
	NextDue(anchor time.Time, freq Frequency) time.Time
	// Adjust rolls a date forward to the next payable day without stepping.
	Adjust(t time.Time) time.Time
}

// Draft is the user-entered form of a bill, validated on every construction
// boundary (add, edit, import).
type Draft struct {
	Name      string
	Amount    float64
	Due       string
	Category  string
	Frequency string
}

type Service interface {
	List(ctx context.Context) []Bill
	Get(ctx context.Context, id string) (Bill, error)
	// Add validates the draft, advances the entered due date by one
	// recurrence step and appends a new unpaid bill. Adding a bill registers
	// its next payment, not an already-due one.
	Add(ctx context.Context, draft Draft) (Bill, error)
	// Edit replaces the fields of an existing bill in place. The due date is
	// rolled forward past weekends and holidays but not stepped.
	Edit(ctx context.Context, id string, draft Draft) (Bill, error)
	Delete(ctx context.Context, id string) error
	// TogglePaid flips the paid flag. On the unpaid-to-paid transition of a
	// non-Custom bill it also appends the next occurrence; the paid bill is
	// kept as a historical record with its original due date.
	TogglePaid(ctx context.Context, id string) (Bill, *Bill, error)
}

type ServiceImpl struct {
	mu         sync.Mutex
	bills      []Bill
	repo       Repository
	recurrence Recurrence
	eventBus   *event_bus.EventBus
	clock      utils.Clock
}

// NewService loads the persisted collection into memory. Malformed records
// were already discarded by the repository; whatever remains is valid.
func NewService(repo Repository, rec Recurrence, eventBus *event_bus.EventBus, clock utils.Clock) (*ServiceImpl, error) {
	bills, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	log.Infof("loaded %d bills", len(bills))
	return &ServiceImpl{
		bills:      bills,
		repo:       repo,
		recurrence: rec,
		eventBus:   eventBus,
		clock:      clock,
	}, nil
}

func (s *ServiceImpl) List(ctx context.Context) []Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Bill, len(s.bills))
	copy(out, s.bills)
	return out
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Bill{}, ErrNotFound
	}
	return s.bills[idx], nil
}

func (s *ServiceImpl) Add(ctx context.Context, draft Draft) (Bill, error) {
	b, err := s.buildBill(draft)
	if err != nil {
		return Bill{}, err
	}
	b.ID = uuid.NewString()
	b.Due = DateOf(s.recurrence.NextDue(b.Due.Time(), b.Frequency))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills = append(s.bills, b)
	if err := s.persistLocked(ctx); err != nil {
		s.bills = s.bills[:len(s.bills)-1]
		return Bill{}, err
	}
	log.Debugf("added bill %q due %s", b.Name, b.Due)
	return b, nil
}

func (s *ServiceImpl) Edit(ctx context.Context, id string, draft Draft) (Bill, error) {
	b, err := s.buildBill(draft)
	if err != nil {
		return Bill{}, err
	}
	b.Due = DateOf(s.recurrence.Adjust(b.Due.Time()))

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Bill{}, ErrNotFound
	}
	prev := s.bills[idx]
	b.ID = prev.ID
	b.Paid = prev.Paid
	s.bills[idx] = b
	if err := s.persistLocked(ctx); err != nil {
		s.bills[idx] = prev
		return Bill{}, err
	}
	return b, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	deleted := s.bills[idx]
	s.bills = append(s.bills[:idx], s.bills[idx+1:]...)
	if err := s.persistLocked(ctx); err != nil {
		return err
	}
	log.Debugf("deleted bill %q", deleted.Name)
	return nil
}

func (s *ServiceImpl) TogglePaid(ctx context.Context, id string) (Bill, *Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Bill{}, nil, ErrNotFound
	}

	s.bills[idx].Paid = !s.bills[idx].Paid
	toggled := s.bills[idx]

	var successor *Bill
	if toggled.Paid && toggled.Frequency != Custom {
		next := toggled
		next.ID = uuid.NewString()
		next.Paid = false
		next.Due = DateOf(s.recurrence.NextDue(toggled.Due.Time(), toggled.Frequency))
		s.bills = append(s.bills, next)
		successor = &next
		log.Infof("next %q due on %s", next.Name, next.Due)
	}

	if err := s.persistLocked(ctx); err != nil {
		return Bill{}, nil, err
	}
	return toggled, successor, nil
}

// ImportAppend appends already validated bills to the collection, with no
// de-duplication against existing records. Used by the exchange importer.
func (s *ServiceImpl) ImportAppend(ctx context.Context, bills []Bill) error {
	if len(bills) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills = append(s.bills, bills...)
	return s.persistLocked(ctx)
}

// buildBill validates a draft into a Bill, rejecting due years outside a
// realistic window around now.
func (s *ServiceImpl) buildBill(draft Draft) (Bill, error) {
	due, err := ParseDate(draft.Due)
	if err != nil {
		return Bill{}, err
	}
	year := due.Time().Year()
	nowYear := s.clock.Now().Year()
	if year < nowYear-1 || year > nowYear+10 {
		return Bill{}, fmt.Errorf("%w: unrealistic due date %s", ErrValidation, draft.Due)
	}
	category, err := ParseCategory(draft.Category)
	if err != nil {
		return Bill{}, err
	}
	frequency, err := ParseFrequency(draft.Frequency)
	if err != nil {
		return Bill{}, err
	}

	b := Bill{
		Name:      draft.Name,
		Amount:    draft.Amount,
		Due:       due,
		Category:  category,
		Frequency: frequency,
	}
	if err := b.Validate(); err != nil {
		return Bill{}, err
	}
	return b, nil
}

// persistLocked saves the collection and announces the change. Persistence
// is synchronous with mutation; there is no dirty flag.
func (s *ServiceImpl) persistLocked(ctx context.Context) error {
	if err := s.repo.Save(s.bills); err != nil {
		return fmt.Errorf("failed to save bills: %w", err)
	}

	snapshots := make([]event_bus.BillSnapshot, 0, len(s.bills))
	for _, b := range s.bills {
		snapshots = append(snapshots, event_bus.BillSnapshot{
			ID:     b.ID,
			Name:   b.Name,
			Amount: b.Amount,
			Due:    b.Due.Time(),
			Paid:   b.Paid,
		})
	}
	event := event_bus.NewEvent(ctx, event_bus.BillsChangedType, event_bus.BillsChanged{Bills: snapshots})
	if err := s.eventBus.Publish(event); err != nil {
		log.Errorf("failed to publish bills changed event: %v", err)
	}
	return nil
}

func (s *ServiceImpl) indexOf(id string) int {
	for i, b := range s.bills {
		if b.ID == id {
			return i
		}
	}
	return -1
}
