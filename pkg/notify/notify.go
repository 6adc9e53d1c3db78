package notify

import (
	"sync"
	"time"

	"github.com/billfold/billfold/internal/event_bus"
	"github.com/billfold/billfold/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Sink delivers a reminder to the user. Delivery is best-effort: a failing
// sink is logged, never propagated.
type Sink interface {
	Notify(title, message string) error
}

// LogSink is the in-app fallback sink: reminders land in the application
// log.
type LogSink struct{}

func (LogSink) Notify(title, message string) error {
	log.Infof("notification: %s - %s", title, message)
	return nil
}

// Reminder is one scheduled notification.
type Reminder struct {
	BillID string
	Name   string
	Due    time.Time
	// Delay until the reminder fires, measured from scheduling time.
	Delay time.Duration
}

// Scheduler keeps one pending reminder per unpaid future bill. It
// subscribes to the bills-changed event, so every store mutation cancels all
// pending timers and rebuilds the full set from the new collection. O(n) per
// mutation, fine for the list sizes involved.
type Scheduler struct {
	mu     sync.Mutex
	sink   Sink
	clock  utils.Clock
	lead   time.Duration
	timers []*time.Timer
}

func NewScheduler(sink Sink, clock utils.Clock, lead time.Duration, eventBus *event_bus.EventBus) *Scheduler {
	s := &Scheduler{sink: sink, clock: clock, lead: lead}
	event_bus.SubscribeTyped[event_bus.BillsChanged](
		eventBus,
		event_bus.BillsChangedType,
		func(e event_bus.EventT[event_bus.BillsChanged]) error {
			s.Rebuild(e.Data.Bills)
			return nil
		},
	)
	return s
}

// Plan computes the reminders for the current collection: one per unpaid
// bill with a future due date, firing one lead interval before the due date,
// clamped to immediate when that moment has already passed.
func (s *Scheduler) Plan(bills []event_bus.BillSnapshot) []Reminder {
	now := s.clock.Now()
	reminders := make([]Reminder, 0, len(bills))
	for _, b := range bills {
		if b.Paid || !b.Due.After(now) {
			continue
		}
		delay := b.Due.Sub(now) - s.lead
		if delay < 0 {
			delay = 0
		}
		reminders = append(reminders, Reminder{
			BillID: b.ID,
			Name:   b.Name,
			Due:    b.Due,
			Delay:  delay,
		})
	}
	return reminders
}

// Rebuild cancels every pending timer and schedules the full reminder set
// for the given collection. Cancellation is best-effort: a timer already
// past firing is not suppressed, but a rebuild always follows the mutation
// immediately, so the window is negligible.
func (s *Scheduler) Rebuild(bills []event_bus.BillSnapshot) {
	reminders := s.Plan(bills)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = s.timers[:0]

	for _, reminder := range reminders {
		reminder := reminder
		s.timers = append(s.timers, time.AfterFunc(reminder.Delay, func() {
			s.deliver(reminder)
		}))
	}
	log.Debugf("scheduled %d reminders", len(reminders))
}

// Pending returns the number of scheduled reminders.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all pending reminders. Called at shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

func (s *Scheduler) deliver(reminder Reminder) {
	message := reminder.Name + " due on " + reminder.Due.Format("02/01/2006")
	if err := s.sink.Notify("Bill Due Soon", message); err != nil {
		log.Errorf("notification failed, falling back to log: %v", err)
		_ = LogSink{}.Notify("Bill Due Soon", message)
	}
}
