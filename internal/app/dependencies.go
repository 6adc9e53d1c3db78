package app

import (
	"context"
	"time"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/crashlog"
	"github.com/billfold/billfold/internal/event_bus"
	"github.com/billfold/billfold/internal/storage"
	"github.com/billfold/billfold/internal/utils"
	"github.com/billfold/billfold/pkg/bill"
	"github.com/billfold/billfold/pkg/calendar"
	"github.com/billfold/billfold/pkg/exchange"
	"github.com/billfold/billfold/pkg/notify"
	"github.com/billfold/billfold/pkg/pinlock"
	"github.com/billfold/billfold/pkg/recurrence"
	"github.com/billfold/billfold/pkg/view"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus
	CrashLog *crashlog.Writer

	Holidays *calendar.HolidayCalendar
	Adjuster *calendar.Adjuster
	Engine   *recurrence.Engine

	BillRepo    bill.Repository
	BillService *bill.ServiceImpl
	BillHandler *bill.Handler

	ViewSession *view.Session
	ViewHandler *view.Handler

	ExchangeService *exchange.Service
	ExchangeHandler *exchange.Handler

	PINRepo    pinlock.Repository
	PINService *pinlock.Service
	PINHandler *pinlock.Handler

	Scheduler *notify.Scheduler
}

// BuildDependencies initializes and wires all application services and
// handlers.
func BuildDependencies(store *storage.DocumentStore, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()
	deps.CrashLog = crashlog.New(cfg.CrashLog.Dirs)

	// The holiday window is computed once per process start.
	deps.Holidays = calendar.NewUKHolidayCalendar(deps.Clock.Now().Year(), cfg.Holidays.Years)
	deps.Adjuster = calendar.NewAdjuster(deps.Holidays)
	deps.Engine = recurrence.NewEngine(deps.Adjuster)

	deps.BillRepo = bill.NewRepository(store)
	billService, err := bill.NewService(deps.BillRepo, deps.Engine, deps.EventBus, deps.Clock)
	if err != nil {
		return nil, err
	}
	deps.BillService = billService
	deps.BillHandler = bill.NewHandler(deps.BillService)

	deps.ViewSession = view.NewSession(deps.Clock.Now())
	deps.ViewHandler = view.NewHandler(deps.BillService, deps.ViewSession, deps.Clock)

	deps.ExchangeService = exchange.NewService(deps.BillService, store, cfg.Exchange.Dirs, deps.Clock)
	deps.ExchangeHandler = exchange.NewHandler(deps.ExchangeService)

	deps.PINRepo = pinlock.NewRepository(store)
	deps.PINService = pinlock.NewService(deps.PINRepo, deps.Clock, cfg.Auth.DefaultPIN)
	deps.PINHandler = pinlock.NewHandler(deps.PINService)

	lead := time.Duration(cfg.Notify.LeadHours) * time.Hour
	deps.Scheduler = notify.NewScheduler(notify.LogSink{}, deps.Clock, lead, deps.EventBus)
	deps.Scheduler.Rebuild(startupSnapshots(deps.BillService))

	return deps, nil
}

// startupSnapshots seeds the reminder schedule from the loaded collection;
// afterwards every mutation refreshes it through the event bus.
func startupSnapshots(bills *bill.ServiceImpl) []event_bus.BillSnapshot {
	loaded := bills.List(context.Background())
	snapshots := make([]event_bus.BillSnapshot, 0, len(loaded))
	for _, b := range loaded {
		snapshots = append(snapshots, event_bus.BillSnapshot{
			ID:     b.ID,
			Name:   b.Name,
			Amount: b.Amount,
			Due:    b.Due.Time(),
			Paid:   b.Paid,
		})
	}
	return snapshots
}
