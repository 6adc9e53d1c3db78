package recurrence

import (
	"time"

	"github.com/billfold/billfold/pkg/bill"
	"github.com/billfold/billfold/pkg/calendar"
)

// Engine computes the due date of a bill's next occurrence. Every result is
// rolled forward past weekends and bank holidays before use.
type Engine struct {
	adjuster *calendar.Adjuster
}

func NewEngine(adjuster *calendar.Adjuster) *Engine {
	return &Engine{adjuster: adjuster}
}

// NextDue returns the adjusted due date one recurrence step after anchor.
// Custom bills have no automatic advance: the anchor itself is adjusted and
// returned.
func (e *Engine) NextDue(anchor time.Time, freq bill.Frequency) time.Time {
	return e.adjuster.Adjust(step(anchor, freq))
}

// Adjust rolls a date forward to the next payable day without advancing any
// recurrence step. Used when editing a bill in place.
func (e *Engine) Adjust(t time.Time) time.Time {
	return e.adjuster.Adjust(t)
}

func step(anchor time.Time, freq bill.Frequency) time.Time {
	switch freq {
	case bill.Weekly:
		return anchor.AddDate(0, 0, 7)
	case bill.FourWeekly:
		return anchor.AddDate(0, 0, 28)
	case bill.Monthly:
		return monthlyStep(anchor)
	default:
		return anchor
	}
}

// monthlyStep moves to the same day of the following month. When that day
// does not exist in the target month (day 31 into a 30-day month), it falls
// back to day 28 rather than the true month end.
func monthlyStep(anchor time.Time) time.Time {
	year, month, day := anchor.Date()
	month++
	if month > time.December {
		month = time.January
		year++
	}
	if day > daysInMonth(year, month) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, anchor.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
