package calendar

import "time"

// Adjuster rolls dates forward past days on which bills are not payable:
// Saturdays, Sundays, and bank holidays.
type Adjuster struct {
	holidays *HolidayCalendar
}

func NewAdjuster(holidays *HolidayCalendar) *Adjuster {
	return &Adjuster{holidays: holidays}
}

// Adjust returns the first payable day that is not before t. The result is
// a fixed point: adjusting an already payable day returns it unchanged.
// Termination is bounded by the longest consecutive run of weekend and
// holiday days, a small constant.
func (a *Adjuster) Adjust(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday || a.holidays.IsHoliday(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}
