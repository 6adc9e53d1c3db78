package calendar

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// HolidayCalendar holds the bank holidays for the configured region as
// "DD/MM" strings. The set is computed once at process start for a window of
// years and matched year-agnostically: a day/month that is a holiday in any
// year of the window counts as a holiday in every year.
type HolidayCalendar struct {
	days map[string]struct{}
}

// NewUKHolidayCalendar computes United Kingdom bank holidays from startYear
// for the given number of years.
func NewUKHolidayCalendar(startYear, years int) *HolidayCalendar {
	days := make(map[string]struct{})
	for year := startYear; year < startYear+years; year++ {
		for _, d := range ukBankHolidays(year) {
			days[d.Format("02/01")] = struct{}{}
		}
	}
	log.Debugf("holiday calendar: %d distinct day/month entries for %d-%d", len(days), startYear, startYear+years-1)
	return &HolidayCalendar{days: days}
}

// IsHoliday reports whether t's day/month appears in the holiday set.
func (c *HolidayCalendar) IsHoliday(t time.Time) bool {
	_, ok := c.days[t.Format("02/01")]
	return ok
}

// Days returns the holiday set as DD/MM strings, in no particular order.
func (c *HolidayCalendar) Days() []string {
	out := make([]string, 0, len(c.days))
	for d := range c.days {
		out = append(out, d)
	}
	return out
}

// ukBankHolidays returns the observed UK bank holidays for one year:
// New Year's Day, Good Friday, Easter Monday, the Early May, Spring and
// Summer bank holidays, Christmas Day and Boxing Day. Fixed-date holidays
// falling on a weekend are observed on the following working days.
func ukBankHolidays(year int) []time.Time {
	var hs []time.Time

	hs = append(hs, substituteForWeekend(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)))

	easter := easterSunday(year)
	hs = append(hs, easter.AddDate(0, 0, -2)) // Good Friday
	hs = append(hs, easter.AddDate(0, 0, 1))  // Easter Monday

	hs = append(hs, nthWeekdayOf(year, time.May, time.Monday, 1))
	hs = append(hs, lastWeekdayOf(year, time.May, time.Monday))
	hs = append(hs, lastWeekdayOf(year, time.August, time.Monday))

	christmas := time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)
	boxing := time.Date(year, time.December, 26, 0, 0, 0, 0, time.UTC)
	christmasObserved := substituteForWeekend(christmas)
	boxingObserved := substituteForWeekend(boxing)
	if christmasObserved.Equal(boxingObserved) {
		boxingObserved = boxingObserved.AddDate(0, 0, 1)
	}
	hs = append(hs, christmasObserved, boxingObserved)

	return hs
}

// easterSunday computes Easter for a year using the anonymous Gregorian
// computus.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func substituteForWeekend(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func nthWeekdayOf(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for t.Weekday() != weekday {
		t = t.AddDate(0, 0, 1)
	}
	return t.AddDate(0, 0, 7*(n-1))
}

func lastWeekdayOf(year int, month time.Month, weekday time.Weekday) time.Time {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	for t.Weekday() != weekday {
		t = t.AddDate(0, 0, -1)
	}
	return t
}
