package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEasterSunday(t *testing.T) {
	tests := []struct {
		year int
		want time.Time
	}{
		{2024, date(2024, time.March, 31)},
		{2025, date(2025, time.April, 20)},
		{2026, date(2026, time.April, 5)},
		{2030, date(2030, time.April, 21)},
	}
	for _, tt := range tests {
		if got := easterSunday(tt.year); !got.Equal(tt.want) {
			t.Errorf("easterSunday(%d) = %s, want %s", tt.year, got, tt.want)
		}
	}
}

func TestUKBankHolidays(t *testing.T) {
	cal := NewUKHolidayCalendar(2024, 1)

	holidays := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.March, 29),  // Good Friday
		date(2024, time.April, 1),   // Easter Monday
		date(2024, time.May, 6),     // Early May
		date(2024, time.May, 27),    // Spring
		date(2024, time.August, 26), // Summer
		date(2024, time.December, 25),
		date(2024, time.December, 26),
	}
	for _, d := range holidays {
		assert.True(t, cal.IsHoliday(d), "expected %s to be a holiday", d.Format("02/01/2006"))
	}

	assert.False(t, cal.IsHoliday(date(2024, time.July, 15)))
}

func TestUKBankHolidaysWeekendSubstitutes(t *testing.T) {
	// Christmas 2021 fell on a Saturday and Boxing Day on a Sunday; the
	// observed days were Monday 27th and Tuesday 28th.
	cal := NewUKHolidayCalendar(2021, 1)
	assert.True(t, cal.IsHoliday(date(2021, time.December, 27)))
	assert.True(t, cal.IsHoliday(date(2021, time.December, 28)))
}

func TestAdjustSkipsWeekendsAndHolidays(t *testing.T) {
	adj := NewAdjuster(NewUKHolidayCalendar(2024, 1))

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"weekday unchanged", date(2024, time.July, 17), date(2024, time.July, 17)},
		{"saturday rolls to monday", date(2024, time.July, 20), date(2024, time.July, 22)},
		{"sunday rolls to monday", date(2024, time.July, 21), date(2024, time.July, 22)},
		{"weekend into bank holiday rolls past it", date(2024, time.May, 4), date(2024, time.May, 7)},
		{"christmas run", date(2024, time.December, 25), date(2024, time.December, 27)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := adj.Adjust(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdjustIsIdempotent(t *testing.T) {
	adj := NewAdjuster(NewUKHolidayCalendar(2024, 10))

	for day := 0; day < 60; day++ {
		in := date(2024, time.December, 1).AddDate(0, 0, day)
		once := adj.Adjust(in)
		twice := adj.Adjust(once)
		assert.Equal(t, once, twice, "adjust not idempotent for %s", in.Format("02/01/2006"))
	}
}
