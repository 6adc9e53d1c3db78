package bill

import (
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the serialization format for due dates, everywhere: the
// persisted document, the exchange files, and the API.
const DateLayout = "02/01/2006"

var datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// Date is a calendar day. The zero value is "no date".
type Date struct {
	t time.Time
}

// ParseDate parses a strict DD/MM/YYYY string into a Date. The input must
// match the pattern exactly and name a real calendar day.
func ParseDate(s string) (Date, error) {
	if !datePattern.MatchString(s) {
		return Date{}, fmt.Errorf("%w: date %q does not match DD/MM/YYYY", ErrValidation, s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return Date{t: t}, nil
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// MonthName returns the English month name, used as the grouping label.
func (d Date) MonthName() string {
	return d.t.Month().String()
}

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(raw []byte) error {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("%w: date must be a string", ErrValidation)
	}
	parsed, err := ParseDate(string(raw[1 : len(raw)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
