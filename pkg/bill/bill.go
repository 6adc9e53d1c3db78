package bill

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation failed")
var ErrNotFound = errors.New("bill not found")

type Category string

const (
	Utilities     Category = "Utilities"
	Rent          Category = "Rent"
	Subscriptions Category = "Subscriptions"
	Insurance     Category = "Insurance"
	Groceries     Category = "Groceries"
	Other         Category = "Other"
)

// Categories lists every valid category, in display order.
var Categories = []Category{Utilities, Rent, Subscriptions, Insurance, Groceries, Other}

// ParseCategory accepts only a known category. Used on add and edit, where
// the caller picks from the fixed set.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if s == string(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
}

// NormalizeCategory maps unknown categories to Other. Used at the import
// boundary, where foreign data is coerced rather than rejected.
func NormalizeCategory(s string) Category {
	if c, err := ParseCategory(s); err == nil {
		return c
	}
	return Other
}

type Frequency string

const (
	Weekly     Frequency = "Weekly"
	FourWeekly Frequency = "4 Weekly"
	Monthly    Frequency = "Monthly"
	// Custom bills never advance automatically; the next date is entered by
	// hand.
	Custom Frequency = "Custom"
)

var Frequencies = []Frequency{Weekly, FourWeekly, Monthly, Custom}

func ParseFrequency(s string) (Frequency, error) {
	for _, f := range Frequencies {
		if s == string(f) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown frequency %q", ErrValidation, s)
}

// Bill is one occurrence of a recurring bill. Once created, occurrences are
// independent records: marking one paid appends a successor rather than
// rewriting the original.
type Bill struct {
	ID        string
	Name      string
	Amount    float64
	Due       Date
	Paid      bool
	Category  Category
	Frequency Frequency
}

// Validate checks the structural invariants every admitted bill satisfies.
func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: bill name cannot be empty", ErrValidation)
	}
	if b.Amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	}
	if b.Due.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrValidation)
	}
	if _, err := ParseCategory(string(b.Category)); err != nil {
		return err
	}
	if _, err := ParseFrequency(string(b.Frequency)); err != nil {
		return err
	}
	return nil
}

// Overdue reports whether the bill is unpaid and past its due date.
func (b Bill) Overdue(now time.Time) bool {
	return !b.Paid && b.Due.Time().Before(now)
}
