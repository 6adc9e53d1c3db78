package view

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/billfold/billfold/pkg/bill"
)

type SortKey string

const (
	SortByName   SortKey = "name"
	SortByAmount SortKey = "amount"
	SortByDue    SortKey = "due"
)

func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case SortByName, SortByAmount, SortByDue:
		return SortKey(s), true
	}
	return "", false
}

type RowKind string

const (
	RowHeader RowKind = "header"
	RowBill   RowKind = "bill"
)

type Status string

const (
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
	StatusPending Status = "pending"
)

// Row is one display row of the projection: either a month group header or a
// bill inside an expanded group.
type Row struct {
	Kind RowKind

	// Header fields. Total is only populated when the group is expanded.
	Month    string
	Expanded bool
	Total    float64

	// Bill fields.
	Bill   *bill.Bill
	Status Status
}

// Projection is the derived, read-only view model: ordered display rows plus
// the remaining-to-pay total over all unpaid valid bills, which deliberately
// ignores the active search filter.
type Projection struct {
	Rows      []Row
	Remaining float64
}

// Project computes the projection from the collection. It is a pure function
// of its inputs: bills are re-validated defensively, filtered by a
// case-insensitive substring search over name, amount text, due date text,
// frequency and category, sorted by the requested key, and grouped by the
// due date's month name. Groups appear in the order their first bill appears
// after sorting; bills keep their sort order within a group.
func Project(bills []bill.Bill, query string, key SortKey, expanded map[string]bool, now time.Time) Projection {
	valid := make([]bill.Bill, 0, len(bills))
	for _, b := range bills {
		if err := b.Validate(); err == nil {
			valid = append(valid, b)
		}
	}

	var remaining float64
	for _, b := range valid {
		if !b.Paid {
			remaining += b.Amount
		}
	}

	needle := strings.ToLower(query)
	filtered := make([]bill.Bill, 0, len(valid))
	for _, b := range valid {
		if needle == "" || matches(b, needle) {
			filtered = append(filtered, b)
		}
	}

	sortBills(filtered, key)

	groupOrder := make([]string, 0)
	grouped := make(map[string][]bill.Bill)
	for _, b := range filtered {
		month := b.Due.MonthName()
		if _, ok := grouped[month]; !ok {
			groupOrder = append(groupOrder, month)
		}
		grouped[month] = append(grouped[month], b)
	}

	rows := make([]Row, 0, len(filtered)+len(groupOrder))
	for _, month := range groupOrder {
		group := grouped[month]
		isExpanded := expanded[month]

		header := Row{Kind: RowHeader, Month: month, Expanded: isExpanded}
		if isExpanded {
			for _, b := range group {
				header.Total += b.Amount
			}
		}
		rows = append(rows, header)

		if !isExpanded {
			continue
		}
		for i := range group {
			b := group[i]
			rows = append(rows, Row{
				Kind:   RowBill,
				Month:  month,
				Bill:   &b,
				Status: status(b, now),
			})
		}
	}

	return Projection{Rows: rows, Remaining: remaining}
}

// DefaultExpanded returns the groups expanded at session start: the current
// month, plus the next month when the current one is closing out (day 25 or
// later).
func DefaultExpanded(now time.Time) map[string]bool {
	expanded := map[string]bool{now.Month().String(): true}
	if now.Day() >= 25 {
		next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		expanded[next.Month().String()] = true
	}
	return expanded
}

func matches(b bill.Bill, needle string) bool {
	fields := []string{
		strings.ToLower(b.Name),
		amountText(b.Amount),
		b.Due.String(),
		strings.ToLower(string(b.Frequency)),
		strings.ToLower(string(b.Category)),
	}
	for _, f := range fields {
		if strings.Contains(f, needle) {
			return true
		}
	}
	return false
}

func amountText(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func sortBills(bills []bill.Bill, key SortKey) {
	sort.SliceStable(bills, func(i, j int) bool {
		switch key {
		case SortByName:
			return strings.ToLower(bills[i].Name) < strings.ToLower(bills[j].Name)
		case SortByAmount:
			return bills[i].Amount < bills[j].Amount
		default:
			return bills[i].Due.Before(bills[j].Due)
		}
	})
}

func status(b bill.Bill, now time.Time) Status {
	switch {
	case b.Paid:
		return StatusPaid
	case b.Overdue(now):
		return StatusOverdue
	default:
		return StatusPending
	}
}

// Summary aggregates the whole collection for the summary screen.
type Summary struct {
	TotalPaid      float64
	TotalRemaining float64
	Overdue        float64
}

// Summarize totals paid, remaining and overdue amounts over all bills.
func Summarize(bills []bill.Bill, now time.Time) Summary {
	var s Summary
	for _, b := range bills {
		if b.Paid {
			s.TotalPaid += b.Amount
			continue
		}
		s.TotalRemaining += b.Amount
		if b.Overdue(now) {
			s.Overdue += b.Amount
		}
	}
	return s
}
