package view

import (
	"testing"
	"time"

	"github.com/billfold/billfold/pkg/bill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.July, 16, 9, 0, 0, 0, time.UTC)

func testBill(t *testing.T, name string, amount float64, due string, paid bool) bill.Bill {
	t.Helper()
	d, err := bill.ParseDate(due)
	require.NoError(t, err)
	return bill.Bill{
		ID:        name,
		Name:      name,
		Amount:    amount,
		Due:       d,
		Paid:      paid,
		Category:  bill.Utilities,
		Frequency: bill.Monthly,
	}
}

func testBills(t *testing.T) []bill.Bill {
	return []bill.Bill{
		testBill(t, "Rent", 900, "01/07/2024", false),
		testBill(t, "Electric", 55.5, "22/07/2024", false),
		testBill(t, "Water", 30, "05/08/2024", false),
		testBill(t, "Internet", 40, "10/07/2024", true),
	}
}

func TestProjectGroupsByMonth(t *testing.T) {
	expanded := map[string]bool{"July": true, "August": true}
	p := Project(testBills(t), "", SortByDue, expanded, testNow)

	var kinds []RowKind
	var labels []string
	for _, r := range p.Rows {
		kinds = append(kinds, r.Kind)
		if r.Kind == RowHeader {
			labels = append(labels, r.Month)
		} else {
			labels = append(labels, r.Bill.Name)
		}
	}

	assert.Equal(t, []RowKind{RowHeader, RowBill, RowBill, RowBill, RowHeader, RowBill}, kinds)
	assert.Equal(t, []string{"July", "Rent", "Internet", "Electric", "August", "Water"}, labels)
}

func TestProjectCollapsedGroupHidesBills(t *testing.T) {
	expanded := map[string]bool{"July": true}
	p := Project(testBills(t), "", SortByDue, expanded, testNow)

	var august Row
	for _, r := range p.Rows {
		if r.Kind == RowHeader && r.Month == "August" {
			august = r
		}
		if r.Kind == RowBill {
			assert.Equal(t, "July", r.Month)
		}
	}
	assert.False(t, august.Expanded)
	// Totals are only computed for expanded groups.
	assert.Zero(t, august.Total)
}

func TestProjectHeaderTotalWhenExpanded(t *testing.T) {
	expanded := map[string]bool{"July": true}
	p := Project(testBills(t), "", SortByDue, expanded, testNow)

	require.NotEmpty(t, p.Rows)
	july := p.Rows[0]
	require.Equal(t, RowHeader, july.Kind)
	assert.True(t, july.Expanded)
	assert.InDelta(t, 995.5, july.Total, 1e-9)
}

func TestProjectRemainingIgnoresFilter(t *testing.T) {
	p := Project(testBills(t), "water", SortByDue, map[string]bool{"August": true}, testNow)

	// Only Water survives the search, but remaining still covers every
	// unpaid bill in the collection.
	require.Len(t, p.Rows, 2)
	assert.Equal(t, "Water", p.Rows[1].Bill.Name)
	assert.InDelta(t, 985.5, p.Remaining, 1e-9)
}

func TestProjectSearchFields(t *testing.T) {
	all := map[string]bool{"July": true, "August": true}
	tests := []struct {
		query string
		names []string
	}{
		{"ELECTRIC", []string{"Electric"}},
		{"55.5", []string{"Electric"}},
		{"05/08", []string{"Water"}},
		{"monthly", []string{"Rent", "Internet", "Electric", "Water"}},
		{"utilities", []string{"Rent", "Internet", "Electric", "Water"}},
		{"no such bill", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := Project(testBills(t), tt.query, SortByDue, all, testNow)
			var names []string
			for _, r := range p.Rows {
				if r.Kind == RowBill {
					names = append(names, r.Bill.Name)
				}
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestProjectSortKeys(t *testing.T) {
	all := map[string]bool{"July": true, "August": true}

	byName := Project(testBills(t), "", SortByName, all, testNow)
	var names []string
	for _, r := range byName.Rows {
		if r.Kind == RowBill {
			names = append(names, r.Bill.Name)
		}
	}
	assert.Equal(t, []string{"Electric", "Internet", "Rent", "Water"}, names)

	byAmount := Project(testBills(t), "", SortByAmount, all, testNow)
	var amounts []float64
	for _, r := range byAmount.Rows {
		if r.Kind == RowBill {
			amounts = append(amounts, r.Bill.Amount)
		}
	}
	assert.Equal(t, []float64{30, 40, 55.5, 900}, amounts)
}

func TestProjectStatuses(t *testing.T) {
	all := map[string]bool{"July": true, "August": true}
	p := Project(testBills(t), "", SortByDue, all, testNow)

	statuses := map[string]Status{}
	for _, r := range p.Rows {
		if r.Kind == RowBill {
			statuses[r.Bill.Name] = r.Status
		}
	}
	assert.Equal(t, StatusOverdue, statuses["Rent"])
	assert.Equal(t, StatusPaid, statuses["Internet"])
	assert.Equal(t, StatusPending, statuses["Electric"])
	assert.Equal(t, StatusPending, statuses["Water"])
}

func TestProjectDiscardsInvalidBills(t *testing.T) {
	bills := testBills(t)
	bills = append(bills, bill.Bill{ID: "broken", Name: "", Amount: -1})

	p := Project(bills, "", SortByDue, map[string]bool{"July": true, "August": true}, testNow)
	for _, r := range p.Rows {
		if r.Kind == RowBill {
			assert.NotEmpty(t, r.Bill.Name)
		}
	}
	assert.InDelta(t, 985.5, p.Remaining, 1e-9)
}

func TestParseSortKey(t *testing.T) {
	for _, valid := range []string{"name", "amount", "due"} {
		key, ok := ParseSortKey(valid)
		assert.True(t, ok)
		assert.Equal(t, SortKey(valid), key)
	}
	_, ok := ParseSortKey("category")
	assert.False(t, ok)
}

func TestDefaultExpanded(t *testing.T) {
	midMonth := DefaultExpanded(time.Date(2024, time.July, 16, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, map[string]bool{"July": true}, midMonth)

	closing := DefaultExpanded(time.Date(2024, time.July, 25, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, map[string]bool{"July": true, "August": true}, closing)

	yearEnd := DefaultExpanded(time.Date(2024, time.December, 28, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, map[string]bool{"December": true, "January": true}, yearEnd)
}

func TestSummarize(t *testing.T) {
	s := Summarize(testBills(t), testNow)
	assert.InDelta(t, 40, s.TotalPaid, 1e-9)
	assert.InDelta(t, 985.5, s.TotalRemaining, 1e-9)
	assert.InDelta(t, 900, s.Overdue, 1e-9)
}

func TestSessionDefaults(t *testing.T) {
	s := NewSession(testNow)
	assert.Equal(t, SortByDue, s.SortKey())
	assert.Equal(t, map[string]bool{"July": true}, s.Expanded())

	s.SetSortKey(SortByAmount)
	assert.Equal(t, SortByAmount, s.SortKey())

	assert.False(t, s.ToggleMonth("July"))
	assert.True(t, s.ToggleMonth("August"))
	assert.Equal(t, map[string]bool{"August": true}, s.Expanded())

	// Expanded returns a copy; mutating it does not touch the session.
	s.Expanded()["August"] = false
	assert.True(t, s.Expanded()["August"])
}
