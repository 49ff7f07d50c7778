// Package budget contains the pure aggregation functions of the engine:
// period totals, remaining budget, daily allowance, budget utilization, and
// category rankings. Everything here is a pure function of a ledger
// snapshot; no state is kept between calls.
package budget

import (
	"errors"
	"sort"
	"time"

	"bolso/internal/core"
	"bolso/internal/period"
)

// ErrSalaryUndefined is the sentinel for percentage metrics when the salary
// baseline is missing or zero. Callers must render a "no data" state, never
// a NaN or Infinity.
var ErrSalaryUndefined = errors.New("salary undefined")

// Ledger is the slice of the snapshot the aggregator reads.
type Ledger struct {
	Transactions  []core.Transaction
	FixedExpenses []core.FixedExpense
}

// Summary holds the derived totals for one window. Remaining keeps its
// sign; Available clamps it for display.
type Summary struct {
	Salary        core.Money
	TotalFixed    core.Money
	TotalVariable core.Money
	TotalSpent    core.Money
	Remaining     core.Money
	Count         int
	Window        period.Window
}

// CategoryTotal is one category's summed amount within a window.
type CategoryTotal struct {
	Category core.Category
	Amount   core.Money
}

// Summarize filters the ledger to the window (inclusive on both ends) and
// computes the period totals. Empty ledgers yield zero totals, never an
// error.
func Summarize(l Ledger, salary core.Money, w period.Window) Summary {
	s := Summary{Salary: salary, Window: w}
	for _, f := range l.FixedExpenses {
		s.TotalFixed = s.TotalFixed.Add(f.Amount)
	}
	for _, t := range Filter(l.Transactions, w) {
		s.TotalVariable = s.TotalVariable.Add(t.Amount)
		s.Count++
	}
	s.TotalSpent = s.TotalFixed.Add(s.TotalVariable)
	s.Remaining = salary.Sub(s.TotalSpent)
	return s
}

// Filter returns the transactions whose date lies within the window,
// inclusive on both ends. Order is preserved.
func Filter(txs []core.Transaction, w period.Window) []core.Transaction {
	var out []core.Transaction
	for _, t := range txs {
		if w.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// Utilization returns totalSpent as a percentage of salary. Returns
// ErrSalaryUndefined when salary is not positive.
func (s Summary) Utilization() (float64, error) {
	if s.Salary.Cents <= 0 {
		return 0, ErrSalaryUndefined
	}
	return float64(s.TotalSpent.Cents) / float64(s.Salary.Cents) * 100, nil
}

// Available is the user-facing "can still spend" amount: Remaining clamped
// at zero. Insight logic must keep using the signed Remaining.
func (s Summary) Available() core.Money {
	if s.Remaining.Cents < 0 {
		return core.Money{}
	}
	return s.Remaining
}

// DailyAllowance divides the remaining budget over the days left in the
// real current calendar month, today included. It is intentionally anchored
// to the current month even when the summary covers a quarter or a year:
// "what can I spend today" is always a monthly question.
func DailyAllowance(remaining core.Money, now time.Time) core.Money {
	return remaining.DivRound(int64(period.DaysRemaining(now)))
}

// StatusLabel maps a utilization percentage to the dashboard status text.
func StatusLabel(utilization float64) string {
	switch {
	case utilization < 50:
		return "Excelente"
	case utilization < 75:
		return "No controle"
	case utilization < 90:
		return "Atenção"
	default:
		return "Cuidado"
	}
}

// CategoryTotals sums the given transactions per category. The result keeps
// first-seen order, which is what breaks ties in the rankings.
func CategoryTotals(txs []core.Transaction) []CategoryTotal {
	index := make(map[core.Category]int)
	var totals []CategoryTotal
	for _, t := range txs {
		i, ok := index[t.Category]
		if !ok {
			i = len(totals)
			index[t.Category] = i
			totals = append(totals, CategoryTotal{Category: t.Category})
		}
		totals[i].Amount = totals[i].Amount.Add(t.Amount)
	}
	return totals
}

// TopCategories returns the n largest totals, stably sorted descending by
// amount: equal amounts keep their first-seen order.
func TopCategories(totals []CategoryTotal, n int) []CategoryTotal {
	ranked := make([]CategoryTotal, len(totals))
	copy(ranked, totals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.Cents > ranked[j].Amount.Cents
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
