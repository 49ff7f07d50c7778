package series

import (
	"fmt"
	"strconv"
	"time"

	"bolso/internal/core"
	"bolso/internal/period"
)

// ComparativePoint is one past period in the budget-vs-actual comparison.
// Actual is non-cumulative; Target is the salary scaled to the bucket
// length. A point with Actual <= Target is within budget.
type ComparativePoint struct {
	Label  string
	Actual core.Money
	Target core.Money
}

// Comparative builds the fixed-length comparison series anchored at now,
// independent of the active window: 6 months, 4 quarters, or 3 years,
// oldest first. The point count never varies with the data.
func Comparative(txs []core.Transaction, salary core.Money, kind period.Kind, now time.Time) []ComparativePoint {
	switch kind {
	case period.Quarter:
		return comparativeQuarters(txs, salary, now)
	case period.Year:
		return comparativeYears(txs, salary, now)
	default:
		return comparativeMonths(txs, salary, now)
	}
}

func comparativeMonths(txs []core.Transaction, salary core.Money, now time.Time) []ComparativePoint {
	year, month, _ := now.Date()
	loc := now.Location()

	points := make([]ComparativePoint, 0, 6)
	for i := 5; i >= 0; i-- {
		// time.Date normalizes out-of-range months, so January minus one
		// lands on December of the previous year.
		ref := time.Date(year, month-time.Month(i), 1, 0, 0, 0, 0, loc)

		var actual core.Money
		for _, t := range txs {
			if t.Date.Year() == ref.Year() && t.Date.Month() == ref.Month() {
				actual = actual.Add(t.Amount)
			}
		}
		points = append(points, ComparativePoint{
			Label:  period.MonthAbbr(ref.Month()),
			Actual: actual,
			Target: salary,
		})
	}
	return points
}

func comparativeQuarters(txs []core.Transaction, salary core.Money, now time.Time) []ComparativePoint {
	year, month, _ := now.Date()
	loc := now.Location()
	quarterStart := time.Date(year, time.Month((int(month)-1)/3*3+1), 1, 0, 0, 0, 0, loc)

	points := make([]ComparativePoint, 0, 4)
	for i := 3; i >= 0; i-- {
		start := quarterStart.AddDate(0, -3*i, 0)
		next := start.AddDate(0, 3, 0)

		var actual core.Money
		for _, t := range txs {
			if !t.Date.Before(start) && t.Date.Before(next) {
				actual = actual.Add(t.Amount)
			}
		}
		q := (int(start.Month())-1)/3 + 1
		points = append(points, ComparativePoint{
			Label:  fmt.Sprintf("Q%d/%02d", q, start.Year()%100),
			Actual: actual,
			Target: salary.MulInt(3),
		})
	}
	return points
}

func comparativeYears(txs []core.Transaction, salary core.Money, now time.Time) []ComparativePoint {
	points := make([]ComparativePoint, 0, 3)
	for i := 2; i >= 0; i-- {
		year := now.Year() - i

		var actual core.Money
		for _, t := range txs {
			if t.Date.Year() == year {
				actual = actual.Add(t.Amount)
			}
		}
		points = append(points, ComparativePoint{
			Label:  strconv.Itoa(year),
			Actual: actual,
			Target: salary.MulInt(12),
		})
	}
	return points
}
