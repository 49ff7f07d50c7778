// Package series builds the chart series of the engine: cumulative
// spending over a window and fixed-length budget-vs-actual comparisons
// across past periods.
package series

import (
	"fmt"
	"time"

	"bolso/internal/core"
	"bolso/internal/period"
)

// Point is one bucket of a cumulative series.
type Point struct {
	Label string
	Value core.Money
}

// Cumulative produces the running-total spending series for a window:
// daily points for a month, 7-day buckets for a quarter, and the twelve
// calendar months for a year. The running total restarts at the window
// start. Zero transactions yield all-zero points.
func Cumulative(txs []core.Transaction, w period.Window, kind period.Kind) []Point {
	switch kind {
	case period.Quarter:
		return cumulativeWeekly(txs, w)
	case period.Year:
		return cumulativeMonthly(txs, w)
	default:
		return cumulativeDaily(txs, w)
	}
}

// cumulativeDaily emits one point per calendar day from start to end, each
// carrying the sum of every transaction dated on or before that day.
func cumulativeDaily(txs []core.Transaction, w period.Window) []Point {
	start := period.DateOnly(w.Start)
	end := period.DateOnly(w.End)

	var points []Point
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		var sum core.Money
		for _, t := range txs {
			if !period.DateOnly(t.Date).After(day) && !t.Date.Before(w.Start) {
				sum = sum.Add(t.Amount)
			}
		}
		points = append(points, Point{
			Label: fmt.Sprintf("%d", day.Day()),
			Value: sum,
		})
	}
	return points
}

// cumulativeWeekly emits 7-day buckets starting at the window start, the
// last one clamped to the window end.
func cumulativeWeekly(txs []core.Transaction, w period.Window) []Point {
	start := period.DateOnly(w.Start)
	end := period.DateOnly(w.End)

	var points []Point
	var running core.Money
	week := 1
	for bucket := start; !bucket.After(end); bucket = bucket.AddDate(0, 0, 7) {
		bucketEnd := bucket.AddDate(0, 0, 6)
		if bucketEnd.After(end) {
			bucketEnd = end
		}
		for _, t := range txs {
			d := period.DateOnly(t.Date)
			if !d.Before(bucket) && !d.After(bucketEnd) {
				running = running.Add(t.Amount)
			}
		}
		points = append(points, Point{
			Label: fmt.Sprintf("S%d", week),
			Value: running,
		})
		week++
	}
	return points
}

// cumulativeMonthly emits the twelve fixed Jan-Dec buckets of the window's
// year, each carrying the running total through that month.
func cumulativeMonthly(txs []core.Transaction, w period.Window) []Point {
	year := w.Start.Year()

	points := make([]Point, 0, 12)
	var running core.Money
	for m := time.January; m <= time.December; m++ {
		for _, t := range txs {
			if t.Date.Year() == year && t.Date.Month() == m {
				running = running.Add(t.Amount)
			}
		}
		points = append(points, Point{
			Label: period.MonthAbbr(m),
			Value: running,
		})
	}
	return points
}
