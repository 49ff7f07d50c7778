// Package period resolves a period kind and a reference instant into a
// concrete date window with a pt-BR label.
package period

import (
	"fmt"
	"time"
)

// Kind selects the statistics window. It is a closed enumeration; callers
// must not pass anything else.
type Kind string

const (
	Month   Kind = "month"
	Quarter Kind = "quarter"
	Year    Kind = "year"
)

// Valid reports whether k is one of the enumerated kinds.
func (k Kind) Valid() bool {
	switch k {
	case Month, Quarter, Year:
		return true
	default:
		return false
	}
}

// Window is a concrete period: Start inclusive, End inclusive. End is the
// reference instant itself, so every window is "to date".
type Window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls inside the window, inclusive on both
// ends.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the number of calendar days the window spans, inclusive.
// Never less than 1.
func (w Window) Days() int {
	start := DateOnly(w.Start)
	end := DateOnly(w.End)
	d := int(end.Sub(start).Hours()/24) + 1
	if d < 1 {
		return 1
	}
	return d
}

var monthLong = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var monthShort = [...]string{
	"Jan", "Fev", "Mar", "Abr", "Mai", "Jun",
	"Jul", "Ago", "Set", "Out", "Nov", "Dez",
}

// MonthName returns the full pt-BR month name.
func MonthName(m time.Month) string {
	return monthLong[int(m)-1]
}

// MonthAbbr returns the capitalized three-letter pt-BR month name.
func MonthAbbr(m time.Month) string {
	return monthShort[int(m)-1]
}

// Resolve computes the window for kind anchored at now. All calendar math
// uses now's location consistently.
func Resolve(kind Kind, now time.Time) Window {
	year, month, _ := now.Date()
	loc := now.Location()

	switch kind {
	case Quarter:
		// Quarter blocks aligned to Jan/Apr/Jul/Oct.
		qm := time.Month((int(month)-1)/3*3 + 1)
		start := time.Date(year, qm, 1, 0, 0, 0, 0, loc)
		return Window{
			Start: start,
			End:   now,
			Label: fmt.Sprintf("%s - %s %d", MonthAbbr(qm), MonthAbbr(month), year),
		}
	case Year:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return Window{
			Start: start,
			End:   now,
			Label: fmt.Sprintf("Ano %d", year),
		}
	default: // Month
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return Window{
			Start: start,
			End:   now,
			Label: fmt.Sprintf("%s de %d", MonthName(month), year),
		}
	}
}

// Greeting returns the pt-BR salutation for t's hour of day.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Bom dia"
	case h < 18:
		return "Boa tarde"
	default:
		return "Boa noite"
	}
}

// DateOnly truncates t to midnight of its calendar day, keeping the
// location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days of now's calendar month.
func DaysInMonth(now time.Time) int {
	y, m, _ := now.Date()
	// Day 0 of the next month is the last day of this one.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, now.Location()).Day()
}

// DaysRemaining counts the days left in now's calendar month, today
// included. Always anchored to the real current month, whatever window is
// being viewed.
func DaysRemaining(now time.Time) int {
	return DaysInMonth(now) - now.Day() + 1
}
