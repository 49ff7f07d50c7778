package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Money is an amount in cents of Brazilian real. All arithmetic is done
	// on cents; float conversion happens only at display boundaries.
	Money struct {
		Cents int64
	}

	// Transaction is a single variable expense recorded by the user.
	// Immutable once created, except for deletion.
	Transaction struct {
		ID          string
		Description string
		Amount      Money
		Date        time.Time
		Category    Category
	}

	// FixedExpense is a recurring monthly charge. It has no identity of its
	// own: the list is always replaced wholesale.
	FixedExpense struct {
		Name   string
		Amount Money
	}

	// Goal is a savings target. Current may exceed Target; progress is not
	// clamped except when drawing bars.
	Goal struct {
		ID       string
		Name     string
		Target   Money
		Current  Money
		Deadline time.Time
	}

	// UserProfile holds the budget baseline: monthly salary plus the fixed
	// expense list.
	UserProfile struct {
		Name          string
		Salary        Money
		ProfileImage  string
		FixedExpenses []FixedExpense
	}

	// Snapshot is the full ledger state the engine reads. The engine never
	// mutates it; every aggregation recomputes from a fresh snapshot.
	Snapshot struct {
		Profile      UserProfile
		Transactions []Transaction
		Goals        []Goal
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrZeroDate         = errors.New("date cannot be zero")
	ErrUnknownCategory  = errors.New("unknown category")
)

const maxDescriptionLen = 200

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other. The result may be negative.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// MulInt scales the amount by an integer factor.
func (m Money) MulInt(n int64) Money {
	return Money{Cents: m.Cents * n}
}

// DivRound divides the amount by n, rounding half away from zero on the
// cent. n must be positive.
func (m Money) DivRound(n int64) Money {
	c := m.Cents
	neg := c < 0
	if neg {
		c = -c
	}
	q := (c + n/2) / n
	if neg {
		q = -q
	}
	return Money{Cents: q}
}

// Reais returns the real value as a float64 for display purposes only.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > maxDescriptionLen {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Category.Valid() {
		return ErrUnknownCategory
	}
	return nil
}

func (f FixedExpense) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	return f.Amount.Validate()
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.Target.Validate(); err != nil {
		return err
	}
	if g.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	if g.Deadline.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Validate checks the profile. Salary zero is allowed: the salary can be
// filled in after onboarding, and percentage metrics stay undefined until
// it is.
func (p UserProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Salary.Cents < 0 {
		return ErrInvalidAmount
	}
	for _, f := range p.FixedExpenses {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}
