package mirror

import (
	"time"

	"bolso/internal/core"
)

// Row shapes of the hosted table store. Every table carries the owning
// user's id; timestamps are managed server-side.
type (
	ProfileRow struct {
		ID     string  `json:"id,omitempty"`
		UserID string  `json:"user_id"`
		Name   string  `json:"name"`
		Email  string  `json:"email,omitempty"`
		Salary float64 `json:"salary"`
	}

	FixedExpenseRow struct {
		ID     string  `json:"id,omitempty"`
		UserID string  `json:"user_id"`
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}

	TransactionRow struct {
		ID          string    `json:"id"`
		UserID      string    `json:"user_id"`
		Description string    `json:"description"`
		Amount      float64   `json:"amount"`
		Category    string    `json:"category"`
		Date        time.Time `json:"date"`
	}

	GoalRow struct {
		ID            string    `json:"id"`
		UserID        string    `json:"user_id"`
		Name          string    `json:"name"`
		TargetAmount  float64   `json:"target_amount"`
		CurrentAmount float64   `json:"current_amount"`
		Deadline      time.Time `json:"deadline"`
	}

	// Session is the authenticated state after sign up or sign in.
	Session struct {
		AccessToken string `json:"access_token"`
		User        User   `json:"user"`
	}

	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
)

// TransactionToRow converts a ledger transaction into its mirror shape.
func TransactionToRow(t core.Transaction, userID string) TransactionRow {
	return TransactionRow{
		ID:          t.ID,
		UserID:      userID,
		Description: t.Description,
		Amount:      t.Amount.Reais(),
		Category:    string(t.Category),
		Date:        t.Date,
	}
}

// GoalToRow converts a goal into its mirror shape.
func GoalToRow(g core.Goal, userID string) GoalRow {
	return GoalRow{
		ID:            g.ID,
		UserID:        userID,
		Name:          g.Name,
		TargetAmount:  g.Target.Reais(),
		CurrentAmount: g.Current.Reais(),
		Deadline:      g.Deadline,
	}
}
