package http

import (
	"errors"
	"net/http"
	"time"

	"bolso/internal/budget"
	"bolso/internal/core"
	"bolso/internal/insights"
	"bolso/internal/period"
	"bolso/internal/series"
	"bolso/internal/storage"
)

type categoryShareJSON struct {
	Category string    `json:"category"`
	Icon     string    `json:"icon"`
	Amount   moneyJSON `json:"amount"`
	Share    float64   `json:"share"`
}

type summaryResponse struct {
	Greeting       string              `json:"greeting"`
	Window         windowJSON          `json:"window"`
	Salary         moneyJSON           `json:"salary"`
	TotalFixed     moneyJSON           `json:"total_fixed"`
	TotalVariable  moneyJSON           `json:"total_variable"`
	TotalSpent     moneyJSON           `json:"total_spent"`
	Remaining      moneyJSON           `json:"remaining"`
	Count          int                 `json:"transaction_count"`
	Utilization    *float64            `json:"utilization,omitempty"`
	Status         string              `json:"status,omitempty"`
	DaysRemaining  int                 `json:"days_remaining"`
	DailyAllowance moneyJSON           `json:"daily_allowance"`
	TopCategories  []categoryShareJSON `json:"top_categories"`
}

// loadLedger reads the snapshot pieces the derived metrics need. A missing
// profile is not an error here: the dashboard renders before onboarding,
// it just has no salary baseline.
func (s *Server) loadLedger(r *http.Request) (core.UserProfile, []core.Transaction, error) {
	profile, err := s.repo.GetProfile(r.Context())
	if err != nil && !errors.Is(err, storage.ErrProfileNotFound) {
		return core.UserProfile{}, nil, err
	}
	txs, err := s.repo.ListTransactions(r.Context())
	if err != nil {
		return core.UserProfile{}, nil, err
	}
	return profile, txs, nil
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	kind, ok := parsePeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period, want month, quarter or year")
		return
	}

	profile, txs, err := s.loadLedger(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	now := time.Now()
	window := period.Resolve(kind, now)
	summary := budget.Summarize(budget.Ledger{
		Transactions:  txs,
		FixedExpenses: profile.FixedExpenses,
	}, profile.Salary, window)

	resp := summaryResponse{
		Greeting:       period.Greeting(now),
		Window:         windowDTO(window),
		Salary:         money(summary.Salary),
		TotalFixed:     money(summary.TotalFixed),
		TotalVariable:  money(summary.TotalVariable),
		TotalSpent:     money(summary.TotalSpent),
		Remaining:      money(summary.Remaining),
		Count:          summary.Count,
		DaysRemaining:  period.DaysRemaining(now),
		DailyAllowance: money(budget.DailyAllowance(summary.Available(), now)),
		TopCategories:  make([]categoryShareJSON, 0, 4),
	}

	if utilization, err := summary.Utilization(); err == nil {
		resp.Utilization = &utilization
		resp.Status = budget.StatusLabel(utilization)
	}

	inWindow := budget.Filter(txs, window)
	for _, ct := range budget.TopCategories(budget.CategoryTotals(inWindow), 4) {
		share := 0.0
		if summary.TotalVariable.Cents > 0 {
			share = float64(ct.Amount.Cents) / float64(summary.TotalVariable.Cents) * 100
		}
		resp.TopCategories = append(resp.TopCategories, categoryShareJSON{
			Category: string(ct.Category),
			Icon:     ct.Category.Icon(),
			Amount:   money(ct.Amount),
			Share:    share,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type cumulativePointJSON struct {
	Label string    `json:"label"`
	Value moneyJSON `json:"value"`
}

type cumulativeResponse struct {
	Window windowJSON            `json:"window"`
	Points []cumulativePointJSON `json:"points"`
}

func (s *Server) handleCumulative(w http.ResponseWriter, r *http.Request) {
	kind, ok := parsePeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period, want month, quarter or year")
		return
	}

	_, txs, err := s.loadLedger(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	window := period.Resolve(kind, time.Now())
	points := series.Cumulative(txs, window, kind)

	resp := cumulativeResponse{
		Window: windowDTO(window),
		Points: make([]cumulativePointJSON, 0, len(points)),
	}
	for _, p := range points {
		resp.Points = append(resp.Points, cumulativePointJSON{Label: p.Label, Value: money(p.Value)})
	}
	writeJSON(w, http.StatusOK, resp)
}

type comparativePointJSON struct {
	Label  string    `json:"label"`
	Actual moneyJSON `json:"actual"`
	Target moneyJSON `json:"target"`
}

type comparativeResponse struct {
	Points []comparativePointJSON `json:"points"`
}

func (s *Server) handleComparative(w http.ResponseWriter, r *http.Request) {
	kind, ok := parsePeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period, want month, quarter or year")
		return
	}

	profile, txs, err := s.loadLedger(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	points := series.Comparative(txs, profile.Salary, kind, time.Now())

	resp := comparativeResponse{Points: make([]comparativePointJSON, 0, len(points))}
	for _, p := range points {
		resp.Points = append(resp.Points, comparativePointJSON{
			Label:  p.Label,
			Actual: money(p.Actual),
			Target: money(p.Target),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type insightJSON struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// handleInsights always evaluates the current month: the rule thresholds
// are calibrated against a monthly salary.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	profile, txs, err := s.loadLedger(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	now := time.Now()
	window := period.Resolve(period.Month, now)
	summary := budget.Summarize(budget.Ledger{
		Transactions:  txs,
		FixedExpenses: profile.FixedExpenses,
	}, profile.Salary, window)

	generated := insights.Generate(profile.Salary, summary.TotalSpent, budget.Filter(txs, window), period.DaysRemaining(now))

	out := make([]insightJSON, 0, len(generated))
	for _, in := range generated {
		out = append(out, insightJSON{
			Kind:        string(in.Kind),
			Title:       in.Title,
			Description: in.Description,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
