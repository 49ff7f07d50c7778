package http

import (
	"net/http"
	"time"

	"bolso/internal/core"
)

type fixedExpenseJSON struct {
	Name   string    `json:"name"`
	Amount moneyJSON `json:"amount"`
}

type profileJSON struct {
	Name          string             `json:"name"`
	Salary        moneyJSON          `json:"salary"`
	ProfileImage  string             `json:"profile_image,omitempty"`
	FixedExpenses []fixedExpenseJSON `json:"fixed_expenses"`
}

type fixedExpenseRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type profileRequest struct {
	Name          string                `json:"name"`
	Salary        string                `json:"salary"`
	ProfileImage  string                `json:"profile_image"`
	FixedExpenses []fixedExpenseRequest `json:"fixed_expenses"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.repo.GetProfile(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := profileJSON{
		Name:          p.Name,
		Salary:        money(p.Salary),
		ProfileImage:  p.ProfileImage,
		FixedExpenses: make([]fixedExpenseJSON, 0, len(p.FixedExpenses)),
	}
	for _, fe := range p.FixedExpenses {
		out.FixedExpenses = append(out.FixedExpenses, fixedExpenseJSON{Name: fe.Name, Amount: money(fe.Amount)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !readJSON(w, r, &req) {
		return
	}

	salary, err := parseMoneyAllowZero(req.Salary)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid salary")
		return
	}

	p := core.UserProfile{
		Name:         req.Name,
		Salary:       salary,
		ProfileImage: req.ProfileImage,
	}
	for _, fe := range req.FixedExpenses {
		amount, err := core.ParseMoney(fe.Amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid fixed expense amount")
			return
		}
		p.FixedExpenses = append(p.FixedExpenses, core.FixedExpense{Name: fe.Name, Amount: amount})
	}

	if err := s.ledger.SaveProfile(r.Context(), p); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transactionJSON struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      moneyJSON `json:"amount"`
	Category    string    `json:"category"`
	Icon        string    `json:"icon"`
	Date        string    `json:"date"`
}

func transactionDTO(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Description: t.Description,
		Amount:      money(t.Amount),
		Category:    string(t.Category),
		Icon:        t.Category.Icon(),
		Date:        t.Date.Format(dateLayout),
	}
}

type transactionRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.repo.ListTransactions(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionDTO(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !readJSON(w, r, &req) {
		return
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unknown category")
		return
	}
	date, ok := parseDate(req.Date, time.Now())
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, want YYYY-MM-DD")
		return
	}

	t := core.Transaction{
		Description: req.Description,
		Amount:      amount,
		Category:    category,
		Date:        date,
	}
	id, err := s.ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	t.ID = id

	writeJSON(w, http.StatusCreated, transactionDTO(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type goalJSON struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Target   moneyJSON `json:"target"`
	Current  moneyJSON `json:"current"`
	Deadline string    `json:"deadline"`
}

func goalDTO(g core.Goal) goalJSON {
	return goalJSON{
		ID:       g.ID,
		Name:     g.Name,
		Target:   money(g.Target),
		Current:  money(g.Current),
		Deadline: g.Deadline.Format(dateLayout),
	}
}

type goalRequest struct {
	Name     string `json:"name"`
	Target   string `json:"target"`
	Deadline string `json:"deadline"`
}

type goalAmountRequest struct {
	Current string `json:"current"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.repo.ListGoals(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalDTO(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !readJSON(w, r, &req) {
		return
	}

	target, err := core.ParseMoney(req.Target)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid target amount")
		return
	}
	deadline, ok := parseDate(req.Deadline, time.Time{})
	if !ok || deadline.IsZero() {
		writeError(w, http.StatusUnprocessableEntity, "invalid deadline, want YYYY-MM-DD")
		return
	}

	g := core.Goal{
		Name:     req.Name,
		Target:   target,
		Deadline: deadline,
	}
	id, err := s.ledger.CreateGoal(r.Context(), g)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	g.ID = id

	writeJSON(w, http.StatusCreated, goalDTO(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalAmountRequest
	if !readJSON(w, r, &req) {
		return
	}

	current, err := parseMoneyAllowZero(req.Current)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	id := r.PathValue("id")
	if err := s.ledger.UpdateGoalAmount(r.Context(), id, current); err != nil {
		writeDomainError(w, r, err)
		return
	}

	g, err := s.repo.GetGoal(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goalDTO(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
