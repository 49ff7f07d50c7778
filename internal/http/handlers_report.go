package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bolso/internal/budget"
	"bolso/internal/period"
	"bolso/internal/report"
)

// handleReport renders the paginated PDF for the requested window and
// streams it as a download. Composition happens into a buffer first so a
// failed render never leaks half a document to the client.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, ok := parsePeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period, want month, quarter or year")
		return
	}

	profile, err := s.repo.GetProfile(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	txs, err := s.repo.ListTransactions(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	goals, err := s.repo.ListGoals(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	now := time.Now()
	window := period.Resolve(kind, now)
	data := report.Data{
		Profile:      profile,
		Transactions: budget.Filter(txs, window),
		Goals:        goals,
		Window:       window,
		Now:          now,
	}

	var buf bytes.Buffer
	if err := report.Compose(data, &buf); err != nil {
		if errors.Is(err, report.ErrIncompleteProfile) {
			writeError(w, http.StatusUnprocessableEntity, "profile needs a name and salary before reports can be generated")
			return
		}
		slog.ErrorContext(r.Context(), "Report composition failed", "error", err, "period", string(kind))
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	name := report.FileName(profile.Name, now)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.WarnContext(r.Context(), "Report download interrupted", "error", err)
	}
}
