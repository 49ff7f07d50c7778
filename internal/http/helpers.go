package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bolso/internal/core"
	"bolso/internal/period"
	"bolso/internal/storage"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps sentinel errors onto HTTP statuses. Anything it
// does not recognize is a 500 with an opaque body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "profile not configured")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrZeroDate),
		errors.Is(err, core.ErrUnknownCategory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// parsePeriod reads the period query parameter, defaulting to month.
func parsePeriod(r *http.Request) (period.Kind, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("period"))
	if v == "" {
		return period.Month, true
	}
	kind := period.Kind(v)
	return kind, kind.Valid()
}

// parseDate accepts YYYY-MM-DD in local time; empty falls back to def.
func parseDate(v string, def time.Time) (time.Time, bool) {
	if strings.TrimSpace(v) == "" {
		return def, true
	}
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseMoneyAllowZero parses a decimal amount but, unlike core.ParseMoney,
// accepts the empty string and explicit zero. Salary and goal progress may
// legitimately be zero; transaction amounts may not.
func parseMoneyAllowZero(s string) (core.Money, error) {
	t := strings.TrimSpace(s)
	if t == "" || isZeroDecimal(t) {
		return core.Money{}, nil
	}
	return core.ParseMoney(t)
}

func isZeroDecimal(s string) bool {
	digits, seps := 0, 0
	for _, r := range s {
		switch {
		case r == '0':
			digits++
		case r == '.' || r == ',':
			seps++
			if seps > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}

// moneyJSON carries an amount both machine readable and preformatted.
type moneyJSON struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func money(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Formatted: m.String()}
}

type windowJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

func windowDTO(w period.Window) windowJSON {
	return windowJSON{
		Start: w.Start.Format(dateLayout),
		End:   w.End.Format(dateLayout),
		Label: w.Label,
	}
}
