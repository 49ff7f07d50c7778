package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	applog "bolso/internal/log"
	"bolso/internal/services"
	"bolso/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "bolso.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	ledger := services.NewLedgerService(repo, nil)
	s := NewServer("127.0.0.1:0", repo, ledger, applog.New(applog.DefaultConfig()))

	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, b
}

func seedProfile(t *testing.T, ts *httptest.Server) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/profile", `{
		"name": "Ana",
		"salary": "3000",
		"fixed_expenses": [{"name": "Aluguel", "amount": "1000"}]
	}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("seed profile: status %d body %s", resp.StatusCode, body)
	}
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("healthz: status %d body %q", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/readyz", "")
	if resp.StatusCode != http.StatusOK || string(body) != "ready" {
		t.Fatalf("readyz: status %d body %q", resp.StatusCode, body)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/profile", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before onboarding, got %d", resp.StatusCode)
	}

	seedProfile(t, ts)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/profile", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get profile: status %d", resp.StatusCode)
	}
	var p struct {
		Name   string `json:"name"`
		Salary struct {
			Cents     int64  `json:"cents"`
			Formatted string `json:"formatted"`
		} `json:"salary"`
		FixedExpenses []struct {
			Name string `json:"name"`
		} `json:"fixed_expenses"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "Ana" || p.Salary.Cents != 300000 || p.Salary.Formatted != "R$ 3000,00" {
		t.Fatalf("unexpected profile %+v", p)
	}
	if len(p.FixedExpenses) != 1 || p.FixedExpenses[0].Name != "Aluguel" {
		t.Fatalf("unexpected fixed expenses %+v", p.FixedExpenses)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", `{
		"description": "Mercado",
		"amount": "234,50",
		"category": "Alimentação"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d body %s", resp.StatusCode, body)
	}
	var created struct {
		ID     string `json:"id"`
		Amount struct {
			Cents int64 `json:"cents"`
		} `json:"amount"`
		Icon string `json:"icon"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Amount.Cents != 23450 || created.Icon == "" {
		t.Fatalf("unexpected created transaction %+v", created)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err != nil || len(list) != 1 {
		t.Fatalf("expected one transaction, got %s err=%v", body, err)
	}

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/"+created.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/"+created.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("double delete must 404, got %d", resp.StatusCode)
	}
}

func TestTransactionValidation(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad amount", `{"description": "x", "amount": "-5", "category": "Outro"}`},
		{"zero amount", `{"description": "x", "amount": "0", "category": "Outro"}`},
		{"unknown category", `{"description": "x", "amount": "10", "category": "Cripto"}`},
		{"empty description", `{"description": "  ", "amount": "10", "category": "Outro"}`},
		{"bad date", `{"description": "x", "amount": "10", "category": "Outro", "date": "10/08/2026"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", tc.body)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", resp.StatusCode)
			}
		})
	}
}

func TestGoalLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/goals", `{
		"name": "Viagem",
		"target": "5000",
		"deadline": "2027-01-15"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d body %s", resp.StatusCode, body)
	}
	var g struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &g); err != nil || g.ID == "" {
		t.Fatalf("decode: %v body %s", err, body)
	}

	resp, body = doJSON(t, http.MethodPatch, ts.URL+"/api/goals/"+g.ID, `{"current": "6000"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch: status %d body %s", resp.StatusCode, body)
	}
	var updated struct {
		Current struct {
			Cents int64 `json:"cents"`
		} `json:"current"`
	}
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Saved amount may exceed the target.
	if updated.Current.Cents != 600000 {
		t.Fatalf("expected 600000 cents, got %d", updated.Current.Cents)
	}

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/goals/"+g.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/goals", "")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("expected empty list, got %d %s", resp.StatusCode, body)
	}
}

func TestSummary(t *testing.T) {
	ts := newTestServer(t)
	seedProfile(t, ts)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", `{
		"description": "Mercado",
		"amount": "200",
		"category": "Alimentação"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d body %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/summary", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: status %d body %s", resp.StatusCode, body)
	}
	var sum struct {
		Greeting   string `json:"greeting"`
		TotalSpent struct {
			Cents int64 `json:"cents"`
		} `json:"total_spent"`
		Utilization   *float64 `json:"utilization"`
		Status        string   `json:"status"`
		TopCategories []struct {
			Category string  `json:"category"`
			Share    float64 `json:"share"`
		} `json:"top_categories"`
	}
	if err := json.Unmarshal(body, &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	switch sum.Greeting {
	case "Bom dia", "Boa tarde", "Boa noite":
	default:
		t.Fatalf("unexpected greeting %q", sum.Greeting)
	}
	if sum.TotalSpent.Cents != 120000 {
		t.Fatalf("expected 120000 cents spent, got %d", sum.TotalSpent.Cents)
	}
	if sum.Utilization == nil || *sum.Utilization != 40 || sum.Status != "No controle" {
		t.Fatalf("expected 40%% No controle, got %+v %q", sum.Utilization, sum.Status)
	}
	if len(sum.TopCategories) != 1 || sum.TopCategories[0].Category != "Alimentação" || sum.TopCategories[0].Share != 100 {
		t.Fatalf("unexpected top categories %+v", sum.TopCategories)
	}
}

func TestSummaryWithoutSalaryOmitsUtilization(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/summary", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: status %d", resp.StatusCode)
	}
	if bytes.Contains(body, []byte(`"utilization"`)) {
		t.Fatalf("utilization must be omitted without a salary: %s", body)
	}
}

func TestSeriesEndpoints(t *testing.T) {
	ts := newTestServer(t)
	seedProfile(t, ts)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", `{
		"description": "Mercado", "amount": "150", "category": "Alimentação"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}

	for _, p := range []string{"month", "quarter", "year"} {
		resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/series/cumulative?period="+p, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("cumulative %s: status %d", p, resp.StatusCode)
		}
		var cum struct {
			Points []struct {
				Value struct {
					Cents int64 `json:"cents"`
				} `json:"value"`
			} `json:"points"`
		}
		if err := json.Unmarshal(body, &cum); err != nil || len(cum.Points) == 0 {
			t.Fatalf("cumulative %s: %v body %s", p, err, body)
		}
		if got := cum.Points[len(cum.Points)-1].Value.Cents; got != 15000 {
			t.Fatalf("cumulative %s final point = %d, want 15000", p, got)
		}
	}

	wantLens := map[string]int{"month": 6, "quarter": 4, "year": 3}
	for p, want := range wantLens {
		resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/series/comparative?period="+p, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("comparative %s: status %d", p, resp.StatusCode)
		}
		var comp struct {
			Points []json.RawMessage `json:"points"`
		}
		if err := json.Unmarshal(body, &comp); err != nil || len(comp.Points) != want {
			t.Fatalf("comparative %s: want %d points, got %d err=%v", p, want, len(comp.Points), err)
		}
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/summary?period=decade", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid period must 400, got %d", resp.StatusCode)
	}
}

func TestInsightsNeverEmpty(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/insights", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("insights: status %d", resp.StatusCode)
	}
	var list []struct {
		Kind  string `json:"kind"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &list); err != nil || len(list) == 0 {
		t.Fatalf("insights must never be empty: %s err=%v", body, err)
	}
}

func TestReportDownload(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/report", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("report without profile must 404, got %d", resp.StatusCode)
	}

	seedProfile(t, ts)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/report?period=month", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report: status %d body %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "MeuBolso_Relatorio_Ana_") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", body[:min(8, len(body))])
	}
}

func TestUnknownRouteAndBody(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/nope", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown route: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/transactions", `{"description": `)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body must 400, got %d", resp.StatusCode)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
