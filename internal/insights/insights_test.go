package insights

import (
	"strings"
	"testing"
	"time"

	"bolso/internal/core"
)

func tx(cents int64, cat core.Category) core.Transaction {
	return core.Transaction{
		ID:          "t",
		Description: "gasto",
		Amount:      core.Money{Cents: cents},
		Category:    cat,
		Date:        time.Date(2026, 8, 10, 12, 0, 0, 0, time.Local),
	}
}

func money(cents int64) core.Money { return core.Money{Cents: cents} }

func TestGenerateExcellentControl(t *testing.T) {
	// Salary 3000, spent 1200 (40%), 15 days left: rule 1 positive branch.
	got := Generate(money(300000), money(120000), []core.Transaction{tx(20000, core.Alimentacao)}, 15)

	if got[0].Kind != Positive || got[0].Title != "Excelente controle!" {
		t.Fatalf("expected excellent-control insight first, got %+v", got[0])
	}
	if !strings.Contains(got[0].Description, "40%") {
		t.Fatalf("description must carry the utilization, got %q", got[0].Description)
	}
}

func TestGenerateWarningPace(t *testing.T) {
	// 85% used with 10 days left: warning branch, not critical.
	got := Generate(money(100000), money(85000), nil, 10)
	if got[0].Kind != Warning {
		t.Fatalf("expected warning, got %+v", got[0])
	}
	if !strings.Contains(got[0].Description, "10 dias") {
		t.Fatalf("description must carry days remaining, got %q", got[0].Description)
	}
}

func TestGenerateCriticalAndConcentration(t *testing.T) {
	// Salary 1000, 960 spent in Compras, 3 days left. 96% crosses the
	// critical threshold (warning branch needs more than 5 days), and the
	// category holds 96% of the salary.
	txs := []core.Transaction{tx(96000, core.Compras)}
	got := Generate(money(100000), money(96000), txs, 3)

	if len(got) != 2 {
		t.Fatalf("expected 2 insights, got %d: %+v", len(got), got)
	}
	if got[0].Kind != Critical {
		t.Fatalf("expected critical first, got %+v", got[0])
	}
	if got[1].Kind != Informational || !strings.Contains(got[1].Description, "Compras") {
		t.Fatalf("expected Compras concentration insight, got %+v", got[1])
	}
	if !strings.Contains(got[1].Description, "96%") {
		t.Fatalf("concentration must carry the share of salary, got %q", got[1].Description)
	}
}

func TestGenerateUtilizationBranchesAreExclusive(t *testing.T) {
	// 96% with 10 days left: the warning branch wins over critical.
	got := Generate(money(100000), money(96000), nil, 10)
	if got[0].Kind != Warning {
		t.Fatalf("expected warning via else-chain, got %+v", got[0])
	}
	for _, in := range got {
		if in.Kind == Critical {
			t.Fatal("critical must not fire when warning already did")
		}
	}
}

func TestGenerateProjectedSavings(t *testing.T) {
	// 10 days elapsed (20 remaining), 500 spent: projects 1500 of a 3000
	// salary, well under 80%.
	txs := []core.Transaction{tx(50000, core.Lazer)}
	got := Generate(money(300000), money(50000), txs, 20)

	var found bool
	for _, in := range got {
		if in.Title == "Projeção positiva" {
			found = true
			if !strings.Contains(in.Description, "R$ 1500,00") {
				t.Fatalf("expected projected savings of R$ 1500,00, got %q", in.Description)
			}
		}
	}
	if !found {
		t.Fatalf("expected a projected-savings insight, got %+v", got)
	}
}

func TestGenerateFallback(t *testing.T) {
	got := Generate(money(100000), money(0), nil, 3)
	if len(got) != 1 {
		t.Fatalf("expected exactly the fallback, got %+v", got)
	}
	if got[0].Title != "Adicione mais gastos" || got[0].Kind != Informational {
		t.Fatalf("unexpected fallback %+v", got[0])
	}
}

func TestGenerateUndefinedSalaryYieldsFallbackOnly(t *testing.T) {
	txs := []core.Transaction{tx(96000, core.Compras)}
	got := Generate(money(0), money(96000), txs, 3)
	if len(got) != 1 || got[0].Title != "Adicione mais gastos" {
		t.Fatalf("zero salary must disable percentage rules, got %+v", got)
	}
}

func TestGenerateNeverEmpty(t *testing.T) {
	for days := 0; days <= 31; days++ {
		if got := Generate(money(100000), money(60000), nil, days); len(got) == 0 {
			t.Fatalf("daysRemaining=%d: insight list must never be empty", days)
		}
	}
}
