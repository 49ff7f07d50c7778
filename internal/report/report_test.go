package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"bolso/internal/core"
	"bolso/internal/period"
)

func snapshot() Data {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.Local)
	w := period.Resolve(period.Month, now)
	return Data{
		Profile: core.UserProfile{
			Name:   "Ana Souza",
			Salary: core.Money{Cents: 300000},
			FixedExpenses: []core.FixedExpense{
				{Name: "Aluguel", Amount: core.Money{Cents: 100000}},
				{Name: "Internet", Amount: core.Money{Cents: 9990}},
			},
		},
		Transactions: []core.Transaction{
			{
				ID:          "t1",
				Description: "Mercado",
				Amount:      core.Money{Cents: 23450},
				Category:    core.Alimentacao,
				Date:        time.Date(2026, 8, 10, 9, 0, 0, 0, time.Local),
			},
			{
				ID:          "t2",
				Description: "Cinema",
				Amount:      core.Money{Cents: 6000},
				Category:    core.Lazer,
				Date:        time.Date(2026, 8, 15, 21, 0, 0, 0, time.Local),
			},
		},
		Goals: []core.Goal{
			{
				ID:       "g1",
				Name:     "Reserva de emergência",
				Target:   core.Money{Cents: 1000000},
				Current:  core.Money{Cents: 1200000}, // overfunded on purpose
				Deadline: time.Date(2026, 12, 31, 0, 0, 0, 0, time.Local),
			},
		},
		Window: w,
		Now:    now,
	}
}

func TestComposeProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := Compose(snapshot(), &buf); err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty PDF output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output does not look like a PDF document")
	}
}

func TestComposeEmptyLedger(t *testing.T) {
	data := snapshot()
	data.Transactions = nil
	data.Goals = nil

	var buf bytes.Buffer
	if err := Compose(data, &buf); err != nil {
		t.Fatalf("empty ledger must still render: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty PDF output")
	}
}

func TestComposeRejectsIncompleteProfile(t *testing.T) {
	noName := snapshot()
	noName.Profile.Name = "  "
	var buf bytes.Buffer
	if err := Compose(noName, &buf); !errors.Is(err, ErrIncompleteProfile) {
		t.Fatalf("expected ErrIncompleteProfile for empty name, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatal("no partial output may be written on failure")
	}

	noSalary := snapshot()
	noSalary.Profile.Salary = core.Money{}
	if err := Compose(noSalary, &buf); !errors.Is(err, ErrIncompleteProfile) {
		t.Fatalf("expected ErrIncompleteProfile for zero salary, got %v", err)
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.Local)
	got := FileName("Ana  Souza ", now)
	want := "MeuBolso_Relatorio_Ana_Souza_2026-08-27.pdf"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
