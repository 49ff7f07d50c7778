// Package insights turns current spending metrics into short advisory
// messages. The rules run in a fixed order and each may append
// independently; only the utilization rule is an else-chain.
package insights

import (
	"fmt"
	"math"

	"bolso/internal/budget"
	"bolso/internal/core"
)

// Kind classifies an insight for presentation.
type Kind string

const (
	Positive      Kind = "positive"
	Warning       Kind = "warning"
	Critical      Kind = "critical"
	Informational Kind = "informational"
)

// Insight is one advisory message. Ephemeral: regenerated on every render,
// never persisted.
type Insight struct {
	Kind        Kind
	Title       string
	Description string
}

// Generate evaluates the rule chain over the current-month metrics and
// returns the insights in evaluation order. The list is never empty: when
// no rule fires, it holds exactly the fallback message. A non-positive
// salary disables every percentage rule, so only the fallback can fire.
func Generate(salary, totalSpent core.Money, txs []core.Transaction, daysRemaining int) []Insight {
	var out []Insight

	hasSalary := salary.Cents > 0
	var utilization float64
	if hasSalary {
		utilization = float64(totalSpent.Cents) / float64(salary.Cents) * 100
	}

	// Rule 1: budget pace, mutually exclusive branches.
	if hasSalary {
		switch {
		case utilization < 50 && daysRemaining > 10:
			out = append(out, Insight{
				Kind:        Positive,
				Title:       "Excelente controle!",
				Description: fmt.Sprintf("Você gastou apenas %.0f%% do seu orçamento. Continue assim!", utilization),
			})
		case utilization > 80 && daysRemaining > 5:
			out = append(out, Insight{
				Kind:        Warning,
				Title:       "Atenção ao ritmo",
				Description: fmt.Sprintf("Você já usou %.0f%% do orçamento com %d dias pela frente.", utilization, daysRemaining),
			})
		case utilization > 95:
			out = append(out, Insight{
				Kind:        Critical,
				Title:       "Orçamento quase esgotado",
				Description: "Considere reduzir gastos não essenciais este mês.",
			})
		}
	}

	// Rule 2: category concentration above 30% of salary.
	if hasSalary {
		if top := budget.TopCategories(budget.CategoryTotals(txs), 1); len(top) > 0 {
			share := float64(top[0].Amount.Cents) / float64(salary.Cents) * 100
			if share > 30 {
				out = append(out, Insight{
					Kind:        Informational,
					Title:       "Oportunidade de economia",
					Description: fmt.Sprintf("%s representa %.0f%% do seu salário. Considere otimizar esses gastos.", top[0].Category, share),
				})
			}
		}
	}

	// Rule 3: projected monthly spend versus salary.
	if hasSalary {
		var sum int64
		for _, t := range txs {
			sum += t.Amount.Cents
		}
		elapsed := 30 - daysRemaining
		if elapsed < 1 {
			elapsed = 1
		}
		avgDaily := float64(sum) / float64(elapsed)
		if avgDaily > 0 {
			projected := avgDaily * 30
			if projected < float64(salary.Cents)*0.8 {
				saved := core.Money{Cents: int64(math.Round(float64(salary.Cents) - projected))}
				out = append(out, Insight{
					Kind:        Positive,
					Title:       "Projeção positiva",
					Description: fmt.Sprintf("No ritmo atual, você deve economizar %s este mês.", saved),
				})
			}
		}
	}

	// Fallback: keep the card populated while the ledger is still thin.
	if len(out) == 0 {
		out = append(out, Insight{
			Kind:        Informational,
			Title:       "Adicione mais gastos",
			Description: "Registre suas despesas para receber insights personalizados.",
		})
	}
	return out
}
