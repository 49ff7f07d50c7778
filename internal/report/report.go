// Package report lays the engine outputs into a paginated PDF document:
// header band, user info, summary, expense breakdown, categories, goals,
// insights, and the full transaction history. The composer is a one-shot
// render; any failure aborts the whole document.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"bolso/internal/budget"
	"bolso/internal/core"
	"bolso/internal/insights"
	"bolso/internal/period"
)

// ErrIncompleteProfile aborts a render when the profile lacks a name or a
// positive salary. No partial document is ever emitted.
var ErrIncompleteProfile = errors.New("report: incomplete profile")

// Data is the snapshot a report is rendered from. Transactions must
// already be filtered to the window by the caller.
type Data struct {
	Profile      core.UserProfile
	Transactions []core.Transaction
	Goals        []core.Goal
	Window       period.Window
	Now          time.Time
}

const (
	marginX      = 20.0
	topY         = 20.0
	bottomMargin = 20.0
)

// FileName derives the deterministic download name from the user's name
// and the current date.
func FileName(name string, now time.Time) string {
	n := strings.Join(strings.Fields(strings.TrimSpace(name)), "_")
	return fmt.Sprintf("MeuBolso_Relatorio_%s_%s.pdf", n, now.Format("2006-01-02"))
}

// statusLabel is the report wording for the same thresholds as the
// dashboard card.
func statusLabel(utilization float64) string {
	switch {
	case utilization < 50:
		return "Excelente controle!"
	case utilization < 75:
		return "No caminho certo"
	case utilization < 90:
		return "Atenção necessária"
	default:
		return "Orçamento crítico"
	}
}

type composer struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	y     float64
	pageW float64
	pageH float64
}

// Compose renders the full report for data into w. The section order is
// fixed; every number comes from the same aggregation functions the
// dashboard uses, with the same rounding.
func Compose(data Data, w io.Writer) error {
	if strings.TrimSpace(data.Profile.Name) == "" || data.Profile.Salary.Cents <= 0 {
		return ErrIncompleteProfile
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	c := &composer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	c.pageW, c.pageH = pdf.GetPageSize()

	pdf.SetAutoPageBreak(false, bottomMargin)
	pdf.AliasNbPages("")
	footer := fmt.Sprintf("Página %%d de {nb} - Gerado por MeuBolso em %s", data.Now.Format("02/01/2006"))
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 10, c.tr(fmt.Sprintf(footer, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	summary := budget.Summarize(budget.Ledger{
		Transactions:  data.Transactions,
		FixedExpenses: data.Profile.FixedExpenses,
	}, data.Profile.Salary, data.Window)
	utilization, err := summary.Utilization()
	if err != nil {
		return err
	}

	c.header()
	c.userInfo(data)
	c.summarySection(summary, utilization)
	c.expenseBreakdown(data, summary)
	c.categorySection(data, summary)
	c.goalSection(data)
	c.insightSection(data, summary)
	c.transactionHistory(data)

	return pdf.Output(w)
}

func (c *composer) text(x, y, size float64, style, s string) {
	c.pdf.SetFont("Helvetica", style, size)
	c.pdf.Text(x, y, c.tr(s))
}

func (c *composer) rule() {
	c.pdf.SetDrawColor(200, 200, 200)
	c.pdf.Line(marginX, c.y, c.pageW-marginX, c.y)
}

// pageBreak starts a new page when fewer than needed millimeters remain.
func (c *composer) pageBreak(needed float64) {
	if c.y+needed > c.pageH-bottomMargin {
		c.pdf.AddPage()
		c.y = topY
	}
}

func (c *composer) sectionTitle(title string) {
	c.pageBreak(20)
	c.pdf.SetTextColor(0, 0, 0)
	c.text(marginX, c.y, 14, "B", title)
	c.y += 8
	c.rule()
	c.y += 8
}

func (c *composer) header() {
	c.pdf.SetFillColor(124, 58, 237)
	c.pdf.Rect(0, 0, c.pageW, 40, "F")
	c.pdf.SetTextColor(255, 255, 255)
	c.text(marginX, 18, 24, "B", "MeuBolso")
	c.text(marginX, 28, 12, "", "Relatório Financeiro Completo")
	c.pdf.SetTextColor(0, 0, 0)
	c.y = 50
}

func (c *composer) userInfo(data Data) {
	c.sectionTitle("Informações do Usuário")
	c.text(marginX, c.y, 11, "", "Nome: "+data.Profile.Name)
	c.y += 6
	c.text(marginX, c.y, 11, "", "Salário Mensal: "+data.Profile.Salary.String())
	c.y += 6
	c.text(marginX, c.y, 11, "", "Período: "+data.Window.Label)
	c.y += 6
	c.text(marginX, c.y, 11, "", "Data do Relatório: "+data.Now.Format("02/01/2006"))
	c.y += 12
}

func (c *composer) summarySection(summary budget.Summary, utilization float64) {
	c.pageBreak(60)
	c.sectionTitle("Resumo Financeiro")
	c.y += 2

	boxW := (c.pageW - 2*marginX - 10) / 2

	c.pdf.SetFillColor(254, 226, 226)
	c.pdf.RoundedRect(marginX, c.y, boxW, 25, 3, "1234", "F")
	c.pdf.SetTextColor(220, 38, 38)
	c.text(marginX+5, c.y+8, 10, "B", "Total Gasto")
	c.pdf.SetTextColor(0, 0, 0)
	c.text(marginX+5, c.y+18, 14, "B", summary.TotalSpent.String())

	x2 := marginX + boxW + 10
	c.pdf.SetFillColor(220, 252, 231)
	c.pdf.RoundedRect(x2, c.y, boxW, 25, 3, "1234", "F")
	c.pdf.SetTextColor(22, 163, 74)
	c.text(x2+5, c.y+8, 10, "B", "Disponível")
	c.pdf.SetTextColor(0, 0, 0)
	c.text(x2+5, c.y+18, 14, "B", summary.Available().String())

	c.y += 35

	c.text(marginX, c.y, 11, "B", "Utilização do Orçamento:")
	c.y += 8

	barW := c.pageW - 2*marginX
	c.pdf.SetFillColor(229, 231, 235)
	c.pdf.RoundedRect(marginX, c.y, barW, 8, 2, "1234", "F")

	clamped := utilization
	if clamped > 100 {
		clamped = 100
	}
	if clamped > 0 {
		switch {
		case utilization < 50:
			c.pdf.SetFillColor(34, 197, 94)
		case utilization < 75:
			c.pdf.SetFillColor(234, 179, 8)
		default:
			c.pdf.SetFillColor(239, 68, 68)
		}
		c.pdf.RoundedRect(marginX, c.y, barW*clamped/100, 8, 2, "1234", "F")
	}
	c.pdf.SetTextColor(0, 0, 0)
	c.text(c.pageW-40, c.y+6, 10, "B", fmt.Sprintf("%.1f%%", utilization))
	c.y += 18

	c.text(marginX, c.y, 11, "", "Status: "+statusLabel(utilization))
	c.y += 15
}

func (c *composer) expenseBreakdown(data Data, summary budget.Summary) {
	c.pageBreak(60)
	c.sectionTitle("Detalhamento de Gastos")

	c.text(marginX, c.y, 12, "B", "Contas Fixas:")
	c.y += 8
	for _, f := range data.Profile.FixedExpenses {
		c.pageBreak(7)
		c.text(marginX+5, c.y, 10, "", "- "+f.Name)
		c.text(c.pageW-60, c.y, 10, "", f.Amount.String())
		c.y += 6
	}
	c.y += 2
	c.text(marginX+5, c.y, 11, "B", "Subtotal Fixo: "+summary.TotalFixed.String())
	c.y += 12

	dailyAvg := summary.TotalVariable.DivRound(int64(data.Window.Days()))
	c.text(marginX, c.y, 12, "B", "Gastos Variáveis:")
	c.y += 8
	c.text(marginX+5, c.y, 10, "", "Total: "+summary.TotalVariable.String())
	c.y += 6
	c.text(marginX+5, c.y, 10, "", "Média diária: "+dailyAvg.String())
	c.y += 6
	c.text(marginX+5, c.y, 10, "", fmt.Sprintf("Número de transações: %d", summary.Count))
	c.y += 12
}

func (c *composer) categorySection(data Data, summary budget.Summary) {
	c.pageBreak(80)
	c.sectionTitle("Análise por Categoria")

	top := budget.TopCategories(budget.CategoryTotals(data.Transactions), 5)
	if len(top) == 0 {
		c.text(marginX+5, c.y, 10, "", "Nenhuma categoria registrada neste período")
		c.y += 10
		return
	}

	for i, ct := range top {
		c.pageBreak(20)
		pct := 0.0
		if summary.TotalVariable.Cents > 0 {
			pct = float64(ct.Amount.Cents) / float64(summary.TotalVariable.Cents) * 100
		}
		c.text(marginX, c.y, 11, "B", fmt.Sprintf("%d. %s", i+1, ct.Category))
		c.text(c.pageW-80, c.y, 11, "", fmt.Sprintf("%s (%.1f%%)", ct.Amount, pct))
		c.y += 6

		barW := c.pageW - 2*marginX - 10
		c.pdf.SetFillColor(229, 231, 235)
		c.pdf.RoundedRect(marginX+5, c.y, barW, 5, 1, "1234", "F")
		if pct > 0 {
			c.pdf.SetFillColor(168, 85, 247)
			c.pdf.RoundedRect(marginX+5, c.y, barW*pct/100, 5, 1, "1234", "F")
		}
		c.y += 10
	}
	c.y += 5
}

func (c *composer) goalSection(data Data) {
	if len(data.Goals) == 0 {
		return
	}
	c.pageBreak(60)
	c.sectionTitle("Metas Financeiras")

	for _, g := range data.Goals {
		c.pageBreak(25)
		progress := 0.0
		if g.Target.Cents > 0 {
			progress = float64(g.Current.Cents) / float64(g.Target.Cents) * 100
		}
		daysLeft := int(period.DateOnly(g.Deadline).Sub(period.DateOnly(data.Now)).Hours() / 24)

		c.text(marginX, c.y, 11, "B", g.Name)
		c.y += 6
		c.text(marginX+5, c.y, 9, "", fmt.Sprintf("Progresso: %s de %s", g.Current, g.Target))
		c.y += 5
		if daysLeft > 0 {
			c.text(marginX+5, c.y, 9, "", fmt.Sprintf("Prazo: %d dias restantes", daysLeft))
		} else {
			c.text(marginX+5, c.y, 9, "", "Prazo: Vencido")
		}
		c.y += 6

		barW := c.pageW - 2*marginX - 10
		c.pdf.SetFillColor(229, 231, 235)
		c.pdf.RoundedRect(marginX+5, c.y, barW, 5, 1, "1234", "F")
		// Overfunded goals print their true percentage but the bar stops
		// at full width.
		fill := progress
		if fill > 100 {
			fill = 100
		}
		if fill > 0 {
			c.pdf.SetFillColor(168, 85, 247)
			c.pdf.RoundedRect(marginX+5, c.y, barW*fill/100, 5, 1, "1234", "F")
		}
		c.text(c.pageW-40, c.y+4, 9, "", fmt.Sprintf("%.0f%%", progress))
		c.y += 12
	}
}

func (c *composer) insightSection(data Data, summary budget.Summary) {
	c.pageBreak(80)
	c.sectionTitle("Insights e Recomendações")

	list := insights.Generate(data.Profile.Salary, summary.TotalSpent, data.Transactions, period.DaysRemaining(data.Now))
	c.pdf.SetFont("Helvetica", "", 10)
	for _, in := range list {
		c.pageBreak(8)
		lines := c.pdf.SplitText(c.tr("- "+in.Title+": "+in.Description), c.pageW-2*marginX-10)
		for _, line := range lines {
			c.pageBreak(6)
			c.pdf.Text(marginX+5, c.y, line)
			c.y += 6
		}
	}
	c.y += 10
}

func (c *composer) transactionHistory(data Data) {
	if len(data.Transactions) == 0 {
		return
	}
	// The history always starts on a fresh page.
	c.pdf.AddPage()
	c.y = topY
	c.sectionTitle("Histórico de Transações")

	sorted := make([]core.Transaction, len(data.Transactions))
	copy(sorted, data.Transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	for _, t := range sorted {
		c.pageBreak(12)
		c.text(marginX, c.y, 9, "", t.Date.Format("02/01/2006"))
		c.text(50, c.y, 9, "", t.Description)
		c.text(120, c.y, 9, "", t.Category.String())
		c.text(c.pageW-50, c.y, 9, "B", t.Amount.String())
		c.y += 8
	}
}
