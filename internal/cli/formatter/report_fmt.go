package formatter

import (
	"fmt"
	"strings"

	"github.com/cvergaras/obracost/internal/domain"
)

// FormatReport renders a cost control report: a metric summary block
// followed by the per-element line item table. Critical items are
// flagged and their explanations (or the lack of one) shown.
func FormatReport(r *domain.CostControlReport) string {
	var b strings.Builder

	b.WriteString(Header(fmt.Sprintf("cost control report %s", r.ReportDate.Format("2006-01-02"))))
	b.WriteString("\n\n")

	status := StyleYellow.Render(strings.ToUpper(string(r.Status)))
	if r.Status == domain.ReportApproved {
		status = StyleGreen.Render("APPROVED")
	}
	b.WriteString(fmt.Sprintf("%s  %s   %s %s   %s %d\n\n",
		Dim("status"), status,
		Dim("period"), string(r.PeriodType),
		Dim("budget revision"), r.BudgetRevision))

	summary := [][]string{
		{Dim("BAC"), Money(r.BAC), Dim("EV"), Money(r.EarnedValue)},
		{Dim("PV"), Money(r.PlannedValue), Dim("AC"), Money(r.ActualCost)},
		{Dim("CV"), VarianceStyle(r.CostVariance).Render(Money(r.CostVariance)), Dim("SV"), VarianceStyle(r.ScheduleVariance).Render(Money(r.ScheduleVariance))},
		{Dim("CPI"), IndexStyle(r.CPI).Render(Index(r.CPI)), Dim("SPI"), IndexStyle(r.SPI).Render(Index(r.SPI))},
		{Dim("EAC"), Money(r.EAC), Dim("VAC"), VarianceStyle(r.VAC).Render(Money(r.VAC))},
		{Dim("ETC"), Money(r.ETC), Dim("TCPI"), OptIndex(r.TCPI)},
	}
	for _, row := range summary {
		b.WriteString(fmt.Sprintf("%s %14s    %s %14s\n", row[0], row[1], row[2], row[3]))
	}
	b.WriteString(fmt.Sprintf("%s %13s\n\n", Dim("progress"), Pct(r.ProgressPct)))

	headers := []string{"CODE", "NAME", "BUDGET", "PCT", "EV", "AC", "CV", "CPI", "EAC", "FLAG"}
	rows := make([][]string, 0, len(r.Items))
	for _, it := range r.Items {
		rows = append(rows, []string{
			Dim(it.Code),
			it.Name,
			Money(it.BudgetedCost),
			Pct(it.ProgressPct),
			Money(it.EarnedValue),
			Money(it.ActualCost),
			VarianceStyle(it.CostVariance).Render(Money(it.CostVariance)),
			IndexStyle(it.CPI).Render(Index(it.CPI)),
			Money(it.EAC),
			CriticalIndicator(it.IsCritical),
		})
	}
	b.WriteString(RenderTable(headers, rows))

	for _, it := range r.Items {
		if !it.IsCritical {
			continue
		}
		b.WriteString("\n")
		if it.VarianceExplanation == "" {
			b.WriteString(fmt.Sprintf("%s %s: %s\n", StyleRed.Render("!"), Bold(it.Code), Dim("no variance explanation yet")))
		} else {
			b.WriteString(fmt.Sprintf("%s %s: %s\n", StyleRed.Render("!"), Bold(it.Code), it.VarianceExplanation))
		}
	}

	if r.ExchangeRateUF > 0 {
		b.WriteString("\n" + Dim(fmt.Sprintf("UF %s  inflation index %.2f", Money(r.ExchangeRateUF), r.InflationIdx)) + "\n")
	}
	return b.String()
}
