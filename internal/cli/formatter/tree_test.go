package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/cvergaras/obracost/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWBSTree(t *testing.T) {
	pct := 62.5
	items := []WBSTreeItem{
		{Code: "1", Name: "Obra gruesa", Type: "level", Level: 1},
		{Code: "1.1", Name: "Fundaciones", Type: "work_package", Level: 2, ProgressPct: &pct},
		{Code: "1.2", Name: "Estructura", Type: "planning_package", Level: 2, IsLast: true},
	}

	out := stripANSI(RenderWBSTree(items))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "1 Obra gruesa", lines[0])
	assert.Equal(t, "├─ 1.1 Fundaciones [WP] (62.5%)", lines[1])
	assert.Equal(t, "└─ 1.2 Estructura [PP]", lines[2])
}

func TestRenderWBSTree_Empty(t *testing.T) {
	assert.Contains(t, stripANSI(RenderWBSTree(nil)), "empty tree")
}

func TestFormatReport(t *testing.T) {
	tcpi := 1.048
	r := &domain.CostControlReport{
		ReportDate:       time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		PeriodType:       domain.PeriodMonthly,
		BudgetRevision:   1,
		Status:           domain.ReportDraft,
		BAC:              100000,
		ProgressPct:      35,
		EarnedValue:      35000,
		ActualCost:       38000,
		PlannedValue:     40000,
		CostVariance:     -3000,
		ScheduleVariance: -5000,
		CPI:              0.921,
		SPI:              0.875,
		EAC:              108571.43,
		VAC:              -8571.43,
		ETC:              70571.43,
		TCPI:             &tcpi,
		ExchangeRateUF:   38500.50,
		InflationIdx:     1.04,
		Items: []*domain.CostControlReportItem{
			{Code: "1.1", Name: "Fundaciones", BudgetedCost: 100000, ProgressPct: 35,
				EarnedValue: 35000, ActualCost: 38000, CostVariance: -3000, CPI: 0.921,
				EAC: 108571.43, IsCritical: true},
		},
	}

	out := stripANSI(FormatReport(r))
	assert.Contains(t, out, "COST CONTROL REPORT 2026-05-01")
	assert.Contains(t, out, "DRAFT")
	assert.Contains(t, out, "108,571.43")
	assert.Contains(t, out, "-3,000.00")
	assert.Contains(t, out, "1.048")
	assert.Contains(t, out, "● CRITICAL")
	assert.Contains(t, out, "no variance explanation yet")
	assert.Contains(t, out, "UF 38,500.50")
}

func TestFormatReport_NilTCPIRendersDash(t *testing.T) {
	r := &domain.CostControlReport{
		ReportDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		PeriodType: domain.PeriodMonthly,
		Status:     domain.ReportDraft,
	}
	out := stripANSI(FormatReport(r))
	assert.Contains(t, out, "—")
}
