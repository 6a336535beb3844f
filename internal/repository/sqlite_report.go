package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cvergaras/obracost/internal/db"
	"github.com/cvergaras/obracost/internal/domain"
)

// reportColumns is the canonical SELECT column list for cost_control_reports.
const reportColumns = `id, control_account_id, project_id, report_date, period_type, budget_revision,
		bac, progress_pct, earned_value, actual_cost, planned_value,
		cost_variance, schedule_variance, cpi, spi, eac, vac, etc, tcpi,
		exchange_rate_uf, inflation_idx, status, approved_by, approved_at, generated_by, created_at`

// reportItemColumns is the canonical SELECT column list for cost_control_report_items.
const reportItemColumns = `id, report_id, element_id, code, name, responsible_party, cost_category,
		budgeted_cost, progress_pct, earned_value, actual_cost, planned_value,
		cost_variance, schedule_variance, cpi, eac, is_critical, variance_explanation, created_at`

// SQLiteReportRepo implements ReportRepo over SQLite.
type SQLiteReportRepo struct {
	db db.DBTX
}

func NewSQLiteReportRepo(db db.DBTX) *SQLiteReportRepo {
	return &SQLiteReportRepo{db: db}
}

// Create inserts the report header and all its items.
func (r *SQLiteReportRepo) Create(ctx context.Context, rep *domain.CostControlReport) error {
	query := `INSERT INTO cost_control_reports (id, control_account_id, project_id, report_date,
		period_type, budget_revision, bac, progress_pct, earned_value, actual_cost, planned_value,
		cost_variance, schedule_variance, cpi, spi, eac, vac, etc, tcpi,
		exchange_rate_uf, inflation_idx, status, approved_by, approved_at, generated_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rep.ID,
		rep.ControlAccountID,
		rep.ProjectID,
		rep.ReportDate.Format(dateLayout),
		string(rep.PeriodType),
		rep.BudgetRevision,
		rep.BAC,
		rep.ProgressPct,
		rep.EarnedValue,
		rep.ActualCost,
		rep.PlannedValue,
		rep.CostVariance,
		rep.ScheduleVariance,
		rep.CPI,
		rep.SPI,
		rep.EAC,
		rep.VAC,
		rep.ETC,
		nullableFloatToValue(rep.TCPI),
		rep.ExchangeRateUF,
		rep.InflationIdx,
		string(rep.Status),
		rep.ApprovedBy,
		nullableTimeToString(rep.ApprovedAt, time.RFC3339),
		rep.GeneratedBy,
		rep.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting cost control report: %w", err)
	}

	itemQuery := `INSERT INTO cost_control_report_items (id, report_id, element_id, code, name,
		responsible_party, cost_category, budgeted_cost, progress_pct, earned_value, actual_cost,
		planned_value, cost_variance, schedule_variance, cpi, eac, is_critical,
		variance_explanation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, it := range rep.Items {
		_, err := r.db.ExecContext(ctx, itemQuery,
			it.ID,
			it.ReportID,
			it.ElementID,
			it.Code,
			it.Name,
			it.ResponsibleParty,
			string(it.CostCategory),
			it.BudgetedCost,
			it.ProgressPct,
			it.EarnedValue,
			it.ActualCost,
			it.PlannedValue,
			it.CostVariance,
			it.ScheduleVariance,
			it.CPI,
			it.EAC,
			boolToInt(it.IsCritical),
			it.VarianceExplanation,
			it.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting report item %s: %w", it.Code, err)
		}
	}
	return nil
}

func (r *SQLiteReportRepo) GetByID(ctx context.Context, id string) (*domain.CostControlReport, error) {
	query := `SELECT ` + reportColumns + ` FROM cost_control_reports WHERE id = ?`
	rep, err := r.scanReport(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	rep.Items = items
	return rep, nil
}

func (r *SQLiteReportRepo) ListByControlAccount(ctx context.Context, controlAccountID string) ([]*domain.CostControlReport, error) {
	query := `SELECT ` + reportColumns + ` FROM cost_control_reports
		WHERE control_account_id = ? ORDER BY report_date, created_at`
	rows, err := r.db.QueryContext(ctx, query, controlAccountID)
	if err != nil {
		return nil, fmt.Errorf("listing reports for %s: %w", controlAccountID, err)
	}
	defer rows.Close()

	var reports []*domain.CostControlReport
	for rows.Next() {
		rep, err := r.scanReportRow(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}

	for _, rep := range reports {
		items, err := r.listItems(ctx, rep.ID)
		if err != nil {
			return nil, err
		}
		rep.Items = items
	}
	return reports, nil
}

// Update persists header approval-state changes only.
func (r *SQLiteReportRepo) Update(ctx context.Context, rep *domain.CostControlReport) error {
	query := `UPDATE cost_control_reports SET status = ?, approved_by = ?, approved_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		string(rep.Status),
		rep.ApprovedBy,
		nullableTimeToString(rep.ApprovedAt, time.RFC3339),
		rep.ID,
	)
	if err != nil {
		return fmt.Errorf("updating report: %w", err)
	}
	return nil
}

// UpdateItem persists an item's variance explanation.
func (r *SQLiteReportRepo) UpdateItem(ctx context.Context, it *domain.CostControlReportItem) error {
	query := `UPDATE cost_control_report_items SET variance_explanation = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, it.VarianceExplanation, it.ID); err != nil {
		return fmt.Errorf("updating report item %s: %w", it.ID, err)
	}
	return nil
}

func (r *SQLiteReportRepo) listItems(ctx context.Context, reportID string) ([]*domain.CostControlReportItem, error) {
	query := `SELECT ` + reportItemColumns + ` FROM cost_control_report_items
		WHERE report_id = ? ORDER BY code`
	rows, err := r.db.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("listing report items: %w", err)
	}
	defer rows.Close()

	var items []*domain.CostControlReportItem
	for rows.Next() {
		var it domain.CostControlReportItem
		var categoryStr, createdStr string
		var criticalInt int
		err := rows.Scan(
			&it.ID, &it.ReportID, &it.ElementID, &it.Code, &it.Name,
			&it.ResponsibleParty, &categoryStr, &it.BudgetedCost, &it.ProgressPct,
			&it.EarnedValue, &it.ActualCost, &it.PlannedValue,
			&it.CostVariance, &it.ScheduleVariance, &it.CPI, &it.EAC,
			&criticalInt, &it.VarianceExplanation, &createdStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning report item: %w", err)
		}
		it.CostCategory = domain.ResourceCategory(categoryStr)
		it.IsCritical = intToBool(criticalInt)
		it.CreatedAt, err = time.Parse(time.RFC3339, createdStr)
		if err != nil {
			return nil, fmt.Errorf("parsing item created_at: %w", err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report items: %w", err)
	}
	return items, nil
}

func (r *SQLiteReportRepo) scanReport(row *sql.Row) (*domain.CostControlReport, error) {
	rep, err := scanReportFields(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("cost control report: %w", ErrNotFound)
		}
		return nil, err
	}
	return rep, nil
}

func (r *SQLiteReportRepo) scanReportRow(rows *sql.Rows) (*domain.CostControlReport, error) {
	return scanReportFields(rows.Scan)
}

func scanReportFields(scan func(dest ...any) error) (*domain.CostControlReport, error) {
	var rep domain.CostControlReport
	var periodTypeStr, statusStr, dateStr, createdStr string
	var tcpi sql.NullFloat64
	var approvedAt sql.NullString

	err := scan(
		&rep.ID, &rep.ControlAccountID, &rep.ProjectID, &dateStr, &periodTypeStr, &rep.BudgetRevision,
		&rep.BAC, &rep.ProgressPct, &rep.EarnedValue, &rep.ActualCost, &rep.PlannedValue,
		&rep.CostVariance, &rep.ScheduleVariance, &rep.CPI, &rep.SPI, &rep.EAC, &rep.VAC, &rep.ETC, &tcpi,
		&rep.ExchangeRateUF, &rep.InflationIdx, &statusStr, &rep.ApprovedBy, &approvedAt,
		&rep.GeneratedBy, &createdStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning report: %w", err)
	}

	rep.PeriodType = domain.PeriodType(periodTypeStr)
	rep.Status = domain.ReportStatus(statusStr)
	if tcpi.Valid {
		rep.TCPI = &tcpi.Float64
	}
	rep.ApprovedAt = parseNullableTime(approvedAt, time.RFC3339)

	var parseErr error
	rep.ReportDate, parseErr = time.Parse(dateLayout, dateStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing report_date: %w", parseErr)
	}
	rep.CreatedAt, parseErr = time.Parse(time.RFC3339, createdStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	return &rep, nil
}
