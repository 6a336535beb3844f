package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cvergaras/obracost/internal/db"
	"github.com/cvergaras/obracost/internal/domain"
)

// progressColumns is the canonical SELECT column list for wbs_element_progress.
const progressColumns = `id, element_id, date, previous_pct, current_pct, method, reported_by,
		actual_cost, committed_cost, forecast_to_go, physical_qty, physical_qty_total,
		actual_start, forecast_finish, delay_days,
		earned_value, planned_value, cost_variance, schedule_variance, cpi, spi,
		is_rollup, rollup_basis, child_count, completed_children,
		status, approved_by, approval_date, approval_comment, requires_review, justification,
		created_at`

// SQLiteProgressRepo implements ProgressRepo over SQLite. The ledger is
// append-only: Update touches approval fields only.
type SQLiteProgressRepo struct {
	db db.DBTX
}

func NewSQLiteProgressRepo(db db.DBTX) *SQLiteProgressRepo {
	return &SQLiteProgressRepo{db: db}
}

func (r *SQLiteProgressRepo) Create(ctx context.Context, p *domain.WBSElementProgress) error {
	query := `INSERT INTO wbs_element_progress (id, element_id, date, previous_pct, current_pct,
		method, reported_by, actual_cost, committed_cost, forecast_to_go,
		physical_qty, physical_qty_total, actual_start, forecast_finish, delay_days,
		earned_value, planned_value, cost_variance, schedule_variance, cpi, spi,
		is_rollup, rollup_basis, child_count, completed_children,
		status, approved_by, approval_date, approval_comment, requires_review, justification,
		created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ElementID,
		p.Date.Format(time.RFC3339),
		p.PreviousPct,
		p.CurrentPct,
		string(p.Method),
		p.ReportedBy,
		p.ActualCost,
		p.CommittedCost,
		p.ForecastToGo,
		nullableFloatToValue(p.PhysicalQty),
		nullableFloatToValue(p.PhysicalQtyTotal),
		nullableTimeToString(p.ActualStart, dateLayout),
		nullableTimeToString(p.ForecastFinish, dateLayout),
		nullableIntToValue(p.DelayDays),
		p.EarnedValue,
		p.PlannedValue,
		p.CostVariance,
		p.ScheduleVariance,
		p.CPI,
		p.SPI,
		boolToInt(p.IsRollup),
		string(p.RollupBasis),
		p.ChildCount,
		p.CompletedChildren,
		string(p.Status),
		p.ApprovedBy,
		nullableTimeToString(p.ApprovalDate, time.RFC3339),
		p.ApprovalComment,
		boolToInt(p.RequiresReview),
		p.Justification,
		p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting progress observation: %w", err)
	}
	return nil
}

func (r *SQLiteProgressRepo) GetByID(ctx context.Context, id string) (*domain.WBSElementProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM wbs_element_progress WHERE id = ?`
	return r.scanObservation(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteProgressRepo) ListByElement(ctx context.Context, elementID string) ([]*domain.WBSElementProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM wbs_element_progress
		WHERE element_id = ? ORDER BY date, created_at`
	rows, err := r.db.QueryContext(ctx, query, elementID)
	if err != nil {
		return nil, fmt.Errorf("listing progress for element %s: %w", elementID, err)
	}
	defer rows.Close()

	var obs []*domain.WBSElementProgress
	for rows.Next() {
		p, err := r.scanObservationRow(rows)
		if err != nil {
			return nil, err
		}
		obs = append(obs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating progress observations: %w", err)
	}
	return obs, nil
}

func (r *SQLiteProgressRepo) LatestByElement(ctx context.Context, elementID string, approvedOnly bool) (*domain.WBSElementProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM wbs_element_progress
		WHERE element_id = ? ORDER BY date DESC, created_at DESC LIMIT 1`
	if approvedOnly {
		query = `SELECT ` + progressColumns + ` FROM wbs_element_progress
		WHERE element_id = ? AND status = 'approved' ORDER BY date DESC, created_at DESC LIMIT 1`
	}
	return r.scanObservation(r.db.QueryRowContext(ctx, query, elementID))
}

func (r *SQLiteProgressRepo) HasEntries(ctx context.Context, elementID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wbs_element_progress WHERE element_id = ?`, elementID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("counting progress entries for %s: %w", elementID, err)
	}
	return n > 0, nil
}

// Update persists approval-state changes. Measurement fields of a
// recorded observation never change.
func (r *SQLiteProgressRepo) Update(ctx context.Context, p *domain.WBSElementProgress) error {
	query := `UPDATE wbs_element_progress SET status = ?, approved_by = ?, approval_date = ?,
		approval_comment = ?, requires_review = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		string(p.Status),
		p.ApprovedBy,
		nullableTimeToString(p.ApprovalDate, time.RFC3339),
		p.ApprovalComment,
		boolToInt(p.RequiresReview),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating progress observation: %w", err)
	}
	return nil
}

func (r *SQLiteProgressRepo) scanObservation(row *sql.Row) (*domain.WBSElementProgress, error) {
	p, err := scanProgressFields(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("progress observation: %w", ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (r *SQLiteProgressRepo) scanObservationRow(rows *sql.Rows) (*domain.WBSElementProgress, error) {
	return scanProgressFields(rows.Scan)
}

// scanProgressFields drives a row/rows Scan func through the canonical
// column order and parses the raw values.
func scanProgressFields(scan func(dest ...any) error) (*domain.WBSElementProgress, error) {
	var p domain.WBSElementProgress
	var methodStr, basisStr, statusStr, dateStr, createdStr string
	var physQty, physQtyTotal sql.NullFloat64
	var actualStart, forecastFinish, approvalDate sql.NullString
	var delayDays sql.NullInt64
	var rollupInt, reviewInt int

	err := scan(
		&p.ID, &p.ElementID, &dateStr, &p.PreviousPct, &p.CurrentPct, &methodStr, &p.ReportedBy,
		&p.ActualCost, &p.CommittedCost, &p.ForecastToGo, &physQty, &physQtyTotal,
		&actualStart, &forecastFinish, &delayDays,
		&p.EarnedValue, &p.PlannedValue, &p.CostVariance, &p.ScheduleVariance, &p.CPI, &p.SPI,
		&rollupInt, &basisStr, &p.ChildCount, &p.CompletedChildren,
		&statusStr, &p.ApprovedBy, &approvalDate, &p.ApprovalComment, &reviewInt, &p.Justification,
		&createdStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning progress observation: %w", err)
	}

	p.Method = domain.MeasurementMethod(methodStr)
	p.RollupBasis = domain.RollupBasis(basisStr)
	p.Status = domain.ApprovalStatus(statusStr)
	p.IsRollup = intToBool(rollupInt)
	p.RequiresReview = intToBool(reviewInt)

	if physQty.Valid {
		p.PhysicalQty = &physQty.Float64
	}
	if physQtyTotal.Valid {
		p.PhysicalQtyTotal = &physQtyTotal.Float64
	}
	if delayDays.Valid {
		v := int(delayDays.Int64)
		p.DelayDays = &v
	}
	p.ActualStart = parseNullableTime(actualStart, dateLayout)
	p.ForecastFinish = parseNullableTime(forecastFinish, dateLayout)
	p.ApprovalDate = parseNullableTime(approvalDate, time.RFC3339)

	var parseErr error
	p.Date, parseErr = time.Parse(time.RFC3339, dateStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing observation date: %w", parseErr)
	}
	p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	return &p, nil
}
