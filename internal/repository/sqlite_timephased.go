package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cvergaras/obracost/internal/db"
	"github.com/cvergaras/obracost/internal/domain"
)

// timePhasedColumns is the canonical SELECT column list for time_phased_budgets.
const timePhasedColumns = `id, control_account_id, period_type, period_number,
		period_start, period_end, planned_value, cumulative_value,
		labor_cost, material_cost, equipment_cost, subcontract_cost, other_cost,
		is_baseline, revision, created_at`

// SQLiteTimePhasedBudgetRepo implements TimePhasedBudgetRepo over SQLite.
type SQLiteTimePhasedBudgetRepo struct {
	db db.DBTX
}

func NewSQLiteTimePhasedBudgetRepo(db db.DBTX) *SQLiteTimePhasedBudgetRepo {
	return &SQLiteTimePhasedBudgetRepo{db: db}
}

func (r *SQLiteTimePhasedBudgetRepo) CreateBatch(ctx context.Context, slices []*domain.TimePhasedBudget) error {
	query := `INSERT INTO time_phased_budgets (id, control_account_id, period_type, period_number,
		period_start, period_end, planned_value, cumulative_value,
		labor_cost, material_cost, equipment_cost, subcontract_cost, other_cost,
		is_baseline, revision, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, s := range slices {
		_, err := r.db.ExecContext(ctx, query,
			s.ID,
			s.ControlAccountID,
			string(s.PeriodType),
			s.PeriodNumber,
			s.PeriodStart.Format(dateLayout),
			s.PeriodEnd.Format(dateLayout),
			s.PlannedValue,
			s.CumulativeValue,
			s.LaborCost,
			s.MaterialCost,
			s.EquipmentCost,
			s.SubcontractCost,
			s.OtherCost,
			boolToInt(s.IsBaseline),
			s.Revision,
			s.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting time-phased slice %d: %w", s.PeriodNumber, err)
		}
	}
	return nil
}

func (r *SQLiteTimePhasedBudgetRepo) ListByRevision(ctx context.Context, controlAccountID string, revision int) ([]*domain.TimePhasedBudget, error) {
	query := `SELECT ` + timePhasedColumns + ` FROM time_phased_budgets
		WHERE control_account_id = ? AND revision = ? ORDER BY period_number`
	rows, err := r.db.QueryContext(ctx, query, controlAccountID, revision)
	if err != nil {
		return nil, fmt.Errorf("listing time-phased budget: %w", err)
	}
	defer rows.Close()

	var slices []*domain.TimePhasedBudget
	for rows.Next() {
		s, err := r.scanSliceRow(rows)
		if err != nil {
			return nil, err
		}
		slices = append(slices, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time-phased budget: %w", err)
	}
	return slices, nil
}

// LatestRevision returns the highest revision number for the account, or
// 0 when no distribution exists.
func (r *SQLiteTimePhasedBudgetRepo) LatestRevision(ctx context.Context, controlAccountID string) (int, error) {
	var rev int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(revision), 0) FROM time_phased_budgets WHERE control_account_id = ?`,
		controlAccountID).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("finding latest revision for %s: %w", controlAccountID, err)
	}
	return rev, nil
}

// BaselineRevision returns the highest baselined revision, or 0 when the
// account has never been baselined.
func (r *SQLiteTimePhasedBudgetRepo) BaselineRevision(ctx context.Context, controlAccountID string) (int, error) {
	var rev int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(revision), 0) FROM time_phased_budgets
		 WHERE control_account_id = ? AND is_baseline = 1`,
		controlAccountID).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("finding baseline revision for %s: %w", controlAccountID, err)
	}
	return rev, nil
}

func (r *SQLiteTimePhasedBudgetRepo) MarkBaseline(ctx context.Context, controlAccountID string, revision int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE time_phased_budgets SET is_baseline = 1
		 WHERE control_account_id = ? AND revision = ?`,
		controlAccountID, revision)
	if err != nil {
		return fmt.Errorf("marking baseline revision %d for %s: %w", revision, controlAccountID, err)
	}
	return nil
}

// UpdateResourceBreakdown rewrites only the resource-category columns of
// one slice; planned values stay untouched.
func (r *SQLiteTimePhasedBudgetRepo) UpdateResourceBreakdown(ctx context.Context, s *domain.TimePhasedBudget) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE time_phased_budgets SET labor_cost = ?, material_cost = ?, equipment_cost = ?,
		 subcontract_cost = ?, other_cost = ? WHERE id = ?`,
		s.LaborCost, s.MaterialCost, s.EquipmentCost, s.SubcontractCost, s.OtherCost, s.ID)
	if err != nil {
		return fmt.Errorf("updating resource breakdown of slice %s: %w", s.ID, err)
	}
	return nil
}

// CumulativePlannedValue sums planned value through asOf: completed
// periods fully, the period containing asOf pro-rata by elapsed days.
func (r *SQLiteTimePhasedBudgetRepo) CumulativePlannedValue(ctx context.Context, controlAccountID string, revision int, asOf time.Time) (float64, error) {
	slices, err := r.ListByRevision(ctx, controlAccountID, revision)
	if err != nil {
		return 0, err
	}

	var pv float64
	for _, s := range slices {
		if !s.PeriodEnd.After(asOf) {
			pv += s.PlannedValue
			continue
		}
		if s.PeriodStart.After(asOf) {
			break
		}
		total := s.PeriodEnd.Sub(s.PeriodStart)
		if total <= 0 {
			continue
		}
		elapsed := asOf.Sub(s.PeriodStart)
		pv += s.PlannedValue * (elapsed.Seconds() / total.Seconds())
	}
	return pv, nil
}

func (r *SQLiteTimePhasedBudgetRepo) DeleteRevision(ctx context.Context, controlAccountID string, revision int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM time_phased_budgets WHERE control_account_id = ? AND revision = ?`,
		controlAccountID, revision)
	if err != nil {
		return fmt.Errorf("deleting revision %d for %s: %w", revision, controlAccountID, err)
	}
	return nil
}

func (r *SQLiteTimePhasedBudgetRepo) scanSliceRow(rows *sql.Rows) (*domain.TimePhasedBudget, error) {
	var s domain.TimePhasedBudget
	var periodTypeStr, startStr, endStr, createdStr string
	var baselineInt int

	err := rows.Scan(
		&s.ID, &s.ControlAccountID, &periodTypeStr, &s.PeriodNumber,
		&startStr, &endStr, &s.PlannedValue, &s.CumulativeValue,
		&s.LaborCost, &s.MaterialCost, &s.EquipmentCost, &s.SubcontractCost, &s.OtherCost,
		&baselineInt, &s.Revision, &createdStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning time-phased slice: %w", err)
	}

	s.PeriodType = domain.PeriodType(periodTypeStr)
	s.IsBaseline = intToBool(baselineInt)

	var parseErr error
	s.PeriodStart, parseErr = time.Parse(dateLayout, startStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing period_start: %w", parseErr)
	}
	s.PeriodEnd, parseErr = time.Parse(dateLayout, endStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing period_end: %w", parseErr)
	}
	s.CreatedAt, parseErr = time.Parse(time.RFC3339, createdStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	return &s, nil
}
