package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cvergaras/obracost/internal/db"
	"github.com/cvergaras/obracost/internal/domain"
)

// controlAccountColumns is the canonical SELECT column list for control_accounts.
const controlAccountColumns = `id, project_id, phase_id, code, name, manager, bac,
		baseline_revision, baselined, created_at, updated_at`

// SQLiteControlAccountRepo implements ControlAccountRepo over SQLite.
type SQLiteControlAccountRepo struct {
	db db.DBTX
}

func NewSQLiteControlAccountRepo(db db.DBTX) *SQLiteControlAccountRepo {
	return &SQLiteControlAccountRepo{db: db}
}

func (r *SQLiteControlAccountRepo) Create(ctx context.Context, ca *domain.ControlAccount) error {
	query := `INSERT INTO control_accounts (id, project_id, phase_id, code, name, manager, bac,
		baseline_revision, baselined, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		ca.ID,
		ca.ProjectID,
		nullableStrToValue(ca.PhaseID),
		ca.Code,
		ca.Name,
		ca.Manager,
		ca.BAC,
		ca.BaselineRevision,
		boolToInt(ca.Baselined),
		ca.CreatedAt.Format(time.RFC3339),
		ca.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting control account: %w", err)
	}
	return nil
}

func (r *SQLiteControlAccountRepo) GetByID(ctx context.Context, id string) (*domain.ControlAccount, error) {
	query := `SELECT ` + controlAccountColumns + ` FROM control_accounts WHERE id = ?`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteControlAccountRepo) GetByCode(ctx context.Context, projectID, code string) (*domain.ControlAccount, error) {
	query := `SELECT ` + controlAccountColumns + ` FROM control_accounts
		WHERE project_id = ? AND UPPER(code) = UPPER(?)`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, projectID, code))
}

func (r *SQLiteControlAccountRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.ControlAccount, error) {
	query := `SELECT ` + controlAccountColumns + ` FROM control_accounts WHERE project_id = ? ORDER BY code`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing control accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.ControlAccount
	for rows.Next() {
		ca, err := r.scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating control accounts: %w", err)
	}
	return accounts, nil
}

func (r *SQLiteControlAccountRepo) Update(ctx context.Context, ca *domain.ControlAccount) error {
	query := `UPDATE control_accounts SET phase_id = ?, code = ?, name = ?, manager = ?, bac = ?,
		baseline_revision = ?, baselined = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		nullableStrToValue(ca.PhaseID),
		ca.Code,
		ca.Name,
		ca.Manager,
		ca.BAC,
		ca.BaselineRevision,
		boolToInt(ca.Baselined),
		ca.UpdatedAt.Format(time.RFC3339),
		ca.ID,
	)
	if err != nil {
		return fmt.Errorf("updating control account: %w", err)
	}
	return nil
}

func (r *SQLiteControlAccountRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM control_accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting control account: %w", err)
	}
	return nil
}

func (r *SQLiteControlAccountRepo) scanAccount(row *sql.Row) (*domain.ControlAccount, error) {
	var ca domain.ControlAccount
	var phaseID sql.NullString
	var baselinedInt int
	var createdStr, updatedStr string

	err := row.Scan(&ca.ID, &ca.ProjectID, &phaseID, &ca.Code, &ca.Name, &ca.Manager, &ca.BAC,
		&ca.BaselineRevision, &baselinedInt, &createdStr, &updatedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("control account: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning control account: %w", err)
	}
	return r.populateAccount(&ca, phaseID, baselinedInt, createdStr, updatedStr)
}

func (r *SQLiteControlAccountRepo) scanAccountRow(rows *sql.Rows) (*domain.ControlAccount, error) {
	var ca domain.ControlAccount
	var phaseID sql.NullString
	var baselinedInt int
	var createdStr, updatedStr string

	err := rows.Scan(&ca.ID, &ca.ProjectID, &phaseID, &ca.Code, &ca.Name, &ca.Manager, &ca.BAC,
		&ca.BaselineRevision, &baselinedInt, &createdStr, &updatedStr)
	if err != nil {
		return nil, fmt.Errorf("scanning control account row: %w", err)
	}
	return r.populateAccount(&ca, phaseID, baselinedInt, createdStr, updatedStr)
}

func (r *SQLiteControlAccountRepo) populateAccount(ca *domain.ControlAccount, phaseID sql.NullString, baselinedInt int, createdStr, updatedStr string) (*domain.ControlAccount, error) {
	if phaseID.Valid {
		ca.PhaseID = &phaseID.String
	}
	ca.Baselined = intToBool(baselinedInt)

	var parseErr error
	ca.CreatedAt, parseErr = time.Parse(time.RFC3339, createdStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	ca.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return ca, nil
}
