package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cvergaras/obracost/internal/db"
	"github.com/cvergaras/obracost/internal/domain"
)

const phaseColumns = `id, project_id, name, sequence, created_at, updated_at`

// SQLitePhaseRepo implements PhaseRepo over SQLite.
type SQLitePhaseRepo struct {
	db db.DBTX
}

func NewSQLitePhaseRepo(db db.DBTX) *SQLitePhaseRepo {
	return &SQLitePhaseRepo{db: db}
}

func (r *SQLitePhaseRepo) Create(ctx context.Context, ph *domain.Phase) error {
	query := `INSERT INTO phases (` + phaseColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		ph.ID,
		ph.ProjectID,
		ph.Name,
		ph.Sequence,
		ph.CreatedAt.Format(time.RFC3339),
		ph.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting phase: %w", err)
	}
	return nil
}

func (r *SQLitePhaseRepo) GetByID(ctx context.Context, id string) (*domain.Phase, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+phaseColumns+` FROM phases WHERE id = ?`, id)
	return scanPhase(row)
}

func (r *SQLitePhaseRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+phaseColumns+` FROM phases WHERE project_id = ? ORDER BY sequence`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing phases: %w", err)
	}
	defer rows.Close()

	var phases []*domain.Phase
	for rows.Next() {
		var ph domain.Phase
		var createdStr, updatedStr string
		if err := rows.Scan(&ph.ID, &ph.ProjectID, &ph.Name, &ph.Sequence, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("scanning phase row: %w", err)
		}
		if err := populatePhaseTimes(&ph, createdStr, updatedStr); err != nil {
			return nil, err
		}
		phases = append(phases, &ph)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating phases: %w", err)
	}
	return phases, nil
}

func (r *SQLitePhaseRepo) Update(ctx context.Context, ph *domain.Phase) error {
	query := `UPDATE phases SET name = ?, sequence = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, ph.Name, ph.Sequence, ph.UpdatedAt.Format(time.RFC3339), ph.ID)
	if err != nil {
		return fmt.Errorf("updating phase: %w", err)
	}
	return nil
}

func (r *SQLitePhaseRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM phases WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting phase: %w", err)
	}
	return nil
}

func scanPhase(row *sql.Row) (*domain.Phase, error) {
	var ph domain.Phase
	var createdStr, updatedStr string
	err := row.Scan(&ph.ID, &ph.ProjectID, &ph.Name, &ph.Sequence, &createdStr, &updatedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("phase: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning phase: %w", err)
	}
	if err := populatePhaseTimes(&ph, createdStr, updatedStr); err != nil {
		return nil, err
	}
	return &ph, nil
}

func populatePhaseTimes(ph *domain.Phase, createdStr, updatedStr string) error {
	var parseErr error
	ph.CreatedAt, parseErr = time.Parse(time.RFC3339, createdStr)
	if parseErr != nil {
		return fmt.Errorf("parsing created_at: %w", parseErr)
	}
	ph.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedStr)
	if parseErr != nil {
		return fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return nil
}
