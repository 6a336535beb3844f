package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cvergaras/obracost/internal/db"
	"github.com/cvergaras/obracost/internal/domain"
)

// wbsElementColumns is the canonical SELECT column list for wbs_elements.
const wbsElementColumns = `id, project_id, code, name, type, level, sequence,
		parent_id, control_account_id, deliverable, acceptance_criteria,
		assumptions, constraints, created_at, updated_at`

// SQLiteWBSElementRepo implements WBSElementRepo over SQLite.
type SQLiteWBSElementRepo struct {
	db db.DBTX
}

func NewSQLiteWBSElementRepo(db db.DBTX) *SQLiteWBSElementRepo {
	return &SQLiteWBSElementRepo{db: db}
}

func (r *SQLiteWBSElementRepo) Create(ctx context.Context, e *domain.WBSElement) error {
	query := `INSERT INTO wbs_elements (id, project_id, code, name, type, level, sequence,
		parent_id, control_account_id, deliverable, acceptance_criteria,
		assumptions, constraints, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.ProjectID,
		e.Code,
		e.Name,
		string(e.Type),
		e.Level,
		e.Sequence,
		nullableStrToValue(e.ParentID),
		nullableStrToValue(e.ControlAccountID),
		e.Deliverable,
		e.AcceptanceCriteria,
		e.Assumptions,
		e.Constraints,
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting wbs element: %w", err)
	}
	return nil
}

func (r *SQLiteWBSElementRepo) GetByID(ctx context.Context, id string) (*domain.WBSElement, error) {
	query := `SELECT ` + wbsElementColumns + ` FROM wbs_elements WHERE id = ?`
	return r.scanElement(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteWBSElementRepo) GetByCode(ctx context.Context, projectID, code string) (*domain.WBSElement, error) {
	query := `SELECT ` + wbsElementColumns + ` FROM wbs_elements
		WHERE project_id = ? AND UPPER(code) = UPPER(?)`
	return r.scanElement(r.db.QueryRowContext(ctx, query, projectID, code))
}

func (r *SQLiteWBSElementRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.WBSElement, error) {
	query := `SELECT ` + wbsElementColumns + ` FROM wbs_elements
		WHERE project_id = ? ORDER BY level, sequence`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing wbs elements by project: %w", err)
	}
	defer rows.Close()
	return r.scanElements(rows)
}

func (r *SQLiteWBSElementRepo) ListChildren(ctx context.Context, parentID string) ([]*domain.WBSElement, error) {
	query := `SELECT ` + wbsElementColumns + ` FROM wbs_elements WHERE parent_id = ? ORDER BY sequence`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing child wbs elements: %w", err)
	}
	defer rows.Close()
	return r.scanElements(rows)
}

func (r *SQLiteWBSElementRepo) ListRoots(ctx context.Context, projectID string) ([]*domain.WBSElement, error) {
	query := `SELECT ` + wbsElementColumns + ` FROM wbs_elements
		WHERE project_id = ? AND parent_id IS NULL ORDER BY sequence`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing root wbs elements: %w", err)
	}
	defer rows.Close()
	return r.scanElements(rows)
}

func (r *SQLiteWBSElementRepo) CountChildren(ctx context.Context, elementID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wbs_elements WHERE parent_id = ?`, elementID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting children of %s: %w", elementID, err)
	}
	return n, nil
}

func (r *SQLiteWBSElementRepo) ListByControlAccount(ctx context.Context, controlAccountID string) ([]*domain.WBSElement, error) {
	query := `SELECT ` + wbsElementColumns + ` FROM wbs_elements
		WHERE control_account_id = ? ORDER BY level, sequence`
	rows, err := r.db.QueryContext(ctx, query, controlAccountID)
	if err != nil {
		return nil, fmt.Errorf("listing wbs elements by control account: %w", err)
	}
	defer rows.Close()
	return r.scanElements(rows)
}

func (r *SQLiteWBSElementRepo) Update(ctx context.Context, e *domain.WBSElement) error {
	query := `UPDATE wbs_elements SET code = ?, name = ?, type = ?, level = ?, sequence = ?,
		parent_id = ?, control_account_id = ?, deliverable = ?, acceptance_criteria = ?,
		assumptions = ?, constraints = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		e.Code,
		e.Name,
		string(e.Type),
		e.Level,
		e.Sequence,
		nullableStrToValue(e.ParentID),
		nullableStrToValue(e.ControlAccountID),
		e.Deliverable,
		e.AcceptanceCriteria,
		e.Assumptions,
		e.Constraints,
		e.UpdatedAt.Format(time.RFC3339),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating wbs element: %w", err)
	}
	return nil
}

func (r *SQLiteWBSElementRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wbs_elements WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting wbs element: %w", err)
	}
	return nil
}

func (r *SQLiteWBSElementRepo) scanElement(row *sql.Row) (*domain.WBSElement, error) {
	var e domain.WBSElement
	var typeStr, createdStr, updatedStr string
	var parentID, accountID sql.NullString

	err := row.Scan(
		&e.ID, &e.ProjectID, &e.Code, &e.Name, &typeStr, &e.Level, &e.Sequence,
		&parentID, &accountID, &e.Deliverable, &e.AcceptanceCriteria,
		&e.Assumptions, &e.Constraints, &createdStr, &updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("wbs element: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning wbs element: %w", err)
	}
	return r.populateElement(&e, typeStr, createdStr, updatedStr, parentID, accountID)
}

func (r *SQLiteWBSElementRepo) scanElements(rows *sql.Rows) ([]*domain.WBSElement, error) {
	var elements []*domain.WBSElement
	for rows.Next() {
		var e domain.WBSElement
		var typeStr, createdStr, updatedStr string
		var parentID, accountID sql.NullString

		err := rows.Scan(
			&e.ID, &e.ProjectID, &e.Code, &e.Name, &typeStr, &e.Level, &e.Sequence,
			&parentID, &accountID, &e.Deliverable, &e.AcceptanceCriteria,
			&e.Assumptions, &e.Constraints, &createdStr, &updatedStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning wbs element row: %w", err)
		}
		el, err := r.populateElement(&e, typeStr, createdStr, updatedStr, parentID, accountID)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating wbs elements: %w", err)
	}
	return elements, nil
}

func (r *SQLiteWBSElementRepo) populateElement(
	e *domain.WBSElement,
	typeStr, createdStr, updatedStr string,
	parentID, accountID sql.NullString,
) (*domain.WBSElement, error) {
	e.Type = domain.ElementType(typeStr)
	if parentID.Valid {
		e.ParentID = &parentID.String
	}
	if accountID.Valid {
		e.ControlAccountID = &accountID.String
	}

	var parseErr error
	e.CreatedAt, parseErr = time.Parse(time.RFC3339, createdStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	e.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return e, nil
}
