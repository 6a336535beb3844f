package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Statements are idempotent
// (CREATE TABLE IF NOT EXISTS) so the full list re-runs on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		code       TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		currency   TEXT NOT NULL DEFAULT 'CLP',
		start_date TEXT NOT NULL,
		end_date   TEXT,
		status     TEXT NOT NULL DEFAULT 'active'
		           CHECK(status IN ('active','on_hold','closed','archived')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS phases (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		sequence   INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS control_accounts (
		id                TEXT PRIMARY KEY,
		project_id        TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		phase_id          TEXT REFERENCES phases(id) ON DELETE SET NULL,
		code              TEXT NOT NULL,
		name              TEXT NOT NULL,
		manager           TEXT NOT NULL DEFAULT '',
		bac               REAL NOT NULL DEFAULT 0,
		baseline_revision INTEGER NOT NULL DEFAULT 0,
		baselined         INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL,
		UNIQUE(project_id, code)
	)`,

	`CREATE TABLE IF NOT EXISTS wbs_elements (
		id                  TEXT PRIMARY KEY,
		project_id          TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		code                TEXT NOT NULL,
		name                TEXT NOT NULL,
		type                TEXT NOT NULL
		                    CHECK(type IN ('level','work_package','planning_package')),
		level               INTEGER NOT NULL,
		sequence            INTEGER NOT NULL DEFAULT 1,
		parent_id           TEXT REFERENCES wbs_elements(id) ON DELETE RESTRICT,
		control_account_id  TEXT REFERENCES control_accounts(id) ON DELETE SET NULL,
		deliverable         TEXT NOT NULL DEFAULT '',
		acceptance_criteria TEXT NOT NULL DEFAULT '',
		assumptions         TEXT NOT NULL DEFAULT '',
		constraints         TEXT NOT NULL DEFAULT '',
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL,
		UNIQUE(project_id, code)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_wbs_elements_parent ON wbs_elements(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_wbs_elements_project ON wbs_elements(project_id)`,

	`CREATE TABLE IF NOT EXISTS time_phased_budgets (
		id                 TEXT PRIMARY KEY,
		control_account_id TEXT NOT NULL REFERENCES control_accounts(id) ON DELETE CASCADE,
		period_type        TEXT NOT NULL
		                   CHECK(period_type IN ('daily','weekly','monthly','quarterly')),
		period_number      INTEGER NOT NULL,
		period_start       TEXT NOT NULL,
		period_end         TEXT NOT NULL,
		planned_value      REAL NOT NULL,
		cumulative_value   REAL NOT NULL,
		labor_cost         REAL NOT NULL DEFAULT 0,
		material_cost      REAL NOT NULL DEFAULT 0,
		equipment_cost     REAL NOT NULL DEFAULT 0,
		subcontract_cost   REAL NOT NULL DEFAULT 0,
		other_cost         REAL NOT NULL DEFAULT 0,
		is_baseline        INTEGER NOT NULL DEFAULT 0,
		revision           INTEGER NOT NULL DEFAULT 1,
		created_at         TEXT NOT NULL,
		UNIQUE(control_account_id, revision, period_number)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tpb_account_revision
		ON time_phased_budgets(control_account_id, revision)`,

	`CREATE TABLE IF NOT EXISTS wbs_element_progress (
		id                 TEXT PRIMARY KEY,
		element_id         TEXT NOT NULL REFERENCES wbs_elements(id) ON DELETE CASCADE,
		date               TEXT NOT NULL,
		previous_pct       REAL NOT NULL,
		current_pct        REAL NOT NULL,
		method             TEXT NOT NULL,
		reported_by        TEXT NOT NULL DEFAULT '',
		actual_cost        REAL NOT NULL DEFAULT 0,
		committed_cost     REAL NOT NULL DEFAULT 0,
		forecast_to_go     REAL NOT NULL DEFAULT 0,
		physical_qty       REAL,
		physical_qty_total REAL,
		actual_start       TEXT,
		forecast_finish    TEXT,
		delay_days         INTEGER,
		earned_value       REAL NOT NULL DEFAULT 0,
		planned_value      REAL NOT NULL DEFAULT 0,
		cost_variance      REAL NOT NULL DEFAULT 0,
		schedule_variance  REAL NOT NULL DEFAULT 0,
		cpi                REAL NOT NULL DEFAULT 0,
		spi                REAL NOT NULL DEFAULT 0,
		is_rollup          INTEGER NOT NULL DEFAULT 0,
		rollup_basis       TEXT NOT NULL DEFAULT '',
		child_count        INTEGER NOT NULL DEFAULT 0,
		completed_children INTEGER NOT NULL DEFAULT 0,
		status             TEXT NOT NULL DEFAULT 'pending'
		                   CHECK(status IN ('pending','approved','rejected','needs_review')),
		approved_by        TEXT NOT NULL DEFAULT '',
		approval_date      TEXT,
		approval_comment   TEXT NOT NULL DEFAULT '',
		requires_review    INTEGER NOT NULL DEFAULT 0,
		justification      TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_progress_element_date
		ON wbs_element_progress(element_id, date)`,

	`CREATE TABLE IF NOT EXISTS cost_control_reports (
		id                 TEXT PRIMARY KEY,
		control_account_id TEXT NOT NULL REFERENCES control_accounts(id) ON DELETE CASCADE,
		project_id         TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		report_date        TEXT NOT NULL,
		period_type        TEXT NOT NULL,
		budget_revision    INTEGER NOT NULL DEFAULT 0,
		bac                REAL NOT NULL,
		progress_pct       REAL NOT NULL,
		earned_value       REAL NOT NULL,
		actual_cost        REAL NOT NULL,
		planned_value      REAL NOT NULL,
		cost_variance      REAL NOT NULL,
		schedule_variance  REAL NOT NULL,
		cpi                REAL NOT NULL,
		spi                REAL NOT NULL,
		eac                REAL NOT NULL,
		vac                REAL NOT NULL,
		etc                REAL NOT NULL,
		tcpi               REAL,
		exchange_rate_uf   REAL NOT NULL DEFAULT 0,
		inflation_idx      REAL NOT NULL DEFAULT 0,
		status             TEXT NOT NULL DEFAULT 'draft'
		                   CHECK(status IN ('draft','approved')),
		approved_by        TEXT NOT NULL DEFAULT '',
		approved_at        TEXT,
		generated_by       TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_reports_account_date
		ON cost_control_reports(control_account_id, report_date)`,

	`CREATE TABLE IF NOT EXISTS cost_control_report_items (
		id                   TEXT PRIMARY KEY,
		report_id            TEXT NOT NULL REFERENCES cost_control_reports(id) ON DELETE CASCADE,
		element_id           TEXT NOT NULL REFERENCES wbs_elements(id) ON DELETE CASCADE,
		code                 TEXT NOT NULL,
		name                 TEXT NOT NULL,
		responsible_party    TEXT NOT NULL DEFAULT '',
		cost_category        TEXT NOT NULL DEFAULT 'other',
		budgeted_cost        REAL NOT NULL,
		progress_pct         REAL NOT NULL,
		earned_value         REAL NOT NULL,
		actual_cost          REAL NOT NULL,
		planned_value        REAL NOT NULL,
		cost_variance        REAL NOT NULL,
		schedule_variance    REAL NOT NULL,
		cpi                  REAL NOT NULL,
		eac                  REAL NOT NULL,
		is_critical          INTEGER NOT NULL DEFAULT 0,
		variance_explanation TEXT NOT NULL DEFAULT '',
		created_at           TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_report_items_report
		ON cost_control_report_items(report_id)`,
}
