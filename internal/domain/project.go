package domain

import "time"

type Project struct {
	ID        string
	Code      string
	Name      string
	Currency  string // ISO 4217, informational
	StartDate time.Time
	EndDate   *time.Time
	Status    ProjectStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Phase groups control accounts within a project (engineering,
// procurement, construction, ...).
type Phase struct {
	ID        string
	ProjectID string
	Name      string
	Sequence  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
