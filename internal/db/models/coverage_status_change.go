package models

import "time"

// CoverageStatusChange records a machine-driven mutation of a mapping's
// coverage status, made by the content analysis batch. Human edits are not
// recorded here; the batch is the only machine process allowed to rewrite
// coverage statuses and every rewrite must stay auditable.
type CoverageStatusChange struct {
	ID           uint           `gorm:"primaryKey"`
	MappingID    uint           `gorm:"not null;index"`
	OldStatus    CoverageStatus `gorm:"type:varchar(20);not null"`
	NewStatus    CoverageStatus `gorm:"type:varchar(20);not null"`
	Score        int            `gorm:"not null"`
	MatchedTerms string         `gorm:"type:text"` // comma-separated for display
	CreatedAt    time.Time
}

// TableName specifies the database table name for the CoverageStatusChange model.
func (CoverageStatusChange) TableName() string {
	return "coverage_status_changes"
}
