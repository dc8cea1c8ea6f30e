package models

import "time"

// AuditStatus represents the lifecycle state of an audit.
type AuditStatus string

const (
	// AuditScheduled marks an audit that is planned but not started.
	AuditScheduled AuditStatus = "Scheduled"
	// AuditInProgress marks a running audit.
	AuditInProgress AuditStatus = "In Progress"
	// AuditComplete marks a finished audit.
	AuditComplete AuditStatus = "Complete"
)

// Audit represents a scheduled or completed audit scoped to a regulatory source.
type Audit struct {
	ID        uint        `gorm:"primaryKey"`
	Name      string      `gorm:"size:255;not null"`
	SourceID  *uint       `gorm:"index"`
	Auditor   string      `gorm:"size:100"`
	Status    AuditStatus `gorm:"type:varchar(20);not null;default:'Scheduled'"`
	StartDate *time.Time
	EndDate   *time.Time
	Notes     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Audit model.
func (Audit) TableName() string {
	return "audits"
}
