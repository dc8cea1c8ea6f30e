package models

import "time"

// FindingStatus represents the remediation lifecycle state of a finding.
type FindingStatus string

const (
	// FindingOpen marks a newly raised finding.
	FindingOpen FindingStatus = "Open"
	// FindingInRemediation marks a finding with remediation underway.
	FindingInRemediation FindingStatus = "In Remediation"
	// FindingClosed marks a resolved finding.
	FindingClosed FindingStatus = "Closed"
)

// Valid reports whether s is one of the enumerated finding statuses.
func (s FindingStatus) Valid() bool {
	switch s {
	case FindingOpen, FindingInRemediation, FindingClosed:
		return true
	}

	return false
}

// Finding represents a compliance finding raised against a requirement,
// tracked through remediation.
type Finding struct {
	ID             uint          `gorm:"primaryKey"`
	Title          string        `gorm:"size:255;not null"`
	Description    string        `gorm:"type:text"`
	Severity       string        `gorm:"size:20"`
	Status         FindingStatus `gorm:"type:varchar(20);not null;default:'Open'"`
	RequirementID  *uint         `gorm:"index"`
	BusinessUnitID *uint         `gorm:"index"`
	Owner          string        `gorm:"size:100"`
	DueDate        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the database table name for the Finding model.
func (Finding) TableName() string {
	return "findings"
}
