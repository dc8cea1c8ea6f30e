package models

import "time"

// UnitStatus represents the lifecycle state of a business unit.
type UnitStatus string

const (
	// UnitActive marks a unit that participates in gap analysis.
	UnitActive UnitStatus = "Active"
	// UnitArchived marks a unit that is retained for history only.
	UnitArchived UnitStatus = "Archived"
)

// BusinessUnit represents an organisational entity mappings can be scoped to.
type BusinessUnit struct {
	ID           uint       `gorm:"primaryKey"`
	Name         string     `gorm:"size:255;not null"`
	Jurisdiction string     `gorm:"size:100"`
	Status       UnitStatus `gorm:"type:varchar(20);not null;default:'Active'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the database table name for the BusinessUnit model.
func (BusinessUnit) TableName() string {
	return "business_units"
}

// Active reports whether the unit participates in gap analysis.
func (b *BusinessUnit) Active() bool {
	return b.Status == UnitActive
}
