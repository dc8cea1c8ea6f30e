package models

import "time"

// Requirement represents an atomic compliance obligation drawn from a
// regulatory source. Requirements are the unit the coverage engine
// aggregates over: mappings link them to policy documents, and the gap
// detector classifies them per business unit.
type Requirement struct {
	// ID is the unique identifier for the requirement.
	ID uint `gorm:"primaryKey"`
	// SourceID is the ID of the regulatory source this requirement belongs to.
	SourceID uint `gorm:"not null;index"`
	// Source is the associated regulatory source. Deletion of a source is
	// blocked at the controller level while requirements reference it.
	Source RegulatorySource `gorm:"foreignKey:SourceID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE"`
	// Code is the source-local reference (e.g. "Art. 32", "A.8.12").
	Code string `gorm:"size:50;not null"`
	// Title is the short obligation title.
	Title string `gorm:"size:255;not null"`
	// Description is the descriptive obligation text scored by the content matcher.
	Description string `gorm:"type:text"`
	// Category groups requirements for filtering.
	Category string `gorm:"size:100"`
	// Owner is the person or team accountable for the obligation.
	Owner string `gorm:"size:100"`
	// CreatedAt is the timestamp when the requirement was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the requirement was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Requirement model.
func (Requirement) TableName() string {
	return "requirements"
}
