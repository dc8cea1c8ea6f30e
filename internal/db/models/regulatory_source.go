// Package models contains database model definitions.
package models

import "time"

// RegulatorySource represents a named regulatory framework or instrument,
// for example "GDPR" or "ISO/IEC 27001:2022". Sources are created by admins
// or the seed command and act as the parent of a set of requirements.
type RegulatorySource struct {
	// ID is the unique identifier for the source.
	ID uint `gorm:"primaryKey"`
	// Name is the full name of the framework or instrument.
	Name string `gorm:"size:255;not null"`
	// ShortName is the common abbreviation shown in listings.
	ShortName string `gorm:"size:50"`
	// Jurisdiction is the legal jurisdiction the instrument applies in.
	Jurisdiction string `gorm:"size:100"`
	// Category groups sources for filtering (e.g. "Privacy", "Security").
	Category string `gorm:"size:100"`
	// URL points at the authoritative text.
	URL string `gorm:"size:512"`
	// Description provides a human-readable summary.
	Description string `gorm:"type:text"`
	// CreatedAt is the timestamp when the source was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the source was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the RegulatorySource model.
func (RegulatorySource) TableName() string {
	return "regulatory_sources"
}
