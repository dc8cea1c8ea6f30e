package models

import "time"

// ApplicabilityRule records whether a requirement binds a given business
// unit. A requirement with no rules at all is treated as group-wide: it is
// not scoped to any specific unit. The gap detector consumes these rules
// through an applicability predicate.
type ApplicabilityRule struct {
	ID             uint `gorm:"primaryKey"`
	RequirementID  uint `gorm:"not null;uniqueIndex:idx_req_unit"`
	BusinessUnitID uint `gorm:"not null;uniqueIndex:idx_req_unit"`
	// Applicable is true when the requirement binds the unit. An explicit
	// false row documents a considered exemption.
	Applicable bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the database table name for the ApplicabilityRule model.
func (ApplicabilityRule) TableName() string {
	return "applicability_rules"
}
