package models

import "time"

// CoverageStatus is the asserted coverage relationship between a
// requirement and a document. It is always one of the three enumerated
// values, never free text; the controller rejects anything else.
type CoverageStatus string

const (
	// StatusCovered indicates the document fully covers the requirement.
	StatusCovered CoverageStatus = "Covered"
	// StatusPartiallyCovered indicates the document covers part of the requirement.
	StatusPartiallyCovered CoverageStatus = "Partially Covered"
	// StatusNotCovered indicates the document does not cover the requirement.
	StatusNotCovered CoverageStatus = "Not Covered"
)

// Valid reports whether s is one of the three enumerated coverage statuses.
func (s CoverageStatus) Valid() bool {
	switch s {
	case StatusCovered, StatusPartiallyCovered, StatusNotCovered:
		return true
	}

	return false
}

// RequirementMapping links one requirement to one document, optionally
// scoped to a business unit (nil BusinessUnitID means group-wide).
// DocumentID may be nil only transiently during creation flows; mappings
// without a document are excluded from all aggregation.
type RequirementMapping struct {
	// ID is the unique identifier for the mapping.
	ID uint `gorm:"primaryKey"`
	// RequirementID is the requirement being covered.
	RequirementID uint `gorm:"not null;index"`
	// Requirement is the associated requirement. Mappings are removed with it.
	Requirement Requirement `gorm:"foreignKey:RequirementID;references:ID;constraint:OnDelete:CASCADE"`
	// DocumentID is the covering document; nil while a creation flow is incomplete.
	DocumentID *uint `gorm:"index"`
	// BusinessUnitID scopes the mapping to a unit; nil means group-wide.
	BusinessUnitID *uint `gorm:"index"`
	// CoverageStatus is the asserted coverage level.
	CoverageStatus CoverageStatus `gorm:"type:varchar(20);not null;default:'Not Covered'"`
	// Rationale is the human-entered justification for the mapping.
	Rationale string `gorm:"type:text"`
	// AIScore is the keyword-overlap score (0-100) when set by analysis.
	AIScore *int
	// AIRationale is the machine-generated rationale text.
	AIRationale string `gorm:"type:text"`
	// AIRecommendations holds machine-generated remediation suggestions.
	AIRecommendations string `gorm:"type:text"`
	// CreatedAt is the timestamp when the mapping was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the mapping was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the RequirementMapping model.
func (RequirementMapping) TableName() string {
	return "requirement_mappings"
}

// HasDocument reports whether the mapping links to a document and thus
// participates in aggregation.
func (m *RequirementMapping) HasDocument() bool {
	return m.DocumentID != nil
}

// GroupWide reports whether the mapping applies group-wide rather than to
// a single business unit.
func (m *RequirementMapping) GroupWide() bool {
	return m.BusinessUnitID == nil
}
