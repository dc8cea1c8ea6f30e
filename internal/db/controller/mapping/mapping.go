// Package mapping provides CRUD operations for requirement-to-document
// coverage mappings.
package mapping

import (
	"errors"

	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/models"
)

var (
	// ErrMappingNotFound is returned when a mapping is not found.
	ErrMappingNotFound = errors.New("mapping not found")
	// ErrInvalidCoverageStatus is returned when a status outside the three
	// enumerated values is supplied.
	ErrInvalidCoverageStatus = errors.New("coverage status must be Covered, Partially Covered or Not Covered")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List retrieves all mappings. Orphan-tolerant callers (the coverage
// engine) filter document-less rows themselves.
func List(db *gorm.DB) ([]models.RequirementMapping, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var mappings []models.RequirementMapping
	if result := db.Find(&mappings); result.Error != nil {
		return nil, result.Error
	}

	return mappings, nil
}

// ListByRequirement retrieves all mappings for one requirement.
func ListByRequirement(db *gorm.DB, requirementID uint) ([]models.RequirementMapping, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var mappings []models.RequirementMapping
	result := db.Where("requirement_id = ?", requirementID).Find(&mappings)
	if result.Error != nil {
		return nil, result.Error
	}

	return mappings, nil
}

// ListByDocument retrieves all mappings that link to one document.
func ListByDocument(db *gorm.DB, documentID uint) ([]models.RequirementMapping, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var mappings []models.RequirementMapping
	result := db.Where("document_id = ?", documentID).Find(&mappings)
	if result.Error != nil {
		return nil, result.Error
	}

	return mappings, nil
}

// Get retrieves a mapping by its ID.
func Get(db *gorm.DB, id uint) (*models.RequirementMapping, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var m models.RequirementMapping
	result := db.First(&m, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMappingNotFound
		}
		return nil, result.Error
	}

	return &m, nil
}

// Create creates a new mapping. The coverage status must be one of the
// three enumerated values.
func Create(db *gorm.DB, m *models.RequirementMapping) error {
	if db == nil {
		return ErrDBNil
	}
	if !m.CoverageStatus.Valid() {
		return ErrInvalidCoverageStatus
	}

	return db.Create(m).Error
}

// Update updates the user-editable fields of an existing mapping.
func Update(db *gorm.DB, m *models.RequirementMapping) error {
	if db == nil {
		return ErrDBNil
	}
	if !m.CoverageStatus.Valid() {
		return ErrInvalidCoverageStatus
	}

	result := db.Model(&models.RequirementMapping{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"document_id":      m.DocumentID,
			"business_unit_id": m.BusinessUnitID,
			"coverage_status":  m.CoverageStatus,
			"rationale":        m.Rationale,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMappingNotFound
	}

	return nil
}

// UpdateStatus rewrites the coverage status and AI fields of a mapping.
// This is the write path of the content analysis batch; callers are
// responsible for recording the change (see RecordStatusChange).
func UpdateStatus(db *gorm.DB, id uint, status models.CoverageStatus, score int, rationale string) error {
	if db == nil {
		return ErrDBNil
	}
	if !status.Valid() {
		return ErrInvalidCoverageStatus
	}

	result := db.Model(&models.RequirementMapping{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"coverage_status": status,
			"ai_score":        score,
			"ai_rationale":    rationale,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMappingNotFound
	}

	return nil
}

// RecordStatusChange persists an audit row for a machine-driven status rewrite.
func RecordStatusChange(db *gorm.DB, change *models.CoverageStatusChange) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(change).Error
}

// StatusChanges retrieves the audit trail for one mapping, newest first.
func StatusChanges(db *gorm.DB, mappingID uint) ([]models.CoverageStatusChange, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var changes []models.CoverageStatusChange
	result := db.Where("mapping_id = ?", mappingID).Order("created_at DESC").Find(&changes)
	if result.Error != nil {
		return nil, result.Error
	}

	return changes, nil
}

// Delete removes a mapping (an explicit unlink).
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.RequirementMapping{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMappingNotFound
	}

	return nil
}
