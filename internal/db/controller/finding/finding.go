// Package finding provides CRUD operations for compliance findings.
package finding

import (
	"errors"

	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/models"
)

var (
	// ErrFindingNotFound is returned when a finding is not found.
	ErrFindingNotFound = errors.New("finding not found")
	// ErrFindingTitleEmpty is returned when creating a finding without a title.
	ErrFindingTitleEmpty = errors.New("finding title cannot be empty")
	// ErrInvalidStatus is returned for a status outside the enumerated lifecycle.
	ErrInvalidStatus = errors.New("finding status must be Open, In Remediation or Closed")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows List results. Zero values mean no filtering.
type Filter struct {
	Status         models.FindingStatus
	RequirementID  uint
	BusinessUnitID uint
}

// List retrieves findings matching the filter, newest first.
func List(db *gorm.DB, filter Filter) ([]models.Finding, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Model(&models.Finding{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.RequirementID != 0 {
		query = query.Where("requirement_id = ?", filter.RequirementID)
	}

	if filter.BusinessUnitID != 0 {
		query = query.Where("business_unit_id = ?", filter.BusinessUnitID)
	}

	var findings []models.Finding
	if result := query.Order("created_at DESC").Find(&findings); result.Error != nil {
		return nil, result.Error
	}

	return findings, nil
}

// CountOpen returns the number of findings that are not yet closed.
func CountOpen(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	result := db.Model(&models.Finding{}).
		Where("status <> ?", models.FindingClosed).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// Get retrieves a finding by its ID.
func Get(db *gorm.DB, id uint) (*models.Finding, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var f models.Finding
	result := db.First(&f, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrFindingNotFound
		}
		return nil, result.Error
	}

	return &f, nil
}

// Create creates a new finding.
func Create(db *gorm.DB, f *models.Finding) error {
	if db == nil {
		return ErrDBNil
	}
	if f.Title == "" {
		return ErrFindingTitleEmpty
	}
	if f.Status == "" {
		f.Status = models.FindingOpen
	}
	if !f.Status.Valid() {
		return ErrInvalidStatus
	}

	return db.Create(f).Error
}

// Update updates an existing finding.
func Update(db *gorm.DB, f *models.Finding) error {
	if db == nil {
		return ErrDBNil
	}
	if f.Title == "" {
		return ErrFindingTitleEmpty
	}
	if !f.Status.Valid() {
		return ErrInvalidStatus
	}

	result := db.Model(&models.Finding{}).
		Where("id = ?", f.ID).
		Updates(map[string]any{
			"title":            f.Title,
			"description":      f.Description,
			"severity":         f.Severity,
			"status":           f.Status,
			"requirement_id":   f.RequirementID,
			"business_unit_id": f.BusinessUnitID,
			"owner":            f.Owner,
			"due_date":         f.DueDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFindingNotFound
	}

	return nil
}

// Delete removes a finding.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Finding{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFindingNotFound
	}

	return nil
}
