// Package businessunit provides CRUD operations for business units.
package businessunit

import (
	"errors"

	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/models"
)

var (
	// ErrUnitNotFound is returned when a business unit is not found.
	ErrUnitNotFound = errors.New("business unit not found")
	// ErrUnitNameEmpty is returned when creating a unit without a name.
	ErrUnitNameEmpty = errors.New("business unit name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List retrieves business units ordered by name. When activeOnly is true
// archived units are excluded.
func List(db *gorm.DB, activeOnly bool) ([]models.BusinessUnit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Model(&models.BusinessUnit{})
	if activeOnly {
		query = query.Where("status = ?", models.UnitActive)
	}

	var units []models.BusinessUnit
	if result := query.Order("name").Find(&units); result.Error != nil {
		return nil, result.Error
	}

	return units, nil
}

// Get retrieves a business unit by its ID.
func Get(db *gorm.DB, id uint) (*models.BusinessUnit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var unit models.BusinessUnit
	result := db.First(&unit, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, result.Error
	}

	return &unit, nil
}

// Create creates a new business unit.
func Create(db *gorm.DB, unit *models.BusinessUnit) error {
	if db == nil {
		return ErrDBNil
	}
	if unit.Name == "" {
		return ErrUnitNameEmpty
	}
	if unit.Status == "" {
		unit.Status = models.UnitActive
	}

	return db.Create(unit).Error
}

// Update updates an existing business unit.
func Update(db *gorm.DB, unit *models.BusinessUnit) error {
	if db == nil {
		return ErrDBNil
	}
	if unit.Name == "" {
		return ErrUnitNameEmpty
	}

	result := db.Model(&models.BusinessUnit{}).
		Where("id = ?", unit.ID).
		Updates(map[string]any{
			"name":         unit.Name,
			"jurisdiction": unit.Jurisdiction,
			"status":       unit.Status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUnitNotFound
	}

	return nil
}

// Delete removes a business unit. Unit-scoped mappings fall back to
// group-wide and applicability rules for the unit are removed.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	if err := db.Model(&models.RequirementMapping{}).
		Where("business_unit_id = ?", id).
		Update("business_unit_id", nil).Error; err != nil {
		return err
	}

	if err := db.Where("business_unit_id = ?", id).
		Delete(&models.ApplicabilityRule{}).Error; err != nil {
		return err
	}

	result := db.Delete(&models.BusinessUnit{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUnitNotFound
	}

	return nil
}
