// Package risk provides CRUD operations for the risk register.
package risk

import (
	"errors"

	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/models"
)

var (
	// ErrRiskNotFound is returned when a risk is not found.
	ErrRiskNotFound = errors.New("risk not found")
	// ErrRiskTitleEmpty is returned when creating a risk without a title.
	ErrRiskTitleEmpty = errors.New("risk title cannot be empty")
	// ErrInvalidLevel is returned when severity or likelihood fall outside 1-5.
	ErrInvalidLevel = errors.New("severity and likelihood must be between 1 and 5")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

func validLevel(l models.RiskLevel) bool {
	return l >= 1 && l <= 5
}

// Filter narrows List results. Zero values mean no filtering.
type Filter struct {
	Category       string
	BusinessUnitID uint
	MinRating      int
}

// List retrieves risks matching the filter, highest rating first.
func List(db *gorm.DB, filter Filter) ([]models.Risk, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Model(&models.Risk{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.BusinessUnitID != 0 {
		query = query.Where("business_unit_id = ?", filter.BusinessUnitID)
	}

	if filter.MinRating > 0 {
		query = query.Where("severity * likelihood >= ?", filter.MinRating)
	}

	var risks []models.Risk
	if result := query.Order("severity * likelihood DESC").Find(&risks); result.Error != nil {
		return nil, result.Error
	}

	return risks, nil
}

// Get retrieves a risk by its ID.
func Get(db *gorm.DB, id uint) (*models.Risk, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Risk
	result := db.First(&r, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRiskNotFound
		}
		return nil, result.Error
	}

	return &r, nil
}

// Create creates a new risk.
func Create(db *gorm.DB, r *models.Risk) error {
	if db == nil {
		return ErrDBNil
	}
	if r.Title == "" {
		return ErrRiskTitleEmpty
	}
	if !validLevel(r.Severity) || !validLevel(r.Likelihood) {
		return ErrInvalidLevel
	}

	return db.Create(r).Error
}

// Update updates an existing risk.
func Update(db *gorm.DB, r *models.Risk) error {
	if db == nil {
		return ErrDBNil
	}
	if r.Title == "" {
		return ErrRiskTitleEmpty
	}
	if !validLevel(r.Severity) || !validLevel(r.Likelihood) {
		return ErrInvalidLevel
	}

	result := db.Model(&models.Risk{}).
		Where("id = ?", r.ID).
		Updates(map[string]any{
			"title":            r.Title,
			"description":      r.Description,
			"category":         r.Category,
			"owner":            r.Owner,
			"severity":         r.Severity,
			"likelihood":       r.Likelihood,
			"business_unit_id": r.BusinessUnitID,
			"mitigation":       r.Mitigation,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRiskNotFound
	}

	return nil
}

// Delete removes a risk.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Risk{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRiskNotFound
	}

	return nil
}
