// Package requirement provides CRUD operations for regulatory requirements.
package requirement

import (
	"errors"

	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/models"
)

var (
	// ErrRequirementNotFound is returned when a requirement is not found.
	ErrRequirementNotFound = errors.New("requirement not found")
	// ErrRequirementCodeEmpty is returned when creating a requirement without a code.
	ErrRequirementCodeEmpty = errors.New("requirement code cannot be empty")
	// ErrRequirementTitleEmpty is returned when creating a requirement without a title.
	ErrRequirementTitleEmpty = errors.New("requirement title cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows List results. Zero values mean no filtering.
type Filter struct {
	SourceID uint
	Category string
	Search   string // matched against code, title and description
}

// List retrieves requirements matching the filter, ordered by code.
func List(db *gorm.DB, filter Filter) ([]models.Requirement, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Model(&models.Requirement{})

	if filter.SourceID != 0 {
		query = query.Where("source_id = ?", filter.SourceID)
	}

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR title LIKE ? OR description LIKE ?", pattern, pattern, pattern)
	}

	var requirements []models.Requirement
	if result := query.Order("code").Find(&requirements); result.Error != nil {
		return nil, result.Error
	}

	return requirements, nil
}

// Get retrieves a requirement by its ID.
func Get(db *gorm.DB, id uint) (*models.Requirement, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var req models.Requirement
	result := db.First(&req, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRequirementNotFound
		}
		return nil, result.Error
	}

	return &req, nil
}

// Create creates a new requirement.
func Create(db *gorm.DB, req *models.Requirement) error {
	if db == nil {
		return ErrDBNil
	}
	if req.Code == "" {
		return ErrRequirementCodeEmpty
	}
	if req.Title == "" {
		return ErrRequirementTitleEmpty
	}

	return db.Create(req).Error
}

// Update updates an existing requirement.
func Update(db *gorm.DB, req *models.Requirement) error {
	if db == nil {
		return ErrDBNil
	}
	if req.Code == "" {
		return ErrRequirementCodeEmpty
	}
	if req.Title == "" {
		return ErrRequirementTitleEmpty
	}

	result := db.Model(&models.Requirement{}).
		Where("id = ?", req.ID).
		Updates(map[string]any{
			"code":        req.Code,
			"title":       req.Title,
			"description": req.Description,
			"category":    req.Category,
			"owner":       req.Owner,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequirementNotFound
	}

	return nil
}

// Delete removes a requirement. Mappings referencing it are removed by
// the cascade constraint.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Requirement{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequirementNotFound
	}

	return nil
}
