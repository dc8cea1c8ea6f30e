// Package source provides CRUD operations for regulatory sources.
package source

import (
	"errors"

	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/models"
)

var (
	// ErrSourceNotFound is returned when a regulatory source is not found.
	ErrSourceNotFound = errors.New("regulatory source not found")
	// ErrSourceNameEmpty is returned when creating a source with an empty name.
	ErrSourceNameEmpty = errors.New("regulatory source name cannot be empty")
	// ErrSourceHasRequirements is returned when deleting a source that
	// requirements still reference. Deletion is blocked rather than
	// cascaded so a catalogue cannot vanish by accident.
	ErrSourceHasRequirements = errors.New("regulatory source still has requirements")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows List results. Zero values mean no filtering.
type Filter struct {
	Category     string
	Jurisdiction string
	Search       string // matched against name and short name
}

// List retrieves regulatory sources matching the filter, ordered by name.
func List(db *gorm.DB, filter Filter) ([]models.RegulatorySource, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Model(&models.RegulatorySource{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.Jurisdiction != "" {
		query = query.Where("jurisdiction = ?", filter.Jurisdiction)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR short_name LIKE ?", pattern, pattern)
	}

	var sources []models.RegulatorySource
	if result := query.Order("name").Find(&sources); result.Error != nil {
		return nil, result.Error
	}

	return sources, nil
}

// Get retrieves a regulatory source by its ID.
func Get(db *gorm.DB, id uint) (*models.RegulatorySource, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var src models.RegulatorySource
	result := db.First(&src, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSourceNotFound
		}
		return nil, result.Error
	}

	return &src, nil
}

// Create creates a new regulatory source.
func Create(db *gorm.DB, src *models.RegulatorySource) error {
	if db == nil {
		return ErrDBNil
	}
	if src.Name == "" {
		return ErrSourceNameEmpty
	}

	return db.Create(src).Error
}

// Update updates an existing regulatory source.
func Update(db *gorm.DB, src *models.RegulatorySource) error {
	if db == nil {
		return ErrDBNil
	}
	if src.Name == "" {
		return ErrSourceNameEmpty
	}

	result := db.Model(&models.RegulatorySource{}).
		Where("id = ?", src.ID).
		Updates(map[string]any{
			"name":         src.Name,
			"short_name":   src.ShortName,
			"jurisdiction": src.Jurisdiction,
			"category":     src.Category,
			"url":          src.URL,
			"description":  src.Description,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSourceNotFound
	}

	return nil
}

// Delete removes a regulatory source. Deletion is blocked while any
// requirement references the source.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	var count int64
	if err := db.Model(&models.Requirement{}).Where("source_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSourceHasRequirements
	}

	result := db.Delete(&models.RegulatorySource{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSourceNotFound
	}

	return nil
}
