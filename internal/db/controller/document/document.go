// Package document provides CRUD operations for policy documents.
package document

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/models"
)

var (
	// ErrDocumentNotFound is returned when a document is not found.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentTitleEmpty is returned when creating a document without a title.
	ErrDocumentTitleEmpty = errors.New("document title cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows List results. Zero values mean no filtering.
type Filter struct {
	DocType  string
	Taxonomy string
	Search   string // matched against the title
}

// List retrieves documents matching the filter, ordered by title.
func List(db *gorm.DB, filter Filter) ([]models.Document, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Model(&models.Document{})

	if filter.DocType != "" {
		query = query.Where("doc_type = ?", filter.DocType)
	}

	if filter.Taxonomy != "" {
		query = query.Where("taxonomy = ?", filter.Taxonomy)
	}

	if filter.Search != "" {
		query = query.Where("title LIKE ?", "%"+filter.Search+"%")
	}

	var documents []models.Document
	if result := query.Order("title").Find(&documents); result.Error != nil {
		return nil, result.Error
	}

	return documents, nil
}

// Get retrieves a document by its ID.
func Get(db *gorm.DB, id uint) (*models.Document, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var doc models.Document
	result := db.First(&doc, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, result.Error
	}

	return &doc, nil
}

// Create creates a new document.
func Create(db *gorm.DB, doc *models.Document) error {
	if db == nil {
		return ErrDBNil
	}
	if doc.Title == "" {
		return ErrDocumentTitleEmpty
	}

	return db.Create(doc).Error
}

// Update updates an existing document.
func Update(db *gorm.DB, doc *models.Document) error {
	if db == nil {
		return ErrDBNil
	}
	if doc.Title == "" {
		return ErrDocumentTitleEmpty
	}

	result := db.Model(&models.Document{}).
		Where("id = ?", doc.ID).
		Updates(map[string]any{
			"title":            doc.Title,
			"doc_type":         doc.DocType,
			"taxonomy":         doc.Taxonomy,
			"owner":            doc.Owner,
			"markdown":         doc.Markdown,
			"next_review_date": doc.NextReviewDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}

	return nil
}

// Delete removes a document. Mappings keep their row but lose the
// document link, which excludes them from aggregation.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	if err := db.Model(&models.RequirementMapping{}).
		Where("document_id = ?", id).
		Update("document_id", nil).Error; err != nil {
		return err
	}

	result := db.Delete(&models.Document{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}

	return nil
}

// DueForReview retrieves documents whose next review date falls before the
// given cutoff, ordered by due date.
func DueForReview(db *gorm.DB, before time.Time) ([]models.Document, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var documents []models.Document
	result := db.Where("next_review_date IS NOT NULL AND next_review_date <= ?", before).
		Order("next_review_date").
		Find(&documents)
	if result.Error != nil {
		return nil, result.Error
	}

	return documents, nil
}
