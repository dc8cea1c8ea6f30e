// Package audit provides CRUD operations for audit records.
package audit

import (
	"errors"

	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/models"
)

var (
	// ErrAuditNotFound is returned when an audit is not found.
	ErrAuditNotFound = errors.New("audit not found")
	// ErrAuditNameEmpty is returned when creating an audit without a name.
	ErrAuditNameEmpty = errors.New("audit name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List retrieves audits, optionally filtered by status, newest first.
func List(db *gorm.DB, status models.AuditStatus) ([]models.Audit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Model(&models.Audit{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var audits []models.Audit
	if result := query.Order("created_at DESC").Find(&audits); result.Error != nil {
		return nil, result.Error
	}

	return audits, nil
}

// Get retrieves an audit by its ID.
func Get(db *gorm.DB, id uint) (*models.Audit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var a models.Audit
	result := db.First(&a, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAuditNotFound
		}
		return nil, result.Error
	}

	return &a, nil
}

// Create creates a new audit.
func Create(db *gorm.DB, a *models.Audit) error {
	if db == nil {
		return ErrDBNil
	}
	if a.Name == "" {
		return ErrAuditNameEmpty
	}
	if a.Status == "" {
		a.Status = models.AuditScheduled
	}

	return db.Create(a).Error
}

// Update updates an existing audit.
func Update(db *gorm.DB, a *models.Audit) error {
	if db == nil {
		return ErrDBNil
	}
	if a.Name == "" {
		return ErrAuditNameEmpty
	}

	result := db.Model(&models.Audit{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"name":       a.Name,
			"source_id":  a.SourceID,
			"auditor":    a.Auditor,
			"status":     a.Status,
			"start_date": a.StartDate,
			"end_date":   a.EndDate,
			"notes":      a.Notes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAuditNotFound
	}

	return nil
}

// Delete removes an audit.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Audit{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAuditNotFound
	}

	return nil
}
