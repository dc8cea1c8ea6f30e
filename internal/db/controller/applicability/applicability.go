// Package applicability manages requirement-to-business-unit applicability
// rules and builds the predicate the gap detector consumes.
package applicability

import (
	"errors"

	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/models"
)

var (
	// ErrRuleNotFound is returned when an applicability rule is not found.
	ErrRuleNotFound = errors.New("applicability rule not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List retrieves all applicability rules.
func List(db *gorm.DB) ([]models.ApplicabilityRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rules []models.ApplicabilityRule
	if result := db.Find(&rules); result.Error != nil {
		return nil, result.Error
	}

	return rules, nil
}

// ListByRequirement retrieves the rules for one requirement.
func ListByRequirement(db *gorm.DB, requirementID uint) ([]models.ApplicabilityRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rules []models.ApplicabilityRule
	result := db.Where("requirement_id = ?", requirementID).Find(&rules)
	if result.Error != nil {
		return nil, result.Error
	}

	return rules, nil
}

// Set creates or updates the rule for a (requirement, unit) pair.
func Set(db *gorm.DB, requirementID, businessUnitID uint, applicable bool) (*models.ApplicabilityRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rule models.ApplicabilityRule
	result := db.Where("requirement_id = ? AND business_unit_id = ?", requirementID, businessUnitID).
		First(&rule)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		rule = models.ApplicabilityRule{
			RequirementID:  requirementID,
			BusinessUnitID: businessUnitID,
			Applicable:     applicable,
		}
		if result = db.Create(&rule); result.Error != nil {
			return nil, result.Error
		}

		return &rule, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	rule.Applicable = applicable
	if result = db.Save(&rule); result.Error != nil {
		return nil, result.Error
	}

	return &rule, nil
}

// Delete removes the rule for a (requirement, unit) pair.
func Delete(db *gorm.DB, requirementID, businessUnitID uint) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("requirement_id = ? AND business_unit_id = ?", requirementID, businessUnitID).
		Delete(&models.ApplicabilityRule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}

	return nil
}

// Predicate answers whether a requirement binds a business unit, and
// whether the requirement has any rules at all (no rules means the
// requirement is group-wide).
type Predicate struct {
	applicable map[[2]uint]bool
	scoped     map[uint]bool
}

// IsApplicable reports whether the requirement binds the unit. Only an
// explicit rule with Applicable=true binds; absence of a rule does not.
func (p *Predicate) IsApplicable(requirementID, businessUnitID uint) bool {
	return p.applicable[[2]uint{requirementID, businessUnitID}]
}

// GroupWide reports whether the requirement has no rules at all and is
// therefore not scoped to any specific unit.
func (p *Predicate) GroupWide(requirementID uint) bool {
	return !p.scoped[requirementID]
}

// BuildPredicate loads all rules and materializes the applicability
// predicate the gap detector consumes.
func BuildPredicate(db *gorm.DB) (*Predicate, error) {
	rules, err := List(db)
	if err != nil {
		return nil, err
	}

	return NewPredicate(rules), nil
}

// NewPredicate builds a Predicate from an in-memory rule set.
func NewPredicate(rules []models.ApplicabilityRule) *Predicate {
	p := &Predicate{
		applicable: make(map[[2]uint]bool, len(rules)),
		scoped:     make(map[uint]bool),
	}

	for _, rule := range rules {
		p.scoped[rule.RequirementID] = true
		if rule.Applicable {
			p.applicable[[2]uint{rule.RequirementID, rule.BusinessUnitID}] = true
		}
	}

	return p
}
