package coverage

import (
	"fmt"

	"github.com/plantr/policyhub/internal/db/models"
)

// Applicability decides whether a requirement binds a business unit. It
// is consumed as an opaque predicate; the rule store behind it is not the
// engine's concern.
type Applicability interface {
	// IsApplicable reports whether the requirement binds the unit.
	IsApplicable(requirementID, businessUnitID uint) bool
	// GroupWide reports whether the requirement is not scoped to any
	// specific unit at all.
	GroupWide(requirementID uint) bool
}

// UnmappedGap is a requirement with no document-bearing mapping anywhere.
type UnmappedGap struct {
	RequirementID uint   `json:"requirementId"`
	Code          string `json:"code"`
	Title         string `json:"title"`
}

// UnitGap is an applicable (business unit, requirement) pair with no
// mapping scoped to that unit.
type UnitGap struct {
	RequirementID  uint   `json:"requirementId"`
	Code           string `json:"code"`
	Title          string `json:"title"`
	BusinessUnitID uint   `json:"businessUnitId"`
	UnitName       string `json:"unitName"`
}

// OverStrictFinding is a mapping scoped to a unit the requirement does
// not bind: the document was mapped somewhere it need not have been.
type OverStrictFinding struct {
	MappingID      uint   `json:"mappingId"`
	RequirementID  uint   `json:"requirementId"`
	BusinessUnitID uint   `json:"businessUnitId"`
	Reason         string `json:"reason"`
}

// GapReport is the structured result of a gap detection run, shaped for
// direct UI rendering.
type GapReport struct {
	TotalRequirements int `json:"totalRequirements"`
	ActiveUnits       int `json:"activeUnits"`

	Unmapped   []UnmappedGap       `json:"unmapped"`
	UnitGaps   []UnitGap           `json:"unitGaps"`
	OverStrict []OverStrictFinding `json:"overStrict"`

	UnmappedCount   int `json:"unmappedCount"`
	UnitGapCount    int `json:"unitGapCount"`
	OverStrictCount int `json:"overStrictCount"`
}

// DetectGaps classifies every requirement against the active business
// units. Each (requirement, unit) pair lands in exactly one bucket:
// unmapped, unit gap, over-strict or satisfied (satisfied is implicit).
//
// A group-wide mapping does not satisfy a unit-scoped applicability
// requirement. Running twice over unchanged input yields an identical
// report.
func DetectGaps(
	requirements []models.Requirement,
	mappings []models.RequirementMapping,
	units []models.BusinessUnit,
	pred Applicability,
) GapReport {
	report := GapReport{
		TotalRequirements: len(requirements),
		Unmapped:          make([]UnmappedGap, 0),
		UnitGaps:          make([]UnitGap, 0),
		OverStrict:        make([]OverStrictFinding, 0),
	}

	known := make(map[uint]*models.Requirement, len(requirements))
	for i := range requirements {
		known[requirements[i].ID] = &requirements[i]
	}

	unitsByID := make(map[uint]*models.BusinessUnit, len(units))

	var activeUnits []*models.BusinessUnit

	for i := range units {
		unitsByID[units[i].ID] = &units[i]
		if units[i].Active() {
			activeUnits = append(activeUnits, &units[i])
		}
	}

	report.ActiveUnits = len(activeUnits)

	// Aggregation-eligible mappings per requirement, plus the set of
	// units each requirement is explicitly mapped in.
	mapped := make(map[uint]bool)
	scoped := make(map[[2]uint]bool)

	for i := range mappings {
		m := &mappings[i]
		if !m.HasDocument() || known[m.RequirementID] == nil {
			continue
		}

		mapped[m.RequirementID] = true

		if m.BusinessUnitID != nil {
			scoped[[2]uint{m.RequirementID, *m.BusinessUnitID}] = true
		}
	}

	for i := range requirements {
		req := &requirements[i]

		var applicable []*models.BusinessUnit

		for _, unit := range activeUnits {
			if pred.IsApplicable(req.ID, unit.ID) {
				applicable = append(applicable, unit)
			}
		}

		// A requirement with no mappings anywhere is reported once,
		// provided it binds at least one active unit or is group-wide.
		if !mapped[req.ID] {
			if len(applicable) > 0 || pred.GroupWide(req.ID) {
				report.Unmapped = append(report.Unmapped, UnmappedGap{
					RequirementID: req.ID,
					Code:          req.Code,
					Title:         req.Title,
				})
			}

			continue
		}

		for _, unit := range applicable {
			if !scoped[[2]uint{req.ID, unit.ID}] {
				report.UnitGaps = append(report.UnitGaps, UnitGap{
					RequirementID:  req.ID,
					Code:           req.Code,
					Title:          req.Title,
					BusinessUnitID: unit.ID,
					UnitName:       unit.Name,
				})
			}
		}
	}

	for i := range mappings {
		m := &mappings[i]

		req := known[m.RequirementID]
		if !m.HasDocument() || req == nil || m.BusinessUnitID == nil {
			continue
		}

		if pred.IsApplicable(m.RequirementID, *m.BusinessUnitID) {
			continue
		}

		unitName := fmt.Sprintf("unit %d", *m.BusinessUnitID)
		if unit := unitsByID[*m.BusinessUnitID]; unit != nil {
			unitName = unit.Name
		}

		report.OverStrict = append(report.OverStrict, OverStrictFinding{
			MappingID:      m.ID,
			RequirementID:  m.RequirementID,
			BusinessUnitID: *m.BusinessUnitID,
			Reason: fmt.Sprintf("%s is mapped in %s but does not apply there",
				req.Code, unitName),
		})
	}

	report.UnmappedCount = len(report.Unmapped)
	report.UnitGapCount = len(report.UnitGaps)
	report.OverStrictCount = len(report.OverStrict)

	return report
}
