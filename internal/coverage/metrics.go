package coverage

import (
	"math"

	"github.com/plantr/policyhub/internal/db/models"
)

// partialCreditWeight is the weight a partially covered requirement
// contributes to the coverage percentage. Exactly half credit; a policy
// constant, not a tunable.
const partialCreditWeight = 0.5

// Metrics summarizes coverage over a set of requirements.
type Metrics struct {
	Total      int `json:"total"`
	Covered    int `json:"covered"`
	Partial    int `json:"partial"`
	NotCovered int `json:"notCovered"`
	Mapped     int `json:"mapped"`

	// CoveragePercent weights partial coverage at half credit.
	CoveragePercent int `json:"coveragePercent"`
	// MappedPercent is the share of requirements with at least one mapping.
	MappedPercent int `json:"mappedPercent"`
}

// ComputeMetrics partitions mappings by requirement and derives the
// summary counts and percentages for a framework or dashboard view.
// Mappings without a document or referencing an unknown requirement are
// ignored. The result is set-based: input order is irrelevant.
func ComputeMetrics(requirements []models.Requirement, mappings []models.RequirementMapping) Metrics {
	m := Metrics{Total: len(requirements)}
	if m.Total == 0 {
		return m
	}

	known := make(map[uint]bool, len(requirements))
	for i := range requirements {
		known[requirements[i].ID] = true
	}

	byRequirement := make(map[uint][]models.RequirementMapping)

	for i := range mappings {
		mp := &mappings[i]
		if !mp.HasDocument() || !known[mp.RequirementID] {
			continue
		}

		byRequirement[mp.RequirementID] = append(byRequirement[mp.RequirementID], *mp)
	}

	for _, reqMappings := range byRequirement {
		switch BestStatus(reqMappings) {
		case models.StatusCovered:
			m.Covered++
		case models.StatusPartiallyCovered:
			m.Partial++
		case models.StatusNotCovered:
			// mapped but not covered; counted via Mapped below
		}
	}

	m.Mapped = len(byRequirement)
	m.NotCovered = m.Total - m.Covered - m.Partial

	m.CoveragePercent = roundPercent((float64(m.Covered) + partialCreditWeight*float64(m.Partial)) / float64(m.Total))
	m.MappedPercent = roundPercent(float64(m.Mapped) / float64(m.Total))

	return m
}

// roundPercent converts a 0..1 ratio to a rounded integer percentage.
func roundPercent(ratio float64) int {
	return int(math.Round(ratio * 100)) //nolint:mnd
}
