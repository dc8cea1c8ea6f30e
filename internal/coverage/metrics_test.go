package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plantr/policyhub/internal/db/models"
)

func requirements(ids ...uint) []models.Requirement {
	reqs := make([]models.Requirement, 0, len(ids))
	for _, id := range ids {
		reqs = append(reqs, models.Requirement{ID: id})
	}

	return reqs
}

func TestComputeMetrics(t *testing.T) {
	tests := []struct {
		name         string
		requirements []models.Requirement
		mappings     []models.RequirementMapping
		want         Metrics
	}{
		{
			name: "NoRequirements",
			want: Metrics{},
		},
		{
			name:         "NoMappings",
			requirements: requirements(1, 2),
			want:         Metrics{Total: 2, NotCovered: 2},
		},
		{
			name:         "OneOfTwoCovered",
			requirements: requirements(1, 2),
			mappings: []models.RequirementMapping{
				docMapping(1, 1, 1, models.StatusCovered),
			},
			want: Metrics{
				Total:           2,
				Covered:         1,
				NotCovered:      1,
				Mapped:          1,
				CoveragePercent: 50,
				MappedPercent:   50,
			},
		},
		{
			name:         "PartialCountsHalf",
			requirements: requirements(1),
			mappings: []models.RequirementMapping{
				docMapping(1, 1, 1, models.StatusPartiallyCovered),
			},
			want: Metrics{
				Total:           1,
				Partial:         1,
				Mapped:          1,
				CoveragePercent: 50,
				MappedPercent:   100,
			},
		},
		{
			name:         "CoveredWinsOverPartialForSameRequirement",
			requirements: requirements(1),
			mappings: []models.RequirementMapping{
				docMapping(1, 1, 1, models.StatusPartiallyCovered),
				docMapping(2, 1, 2, models.StatusCovered),
			},
			want: Metrics{
				Total:           1,
				Covered:         1,
				Mapped:          1,
				CoveragePercent: 100,
				MappedPercent:   100,
			},
		},
		{
			name:         "NotCoveredMappingStillCountsAsMapped",
			requirements: requirements(1, 2),
			mappings: []models.RequirementMapping{
				docMapping(1, 1, 1, models.StatusNotCovered),
			},
			want: Metrics{
				Total:         2,
				NotCovered:    2,
				Mapped:        1,
				MappedPercent: 50,
			},
		},
		{
			name:         "OrphanMappingExcluded",
			requirements: requirements(1),
			mappings: []models.RequirementMapping{
				docMapping(1, 99, 1, models.StatusCovered),
			},
			want: Metrics{Total: 1, NotCovered: 1},
		},
		{
			name:         "MappingWithoutDocumentExcluded",
			requirements: requirements(1),
			mappings: []models.RequirementMapping{
				{ID: 1, RequirementID: 1, CoverageStatus: models.StatusCovered},
			},
			want: Metrics{Total: 1, NotCovered: 1},
		},
		{
			name:         "RoundingOneOfThreeCovered",
			requirements: requirements(1, 2, 3),
			mappings: []models.RequirementMapping{
				docMapping(1, 1, 1, models.StatusCovered),
			},
			want: Metrics{
				Total:           3,
				Covered:         1,
				NotCovered:      2,
				Mapped:          1,
				CoveragePercent: 33,
				MappedPercent:   33,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeMetrics(tt.requirements, tt.mappings))
		})
	}
}

func TestComputeMetricsOrderIndependent(t *testing.T) {
	reqs := requirements(1, 2, 3)
	mappings := []models.RequirementMapping{
		docMapping(1, 1, 1, models.StatusNotCovered),
		docMapping(2, 2, 2, models.StatusPartiallyCovered),
		docMapping(3, 1, 3, models.StatusCovered),
	}

	reversed := []models.RequirementMapping{mappings[2], mappings[1], mappings[0]}

	assert.Equal(t, ComputeMetrics(reqs, mappings), ComputeMetrics(reqs, reversed))
}
