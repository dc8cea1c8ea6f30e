package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plantr/policyhub/internal/db/models"
)

func docMapping(id, reqID, docID uint, status models.CoverageStatus) models.RequirementMapping {
	return models.RequirementMapping{
		ID:             id,
		RequirementID:  reqID,
		DocumentID:     &docID,
		CoverageStatus: status,
	}
}

func TestBestStatus(t *testing.T) {
	tests := []struct {
		name     string
		mappings []models.RequirementMapping
		want     models.CoverageStatus
	}{
		{
			name:     "EmptyInput",
			mappings: nil,
			want:     models.StatusNotCovered,
		},
		{
			name: "SingleCovered",
			mappings: []models.RequirementMapping{
				docMapping(1, 1, 1, models.StatusCovered),
			},
			want: models.StatusCovered,
		},
		{
			name: "CoveredBeatsAnyNumberOfNotCovered",
			mappings: []models.RequirementMapping{
				docMapping(1, 1, 1, models.StatusNotCovered),
				docMapping(2, 1, 2, models.StatusNotCovered),
				docMapping(3, 1, 3, models.StatusCovered),
				docMapping(4, 1, 4, models.StatusNotCovered),
			},
			want: models.StatusCovered,
		},
		{
			name: "PartialBeatsNotCovered",
			mappings: []models.RequirementMapping{
				docMapping(1, 1, 1, models.StatusNotCovered),
				docMapping(2, 1, 2, models.StatusPartiallyCovered),
			},
			want: models.StatusPartiallyCovered,
		},
		{
			name: "OnlyNotCovered",
			mappings: []models.RequirementMapping{
				docMapping(1, 1, 1, models.StatusNotCovered),
			},
			want: models.StatusNotCovered,
		},
		{
			name: "MappingWithoutDocumentIgnored",
			mappings: []models.RequirementMapping{
				{ID: 1, RequirementID: 1, CoverageStatus: models.StatusCovered},
			},
			want: models.StatusNotCovered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BestStatus(tt.mappings))
		})
	}
}
