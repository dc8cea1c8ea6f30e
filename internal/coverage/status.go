package coverage

import (
	"github.com/plantr/policyhub/internal/db/models"
)

// BestStatus reduces all mappings of one requirement to the single most
// favorable coverage status: any Covered mapping wins, then any Partially
// Covered, otherwise Not Covered. An empty set is Not Covered.
//
// Most-favorable-wins is a policy decision that every downstream
// percentage depends on; change it here and nowhere else.
func BestStatus(mappings []models.RequirementMapping) models.CoverageStatus {
	best := models.StatusNotCovered

	for i := range mappings {
		m := &mappings[i]
		if !m.HasDocument() {
			continue
		}

		switch m.CoverageStatus {
		case models.StatusCovered:
			return models.StatusCovered
		case models.StatusPartiallyCovered:
			best = models.StatusPartiallyCovered
		case models.StatusNotCovered:
			// does not improve on the default
		}
	}

	return best
}
