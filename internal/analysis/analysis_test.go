package analysis

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.RegulatorySource{},
		&models.Requirement{},
		&models.Document{},
		&models.RequirementMapping{},
		&models.BusinessUnit{},
		&models.ApplicabilityRule{},
		&models.CoverageStatusChange{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedAnalysisFixture creates one source with two requirements, one
// document with markdown matching the first requirement, and a mapping
// linking them with a stale Not Covered status.
func seedAnalysisFixture(t *testing.T, db *gorm.DB) (reqA, reqB models.Requirement, doc models.Document, m models.RequirementMapping) {
	t.Helper()

	src := models.RegulatorySource{Name: "ISO 27001"}
	require.NoError(t, db.Create(&src).Error)

	reqA = models.Requirement{
		SourceID:    src.ID,
		Code:        "A.8.12",
		Title:       "Data leakage prevention",
		Description: "monitor channels detect leakage sensitive information",
	}
	require.NoError(t, db.Create(&reqA).Error)

	reqB = models.Requirement{
		SourceID:    src.ID,
		Code:        "A.8.15",
		Title:       "Logging",
		Description: "record activities events produce logs",
	}
	require.NoError(t, db.Create(&reqB).Error)

	doc = models.Document{
		Title:    "DLP Standard",
		Markdown: "We monitor all egress channels to detect leakage of sensitive information.",
	}
	require.NoError(t, db.Create(&doc).Error)

	m = models.RequirementMapping{
		RequirementID:  reqA.ID,
		DocumentID:     &doc.ID,
		CoverageStatus: models.StatusNotCovered,
	}
	require.NoError(t, db.Create(&m).Error)

	return reqA, reqB, doc, m
}

func TestRunReadOnly(t *testing.T) {
	db := setupTestDB(t)
	_, reqB, _, _ := seedAnalysisFixture(t, db)

	unit := models.BusinessUnit{Name: "Retail", Status: models.UnitActive}
	require.NoError(t, db.Create(&unit).Error)

	result, err := Run(db, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Metrics.Total)
	assert.Equal(t, 1, result.Metrics.Mapped)
	assert.Equal(t, 50, result.Metrics.MappedPercent)

	// The unmapped requirement is group-wide (no applicability rules).
	require.Len(t, result.Gaps.Unmapped, 1)
	assert.Equal(t, reqB.Code, result.Gaps.Unmapped[0].Code)

	assert.Zero(t, result.ContentAttempted)
	assert.Empty(t, result.ContentUpdates)
}

func TestRunRefreshContentRewritesStatus(t *testing.T) {
	db := setupTestDB(t)
	reqA, _, doc, m := seedAnalysisFixture(t, db)

	result, err := Run(db, Options{RefreshContent: true})
	require.NoError(t, err)

	// Every term of the requirement text occurs in the document body, so
	// the stale Not Covered status is rewritten to Covered.
	assert.Equal(t, 1, result.ContentAttempted)
	assert.Equal(t, 1, result.ContentUpdated)
	assert.Zero(t, result.ContentFailed)

	require.Len(t, result.ContentUpdates, 1)
	update := result.ContentUpdates[0]
	assert.Equal(t, m.ID, update.MappingID)
	assert.Equal(t, reqA.Code, update.RequirementCode)
	assert.Equal(t, doc.Title, update.DocumentTitle)
	assert.Equal(t, models.StatusNotCovered, update.OldStatus)
	assert.Equal(t, models.StatusCovered, update.NewStatus)
	assert.Equal(t, 100, update.Score)

	var stored models.RequirementMapping
	require.NoError(t, db.First(&stored, m.ID).Error)
	assert.Equal(t, models.StatusCovered, stored.CoverageStatus)
	require.NotNil(t, stored.AIScore)
	assert.Equal(t, 100, *stored.AIScore)

	// Metrics reflect the rewritten status within the same run.
	assert.Equal(t, 1, result.Metrics.Covered)

	var changes []models.CoverageStatusChange
	require.NoError(t, db.Where("mapping_id = ?", m.ID).Find(&changes).Error)
	require.Len(t, changes, 1)
	assert.Equal(t, models.StatusNotCovered, changes[0].OldStatus)
	assert.Equal(t, models.StatusCovered, changes[0].NewStatus)
}

func TestRunRefreshContentIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedAnalysisFixture(t, db)

	first, err := Run(db, Options{RefreshContent: true})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ContentUpdated)

	// The second run finds every mapping already at its derived status.
	second, err := Run(db, Options{RefreshContent: true})
	require.NoError(t, err)
	assert.Equal(t, 1, second.ContentAttempted)
	assert.Zero(t, second.ContentUpdated)
	assert.Empty(t, second.ContentUpdates)
}

func TestRunRefreshContentSkipsDocumentsWithoutMarkdown(t *testing.T) {
	db := setupTestDB(t)
	reqA, _, _, _ := seedAnalysisFixture(t, db)

	bare := models.Document{Title: "Empty Shell"}
	require.NoError(t, db.Create(&bare).Error)

	m := models.RequirementMapping{
		RequirementID:  reqA.ID,
		DocumentID:     &bare.ID,
		CoverageStatus: models.StatusCovered,
	}
	require.NoError(t, db.Create(&m).Error)

	result, err := Run(db, Options{RefreshContent: true})
	require.NoError(t, err)

	// Only the markdown-bearing mapping is attempted; the bare document's
	// asserted status is left alone.
	assert.Equal(t, 1, result.ContentAttempted)

	var stored models.RequirementMapping
	require.NoError(t, db.First(&stored, m.ID).Error)
	assert.Equal(t, models.StatusCovered, stored.CoverageStatus)
}

func TestScoreMapping(t *testing.T) {
	db := setupTestDB(t)
	_, _, _, m := seedAnalysisFixture(t, db)

	match, err := ScoreMapping(db, m.ID)
	require.NoError(t, err)

	assert.True(t, match.HasMarkdown)
	assert.Equal(t, 100, match.Score)
	assert.NotEmpty(t, match.MatchedTerms)
}

func TestScoreMappingNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := ScoreMapping(db, 999)
	require.Error(t, err)
}
