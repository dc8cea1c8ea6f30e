package analysis

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmemory "github.com/gofiber/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/analysis"
	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web/session"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.RegulatorySource{},
		&models.Requirement{},
		&models.Document{},
		&models.RequirementMapping{},
		&models.CoverageStatusChange{},
		&models.BusinessUnit{},
		&models.ApplicabilityRule{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
	))

	return db
}

func loginAs(t *testing.T, db *gorm.DB, perms ...string) string {
	t.Helper()

	role := models.Role{Name: "test-role-" + session.GenerateSessionID()[:8]}
	require.NoError(t, db.Create(&role).Error)

	for _, name := range perms {
		perm := models.Permission{Name: name, Resource: name, Action: "test"}
		require.NoError(t, db.Where(models.Permission{Name: name}).FirstOrCreate(&perm).Error)
		require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)
	}

	user := models.User{
		Username: "user-" + session.GenerateSessionID()[:8],
		Active:   true,
		Password: models.HashPassword("secret"),
		RoleID:   role.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	sessionID := session.GenerateSessionID()
	data := session.Data{User: user}
	require.NoError(t, data.Write(sessionID, time.Minute))

	return "session=" + sessionID
}

func newTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	session.Init(sessionmemory.New(sessionmemory.Config{}))

	app := fiber.New()

	var s Service
	require.NoError(t, s.Init(app, &config.Config{}, db, auth.NewService(db)))

	return app
}

func seedCoverageFixture(t *testing.T, db *gorm.DB) uint {
	t.Helper()

	src := models.RegulatorySource{Name: "ISO/IEC 27001:2022"}
	require.NoError(t, db.Create(&src).Error)

	req := models.Requirement{
		SourceID:    src.ID,
		Code:        "A.8.12",
		Title:       "Data leakage prevention",
		Description: "prevent leakage of sensitive information from systems",
	}
	require.NoError(t, db.Create(&req).Error)

	doc := models.Document{
		Title:    "DLP Standard",
		Markdown: "# DLP Standard\n\nControls prevent leakage of sensitive information from all systems in scope.",
	}
	require.NoError(t, db.Create(&doc).Error)

	m := models.RequirementMapping{
		RequirementID:  req.ID,
		DocumentID:     &doc.ID,
		CoverageStatus: models.StatusNotCovered,
	}
	require.NoError(t, db.Create(&m).Error)

	return m.ID
}

func TestRunRequiresPermission(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermDashboardView)

	req := httptest.NewRequest(http.MethodPost, Path+"/run", nil)
	req.Header.Set("Cookie", cookie)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRunReturnsMetricsAndGaps(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermAnalysisRun)
	seedCoverageFixture(t, db)

	req := httptest.NewRequest(http.MethodPost, Path+"/run", nil)
	req.Header.Set("Cookie", cookie)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result analysis.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.Metrics.Total)
	assert.Zero(t, result.ContentAttempted)
}

func TestRunRefreshContentRewritesStatuses(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermAnalysisRun)
	mappingID := seedCoverageFixture(t, db)

	req := httptest.NewRequest(http.MethodPost, Path+"/run?refreshContent=true", nil)
	req.Header.Set("Cookie", cookie)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result analysis.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.ContentAttempted)
	assert.Equal(t, 1, result.ContentUpdated)

	var m models.RequirementMapping
	require.NoError(t, db.First(&m, mappingID).Error)
	assert.Equal(t, models.StatusCovered, m.CoverageStatus)
}
