package mapping

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmemory "github.com/gofiber/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/coverage"
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

func doRequest(t *testing.T, app *fiber.App, method, target, cookie, body string) *http.Response {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func seedRequirementAndDocument(t *testing.T, db *gorm.DB) (uint, uint) {
	t.Helper()

	src := models.RegulatorySource{Name: "ISO/IEC 27001:2022"}
	require.NoError(t, db.Create(&src).Error)

	req := models.Requirement{
		SourceID:    src.ID,
		Code:        "A.8.15",
		Title:       "Logging",
		Description: "activity logs shall be produced and retained",
	}
	require.NoError(t, db.Create(&req).Error)

	doc := models.Document{
		Title:    "Logging Standard",
		Markdown: "# Logging Standard\n\nActivity logs are produced on all systems and retained for one year.",
	}
	require.NoError(t, db.Create(&doc).Error)

	return req.ID, doc.ID
}

func TestMappingCreate(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermMappingManage)
	reqID, docID := seedRequirementAndDocument(t, db)

	body := fmt.Sprintf(`{"requirementId":%d,"documentId":%d,"coverageStatus":"Covered","rationale":"direct match"}`, reqID, docID)

	resp := doRequest(t, app, http.MethodPost, Path, cookie, body)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.RequirementMapping
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.StatusCovered, created.CoverageStatus)
}

func TestMappingCreateRejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermMappingManage)
	reqID, _ := seedRequirementAndDocument(t, db)

	body := fmt.Sprintf(`{"requirementId":%d,"coverageStatus":"Maybe"}`, reqID)

	resp := doRequest(t, app, http.MethodPost, Path, cookie, body)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMappingScore(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermMappingView)
	reqID, docID := seedRequirementAndDocument(t, db)

	m := models.RequirementMapping{
		RequirementID:  reqID,
		DocumentID:     &docID,
		CoverageStatus: models.StatusNotCovered,
	}
	require.NoError(t, db.Create(&m).Error)

	resp := doRequest(t, app, http.MethodGet, fmt.Sprintf("%s/%d/score", Path, m.ID), cookie, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var match coverage.MatchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&match))
	assert.True(t, match.HasMarkdown)
	assert.Greater(t, match.Score, 0)
}

func TestMappingHistory(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermMappingView)
	reqID, docID := seedRequirementAndDocument(t, db)

	m := models.RequirementMapping{
		RequirementID:  reqID,
		DocumentID:     &docID,
		CoverageStatus: models.StatusCovered,
	}
	require.NoError(t, db.Create(&m).Error)

	change := models.CoverageStatusChange{
		MappingID: m.ID,
		OldStatus: models.StatusNotCovered,
		NewStatus: models.StatusCovered,
		Score:     80,
	}
	require.NoError(t, db.Create(&change).Error)

	resp := doRequest(t, app, http.MethodGet, fmt.Sprintf("%s/%d/history", Path, m.ID), cookie, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var changes []models.CoverageStatusChange
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&changes))
	require.Len(t, changes, 1)
	assert.Equal(t, models.StatusCovered, changes[0].NewStatus)
}

func TestMappingDeleteNotFound(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermMappingManage)

	resp := doRequest(t, app, http.MethodDelete, Path+"/42", cookie, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
