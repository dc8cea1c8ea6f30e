package aijob

import (
	"context"
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

	"github.com/plantr/policyhub/internal/ai"
	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web/session"
)

type stubProvider struct {
	content string
}

func (p *stubProvider) Complete(_ context.Context, _ *ai.Request) (*ai.Response, error) {
	return &ai.Response{Content: p.content, Model: "stub"}, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.RegulatorySource{},
		&models.Requirement{},
		&models.Document{},
		&models.RequirementMapping{},
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

func doRequest(t *testing.T, app *fiber.App, method, target, cookie string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func TestAutoMapUnavailableWithoutEngine(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermAIRun)

	ai.Engine.Runner = nil

	resp := doRequest(t, app, http.MethodPost, Path+"/automap", cookie)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAutoMapStartsAndCompletes(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermAIRun)

	src := models.RegulatorySource{Name: "GDPR"}
	require.NoError(t, db.Create(&src).Error)
	require.NoError(t, db.Create(&models.Requirement{SourceID: src.ID, Code: "Art. 32", Title: "Security"}).Error)
	require.NoError(t, db.Create(&models.Document{Title: "Encryption Policy", Markdown: "# Encryption"}).Error)

	ai.Engine.Runner = ai.NewRunner(&stubProvider{content: `[]`}, 0)
	t.Cleanup(func() { ai.Engine.Runner = nil })

	resp := doRequest(t, app, http.MethodPost, Path+"/automap", cookie)
	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accepted))
	require.NotEmpty(t, accepted["id"])

	require.Eventually(t, func() bool {
		pollResp := doRequest(t, app, http.MethodGet, Path+"/"+accepted["id"], cookie)
		defer pollResp.Body.Close()

		if pollResp.StatusCode != http.StatusOK {
			return false
		}

		var job ai.Job
		if err := json.NewDecoder(pollResp.Body).Decode(&job); err != nil {
			return false
		}

		return job.State == ai.JobComplete
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGetUnknownJob(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermAIRun)

	ai.Engine.Runner = ai.NewRunner(&stubProvider{content: `[]`}, 0)
	t.Cleanup(func() { ai.Engine.Runner = nil })

	resp := doRequest(t, app, http.MethodGet, Path+"/does-not-exist", cookie)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAssessUnknownMapping(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermAIRun)

	ai.Engine.Runner = ai.NewRunner(&stubProvider{content: `{}`}, 0)
	t.Cleanup(func() { ai.Engine.Runner = nil })

	resp := doRequest(t, app, http.MethodPost, Path+"/assess/123", cookie)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
