package source

import (
	"encoding/json"
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
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
	))

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Webserver: config.Webserver{
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}
}

// loginAs creates a user holding the given permissions and opens a session
// for it. The returned value is the session cookie to send with requests.
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
	require.NoError(t, s.Init(app, newTestConfig(), db, auth.NewService(db)))

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

func TestSourceRequiresSession(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)

	resp := doRequest(t, app, http.MethodGet, Path, "", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSourceViewCannotManage(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermCatalogueView)

	resp := doRequest(t, app, http.MethodPost, Path, cookie, `{"name":"GDPR"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSourceCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermCatalogueView, auth.PermCatalogueManage)

	resp := doRequest(t, app, http.MethodPost, Path, cookie,
		`{"name":"General Data Protection Regulation","shortName":"GDPR","jurisdiction":"EU","category":"Privacy"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.RegulatorySource
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "GDPR", created.ShortName)

	getResp := doRequest(t, app, http.MethodGet, Path+"/1", cookie, "")
	defer getResp.Body.Close()

	assert.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestSourceCreateValidatesBody(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermCatalogueManage)

	resp := doRequest(t, app, http.MethodPost, Path, cookie, `{"shortName":"no name"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSourceListFiltersByJurisdiction(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermCatalogueView)

	require.NoError(t, db.Create(&models.RegulatorySource{Name: "GDPR", Jurisdiction: "EU"}).Error)
	require.NoError(t, db.Create(&models.RegulatorySource{Name: "CCPA", Jurisdiction: "US"}).Error)

	resp := doRequest(t, app, http.MethodGet, Path+"?jurisdiction=EU", cookie, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sources []models.RegulatorySource
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sources))
	require.Len(t, sources, 1)
	assert.Equal(t, "GDPR", sources[0].Name)
}

func TestSourceGetNotFound(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermCatalogueView)

	resp := doRequest(t, app, http.MethodGet, Path+"/99", cookie, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSourceDeleteBlockedWhileRequirementsExist(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db)
	cookie := loginAs(t, db, auth.PermCatalogueManage)

	src := models.RegulatorySource{Name: "GDPR"}
	require.NoError(t, db.Create(&src).Error)
	require.NoError(t, db.Create(&models.Requirement{SourceID: src.ID, Code: "Art. 5", Title: "Principles"}).Error)

	resp := doRequest(t, app, http.MethodDelete, Path+"/1", cookie, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	require.NoError(t, db.Where("source_id = ?", src.ID).Delete(&models.Requirement{}).Error)

	resp = doRequest(t, app, http.MethodDelete, Path+"/1", cookie, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
