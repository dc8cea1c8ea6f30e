package auth

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
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedUserWithPermissions creates a role holding the given permissions and
// one active user assigned to it.
func seedUserWithPermissions(t *testing.T, db *gorm.DB, perms ...string) *models.User {
	t.Helper()

	role := models.Role{Name: "analyst"}
	require.NoError(t, db.Create(&role).Error)

	for _, name := range perms {
		perm := models.Permission{Name: name, Resource: name, Action: "any"}
		require.NoError(t, db.Create(&perm).Error)
		require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)
	}

	user := models.User{
		Active:   true,
		Username: "analyst1",
		Email:    "analyst1@example.com",
		Password: models.HashPassword("s3cret!"),
		RoleID:   role.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	return &user
}

func TestServiceHasPermission(t *testing.T) {
	db := setupTestDB(t)
	user := seedUserWithPermissions(t, db, PermDocumentView, PermMappingView)

	service := NewService(db)

	has, err := service.HasPermission(user.ID, PermDocumentView)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = service.HasPermission(user.ID, PermAdminUsers)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestServiceHasAnyPermission(t *testing.T) {
	db := setupTestDB(t)
	user := seedUserWithPermissions(t, db, PermDocumentView)

	service := NewService(db)

	has, err := service.HasAnyPermission(user.ID, []string{PermAdminUsers, PermDocumentView})
	require.NoError(t, err)
	assert.True(t, has)

	has, err = service.HasAnyPermission(user.ID, []string{PermAdminUsers, PermAdminRoles})
	require.NoError(t, err)
	assert.False(t, has)

	has, err = service.HasAnyPermission(user.ID, nil)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestServiceHasAllPermissions(t *testing.T) {
	db := setupTestDB(t)
	user := seedUserWithPermissions(t, db, PermDocumentView, PermMappingView)

	service := NewService(db)

	has, err := service.HasAllPermissions(user.ID, []string{PermDocumentView, PermMappingView})
	require.NoError(t, err)
	assert.True(t, has)

	has, err = service.HasAllPermissions(user.ID, []string{PermDocumentView, PermAdminUsers})
	require.NoError(t, err)
	assert.False(t, has)
}

func TestServiceGetUserPermissions(t *testing.T) {
	db := setupTestDB(t)
	user := seedUserWithPermissions(t, db, PermDocumentView, PermMappingView)

	service := NewService(db)

	perms, err := service.GetUserPermissions(user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{PermDocumentView, PermMappingView}, perms)
}

func TestLocalProviderAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	user := seedUserWithPermissions(t, db, PermDocumentView)

	provider := NewLocalProvider(db)

	got, err := provider.Authenticate("analyst1", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = provider.Authenticate("analyst1", "wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)

	_, err = provider.Authenticate("nobody", "s3cret!")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestLocalProviderAuthenticateDisabled(t *testing.T) {
	db := setupTestDB(t)
	user := seedUserWithPermissions(t, db, PermDocumentView)

	provider := NewLocalProvider(db)
	require.NoError(t, provider.DeactivateUser(user.ID))

	_, err := provider.Authenticate("analyst1", "s3cret!")
	require.ErrorIs(t, err, ErrUserAccountDisabled)
}

func TestLocalProviderCreateUserDuplicate(t *testing.T) {
	db := setupTestDB(t)
	user := seedUserWithPermissions(t, db, PermDocumentView)

	provider := NewLocalProvider(db)

	_, err := provider.CreateUser("analyst1", "new@example.com", "pw", "A", "B", user.RoleID)
	require.ErrorIs(t, err, ErrUserNameOrEmailExists)
}

func TestLocalProviderChangePassword(t *testing.T) {
	db := setupTestDB(t)
	user := seedUserWithPermissions(t, db, PermDocumentView)

	provider := NewLocalProvider(db)

	require.ErrorIs(t, provider.ChangePassword(user.ID, "wrong", "next"), ErrInvalidOldPassword)
	require.NoError(t, provider.ChangePassword(user.ID, "s3cret!", "next"))

	_, err := provider.Authenticate("analyst1", "next")
	require.NoError(t, err)
}
