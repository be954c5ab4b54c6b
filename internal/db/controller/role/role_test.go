package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Role{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		roleName      string
		perms         uint64
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			roleName:      "mods",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			roleName:      "",
			expectedError: ErrRoleNameEmpty,
		},
		{
			name:          "unregistered permission bits",
			dbParam:       db,
			roleName:      "mods",
			perms:         uint64(1) << 63,
			expectedError: permissions.ErrInvalidFlag,
		},
		{
			name:     "successful create",
			dbParam:  db,
			roleName: "mods",
			perms:    uint64(permissions.FlagKickMembers),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM roles")
			}

			created, err := Create(tc.dbParam, tc.roleName, tc.perms, 0)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, created)
			} else {
				require.NoError(t, err)
				require.NotNil(t, created)
				assert.Equal(t, tc.roleName, created.Name)
				assert.Equal(t, tc.perms, created.Permissions)
			}
		})
	}
}

func TestCreateDuplicate(t *testing.T) {
	db := setupTestDB(t)

	_, err := Create(db, "mods", 0, 0)
	require.NoError(t, err)

	_, err = Create(db, "mods", 0, 0)
	require.ErrorIs(t, err, ErrRoleAlreadyExists)
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)

	_, err := Get(db, "")
	require.ErrorIs(t, err, ErrRoleNameEmpty)

	_, err = Get(db, "ghost")
	require.ErrorIs(t, err, ErrRoleNotFound)

	created, err := Create(db, "mods", uint64(permissions.FlagKickMembers), 3)
	require.NoError(t, err)

	got, err := Get(db, "mods")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 3, got.Position)

	byID, err := GetByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "mods", byID.Name)
}

func TestGetAllOrdersByPosition(t *testing.T) {
	db := setupTestDB(t)

	_, err := Create(db, "low", 0, 1)
	require.NoError(t, err)
	_, err = Create(db, "high", 0, 10)
	require.NoError(t, err)

	roles, err := GetAll(db)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "high", roles[0].Name)
	assert.Equal(t, "low", roles[1].Name)
}

func TestGetEveryone(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetEveryone(db)
	require.ErrorIs(t, err, ErrEveryoneRoleMissing)

	everyone := models.Role{Name: "@everyone", IsEveryone: true}
	require.NoError(t, db.Create(&everyone).Error)

	got, err := GetEveryone(db)
	require.NoError(t, err)
	assert.Equal(t, everyone.ID, got.ID)
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)

	created, err := Create(db, "mods", 0, 0)
	require.NoError(t, err)

	updated, err := Update(db, created.ID, "moderators", uint64(permissions.FlagBanMembers), 5)
	require.NoError(t, err)
	assert.Equal(t, "moderators", updated.Name)
	assert.Equal(t, uint64(permissions.FlagBanMembers), updated.Permissions)
	assert.Equal(t, 5, updated.Position)

	_, err = Update(db, 999, "ghost", 0, 0)
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	created, err := Create(db, "mods", 0, 0)
	require.NoError(t, err)

	require.NoError(t, Delete(db, created.ID))
	_, err = GetByID(db, created.ID)
	require.ErrorIs(t, err, ErrRoleNotFound)

	everyone := models.Role{Name: "@everyone", IsEveryone: true}
	require.NoError(t, db.Create(&everyone).Error)

	err = Delete(db, everyone.ID)
	require.ErrorIs(t, err, ErrEveryoneRoleImmutable)
}
