package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Role{}, &models.Member{}, &models.MemberRole{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	_, err := Create(nil, "ada", "", false)
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Create(db, "", "", false)
	require.ErrorIs(t, err, ErrMemberUsernameEmpty)

	m, err := Create(db, "ada", "Countess", false)
	require.NoError(t, err)
	assert.Equal(t, "ada", m.Username)
	assert.Equal(t, "Countess", m.Nickname)

	_, err = Create(db, "ada", "", false)
	require.ErrorIs(t, err, ErrMemberAlreadyExists)
}

func TestRoleAssignment(t *testing.T) {
	db := setupTestDB(t)

	m, err := Create(db, "ada", "", false)
	require.NoError(t, err)

	mods := models.Role{Name: "mods"}
	require.NoError(t, db.Create(&mods).Error)

	require.NoError(t, AssignRole(db, m.ID, mods.ID))
	// Assigning twice is a no-op.
	require.NoError(t, AssignRole(db, m.ID, mods.ID))

	roles, err := GetRoles(db, m.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "mods", roles[0].Name)

	require.NoError(t, RemoveRole(db, m.ID, mods.ID))
	require.ErrorIs(t, RemoveRole(db, m.ID, mods.ID), ErrRoleNotAssigned)

	require.ErrorIs(t, AssignRole(db, 999, mods.ID), ErrMemberNotFound)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	m, err := Create(db, "ada", "", false)
	require.NoError(t, err)

	mods := models.Role{Name: "mods"}
	require.NoError(t, db.Create(&mods).Error)
	require.NoError(t, AssignRole(db, m.ID, mods.ID))

	require.NoError(t, Delete(db, m.ID))

	_, err = GetByID(db, m.ID)
	require.ErrorIs(t, err, ErrMemberNotFound)

	var count int64
	require.NoError(t, db.Model(&models.MemberRole{}).Count(&count).Error)
	assert.Zero(t, count)
}
