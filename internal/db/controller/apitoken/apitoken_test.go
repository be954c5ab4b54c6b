package apitoken

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (*gorm.DB, *models.Member) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Member{}, &models.APIToken{})
	require.NoError(t, err, "failed to migrate test database")

	member := &models.Member{Username: "ada"}
	require.NoError(t, db.Create(member).Error)

	return db, member
}

func TestCreate(t *testing.T) {
	db, member := setupTestDB(t)

	_, _, err := Create(nil, "ci", member.ID)
	require.ErrorIs(t, err, ErrDBNil)

	_, _, err = Create(db, "", member.ID)
	require.ErrorIs(t, err, ErrTokenNameEmpty)

	_, _, err = Create(db, "ci", member.ID+99)
	require.Error(t, err, "unknown member must be rejected")

	token, credential, err := Create(db, "ci", member.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, token.MemberID)

	idPart, secret, found := strings.Cut(credential, ".")
	require.True(t, found, "credential must be of the form <id>.<secret>")
	assert.Equal(t, strconv.FormatUint(token.ID, 10), idPart)
	assert.Len(t, secret, SecretLen)
	assert.NotContains(t, token.SecretHash, secret, "plaintext secret must not be stored")
}

func TestAuthenticate(t *testing.T) {
	db, member := setupTestDB(t)

	token, credential, err := Create(db, "ci", member.ID)
	require.NoError(t, err)

	got, err := Authenticate(db, credential)
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)
	assert.Equal(t, member.ID, got.MemberID)

	_, err = Authenticate(db, "no-separator")
	require.ErrorIs(t, err, ErrMalformedToken)

	_, err = Authenticate(db, "not-a-number.secret")
	require.ErrorIs(t, err, ErrMalformedToken)

	_, err = Authenticate(db, "9999."+strings.Repeat("x", SecretLen))
	require.ErrorIs(t, err, ErrTokenNotFound)

	// Wrong secret is indistinguishable from an unknown token.
	_, err = Authenticate(db, strconv.FormatUint(token.ID, 10)+"."+strings.Repeat("x", SecretLen))
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTouchAndDelete(t *testing.T) {
	db, member := setupTestDB(t)

	token, _, err := Create(db, "ci", member.ID)
	require.NoError(t, err)
	require.Nil(t, token.LastUsedAt)

	require.NoError(t, Touch(db, token.ID))

	got, err := GetByID(db, token.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastUsedAt)

	require.ErrorIs(t, Touch(db, token.ID+99), ErrTokenNotFound)

	require.NoError(t, Delete(db, token.ID))
	_, err = GetByID(db, token.ID)
	require.ErrorIs(t, err, ErrTokenNotFound)
}
