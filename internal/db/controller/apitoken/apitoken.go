// Package apitoken provides CRUD operations for API bearer tokens.
package apitoken

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/uniuri"
)

const (
	// SecretLen is the generated secret length in characters.
	SecretLen = 40
)

var (
	// ErrTokenNotFound is returned when a token is not found.
	ErrTokenNotFound = errors.New("api token not found")
	// ErrTokenNameEmpty is returned when attempting to create a token with an empty name.
	ErrTokenNameEmpty = errors.New("token name cannot be empty")
	// ErrMalformedToken is returned when a presented credential is not of the form "<id>.<secret>".
	ErrMalformedToken = errors.New("malformed token credential")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetByID retrieves a token by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.APIToken, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var token models.APIToken
	result := db.First(&token, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, result.Error
	}

	return &token, nil
}

// GetAll retrieves all tokens.
func GetAll(db *gorm.DB) ([]models.APIToken, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var tokens []models.APIToken
	result := db.Find(&tokens)
	if result.Error != nil {
		return nil, result.Error
	}

	return tokens, nil
}

// Create creates a token bound to the given member and returns the model
// together with the full credential "<id>.<secret>". The plaintext secret is
// not recoverable afterwards, only its hash is stored.
func Create(db *gorm.DB, name string, memberID uint64) (*models.APIToken, string, error) {
	if db == nil {
		return nil, "", ErrDBNil
	}
	if name == "" {
		return nil, "", ErrTokenNameEmpty
	}

	var member models.Member
	result := db.First(&member, memberID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, "", gorm.ErrRecordNotFound
		}
		return nil, "", result.Error
	}

	secret := uniuri.NewLen(SecretLen)

	token := &models.APIToken{
		Name:       name,
		MemberID:   memberID,
		SecretHash: models.HashSecret(secret),
	}

	result = db.Create(token)
	if result.Error != nil {
		return nil, "", result.Error
	}

	credential := strconv.FormatUint(token.ID, 10) + "." + secret

	return token, credential, nil
}

// Authenticate resolves a presented "<id>.<secret>" credential to its token.
// It returns ErrTokenNotFound for both an unknown ID and a wrong secret, so
// callers cannot distinguish the two.
func Authenticate(db *gorm.DB, credential string) (*models.APIToken, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	idPart, secret, found := strings.Cut(credential, ".")
	if !found || idPart == "" || secret == "" {
		return nil, ErrMalformedToken
	}

	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return nil, ErrMalformedToken
	}

	token, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	if !token.VerifySecret(secret) {
		return nil, ErrTokenNotFound
	}

	return token, nil
}

// Touch updates the token's last-used timestamp.
func Touch(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	now := time.Now().UTC()

	result := db.Model(&models.APIToken{}).Where("id = ?", id).Update("last_used_at", &now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// Delete removes a token by its ID.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	token, err := GetByID(db, id)
	if err != nil {
		return err
	}

	return db.Delete(token).Error
}
