package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// APIToken represents a bearer credential for the HTTP API. A token acts as
// the member it is bound to: permission checks on API calls resolve against
// that member. The secret is presented as "<id>.<secret>" and only its
// Argon2id hash is stored.
type APIToken struct {
	// ID is the unique identifier for the token, used as the lookup prefix
	// of the presented credential.
	ID uint64 `gorm:"primaryKey"`
	// Name is a human-readable label for the token.
	Name string `gorm:"size:100;not null"`
	// MemberID is the member this token acts as.
	MemberID uint64 `gorm:"not null"`
	// Member is the associated member (loaded via foreign key).
	Member Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE"`
	// SecretHash is the Argon2id hash of the token secret.
	SecretHash string `gorm:"size:255;not null"`
	// LastUsedAt is when the token last authenticated a request, nil if never.
	LastUsedAt *time.Time
	// CreatedAt is the timestamp when the token was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the token was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the APIToken model.
// This overrides GORM's default pluralized table naming.
func (APIToken) TableName() string {
	return "api_tokens"
}

// HashSecret hashes a plaintext token secret using the Argon2id algorithm.
// It uses the default Argon2id parameters for secure hashing.
func HashSecret(secret string) string {
	hashedSecret, err := argon2id.CreateHash(secret, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash token secret: %v", err)
	}

	return hashedSecret
}

// VerifySecret verifies a plaintext secret against the token's stored hash.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the secret matches, false otherwise.
func (t *APIToken) VerifySecret(secret string) bool {
	match, err := argon2id.ComparePasswordAndHash(secret, t.SecretHash)
	if err != nil {
		log.Error().Msgf("failed to verify token secret: %v", err)
		return false
	}

	return match
}
