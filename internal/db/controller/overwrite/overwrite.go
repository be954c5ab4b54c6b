// Package overwrite provides CRUD operations for per-channel permission
// overwrites.
package overwrite

import (
	"errors"

	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/db/controller/member"
	"github.com/parley-chat/parley/internal/db/controller/role"
	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
)

const targetQueryPattern = "channel_id = ? AND target_kind = ? AND target_id = ?"

var (
	// ErrOverwriteNotFound is returned when an overwrite is not found.
	ErrOverwriteNotFound = errors.New("overwrite not found")
	// ErrChannelSynced is returned when editing overwrites on a channel that
	// is synchronized with its parent category.
	ErrChannelSynced = errors.New("channel permissions are synchronized with the parent category")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetForChannel retrieves all overwrites scoped to a channel.
func GetForChannel(db *gorm.DB, channelID uint64) ([]models.Overwrite, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var overwrites []models.Overwrite
	result := db.Where("channel_id = ?", channelID).Find(&overwrites)
	if result.Error != nil {
		return nil, result.Error
	}

	return overwrites, nil
}

// Get retrieves the overwrite for one target in a channel.
func Get(db *gorm.DB, channelID uint64, kind models.OverwriteTargetKind, targetID uint64) (*models.Overwrite, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var ow models.Overwrite
	result := db.Where(targetQueryPattern, channelID, kind, targetID).First(&ow)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOverwriteNotFound
		}
		return nil, result.Error
	}

	return &ow, nil
}

// Set creates or replaces the overwrite for one target in a channel (upsert).
// Allow and deny masks must be valid permission bit fields and must not
// overlap. The target role or member must exist. A synchronized channel
// rejects its own overwrites.
func Set(db *gorm.DB, channelID uint64, kind models.OverwriteTargetKind, targetID, allow, deny uint64) (*models.Overwrite, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	allowSet, err := permissions.New(allow)
	if err != nil {
		return nil, err
	}

	denySet, err := permissions.New(deny)
	if err != nil {
		return nil, err
	}

	pending := permissions.Overwrite{
		Target: targetID,
		Kind:   permissions.OverwriteKind(kind),
		Allow:  allowSet,
		Deny:   denySet,
	}
	if err := pending.Validate(); err != nil {
		return nil, err
	}

	var ch models.Channel
	if err := db.First(&ch, channelID).Error; err != nil {
		return nil, err
	}

	if ch.PermissionsSynced {
		return nil, ErrChannelSynced
	}

	switch kind {
	case models.OverwriteTargetRole:
		if _, err := role.GetByID(db, targetID); err != nil {
			return nil, err
		}
	case models.OverwriteTargetMember:
		if _, err := member.GetByID(db, targetID); err != nil {
			return nil, err
		}
	}

	existing, err := Get(db, channelID, kind, targetID)
	switch {
	case err == nil:
		existing.Allow = allow
		existing.Deny = deny

		if err := db.Save(existing).Error; err != nil {
			return nil, err
		}

		return existing, nil
	case errors.Is(err, ErrOverwriteNotFound):
		ow := &models.Overwrite{
			ChannelID:  channelID,
			TargetKind: kind,
			TargetID:   targetID,
			Allow:      allow,
			Deny:       deny,
		}

		if err := db.Create(ow).Error; err != nil {
			return nil, err
		}

		return ow, nil
	default:
		return nil, err
	}
}

// Delete removes the overwrite for one target in a channel.
func Delete(db *gorm.DB, channelID uint64, kind models.OverwriteTargetKind, targetID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where(targetQueryPattern, channelID, kind, targetID).
		Delete(&models.Overwrite{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrOverwriteNotFound
	}

	return nil
}
