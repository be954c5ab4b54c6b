// Package channel provides CRUD operations for guild channels and their
// category synchronization state.
package channel

import (
	"errors"

	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/db/models"
)

var (
	// ErrChannelNotFound is returned when a channel is not found.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrChannelNameEmpty is returned when attempting to create/update a channel with an empty name.
	ErrChannelNameEmpty = errors.New("channel name cannot be empty")
	// ErrParentNotCategory is returned when the referenced parent is not a category channel.
	ErrParentNotCategory = errors.New("parent channel is not a category")
	// ErrNoParentChannel is returned when permission synchronization is
	// requested for a channel that has no parent category.
	ErrNoParentChannel = errors.New("channel has no parent category")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetByID retrieves a channel by its ID, with overwrites preloaded.
func GetByID(db *gorm.DB, id uint64) (*models.Channel, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var ch models.Channel
	result := db.Preload("Overwrites").First(&ch, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, result.Error
	}

	return &ch, nil
}

// GetAll retrieves all channels.
func GetAll(db *gorm.DB) ([]models.Channel, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var channels []models.Channel
	result := db.Preload("Overwrites").Find(&channels)
	if result.Error != nil {
		return nil, result.Error
	}

	return channels, nil
}

// Create creates a new channel. A non-nil parentID must reference an
// existing category channel.
func Create(db *gorm.DB, name, topic string, chType models.ChannelType, parentID *uint64) (*models.Channel, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrChannelNameEmpty
	}

	if parentID != nil {
		if err := checkParent(db, *parentID); err != nil {
			return nil, err
		}
	}

	ch := &models.Channel{
		Name:     name,
		Topic:    topic,
		Type:     chType,
		ParentID: parentID,
	}

	result := db.Create(ch)
	if result.Error != nil {
		return nil, result.Error
	}

	return ch, nil
}

// Update updates a channel's name, topic and parent. Re-parenting clears the
// synchronization flag since the inherited overwrite source changed.
func Update(db *gorm.DB, id uint64, name, topic string, parentID *uint64) (*models.Channel, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrChannelNameEmpty
	}

	ch, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if err := checkParent(db, *parentID); err != nil {
			return nil, err
		}
	}

	reparented := !equalParent(ch.ParentID, parentID)

	ch.Name = name
	ch.Topic = topic
	ch.ParentID = parentID
	if reparented {
		ch.PermissionsSynced = false
	}

	result := db.Save(ch)
	if result.Error != nil {
		return nil, result.Error
	}

	return ch, nil
}

// SetSynced toggles permission synchronization with the parent category.
// Enabling sync requires a parent and discards the channel's own overwrites.
func SetSynced(db *gorm.DB, id uint64, synced bool) (*models.Channel, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	ch, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	if synced && ch.ParentID == nil {
		return nil, ErrNoParentChannel
	}

	if synced {
		if err := db.Where("channel_id = ?", ch.ID).Delete(&models.Overwrite{}).Error; err != nil {
			return nil, err
		}
		ch.Overwrites = nil
	}

	ch.PermissionsSynced = synced

	result := db.Save(ch)
	if result.Error != nil {
		return nil, result.Error
	}

	return ch, nil
}

// Delete removes a channel by its ID. Overwrites and threads are removed by
// cascade; child channels are detached and unsynced.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	ch, err := GetByID(db, id)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Channel{}).
			Where("parent_id = ?", ch.ID).
			Updates(map[string]any{"parent_id": nil, "permissions_synced": false}).Error; err != nil {
			return err
		}

		if err := tx.Where("channel_id = ?", ch.ID).Delete(&models.Overwrite{}).Error; err != nil {
			return err
		}

		return tx.Delete(ch).Error
	})
}

// checkParent verifies that the given ID references a category channel.
func checkParent(db *gorm.DB, parentID uint64) error {
	parent, err := GetByID(db, parentID)
	if err != nil {
		return err
	}

	if parent.Type != models.ChannelTypeCategory {
		return ErrParentNotCategory
	}

	return nil
}

func equalParent(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
