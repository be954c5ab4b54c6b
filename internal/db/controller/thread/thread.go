// Package thread provides CRUD and lifecycle operations for threads.
package thread

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/db/models"
)

// Auto-archive windows accepted by the upstream API, in minutes.
var validAutoArchive = map[int]bool{60: true, 1440: true, 4320: true, 10080: true}

var (
	// ErrThreadNotFound is returned when a thread is not found.
	ErrThreadNotFound = errors.New("thread not found")
	// ErrThreadNameEmpty is returned when attempting to create a thread with an empty name.
	ErrThreadNameEmpty = errors.New("thread name cannot be empty")
	// ErrInvalidAutoArchive is returned for an unsupported auto-archive duration.
	ErrInvalidAutoArchive = errors.New("auto-archive duration must be 60, 1440, 4320 or 10080 minutes")
	// ErrNotTextChannel is returned when starting a thread outside a text channel.
	ErrNotTextChannel = errors.New("threads can only be started in text channels")
	// ErrThreadLocked is returned when unarchiving a locked thread.
	ErrThreadLocked = errors.New("thread is locked")
	// ErrNotThreadMember is returned when removing a member who is not in the thread.
	ErrNotThreadMember = errors.New("member is not in the thread")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create starts a new thread in a text channel. The owner automatically
// joins the thread.
func Create(db *gorm.DB, channelID, ownerID uint64, name string, private bool, autoArchiveMinutes int) (*models.Thread, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrThreadNameEmpty
	}
	if !validAutoArchive[autoArchiveMinutes] {
		return nil, ErrInvalidAutoArchive
	}

	var ch models.Channel
	if err := db.First(&ch, channelID).Error; err != nil {
		return nil, err
	}

	if ch.Type != models.ChannelTypeText {
		return nil, ErrNotTextChannel
	}

	th := &models.Thread{
		ChannelID:          channelID,
		OwnerID:            ownerID,
		Name:               name,
		Private:            private,
		AutoArchiveMinutes: autoArchiveMinutes,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(th).Error; err != nil {
			return err
		}

		return tx.Create(&models.ThreadMember{ThreadID: th.ID, MemberID: ownerID}).Error
	})
	if err != nil {
		return nil, err
	}

	return th, nil
}

// GetByID retrieves a thread by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.Thread, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var th models.Thread
	result := db.First(&th, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, result.Error
	}

	return &th, nil
}

// ListByChannel retrieves a channel's threads, optionally including
// archived ones.
func ListByChannel(db *gorm.DB, channelID uint64, includeArchived bool) ([]models.Thread, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Where("channel_id = ?", channelID)
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	var threads []models.Thread
	result := query.Order("id ASC").Find(&threads)
	if result.Error != nil {
		return nil, result.Error
	}

	return threads, nil
}

// Archive archives a thread. Archiving an archived thread is a no-op.
func Archive(db *gorm.DB, id uint64) (*models.Thread, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	th, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	if th.Archived {
		return th, nil
	}

	now := time.Now().UTC()
	th.Archived = true
	th.ArchivedAt = &now

	if err := db.Save(th).Error; err != nil {
		return nil, err
	}

	return th, nil
}

// Unarchive reactivates an archived thread. Locked threads stay archived
// until unlocked.
func Unarchive(db *gorm.DB, id uint64) (*models.Thread, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	th, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	if th.Locked {
		return nil, ErrThreadLocked
	}

	th.Archived = false
	th.ArchivedAt = nil

	if err := db.Save(th).Error; err != nil {
		return nil, err
	}

	return th, nil
}

// SetLocked sets the thread's locked flag. Locking also archives the thread.
func SetLocked(db *gorm.DB, id uint64, locked bool) (*models.Thread, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	th, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	th.Locked = locked
	if locked && !th.Archived {
		now := time.Now().UTC()
		th.Archived = true
		th.ArchivedAt = &now
	}

	if err := db.Save(th).Error; err != nil {
		return nil, err
	}

	return th, nil
}

// Delete removes a thread and its membership rows.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	th, err := GetByID(db, id)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", th.ID).Delete(&models.ThreadMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(th).Error
	})
}

// AddMember adds a member to a thread. Adding an existing member is a no-op.
func AddMember(db *gorm.DB, threadID, memberID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	if _, err := GetByID(db, threadID); err != nil {
		return err
	}

	var existing models.ThreadMember
	result := db.Where("thread_id = ? AND member_id = ?", threadID, memberID).First(&existing)
	if result.Error == nil {
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return db.Create(&models.ThreadMember{ThreadID: threadID, MemberID: memberID}).Error
}

// RemoveMember removes a member from a thread.
func RemoveMember(db *gorm.DB, threadID, memberID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("thread_id = ? AND member_id = ?", threadID, memberID).
		Delete(&models.ThreadMember{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotThreadMember
	}

	return nil
}

// IsMember reports whether a member participates in a thread.
func IsMember(db *gorm.DB, threadID, memberID uint64) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	var count int64
	result := db.Model(&models.ThreadMember{}).
		Where("thread_id = ? AND member_id = ?", threadID, memberID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}
