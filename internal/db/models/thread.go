package models

import "time"

// Thread represents a conversational sub-channel spawned from a text
// channel. Threads inherit permissions from their parent channel; creating,
// posting in and managing threads is gated by the thread permission flags.
type Thread struct {
	// ID is the unique identifier for the thread.
	ID uint64 `gorm:"primaryKey"`
	// ChannelID is the parent text channel the thread was started in.
	ChannelID uint64 `gorm:"not null;index"`
	// Channel is the parent channel (loaded via foreign key).
	Channel Channel `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
	// OwnerID is the member who started the thread.
	OwnerID uint64 `gorm:"not null"`
	// Name is the thread title.
	Name string `gorm:"size:100;not null"`
	// Private restricts the thread to explicitly added members.
	Private bool `gorm:"default:false"`
	// Archived hides the thread from the active list. Archived threads can
	// be unarchived unless also locked.
	Archived bool `gorm:"default:false"`
	// Locked prevents unarchiving by anyone without MANAGE_THREADS.
	Locked bool `gorm:"default:false"`
	// AutoArchiveMinutes is the inactivity window after which clients treat
	// the thread as archived (60, 1440, 4320 or 10080).
	AutoArchiveMinutes int `gorm:"not null;default:1440"`
	// ArchivedAt is when the thread was archived, nil while active.
	ArchivedAt *time.Time
	// CreatedAt is the timestamp when the thread was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the thread was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Thread model.
// This overrides GORM's default pluralized table naming.
func (Thread) TableName() string {
	return "threads"
}
