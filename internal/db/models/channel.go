package models

import "time"

// ChannelType distinguishes the kinds of channels a guild can contain.
type ChannelType string

const (
	// ChannelTypeText is a regular text channel.
	ChannelTypeText ChannelType = "text"
	// ChannelTypeVoice is a voice channel.
	ChannelTypeVoice ChannelType = "voice"
	// ChannelTypeCategory groups channels and can share its overwrites with
	// synchronized children.
	ChannelTypeCategory ChannelType = "category"
)

// Channel represents a guild channel. A channel may sit under a parent
// category; when PermissionsSynced is true the channel has no overwrites of
// its own and resolution uses the parent's overwrites instead.
type Channel struct {
	// ID is the unique identifier for the channel.
	ID uint64 `gorm:"primaryKey"`
	// Name is the channel name.
	Name string `gorm:"size:100;not null"`
	// Topic is the channel topic shown in clients, empty when unset.
	Topic string `gorm:"size:1024"`
	// Type is the channel kind (text, voice, or category).
	Type ChannelType `gorm:"type:varchar(20);not null;default:'text'"`
	// ParentID is the ID of the parent category, nil for top-level channels.
	ParentID *uint64 `gorm:"column:parent_id"`
	// PermissionsSynced indicates the channel inherits the parent category's
	// overwrites. Requires ParentID to be set.
	PermissionsSynced bool `gorm:"default:false"`
	// Overwrites are the permission overwrites scoped to this channel.
	Overwrites []Overwrite `gorm:"foreignKey:ChannelID"`
	// CreatedAt is the timestamp when the channel was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the channel was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Channel model.
// This overrides GORM's default pluralized table naming.
func (Channel) TableName() string {
	return "channels"
}
