package models

import "time"

// OverwriteTargetKind says whether an overwrite targets a role or a member.
type OverwriteTargetKind string

const (
	// OverwriteTargetRole targets a role (including @everyone).
	OverwriteTargetRole OverwriteTargetKind = "role"
	// OverwriteTargetMember targets a single member.
	OverwriteTargetMember OverwriteTargetKind = "member"
)

// Overwrite represents a per-channel permission overwrite: a pair of allow
// and deny bit masks scoped to one target inside one channel. Allow and deny
// must never overlap; a flag in neither mask is inherited.
type Overwrite struct {
	// ID is the unique identifier for the overwrite.
	ID uint64 `gorm:"primaryKey"`
	// ChannelID is the channel this overwrite is scoped to. One overwrite
	// per (channel, target kind, target) tuple.
	ChannelID uint64 `gorm:"not null;uniqueIndex:idx_channel_target"`
	// TargetKind says whether TargetID is a role or a member.
	TargetKind OverwriteTargetKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_channel_target"`
	// TargetID is the role or member the overwrite applies to.
	TargetID uint64 `gorm:"not null;uniqueIndex:idx_channel_target"`
	// Allow is the mask of flags granted by this overwrite.
	Allow uint64 `gorm:"not null;default:0"`
	// Deny is the mask of flags revoked by this overwrite.
	Deny uint64 `gorm:"not null;default:0"`
	// CreatedAt is the timestamp when the overwrite was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the overwrite was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Overwrite model.
// This overrides GORM's default pluralized table naming.
func (Overwrite) TableName() string {
	return "overwrites"
}
